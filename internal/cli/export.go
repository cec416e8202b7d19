package cli

import (
	"github.com/rcliao/tag-hints/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export hints as JSON",
		Long:  "Export every mode's hints, most recent first. Restrict to one mode with -m.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	modes := []string{modeFlag}
	if modeFlag == "" {
		modes, err = s.storedModes(cmd.Context())
		if err != nil {
			exitErr("export", err)
		}
	}

	out := make([]model.ModeHints, 0, len(modes))
	for _, mode := range modes {
		c, err := s.readyCache(cmd.Context(), mode)
		if err != nil {
			exitErr("export", err)
		}
		info, err := c.Info(cmd.Context())
		if err != nil {
			exitErr("export", err)
		}
		all, err := c.Query(cmd.Context(), "", info.Entries)
		if err != nil {
			exitErr("export", err)
		}
		out = append(out, model.ModeHints{Mode: mode, Hints: all})
	}

	printJSON(out)
}
