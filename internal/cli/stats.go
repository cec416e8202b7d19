package cli

import (
	"github.com/rcliao/tag-hints/internal/hints"
	"github.com/rcliao/tag-hints/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database and per-mode statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

type statsOutput struct {
	Store *store.Stats  `json:"store"`
	Modes []hints.Info `json:"modes"`
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	st, err := s.store.Stats(cmd.Context(), s.cfg.DB, hints.KeyPrefix)
	if err != nil {
		exitErr("stats", err)
	}

	modes, err := s.storedModes(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	out := statsOutput{Store: st, Modes: []hints.Info{}}
	for _, mode := range modes {
		c, err := s.readyCache(cmd.Context(), mode)
		if err != nil {
			exitErr("stats", err)
		}
		info, err := c.Info(cmd.Context())
		if err != nil {
			exitErr("stats", err)
		}
		out.Modes = append(out.Modes, info)
	}

	printJSON(out)
}
