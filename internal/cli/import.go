package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rcliao/tag-hints/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import hints from JSON",
		Long:  "Import hints from JSON on stdin, in the format produced by export. Imported hints rank above existing ones and keep their relative order.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var sets []model.ModeHints
	if err := json.Unmarshal(data, &sets); err != nil {
		exitErr("parse json", err)
	}

	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}

	imported := 0
	for _, set := range sets {
		c, err := s.readyCache(cmd.Context(), set.Mode)
		if err != nil {
			s.Close()
			exitErr("import", err)
		}
		// Exports are newest first; replay oldest first.
		for i := len(set.Hints) - 1; i >= 0; i-- {
			c.RecordUsage(set.Hints[i])
			imported++
		}
	}

	if err := s.Close(); err != nil {
		exitErr("flush", err)
	}
	printJSON(model.Ack{OK: true, Count: imported})
}
