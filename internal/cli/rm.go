package cli

import (
	"fmt"

	"github.com/rcliao/tag-hints/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <text>",
		Short: "Forget a hashtag",
		Long:  "Forget a hashtag. One leading '#' is ignored, and forgetting an unknown hashtag succeeds.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}

	mode := s.mode()
	c, err := s.readyCache(cmd.Context(), mode)
	if err == nil {
		err = c.Remove(cmd.Context(), args[0])
	}
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		exitErr("rm", err)
	}

	if formatFlag == "text" {
		fmt.Printf("removed %s from %s\n", args[0], mode)
		return
	}
	printJSON(model.Ack{OK: true, Mode: mode, Text: args[0]})
}
