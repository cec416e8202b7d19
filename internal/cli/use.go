package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rcliao/tag-hints/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "use [text...]",
		Short: "Record hashtag usage",
		Long:  "Record that each text was just used, in order, so the last one ranks first. Texts can be args or stdin lines.",
		Run:   runUse,
	}

	RootCmd.AddCommand(cmd)
}

func runUse(cmd *cobra.Command, args []string) {
	texts := args
	if len(texts) == 0 {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					texts = append(texts, line)
				}
			}
			if err := sc.Err(); err != nil {
				exitErr("read stdin", err)
			}
		}
	}
	if len(texts) == 0 {
		exitErr("use", fmt.Errorf("at least one text is required (args or stdin)"))
	}

	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}

	mode := s.mode()
	c, err := s.readyCache(cmd.Context(), mode)
	if err != nil {
		s.Close()
		exitErr("use", err)
	}
	for _, t := range texts {
		c.RecordUsage(t)
	}

	if err := s.Close(); err != nil {
		exitErr("flush", err)
	}

	if formatFlag == "text" {
		fmt.Printf("recorded %d in %s\n", len(texts), mode)
		return
	}
	printJSON(model.Ack{OK: true, Mode: mode, Count: len(texts)})
}
