package cli

import (
	"fmt"

	"github.com/rcliao/tag-hints/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "query [prefix]",
		Short: "Suggest hashtags by prefix",
		Long:  "List recently used hashtags starting with prefix, most recent first. Without a prefix, list the most recent hashtags.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runQuery,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (default: config query_limit)")

	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	var prefix string
	if len(args) > 0 {
		prefix = args[0]
	}

	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	if limit <= 0 {
		limit = s.cfg.QueryLimit
	}

	mode := s.mode()
	c, err := s.readyCache(cmd.Context(), mode)
	if err != nil {
		exitErr("query", err)
	}
	found, err := c.Query(cmd.Context(), prefix, limit)
	if err != nil {
		exitErr("query", err)
	}

	if formatFlag == "text" {
		for _, h := range found {
			fmt.Println(h)
		}
		return
	}
	printJSON(model.QueryResult{Mode: mode, Prefix: prefix, Hints: found})
}
