package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List modes with stored hints",
		Run:   runModes,
	}

	RootCmd.AddCommand(cmd)
}

func runModes(cmd *cobra.Command, args []string) {
	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	modes, err := s.storedModes(cmd.Context())
	if err != nil {
		exitErr("list modes", err)
	}

	if formatFlag == "text" {
		for _, m := range modes {
			fmt.Println(m)
		}
		return
	}
	printJSON(modes)
}
