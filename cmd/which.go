package cmd

import (
	"fmt"

	"github.com/josephlewis42/pipesh/core/proc"
	"github.com/spf13/cobra"
)

// whichCmd shows where the shell would find commands
var whichCmd = &cobra.Command{
	Use:   "which NAME...",
	Short: "Show the executable each NAME resolves to using PATH.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		resolver := proc.NewResolver()
		env := proc.CurrentEnv()

		missing := 0
		for _, name := range args {
			path, err := resolver.Resolve(env, name)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
				missing++
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}

		if missing > 0 {
			return fmt.Errorf("%d of %d commands not found", missing, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whichCmd)
}
