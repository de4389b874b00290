package cli

import (
	"fmt"

	"github.com/beehive-tools/hivecli/internal/tui/common"
	"github.com/spf13/cobra"
)

func newVersionCommand(env *Env) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if !short {
				fmt.Fprintln(out, common.Logo())
			}
			fmt.Fprintf(out, "%s version %s\n", appName, env.Version)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Only print the version line")
	return cmd
}
