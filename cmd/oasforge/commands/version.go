package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oasforge/oasforge"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oasforge v%s\n", oasforge.Version())
		},
	}
}
