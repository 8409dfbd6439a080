package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0-dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the relcheck version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("relcheck %s\n", Version)
		},
	}
}
