package cmd

import (
	"fmt"

	"image-processor/internal/version"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "imgbatch %s\n", version.Version)
			fmt.Fprintf(w, "  commit: %s\n", version.GitCommit)
			fmt.Fprintf(w, "  built:  %s\n", version.BuildTime)
		},
	}
}
