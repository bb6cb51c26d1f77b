package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd(g *globalOptions) *cobra.Command {
	var in string
	var ops []string
	c := &cobra.Command{
		Use:   "report",
		Short: "Print the analysis report for an image",
		Long: `Report loads the image, runs each --op and prints the Markdown
analysis report: image size, resolution, format and a summary of the
operations applied.

Example:
  imgbatch report --in scan.tiff --op grayscale --op binarize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := parseOps(ops)
			if err != nil {
				return err
			}
			s, err := g.openSession(in)
			if err != nil {
				return err
			}
			if err := runOps(cmd.Context(), s, cmds); err != nil {
				return err
			}
			report, err := s.Report()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}
	c.Flags().StringVarP(&in, "in", "i", "", "Input image")
	c.Flags().StringArrayVar(&ops, "op", nil, "Operation to apply first (repeatable)")
	return c
}
