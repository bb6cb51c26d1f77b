package cmd

import (
	"fmt"

	imgutil "image-processor/internal/image"

	"github.com/spf13/cobra"
)

type matchOptions struct {
	in       string
	template string
	out      string
}

func newMatchCmd(g *globalOptions) *cobra.Command {
	o := &matchOptions{}
	c := &cobra.Command{
		Use:   "match",
		Short: "Locate a template inside an image",
		Long: `Match searches the input image for the template and prints the
matched rectangle as "x y width height". With --out the input is saved
with the match highlighted.

Example:
  imgbatch match --in board.png --template chip.png --out found.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, g, o)
		},
	}
	c.Flags().StringVarP(&o.in, "in", "i", "", "Image to search")
	c.Flags().StringVarP(&o.template, "template", "t", "", "Template image")
	c.Flags().StringVarP(&o.out, "out", "o", "", "Save the highlighted match here")
	return c
}

func runMatch(cmd *cobra.Command, g *globalOptions, o *matchOptions) error {
	if o.template == "" {
		return fmt.Errorf("--template is required")
	}
	s, err := g.openSession(o.in)
	if err != nil {
		return err
	}
	tmpl, err := imgutil.Load(o.template)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	res, err := s.TemplateMatch(cmd.Context(), tmpl.Image)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !res.Found {
		fmt.Fprintln(w, "no match")
		return nil
	}
	r := res.Rect
	fmt.Fprintf(w, "%d %d %d %d\n", r.Min.X, r.Min.Y, r.Dx(), r.Dy())

	if o.out == "" {
		return nil
	}
	if err := s.ApplyMatch(cmd.Context(), res); err != nil {
		return err
	}
	if err := s.Save(o.out); err != nil {
		return fmt.Errorf("failed to save %s: %w", o.out, err)
	}
	return nil
}
