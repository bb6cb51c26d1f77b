// Package cmd implements the imgbatch command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"image-processor/internal/engine"
	"image-processor/internal/history"
	"image-processor/internal/logging"
	"image-processor/internal/session"
	"image-processor/internal/version"
	"image-processor/ui/prefs"

	"github.com/spf13/cobra"
)

// newEngine builds the processing engine. Tests swap it for a fake.
var newEngine = func() engine.Engine { return engine.NewCV() }

type globalOptions struct {
	logLevel string
	logJSON  bool
	config   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "imgbatch",
		Short: "Batch image processing with the editor's operations",
		Long: `imgbatch runs the image editor's filters, frequency transforms and
template matching on files, logging every step the way the editor does.

Filter parameters come from the editor preferences file when --config is
given and from the built-in defaults otherwise.

Examples:
  imgbatch apply --in scan.png --out edges.png --op grayscale --op sobel
  imgbatch apply --in scan.png --out back.png --fft-roundtrip
  imgbatch match --in board.png --template chip.png
  imgbatch report --in scan.png --op gaussian --op binarize`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(cmd.ErrOrStderr(), opts.logLevel, opts.logJSON)
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Log as JSON")
	root.PersistentFlags().StringVar(&opts.config, "config", "", "Preferences file to read filter parameters from")

	root.AddCommand(newApplyCmd(opts))
	root.AddCommand(newMatchCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// settings resolves the filter parameters and history bound.
func (o *globalOptions) settings() (prefs.Settings, error) {
	if o.config == "" {
		return prefs.DefaultSettings(), nil
	}
	p, err := prefs.Open(o.config)
	if err != nil {
		return prefs.Settings{}, fmt.Errorf("failed to read config: %w", err)
	}
	s := prefs.ReadSettings(p)
	if err := s.Validate(); err != nil {
		return prefs.Settings{}, fmt.Errorf("invalid config %s: %w", o.config, err)
	}
	return s, nil
}

// openSession loads path into a synchronous session.
func (o *globalOptions) openSession(path string) (*session.Session, error) {
	if path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	s, err := o.settings()
	if err != nil {
		return nil, err
	}
	sess := session.New(newEngine(),
		session.WithParams(s.Params),
		session.WithHistory(history.New(history.WithCapacity(s.HistoryCapacity))),
	)
	if err := sess.LoadFile(path); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return sess, nil
}
