package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-h5store/h5store"
)

// app holds state shared by every subcommand.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func (a *app) openStore(path string, mode h5store.AccessMode, opts ...h5store.Option) (*h5store.Store, error) {
	s := h5store.New(append([]h5store.Option{h5store.WithLogger(a.logger)}, opts...)...)
	if err := s.Open(path, mode); err != nil {
		return nil, err
	}
	return s, nil
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "h5inspect",
		Short: "Inspect h5store containers",
		Long: `h5inspect reads containers written by h5store.

  h5inspect list results.h5            # datasets and their dimensions
  h5inspect show results.h5 Frames/0   # dimensions and values of one dataset
  h5inspect export results.h5 out.json # container to array document
  h5inspect import in.json results.h5  # array document into a container`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log store activity to stderr")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
