package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-h5store/format"
	"github.com/robert-malhotra/go-h5store/h5store"
)

func newExportCmd(a *app) *cobra.Command {
	var threshold uint64

	cmd := &cobra.Command{
		Use:   "export <container> <document.json>",
		Short: "Write every dataset of a container to an array document",
		Long: `Write every dataset of a container to an array document. Arrays larger
than the threshold go to a companion container named after the document,
or <document>.arrays.h5 when that name is the source container itself.
A threshold of 0 off-loads every non-empty array.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sameFile(args[0], args[1]) {
				return fmt.Errorf("document %s would overwrite the source container", args[1])
			}
			companion := exportCompanion(args[0], args[1])

			s, err := a.openStore(args[0], h5store.ReadOnly)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.Datasets()
			if err != nil {
				return err
			}
			doc := format.NewDocument()
			for _, name := range names {
				dims, values, err := s.ReadDense(name)
				if err != nil {
					return err
				}
				if err := doc.Set(name, dims, values); err != nil {
					return err
				}
			}

			policy := new(h5store.ThresholdPolicy)
			policy.SetThreshold(threshold)
			f := &format.ArrayDocument{Policy: policy, Companion: companion, Logger: a.logger}
			if err := format.WriteFile(f, args[1], doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d datasets to %s\n", doc.Len(), args[1])
			return nil
		},
	}
	cmd.Flags().Uint64Var(&threshold, "threshold", h5store.DefaultThreshold, "largest inline array in bytes (0 off-loads every non-empty array)")
	return cmd
}

// exportCompanion picks the companion container for a document exported
// from source, steering clear of the source itself.
func exportCompanion(source, doc string) string {
	companion := format.DefaultCompanion(doc)
	if sameFile(source, companion) {
		companion = strings.TrimSuffix(doc, filepath.Ext(doc)) + ".arrays.h5"
	}
	return companion
}

// sameFile reports whether a and b name the same file, either by path or,
// when both exist, by identity.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

func newImportCmd(a *app) *cobra.Command {
	var truncate bool

	cmd := &cobra.Command{
		Use:   "import <document.json> <container>",
		Short: "Write the arrays of an array document into a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f := &format.ArrayDocument{Logger: a.logger}
			doc := format.NewDocument()
			if err := format.ReadFile(f, args[0], doc); err != nil {
				return err
			}

			mode := h5store.ReadWriteAppend
			if truncate {
				mode = h5store.ReadWriteTruncate
			}
			s, err := a.openStore(args[1], mode)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			for _, name := range doc.Names() {
				arr, _ := doc.Get(name)
				if err := s.WriteDense(name, arr.Dims, arr.Values); err != nil {
					return fmt.Errorf("importing %s: %w", name, err)
				}
				a.logger.Debug("imported array", zap.String("name", name))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d arrays into %s\n", doc.Len(), args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&truncate, "truncate", false, "discard the container's existing datasets")
	return cmd
}
