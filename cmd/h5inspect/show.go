package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/robert-malhotra/go-h5store/h5store"
)

// terminalLimit caps show output when no --limit is given and stdout is a
// terminal.
const terminalLimit = 1000

func newShowCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <container> <dataset>",
		Short: "Print the dimensions and values of a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(args[0], h5store.ReadOnly)
			if err != nil {
				return err
			}
			defer s.Close()

			dims, values, err := s.ReadDense(args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !cmd.Flags().Changed("limit") && isTerminal(out) {
				limit = terminalLimit
			}
			fmt.Fprintf(out, "dims: %s\n", formatDims(dims))
			if limit > 0 && len(values) > limit {
				printValues(out, dims, values[:limit])
				fmt.Fprintf(out, "... %d more\n", len(values)-limit)
				return nil
			}
			printValues(out, dims, values)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n values (0 prints all; defaults to 1000 on a terminal)")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printValues writes one row of the innermost dimension per line.
func printValues(w io.Writer, dims []uint64, values []float64) {
	width := len(values)
	if len(dims) > 0 && dims[len(dims)-1] > 0 {
		width = int(dims[len(dims)-1])
	}
	for start := 0; start < len(values); start += width {
		end := min(start+width, len(values))
		row := make([]string, 0, end-start)
		for _, v := range values[start:end] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}
}

func formatDims(dims []uint64) string {
	if len(dims) == 0 {
		return "scalar"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.FormatUint(d, 10)
	}
	return "[" + strings.Join(parts, " x ") + "]"
}
