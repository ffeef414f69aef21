package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-h5store/h5store"
)

func newListCmd(a *app) *cobra.Command {
	var groups bool

	cmd := &cobra.Command{
		Use:   "list <container>",
		Short: "List datasets with their dimensions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(args[0], h5store.ReadOnly)
			if err != nil {
				return err
			}
			defer s.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tPATH\tDIMS")

			if groups {
				names, err := s.Groups()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintf(tw, "group\t%s\t\n", name)
				}
			}

			names, err := s.Datasets()
			if err != nil {
				return err
			}
			for _, name := range names {
				dims, err := s.DatasetDimensions(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "dataset\t%s\t%s\n", name, formatDims(dims))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&groups, "groups", "g", false, "also list groups")
	return cmd
}
