package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHashObjectCmd(g *globalOptions) *cobra.Command {
	var write bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] <file>",
		Short: "Store a file as a blob and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := g.openRepo()
			if err != nil {
				return err
			}
			h, err := r.HashFile(g.resolve(args[0]), write && !dryRun)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), h)
			return nil
		},
	}

	// The blob is written by default; --write=false is the same as --dry-run.
	cmd.Flags().BoolVarP(&write, "write", "w", true, "write the blob into the object store (default; --write=false computes only)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "compute the id without writing")

	return cmd
}
