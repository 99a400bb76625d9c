package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Snapshot the work tree as tree and blob objects",
		Long: `Snapshot the current directory as tree and blob objects and print the root
tree id.

Only directories and regular files are recorded. Symbolic links, devices,
sockets and pipes are skipped with a warning. Every file is stored with mode
100644. The storage root and patterns from [tree] exclude are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := g.openRepo()
			if err != nil {
				return err
			}
			h, err := r.BuildTree(g.workDir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
