package main

import (
	"fmt"

	"github.com/odvcencio/minigit/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the object store layout in the work tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := repo.Init(g.workDir, repo.WithLogger(g.logger)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized git directory")
			return nil
		},
	}
}
