package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "minigit:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "minigit",
		Short:         "Content-addressable object store compatible with Git's loose objects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			g.close()
		},
	}
	root.PersistentFlags().StringVarP(&g.workDir, "work-tree", "C", ".", "run as if started in this directory")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug output to stderr (also MINIGIT_VERBOSE=1)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(g))
	root.AddCommand(newHashObjectCmd(g))
	root.AddCommand(newCatFileCmd(g))
	root.AddCommand(newLsTreeCmd(g))
	root.AddCommand(newWriteTreeCmd(g))
	root.AddCommand(newCommitTreeCmd(g))
	root.AddCommand(newVerifyCmd(g))
	root.AddCommand(newVerifyCommitCmd(g))
	root.AddCommand(newCloneCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "minigit "+version)
		},
	}
}
