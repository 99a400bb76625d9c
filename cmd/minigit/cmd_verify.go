package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-hash every stored object and check it against its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := g.openRepo()
			if err != nil {
				return err
			}

			report, err := r.Store.Verify()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: verified %d object(s)\n", report.LooseObjects)
			return nil
		},
	}
}

func newVerifyCommitCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-commit <commit>",
		Short: "Check the SSH signature of a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			r, _, err := g.openRepo()
			if err != nil {
				return err
			}
			c, err := r.Store.ReadCommit(h)
			if err != nil {
				return err
			}
			pub, err := verifySSHCommitSignature(c)
			if err != nil {
				return fmt.Errorf("verify-commit %s: %w", h.Short(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "good signature from %s key %s\n", pub.Type(), ssh.FingerprintSHA256(pub))
			return nil
		},
	}
}
