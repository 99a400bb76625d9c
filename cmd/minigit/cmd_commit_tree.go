package main

import (
	"fmt"

	"github.com/odvcencio/minigit/pkg/object"
	"github.com/odvcencio/minigit/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultKeySentinel is the value -S takes when given without a key path.
const defaultKeySentinel = "\x00default"

func newCommitTreeCmd(g *globalOptions) *cobra.Command {
	var message string
	var parent string
	var author string
	var date int64
	var signKey string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> -m <message> [-p <parent>]",
		Short: "Create a commit object from a tree",
		Long: `Create a commit object from a tree and print its id. No branch is moved.

The author is taken from --author, $MINIGIT_AUTHOR, [user] in the
configuration, or $USER, in that order. The timestamp is taken from --date,
$MINIGIT_TIMESTAMP, or the current time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}
			tree, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			var parentHash object.Hash
			if parent != "" {
				if parentHash, err = parseHashArg(parent); err != nil {
					return err
				}
			}

			r, cfg, err := g.openRepo()
			if err != nil {
				return err
			}
			when, err := resolveTimestamp(date)
			if err != nil {
				return err
			}
			sig := object.Signature{
				Identity: resolveIdentity(author, cfg),
				When:     when,
				Timezone: cfg.Commit.Timezone,
			}

			req := repo.CommitRequest{
				Tree:    tree,
				Parent:  parentHash,
				Message: message,
				Author:  sig,
			}
			if cmd.Flags().Changed("gpg-sign") {
				keyPath := signKey
				if keyPath == defaultKeySentinel {
					keyPath = cfg.Signing.Key
				}
				signer, resolved, err := newSSHCommitSigner(keyPath)
				if err != nil {
					return err
				}
				g.logger.Debug("signing commit", zap.String("key", resolved))
				req.Signer = signer
			}

			h, err := r.BuildCommit(req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent commit id")
	cmd.Flags().StringVar(&author, "author", "", "override author identity, e.g. \"Name <email>\"")
	cmd.Flags().Int64Var(&date, "date", 0, "override the commit time (unix seconds)")
	cmd.Flags().StringVarP(&signKey, "gpg-sign", "S", "", "sign with an SSH private key (default: [signing] key or ~/.ssh/id_*)")
	cmd.Flags().Lookup("gpg-sign").NoOptDefVal = defaultKeySentinel

	return cmd
}
