package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/minigit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(g *globalOptions) *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree [--name-only] <tree>",
		Short: "List the entries of a tree object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag := ""
			if nameOnly {
				flag = repo.NameOnlyFlag
			}
			// "ls-tree <mode> <tree>": the first word names the view.
			if len(args) == 2 {
				flag = args[0]
				args = args[1:]
			}

			view, err := repo.ParseView(flag)
			if errors.Is(err, repo.ErrUnsupportedView) {
				reportInvalidView(cmd, flag)
				return nil
			}

			h, err := parseHashArg(args[0])
			if err != nil {
				return err
			}
			r, _, err := g.openRepo()
			if err != nil {
				return err
			}
			lines, err := r.ListTree(h, view)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only entry names")

	// An unknown display flag is reported, not treated as a failure.
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if flag, ok := unknownFlagName(err); ok {
			reportInvalidView(cmd, flag)
			return nil
		}
		return err
	})

	return cmd
}

func reportInvalidView(cmd *cobra.Command, flag string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s is invalid\n", flag)
}

// unknownFlagName extracts the offending flag from pflag's unknown-flag
// errors: "unknown flag: --x" and "unknown shorthand flag: 'x' in -x".
func unknownFlagName(err error) (string, bool) {
	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return name, true
	}
	if strings.HasPrefix(msg, "unknown shorthand flag: ") {
		if i := strings.LastIndex(msg, " in "); i >= 0 {
			return msg[i+len(" in "):], true
		}
	}
	return "", false
}
