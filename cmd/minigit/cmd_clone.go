package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotImplemented = errors.New("not implemented")

// Fetching from a remote is a separate transport layer that this tool does
// not provide; the command exists so the surface matches git's.
func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <remote-url> [directory]",
		Short: "Clone a remote repository (not supported)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("clone %s: %w", args[0], errNotImplemented)
		},
	}
}
