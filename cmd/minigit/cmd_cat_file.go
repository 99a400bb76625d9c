package main

import (
	"fmt"

	"github.com/odvcencio/minigit/pkg/object"
	"github.com/odvcencio/minigit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatFileCmd(g *globalOptions) *cobra.Command {
	var pretty, showType, showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s) <object>",
		Short: "Print the content, type or size of an object",
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
			objType, payload, err := r.CatFile(h)
			if err != nil {
				return err
			}

			if !showType && !showSize {
				pretty = true
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(payload))
			case pretty && objType == object.TypeTree:
				tr, err := object.UnmarshalTree(payload)
				if err != nil {
					return err
				}
				return repo.FormatTree(out, tr, repo.ViewLong)
			default:
				_, err := out.Write(payload)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content (default)")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the payload size")
	cmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")

	return cmd
}
