package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/hash"
)

func newHashCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hash FILE...",
		Short: "Print the structural content hash of each file",
		Long: `Print the structural content hash of each file.

The hash covers the syntax tree only, so reformatting a file or editing
its comments leaves the hash unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadManifest()
			if err != nil {
				return err
			}
			b := builder.New(m.BuilderOptions())

			for _, path := range args {
				prog, err := buildFile(b, path)
				if err != nil {
					return err
				}
				sum, err := hash.SumHex(prog)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}
