package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/server"
)

func newLspCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadManifest()
			if err != nil {
				return err
			}
			return server.NewLSP(builder.New(m.BuilderOptions()), Version).Run()
		},
	}
}
