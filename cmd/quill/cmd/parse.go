package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/printer"
)

func newParseCmd(opts *options) *cobra.Command {
	var (
		formatName string
		maxDepth   int
	)

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Build FILE and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadManifest()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("format") {
				formatName = m.Output.Format
			}
			format, err := printer.ParseFormat(formatName)
			if err != nil {
				return err
			}

			bopts := m.BuilderOptions()
			if cmd.Flags().Changed("max-depth") {
				bopts.MaxDepth = maxDepth
			}

			prog, err := buildFile(builder.New(bopts), args[0])
			if err != nil {
				return err
			}
			return printer.Write(cmd.OutOrStdout(), prog, format)
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "tree", "output format: tree, json or yaml")
	cmd.Flags().IntVar(&maxDepth, "max-depth", builder.DefaultMaxDepth, "maximum expression nesting depth")
	return cmd
}

// buildFile reads and builds path, prefixing any error with the path.
func buildFile(b *builder.Builder, path string) (*ast.Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := b.Build(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}
