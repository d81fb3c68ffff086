// Package cmd implements the quill command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/quill/manifest"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("quill")

// options holds the persistent flags shared by every subcommand.
type options struct {
	cfgFile   string
	verbosity int
}

// NewRootCmd assembles the quill command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "quill - parser and tooling for the quill expression language",
		Long: `quill turns source files into typed syntax trees.

Commands:
  parse    - build a file and print its AST
  fmt      - rewrite files in canonical layout
  hash     - print structural content hashes
  index    - build every project source into the program cache
  find     - look up cached programs by content hash
  lsp      - run the language server on stdio`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(opts.verbosity, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "project file (default: nearest quill.toml)")
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(
		newParseCmd(opts),
		newFmtCmd(opts),
		newHashCmd(opts),
		newIndexCmd(opts),
		newFindCmd(opts),
		newLspCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the quill command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadManifest returns the --config manifest, the nearest quill.toml above
// the working directory, or defaults rooted at the working directory.
func (o *options) loadManifest() (*manifest.Manifest, error) {
	if o.cfgFile != "" {
		return manifest.LoadFile(o.cfgFile)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	m, err := manifest.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		log.Debugf("no %s found, using defaults", manifest.FileName)
		return manifest.Default(wd), nil
	}
	log.Debugf("using %s", m.Dir)
	return m, nil
}
