package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chazu/quill/format"
)

// errNeedsFormatting is returned by `fmt --check` when any file would change.
var errNeedsFormatting = errors.New("some files need formatting")

func newFmtCmd(opts *options) *cobra.Command {
	var write, check bool

	cmd := &cobra.Command{
		Use:   "fmt FILE...",
		Short: "Format source files in canonical layout",
		Long: `Format source files in canonical layout.

Directories are searched recursively for files with the project's source
extension. Without -w or --check the formatted source is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && check {
				return errors.New("-w and --check are mutually exclusive")
			}
			m, err := opts.loadManifest()
			if err != nil {
				return err
			}
			files, err := collectSourceFiles(args, m.Source.Extension)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			anyChanged := false
			for _, path := range files {
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				original := string(content)
				formatted, err := format.Source(original)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				switch {
				case check:
					if formatted != original {
						fmt.Fprintf(out, "would format: %s\n", path)
						anyChanged = true
					}
				case write:
					if formatted == original {
						continue
					}
					if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
						return err
					}
					fmt.Fprintf(out, "formatted: %s\n", path)
				default:
					fmt.Fprint(out, formatted)
				}
			}

			if check && anyChanged {
				return errNeedsFormatting
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to the source file instead of stdout")
	cmd.Flags().BoolVar(&check, "check", false, "exit non-zero if any file needs formatting")
	return cmd
}

// collectSourceFiles resolves paths to a flat, sorted list of files. Plain
// files are taken as given; directories contribute files with extension ext.
func collectSourceFiles(paths []string, ext string) ([]string, error) {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			result = append(result, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ext {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
		sort.Strings(found)
		result = append(result, found...)
	}
	return result, nil
}
