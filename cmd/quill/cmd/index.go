package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/store"
)

func newIndexCmd(opts *options) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build every project source file into the program cache",
		Long: `Build every file under the project's source directories and record
the result in the program cache. Files that fail to build are reported and
skipped; the command fails if any did.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadManifest()
			if err != nil {
				return err
			}
			s, err := store.Open(m.CachePath())
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if list {
				recs, err := s.List(ctx)
				if err != nil {
					return err
				}
				for _, rec := range recs {
					fmt.Fprintf(out, "%s  %s  %d\n", rec.ContentHash, rec.Path, rec.Assignments)
				}
				return nil
			}

			files, err := m.SourceFiles()
			if err != nil {
				return err
			}

			b := builder.New(m.BuilderOptions())
			failed := 0
			for _, path := range files {
				prog, err := buildFile(b, path)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				rel, err := filepath.Rel(m.Dir, path)
				if err != nil {
					rel = path
				}
				if _, err := s.Put(ctx, filepath.ToSlash(rel), prog); err != nil {
					return err
				}
				log.Infof("indexed %s", rel)
			}

			fmt.Fprintf(out, "indexed %d of %d files\n", len(files)-failed, len(files))
			if failed > 0 {
				return fmt.Errorf("%d files failed to build", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list cached programs instead of indexing")
	return cmd
}

func newFindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "find HASH",
		Short: "List cached programs with the given content hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadManifest()
			if err != nil {
				return err
			}
			s, err := store.Open(m.CachePath())
			if err != nil {
				return err
			}
			defer s.Close()

			recs, err := s.FindByHash(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no cached program has hash %s", args[0])
			}
			if err != nil {
				return err
			}
			for _, rec := range recs {
				fmt.Fprintln(cmd.OutOrStdout(), rec.Path)
			}
			return nil
		},
	}
}
