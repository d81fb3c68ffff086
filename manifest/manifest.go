// Package manifest handles quill.toml project configuration.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/printer"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "quill.toml"

// Manifest represents a quill.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Build   Build   `toml:"build"`
	Output  Output  `toml:"output"`
	Cache   Cache   `toml:"cache"`

	// Dir is the directory containing the quill.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs      []string `toml:"dirs"`
	Extension string   `toml:"extension"`
}

// Build configures the AST builder.
type Build struct {
	MaxDepth int `toml:"max-depth"`
}

// Output configures how `quill parse` prints trees.
type Output struct {
	Format string `toml:"format"`
}

// Cache configures the program store.
type Cache struct {
	Path string `toml:"path"`
}

// Default returns the manifest used when no quill.toml exists, rooted at dir.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Extension == "" {
		m.Source.Extension = ".qu"
	}
	if !strings.HasPrefix(m.Source.Extension, ".") {
		m.Source.Extension = "." + m.Source.Extension
	}
	if m.Build.MaxDepth == 0 {
		m.Build.MaxDepth = builder.DefaultMaxDepth
	}
	if m.Output.Format == "" {
		m.Output.Format = printer.FormatTree.String()
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".quill", "cache.db")
	}
}

func (m *Manifest) validate(path string) error {
	// Cached programs are decoded under the default nesting bound.
	if m.Build.MaxDepth < 0 || m.Build.MaxDepth > builder.DefaultMaxDepth {
		return fmt.Errorf("%s: build.max-depth must be between 1 and %d, got %d", path, builder.DefaultMaxDepth, m.Build.MaxDepth)
	}
	if _, err := printer.ParseFormat(m.Output.Format); err != nil {
		return fmt.Errorf("%s: output.format: %w", path, err)
	}
	return nil
}

// LoadFile parses the manifest at path. Its directory becomes Dir.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	m.applyDefaults()
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load parses a quill.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from startDir to find a quill.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// CachePath returns the absolute path of the program store.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// BuilderOptions returns the builder configuration from [build].
func (m *Manifest) BuilderOptions() builder.Options {
	return builder.Options{MaxDepth: m.Build.MaxDepth}
}

// OutputFormat returns the parsed [output] format. Load has already
// validated it, so only a hand-built Manifest can yield an error.
func (m *Manifest) OutputFormat() (printer.Format, error) {
	return printer.ParseFormat(m.Output.Format)
}

// SourceFiles walks every source directory and returns the files carrying
// the configured extension, sorted. Missing directories are skipped.
func (m *Manifest) SourceFiles() ([]string, error) {
	var files []string
	for _, root := range m.SourceDirPaths() {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == m.Source.Extension {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
