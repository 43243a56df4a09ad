// Package scanner discovers the source files a scan will fingerprint.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pastiche-dev/pastiche/pkg/config"
	"github.com/pastiche-dev/pastiche/pkg/lexer"
)

// Scanner finds lexable source files under the given paths, honoring the
// configured exclusions and language restriction.
type Scanner struct {
	cfg   *config.Config
	langs map[string]bool
}

// New creates a scanner for the given configuration.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var langs map[string]bool
	if len(cfg.Languages) > 0 {
		langs = make(map[string]bool, len(cfg.Languages))
		for _, l := range cfg.Languages {
			langs[strings.ToLower(l)] = true
		}
	}
	return &Scanner{cfg: cfg, langs: langs}
}

// ScanPaths collects files from a mix of file and directory paths. The
// result is sorted and de-duplicated so downstream processing is
// deterministic regardless of argument order.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := filepath.Glob(path) // tolerate shell-unexpanded globs
		if err != nil || len(info) == 0 {
			info = []string{path}
		}
		for _, p := range info {
			found, err := s.scanOne(p)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) scanOne(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path != root && s.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.excludedFile(rel, path) {
			return nil
		}
		if s.include(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (s *Scanner) excludedDir(name string) bool {
	for _, dir := range s.cfg.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

func (s *Scanner) excludedFile(rel, path string) bool {
	ext := filepath.Ext(path)
	for _, excludeExt := range s.cfg.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pattern := range s.cfg.Exclude.Patterns {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) include(path string) bool {
	lang := lexer.Language(path)
	if lang == "" {
		return false
	}
	if s.langs != nil && !s.langs[lang] {
		return false
	}
	return true
}
