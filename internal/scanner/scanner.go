// Package scanner walks a project tree and collects the JavaScript and
// TypeScript sources gtt can analyze. It respects .gttignore files with
// gitignore-style patterns and configured exclude globs.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/parser"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Language string // Dialect name derived from the extension
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	FollowSymlinks  bool     // Follow symlinks (within root only)
	DefaultExcludes []string // Directory names that are never entered
	IgnoreFileName  string   // Name of the ignore file (default: .gttignore)
	Extensions      []string // Accepted extensions, defaults to every parser dialect
	Exclude         []string // Extra ignore patterns applied before .gttignore files
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		FollowSymlinks: false,
		IgnoreFileName: ".gttignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"dist",
			"build",
			"coverage",
			".next",
			".nuxt",
			".cache",
			".idea",
			".vscode",
			"vendor",
			"bower_components",
			".hg",
			".svn",
		},
		Extensions: parser.Extensions(),
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts       Options
	extensions map[string]bool
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = parser.Extensions()
	}
	s := &Scanner{opts: opts, extensions: make(map[string]bool, len(exts))}
	for _, ext := range exts {
		s.extensions[strings.ToLower(ext)] = true
	}
	return s
}

// Scan recursively scans the directory at root and returns the matching
// sources sorted by relative path.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	patterns := make([]IgnorePattern, 0, len(s.opts.Exclude))
	for _, raw := range s.opts.Exclude {
		p, err := ParseIgnorePattern(raw)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	rootPatterns, err := s.loadIgnorePatterns(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}
	patterns = append(patterns, rootPatterns...)

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the walk continues
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || matchesIgnorePatterns(relSlash+"/", patterns) {
				return filepath.SkipDir
			}
			if nested, err := s.loadIgnorePatterns(path); err == nil && len(nested) > 0 {
				for _, p := range nested {
					patterns = append(patterns, p.under(relSlash))
				}
			}
			return nil
		}

		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		dialect, ok := parser.DialectFor(path)
		if !ok {
			return nil
		}
		if matchesIgnorePatterns(relSlash, patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = s.resolveSymlink(absRoot, path); err != nil || info == nil {
				return nil
			}
		}

		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: path,
			Language: dialect.String(),
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// resolveSymlink returns the target info when following is enabled and the
// target is a regular file inside root.
func (s *Scanner) resolveSymlink(absRoot, path string) (os.FileInfo, error) {
	if !s.opts.FollowSymlinks {
		return nil, nil
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	realAbs, err := filepath.Abs(realPath)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(realAbs, absRoot+string(filepath.Separator)) {
		return nil, nil
	}
	info, err := os.Stat(realAbs)
	if err != nil || info.IsDir() {
		return nil, err
	}
	return info, nil
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns loads ignore patterns from the ignore file in dir.
func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	if s.opts.IgnoreFileName == "" {
		return nil, nil
	}
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ParseIgnorePattern(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, sc.Err()
}

// under scopes a pattern read from a nested ignore file to its directory.
func (p IgnorePattern) under(dir string) IgnorePattern {
	scoped := p
	scoped.scope = dir + "/"
	return scoped
}

// matchesIgnorePatterns applies patterns in order so later negations can
// re-include earlier matches.
func matchesIgnorePatterns(relPath string, patterns []IgnorePattern) bool {
	ignored := false
	for _, pattern := range patterns {
		path := relPath
		if pattern.scope != "" {
			if !strings.HasPrefix(relPath, pattern.scope) {
				continue
			}
			path = strings.TrimPrefix(relPath, pattern.scope)
		}
		isDir := strings.HasSuffix(path, "/")
		if pattern.match(strings.TrimSuffix(path, "/"), isDir) {
			ignored = !pattern.IsNegation()
		}
	}
	return ignored
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}

// ScanWithOptions scans a directory with custom options.
func ScanWithOptions(root string, opts Options) ([]FileInfo, error) {
	return New(opts).Scan(root)
}
