package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern     string // Original pattern
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
	isAbsolute  bool   // True if pattern starts with /
	scope       string // Directory prefix for patterns from nested ignore files
	matcher     glob.Glob
}

// ParseIgnorePattern parses a gitignore-style pattern string. It returns an
// error when the glob part of the pattern does not compile.
func ParseIgnorePattern(pattern string) (IgnorePattern, error) {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.isAbsolute = true
		pattern = pattern[1:]
	}
	// Leading ** is implied by matching at every depth.
	for strings.HasPrefix(pattern, "**/") {
		pattern = pattern[3:]
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return IgnorePattern{}, fmt.Errorf("invalid ignore pattern %q: %w", p.pattern, err)
	}
	p.matcher = g
	return p, nil
}

// MustParseIgnorePattern is like ParseIgnorePattern but panics on error.
func MustParseIgnorePattern(pattern string) IgnorePattern {
	p, err := ParseIgnorePattern(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether path, or one of its parent directories, matches the
// pattern. Negation is left to the caller.
func (p IgnorePattern) Match(path string) bool {
	return p.match(path, false)
}

// match also lets directory patterns match path itself when it names a
// directory.
func (p IgnorePattern) match(path string, isDir bool) bool {
	segments := strings.Split(filepath.ToSlash(path), "/")

	starts := len(segments)
	if p.isAbsolute {
		starts = 1
	}
	for i := 0; i < starts; i++ {
		for j := i + 1; j <= len(segments); j++ {
			// Directory patterns only match parents of the path.
			if p.isDirectory && !isDir && j == len(segments) {
				break
			}
			if p.matcher.Match(strings.Join(segments[i:j], "/")) {
				return true
			}
		}
	}
	return false
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// String returns the pattern as written.
func (p IgnorePattern) String() string {
	return p.pattern
}
