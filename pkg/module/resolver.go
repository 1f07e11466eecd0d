package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/cache"
)

var (
	// ErrNotFound is returned when a relative import matches no file.
	ErrNotFound = errors.New("module not found")
	// ErrPackageImport is returned for bare specifiers such as "react" or
	// "node:fs", which name packages rather than project files.
	ErrPackageImport = errors.New("package import")
)

// DefaultResolveExtensions is the probe order for extensionless specifiers.
var DefaultResolveExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Extensions []string
	// CacheSize bounds the number of remembered resolutions. 0 means
	// unlimited.
	CacheSize int
}

// Resolver maps import specifiers to absolute file paths. Results are
// cached per importing directory and can be persisted between runs.
type Resolver struct {
	exts  []string
	cache *cache.LRU[string]
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultResolveExtensions
	}
	return &Resolver{
		exts:  exts,
		cache: cache.New(cache.Options[string]{MaxEntries: opts.CacheSize}),
	}
}

// IsPackage reports whether specifier names a package instead of a path.
func IsPackage(specifier string) bool {
	return !strings.HasPrefix(specifier, ".") && !filepath.IsAbs(specifier) && !strings.HasPrefix(specifier, "/")
}

// Resolve returns the absolute path of the file that specifier, imported
// from the file fromFile, refers to.
func (r *Resolver) Resolve(fromFile, specifier string) (string, error) {
	if IsPackage(specifier) {
		return "", fmt.Errorf("%w: %s", ErrPackageImport, specifier)
	}

	var base string
	if filepath.IsAbs(specifier) {
		base = filepath.Clean(specifier)
	} else {
		base = filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(specifier))
	}

	key := filepath.Dir(fromFile) + "\x00" + specifier
	if path, ok := r.cache.Get(key); ok {
		if isFile(path) {
			return path, nil
		}
		r.cache.Delete(key)
	}

	path, ok := r.probe(base)
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrNotFound, specifier, fromFile)
	}
	if stamp, err := cache.StampOf(path); err == nil {
		r.cache.SetStamped(key, path, stamp)
	}
	return path, nil
}

// probe tries base as written, with each extension appended, with a
// compiled JavaScript extension swapped for its TypeScript source, and as a
// directory index.
func (r *Resolver) probe(base string) (string, bool) {
	if isFile(base) {
		return base, true
	}
	for _, ext := range r.exts {
		if isFile(base + ext) {
			return base + ext, true
		}
	}
	switch filepath.Ext(base) {
	case ".js", ".jsx", ".mjs", ".cjs":
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		for _, ext := range []string{".ts", ".tsx", ".mts", ".cts"} {
			if isFile(stem + ext) {
				return stem + ext, true
			}
		}
	}
	for _, ext := range r.exts {
		index := filepath.Join(base, "index"+ext)
		if isFile(index) {
			return index, true
		}
	}
	return "", false
}

// Save persists the resolution cache to path.
func (r *Resolver) Save(path string) error {
	return r.cache.SaveFile(path)
}

// Load restores a resolution cache written by Save. Entries whose target
// file disappeared are dropped on use.
func (r *Resolver) Load(path string) error {
	return r.cache.LoadFile(path)
}

// Stats reports resolution cache usage.
func (r *Resolver) Stats() cache.Stats {
	return r.cache.Stats()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
