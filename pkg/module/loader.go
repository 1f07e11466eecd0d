package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/l3aro/go-taint-trace/internal/log"
	"github.com/l3aro/go-taint-trace/pkg/cache"
	"github.com/l3aro/go-taint-trace/pkg/parser"
)

// DefaultCacheSize is the number of parsed modules a Loader keeps.
const DefaultCacheSize = 512

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// CacheSize bounds the number of cached modules. 0 selects
	// DefaultCacheSize.
	CacheSize int
	Logger    log.Logger
}

// Loader parses files into modules. Parsed modules are cached by absolute
// path and reused until the file's modification time or size changes. A
// Loader is safe for concurrent use; concurrent loads of one file share a
// single parse.
type Loader struct {
	parser  *parser.Parser
	modules *cache.LRU[*Module]
	group   singleflight.Group
	log     log.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) *Loader {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Loader{
		parser: parser.New(),
		modules: cache.New(cache.Options[*Module]{
			MaxEntries: size,
			Sizer:      func(m *Module) int { return m.Size() },
		}),
		log: logger,
	}
}

// Load returns the module for path, parsing it when the cached copy is
// missing or out of date.
func (l *Loader) Load(ctx context.Context, path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	stamp, err := cache.StampOf(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, err
	}
	if m, err := l.modules.Lookup(abs, stamp); err == nil {
		return m, nil
	}

	// The parse is shared by every caller waiting on abs, so it must not
	// fail because the first caller went away.
	parseCtx := context.WithoutCancel(ctx)
	v, err, _ := l.group.Do(abs, func() (interface{}, error) {
		src, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", abs, err)
		}
		d, ok := parser.DialectFor(abs)
		if !ok {
			return nil, fmt.Errorf("%w: %s", parser.ErrUnsupported, abs)
		}
		m, err := l.parse(parseCtx, abs, d, src)
		if err != nil {
			return nil, err
		}
		l.modules.SetStamped(abs, m, stamp)
		l.log.Debug("parsed module", "path", abs, "bytes", len(src))
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Module), nil
}

// LoadSource parses src without caching it. path may be empty when the
// source has no file, in which case relative imports cannot be followed.
func (l *Loader) LoadSource(ctx context.Context, path string, d parser.Dialect, src []byte) (*Module, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("getting absolute path: %w", err)
		}
		path = abs
	}
	return l.parse(ctx, path, d, src)
}

func (l *Loader) parse(ctx context.Context, path string, d parser.Dialect, src []byte) (*Module, error) {
	prog, err := l.parser.ParseDialect(ctx, d, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return New(path, d, src, prog), nil
}

// Stats reports module cache usage.
func (l *Loader) Stats() cache.Stats {
	return l.modules.Stats()
}
