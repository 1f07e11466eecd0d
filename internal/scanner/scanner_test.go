package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func paths(results []FileInfo) map[string]FileInfo {
	found := make(map[string]FileInfo)
	for _, f := range results {
		found[f.Path] = f
	}
	return found
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"index.js":                 "console.log('hi')",
		"src/app.ts":               "export const a = 1",
		"src/view.tsx":             "export const V = () => <div/>",
		"src/legacy.cjs":           "module.exports = {}",
		"README.md":                "# Test",
		"main.go":                  "package main",
		".hidden/file.js":          "hidden",
		"node_modules/pkg/main.js": "module.exports = {}",
		"dist/bundle.js":           "bundle",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := map[string]string{
		"index.js":       "javascript",
		"src/app.ts":     "typescript",
		"src/view.tsx":   "tsx",
		"src/legacy.cjs": "javascript",
	}
	found := paths(results)
	if len(found) != len(expected) {
		t.Errorf("Expected %d files, got %d: %v", len(expected), len(found), results)
	}
	for path, lang := range expected {
		f, ok := found[path]
		if !ok {
			t.Errorf("Expected to find %s, but it wasn't found", path)
			continue
		}
		if f.Language != lang {
			t.Errorf("Expected %s to have language %s, got %s", path, lang, f.Language)
		}
		if f.Size == 0 {
			t.Errorf("Expected %s to have a size", path)
		}
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].Path > results[i].Path {
			t.Errorf("Results not sorted: %s before %s", results[i-1].Path, results[i].Path)
		}
	}
}

func TestScannerWithGttignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gttignore": `# Ignore test files
*.test.js
# Ignore fixtures
fixtures/
# Ignore specific file
secret.js
!keep.test.js
`,
		"app.js":             "x",
		"app.test.js":        "x",
		"keep.test.js":       "x",
		"fixtures/input.js":  "x",
		"secret.js":          "x",
		"public/index.js":    "x",
		"lib/.gttignore":     "generated.js\n",
		"lib/generated.js":   "x",
		"lib/handwritten.js": "x",
		"other/generated.js": "x",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	found := paths(results)

	for _, expected := range []string{"app.js", "keep.test.js", "public/index.js", "lib/handwritten.js", "other/generated.js"} {
		if _, ok := found[expected]; !ok {
			t.Errorf("Expected to find %s", expected)
		}
	}
	for _, ignored := range []string{"app.test.js", "fixtures/input.js", "secret.js", "lib/generated.js"} {
		if _, ok := found[ignored]; ok {
			t.Errorf("Expected %s to be ignored", ignored)
		}
	}
}

func TestScannerExcludeOption(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.js":           "x",
		"a.min.js":       "x",
		"types/a.d.ts":   "x",
		"types/index.ts": "x",
		"generated/z.ts": "x",
	})

	opts := DefaultOptions()
	opts.Exclude = []string{"**/*.min.js", "*.d.ts", "/generated/"}
	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	found := paths(results)
	if len(found) != 2 {
		t.Errorf("Expected 2 files, got %v", results)
	}
	for _, expected := range []string{"a.js", "types/index.ts"} {
		if _, ok := found[expected]; !ok {
			t.Errorf("Expected to find %s", expected)
		}
	}
}

func TestScannerExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.js": "x",
		"b.ts": "x",
	})

	opts := DefaultOptions()
	opts.Extensions = []string{".ts"}
	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 1 || results[0].Path != "b.ts" {
		t.Errorf("Expected only b.ts, got %v", results)
	}
}

func TestScannerSkipHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"visible.js":      "x",
		".hidden/file.js": "x",
		".eslintrc.js":    "x",
	})

	opts := DefaultOptions()
	results, _ := New(opts).Scan(tmpDir)
	for _, f := range results {
		if f.Path == ".hidden/file.js" || f.Path == ".eslintrc.js" {
			t.Error("Should skip hidden files when SkipHidden=true")
		}
	}

	opts.SkipHidden = false
	results, _ = New(opts).Scan(tmpDir)
	if _, ok := paths(results)[".eslintrc.js"]; !ok {
		t.Error("Should find .eslintrc.js when SkipHidden=false")
	}
}

func TestIgnorePattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		match   bool
	}{
		// Simple patterns
		{"*.js", "file.js", true},
		{"*.js", "dir/file.js", true},
		{"*.js", "file.ts", false},
		{"build/", "build/file.js", true},
		{"build/", "other/build/file.js", true},
		{"build/", "builder.js", false},
		{"secret.js", "deep/secret.js", true},

		// Absolute patterns
		{"/build/", "build/file.js", true},
		{"/build/", "src/build/file.js", false},

		// Glob patterns
		{"*.test.js", "app.test.js", true},
		{"*.test.js", "deep/app.test.js", true},
		{"src/*.js", "src/app.js", true},
		{"src/*.js", "src/deep/app.js", false},

		// Double asterisk
		{"**/test/**", "test/file.js", true},
		{"**/test/**", "src/test/file.js", true},
		{"**/test/**", "src/deep/test/file.js", true},
		{"**/test/**", "testing/file.js", false},

		// Question mark
		{"file?.js", "file1.js", true},
		{"file?.js", "file12.js", false},

		// Negation still matches, the caller flips the result
		{"!*.js", "file.js", true},
	}

	for _, tt := range tests {
		pattern, err := ParseIgnorePattern(tt.pattern)
		if err != nil {
			t.Fatalf("ParseIgnorePattern(%q) failed: %v", tt.pattern, err)
		}
		if got := pattern.Match(tt.path); got != tt.match {
			t.Errorf("Pattern %q matching %q: got %v, want %v", tt.pattern, tt.path, got, tt.match)
		}
	}
}

func TestMatchesIgnorePatternsOrder(t *testing.T) {
	patterns := []IgnorePattern{
		MustParseIgnorePattern("*.js"),
		MustParseIgnorePattern("!keep.js"),
	}
	if !matchesIgnorePatterns("drop.js", patterns) {
		t.Error("drop.js should be ignored")
	}
	if matchesIgnorePatterns("keep.js", patterns) {
		t.Error("keep.js should be re-included by the negation")
	}
}
