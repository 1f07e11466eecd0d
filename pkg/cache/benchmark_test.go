package cache

import (
	"fmt"
	"testing"
)

func BenchmarkLRUGet(b *testing.B) {
	c := New(Options[string]{MaxEntries: 10000})
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("/src/file%d.ts", i), "./file.ts")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("/src/file999.ts")
	}
}

func BenchmarkLRULookup(b *testing.B) {
	c := New(Options[string]{MaxEntries: 10000})
	stamp := Stamp{ModTime: 1, Size: 1}
	c.SetStamped("/src/index.ts", "parsed", stamp)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Lookup("/src/index.ts", stamp)
	}
}
