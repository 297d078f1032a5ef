package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FuzzList creates a directory with a fuzzed name and checks the registry
// reports it exactly when it is a visible template directory.
func FuzzList(f *testing.F) {
	for _, seed := range []string{"lower-third", "clock", ".git", "ünïcödé", "with space", "a.b"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, name string) {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") || len(name) > 200 {
			t.Skip("not a single path segment")
		}

		src := t.TempDir()
		if err := os.Mkdir(filepath.Join(src, name), 0o755); err != nil {
			t.Skip("name not representable on this filesystem")
		}

		reg := New(src)
		names, err := reg.List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}

		want := !strings.HasPrefix(name, ".")
		if got := len(names) == 1 && names[0] == name; got != want {
			t.Errorf("List() = %q for directory %q", names, name)
		}

		ok, err := reg.Contains(name)
		if err != nil {
			t.Fatalf("Contains: %v", err)
		}
		if ok != want {
			t.Errorf("Contains(%q) = %v, want %v", name, ok, want)
		}
	})
}
