// Package testutil provides shared test helpers for laying out knowledge-base trees.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/docwarden/internal/storage"
)

// WriteTree creates a temporary project root holding files (slash-separated
// relative path → content) and returns its absolute path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// TestStore creates a temporary tree and a storage.Provider rooted at it.
func TestStore(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := WriteTree(t, files)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// ReadFile returns the content of rel under root.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Doc renders a frontmatter document from ordered key/value lines and a body.
func Doc(body string, lines ...string) string {
	s := "---\n"
	for _, l := range lines {
		s += l + "\n"
	}
	return s + "---\n" + body
}
