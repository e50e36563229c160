package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
}

func walkRel(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	var rels []string
	absRoot, _ := filepath.Abs(root)
	for _, f := range files {
		rel, err := filepath.Rel(absRoot, f.Path)
		if err != nil {
			t.Fatal(err)
		}
		rels = append(rels, filepath.ToSlash(rel))
	}
	sort.Strings(rels)
	return rels
}

func TestWalkDefaultIncludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "readme.md")
	writeFile(t, root, "notes.txt")
	writeFile(t, root, "docs/deep/guide.md")
	writeFile(t, root, "image.png")
	writeFile(t, root, "main.go")

	got := walkRel(t, NewWalker(nil, nil), root)
	want := []string{"docs/deep/guide.md", "notes.txt", "readme.md"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestWalkExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt")
	writeFile(t, root, "node_modules/pkg/readme.md")
	writeFile(t, root, ".git/description.txt")

	w := NewWalker(nil, []string{"**/node_modules/**", "**/.git/**"})
	got := walkRel(t, w, root)
	if len(got) != 1 || got[0] != "keep.txt" {
		t.Errorf("excludes not applied: %v", got)
	}
}

func TestWalkCustomIncludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rst")
	writeFile(t, root, "b.txt")

	w := NewWalker([]string{"**/*.rst"}, nil)
	got := walkRel(t, w, root)
	if len(got) != 1 || got[0] != "a.rst" {
		t.Errorf("custom includes not applied: %v", got)
	}
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "f.txt")

	content, err := ReadFile(filepath.Join(root, "f.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if content != "content" {
		t.Errorf("got %q", content)
	}

	if _, err := ReadFile(filepath.Join(root, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
