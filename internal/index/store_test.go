package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heefoo/codesight/internal/parser"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestIndexCountsAndLanguages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "def hello():\n    pass\n")
	writeFile(t, dir, "app.js", "function greet() {\n  return 1;\n}\n")
	writeFile(t, dir, "notes.txt", "not code\n")
	writeFile(t, dir, "README.md", "# readme\n")

	store := NewStore(parser.NewParser())
	idx, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	if idx.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", idx.TotalFiles)
	}
	if idx.SupportedFiles != 2 {
		t.Errorf("SupportedFiles = %d, want 2", idx.SupportedFiles)
	}
	if len(idx.Languages) != 2 || idx.Languages[0] != "javascript" || idx.Languages[1] != "python" {
		t.Errorf("Languages = %v, want [javascript python]", idx.Languages)
	}
	if len(idx.Elements) == 0 {
		t.Fatal("expected extracted elements")
	}
}

func TestIndexSkipsNoiseDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "def top():\n    pass\n")
	writeFile(t, dir, filepath.Join("node_modules", "lib.js"), "function hidden() {}\n")
	writeFile(t, dir, filepath.Join(".git", "hook.py"), "def hook():\n    pass\n")

	store := NewStore(parser.NewParser())
	idx, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	if idx.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1 (noise dirs not skipped)", idx.TotalFiles)
	}
	for _, el := range idx.Elements {
		if el.Name == "hidden" || el.Name == "hook" {
			t.Errorf("element %q extracted from excluded directory", el.Name)
		}
	}
}

func TestIndexIdempotentProjectID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def a():\n    pass\n")

	store := NewStore(parser.NewParser())
	first, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("first Index failed: %v", err)
	}

	writeFile(t, dir, "b.py", "def b():\n    pass\n")
	second, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Index failed: %v", err)
	}

	if first.ProjectID != second.ProjectID {
		t.Errorf("project id changed on re-index: %s vs %s", first.ProjectID, second.ProjectID)
	}
	if got := store.Get(first.ProjectID); got.TotalFiles != 2 {
		t.Errorf("re-index did not replace stored entry: TotalFiles = %d, want 2", got.TotalFiles)
	}
	if len(store.List()) != 1 {
		t.Errorf("expected a single stored project, got %d", len(store.List()))
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "svc.py", "def HandleRequest(req):\n    pass\n\ndef other():\n    pass\n")

	store := NewStore(parser.NewParser())
	idx, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	matches := store.Search(idx.ProjectID, "handlereq")
	if len(matches) != 1 || matches[0].Name != "HandleRequest" {
		t.Errorf("Search(handlereq) = %v, want single HandleRequest", matches)
	}

	if got := store.Search("nonexistent-id", "handle"); len(got) != 0 {
		t.Errorf("unknown project id returned matches: %v", got)
	}
}

func TestSnippetFor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "m.py", "line1\nline2\nline3\nline4\n")

	store := NewStore(parser.NewParser())
	idx, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	if got := store.SnippetFor(idx.ProjectID, "m.py", 2, 3); got != "line2\nline3" {
		t.Errorf("SnippetFor(2,3) = %q", got)
	}
	if got := store.SnippetFor(idx.ProjectID, "m.py", 1, 99); got == "" {
		t.Error("out-of-range end line should clamp, not yield empty")
	}
	if got := store.SnippetFor(idx.ProjectID, "missing.py", 1, 2); got != "" {
		t.Errorf("unknown file yielded %q", got)
	}
}

func TestIndexReplacesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.py", "def fn():\n    x = \"a\xffb\"\n")

	store := NewStore(parser.NewParser())
	idx, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	// Undecodable bytes become the replacement rune; dropping them instead
	// would merge the adjacent tokens into "ab".
	snippet := store.SnippetFor(idx.ProjectID, "bad.py", 2, 2)
	if !strings.Contains(snippet, "a�b") {
		t.Errorf("snippet = %q, want the invalid byte replaced in place", snippet)
	}
}

func TestRemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def a():\n    pass\n")

	store := NewStore(parser.NewParser())
	idx, err := store.Index(context.Background(), dir)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	store.Remove(idx.ProjectID)
	if store.Get(idx.ProjectID) != nil {
		t.Error("Remove left the project behind")
	}

	if _, err := store.Index(context.Background(), dir); err != nil {
		t.Fatalf("re-Index failed: %v", err)
	}
	store.Clear()
	if len(store.List()) != 0 {
		t.Error("Clear left projects behind")
	}
}
