package submission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/musuliman/codesim/pkg/grammar"
	"github.com/musuliman/codesim/pkg/tokenize"
)

const sample = `package main

func greet(name string) string {
	msg := "hello " + name
	return msg
}
`

func layoutSubmissions(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, sub := range []string{"alice", "bob"} {
		dir := filepath.Join(root, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(sample), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// An ignored directory must not become a submission.
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	return root
}

func newTestLoader() *Loader {
	return NewLoader(tokenize.New(grammar.NewCompositeLoader("")), nil)
}

func TestLoadAll(t *testing.T) {
	root := layoutSubmissions(t)

	subs, err := newTestLoader().LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	if subs[0].Name != "alice" || subs[1].Name != "bob" {
		t.Fatalf("submissions not sorted by name: %s, %s", subs[0].Name, subs[1].Name)
	}
	for _, sub := range subs {
		if !sub.Tokens.HasPivot() {
			t.Fatalf("submission %s has no pivot", sub.Name)
		}
		if sub.TokenCount() == 0 {
			t.Fatalf("submission %s has no tokens", sub.Name)
		}
	}
}

func TestLoadSkipsIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "vendor"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"main.go":       sample,
		"vendor/dep.go": sample,
		"notes.txt":     "not code",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	sub, err := newTestLoader().Load("solo", root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(sub.Files) != 1 || filepath.Base(sub.Files[0]) != "main.go" {
		t.Fatalf("expected only main.go, got %v", sub.Files)
	}
}

func TestLoadSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sub, err := newTestLoader().Load("single", path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(sub.Files) != 1 {
		t.Fatalf("expected the file itself, got %v", sub.Files)
	}
}

func TestIdenticalSubmissionsFullyMatchAfterLoad(t *testing.T) {
	root := layoutSubmissions(t)

	loader := newTestLoader()
	subs, err := loader.LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}

	ta, tb := subs[0].Tokens.Types(), subs[1].Tokens.Types()
	if len(ta) != len(tb) {
		t.Fatalf("identical submissions tokenized differently: %d vs %d tokens", len(ta), len(tb))
	}
	for i := range ta {
		if ta[i] != tb[i] {
			t.Fatalf("identical submissions diverge at token %d", i)
		}
	}
}
