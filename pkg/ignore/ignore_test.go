package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinDefaults(t *testing.T) {
	m := NewFromDefaults()

	dirs := []string{".git", "node_modules", "vendor", "target", "__pycache__", "build"}
	for _, d := range dirs {
		if !m.ShouldIgnore(d, true) {
			t.Errorf("directory %q should be ignored by defaults", d)
		}
	}

	files := []string{"app.min.js", "api.pb.go", "types_generated.go"}
	for _, f := range files {
		if !m.ShouldIgnore(f, false) {
			t.Errorf("file %q should be ignored by defaults", f)
		}
	}

	kept := []string{"main.go", "src/lexer.py", "lib/parse.rs"}
	for _, f := range kept {
		if m.ShouldIgnore(f, false) {
			t.Errorf("file %q should not be ignored", f)
		}
	}
}

func TestNestedDirectoryRule(t *testing.T) {
	m := NewFromDefaults()
	if !m.ShouldIgnore("sub/vendor/lib.go", false) {
		t.Error("files under an ignored directory should be ignored")
	}
	if !m.ShouldIgnore("a/b/node_modules", true) {
		t.Error("nested ignored directory should match by segment")
	}
}

func TestLoadProjectFileWithNegation(t *testing.T) {
	root := t.TempDir()
	content := "# project rules\n*.tmpl\n!keep.tmpl\nscratch/\n"
	if err := os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}

	m, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !m.ShouldIgnore("page.tmpl", false) {
		t.Error("*.tmpl should be ignored")
	}
	if m.ShouldIgnore("keep.tmpl", false) {
		t.Error("negation should rescue keep.tmpl")
	}
	if !m.ShouldIgnore("scratch", true) {
		t.Error("scratch/ should be ignored")
	}
	if !m.ShouldIgnore("vendor", true) {
		t.Error("defaults should still apply with a project file")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	m, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !m.ShouldIgnore(".git", true) {
		t.Error("defaults missing when no ignore file exists")
	}
}
