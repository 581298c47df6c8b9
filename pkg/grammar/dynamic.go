package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// DynamicLoader loads grammars from shared libraries at runtime. A library
// named libtree-sitter-<lang>.<ext> in the grammar directory is expected
// to export the C symbol tree_sitter_<lang>.
type DynamicLoader struct {
	mu     sync.Mutex
	dir    string
	loaded map[string]*tree_sitter.Language
}

// NewDynamicLoader creates a loader over the given directory.
func NewDynamicLoader(dir string) *DynamicLoader {
	return &DynamicLoader{
		dir:    dir,
		loaded: make(map[string]*tree_sitter.Language),
	}
}

// libExt returns the shared-library extension for the current platform.
func libExt() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	}
	return ".so"
}

// libPath returns where the shared library for a language must live.
func (l *DynamicLoader) libPath(name string) string {
	return filepath.Join(l.dir, "libtree-sitter-"+name+libExt())
}

// Load opens the language's shared library and resolves its grammar
// symbol. Handles stay open for the life of the process; tree-sitter
// keeps raw pointers into the library.
func (l *DynamicLoader) Load(name string) (*tree_sitter.Language, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lang, ok := l.loaded[name]; ok {
		return lang, nil
	}

	path := l.libPath(name)
	if _, err := os.Stat(path); err != nil {
		return nil, &NotFoundError{Name: name}
	}

	symbol := "tree_sitter_" + strings.ReplaceAll(name, "-", "_")
	lang, err := openAndLoadLanguage(path, symbol)
	if err != nil {
		return nil, fmt.Errorf("load grammar %s: %w", name, err)
	}
	l.loaded[name] = lang
	return lang, nil
}

// Available lists the languages with a shared library present in the
// grammar directory.
func (l *DynamicLoader) Available() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		base := e.Name()
		if !strings.HasPrefix(base, "libtree-sitter-") || !strings.HasSuffix(base, libExt()) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(base, "libtree-sitter-"), libExt()))
	}
	return names
}
