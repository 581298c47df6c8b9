// Package grammar loads tree-sitter language grammars for the token
// frontend. Nine grammars are compiled into the binary via CGO; anything
// else can be loaded from a shared library dropped into the grammar
// directory (see dynamic.go).
package grammar

import (
	"fmt"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Loader resolves a language name to a tree-sitter grammar.
type Loader interface {
	Load(name string) (*tree_sitter.Language, error)
	// Available lists the names the loader can resolve.
	Available() []string
}

// NotFoundError is returned when no grammar exists for a language.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no grammar for language %q", e.Name)
}

// provider is the signature exposed by compiled-in grammar bindings.
type provider func() unsafe.Pointer

// builtinProviders wires up the grammars linked into the binary.
var builtinProviders = map[string]provider{
	"go":         tree_sitter_go.Language,
	"javascript": tree_sitter_javascript.Language,
	"python":     tree_sitter_python.Language,
	"rust":       tree_sitter_rust.Language,
	"java":       tree_sitter_java.Language,
	"c":          tree_sitter_c.Language,
	"cpp":        tree_sitter_cpp.Language,
	"zig":        tree_sitter_zig.Language,
	// The TypeScript binding exposes LanguageTypescript, not Language.
	"typescript": func() unsafe.Pointer { return tree_sitter_typescript.LanguageTypescript() },
}

// BuiltinLoader serves the compiled-in grammars, instantiating each at
// most once.
type BuiltinLoader struct {
	mu     sync.Mutex
	loaded map[string]*tree_sitter.Language
}

// NewBuiltinLoader creates a loader over the compiled-in grammar table.
func NewBuiltinLoader() *BuiltinLoader {
	return &BuiltinLoader{loaded: make(map[string]*tree_sitter.Language)}
}

// Load returns the grammar for a compiled-in language.
func (l *BuiltinLoader) Load(name string) (*tree_sitter.Language, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lang, ok := l.loaded[name]; ok {
		return lang, nil
	}
	p, ok := builtinProviders[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	lang := tree_sitter.NewLanguage(p())
	if lang == nil {
		return nil, &NotFoundError{Name: name}
	}
	l.loaded[name] = lang
	return lang, nil
}

// Available lists the compiled-in language names.
func (l *BuiltinLoader) Available() []string {
	names := make([]string, 0, len(builtinProviders))
	for name := range builtinProviders {
		names = append(names, name)
	}
	return names
}

// CompositeLoader tries the builtin table first and falls back to shared
// libraries in the grammar directory.
type CompositeLoader struct {
	builtin *BuiltinLoader
	dynamic *DynamicLoader
}

// NewCompositeLoader builds the default loader chain. dir may be empty to
// disable dynamic loading.
func NewCompositeLoader(dir string) *CompositeLoader {
	c := &CompositeLoader{builtin: NewBuiltinLoader()}
	if dir != "" {
		c.dynamic = NewDynamicLoader(dir)
	}
	return c
}

// Load resolves a grammar through the chain.
func (c *CompositeLoader) Load(name string) (*tree_sitter.Language, error) {
	lang, err := c.builtin.Load(name)
	if err == nil {
		return lang, nil
	}
	if c.dynamic != nil {
		return c.dynamic.Load(name)
	}
	return nil, err
}

// Available merges the names of both stages.
func (c *CompositeLoader) Available() []string {
	names := c.builtin.Available()
	if c.dynamic != nil {
		names = append(names, c.dynamic.Available()...)
	}
	return names
}
