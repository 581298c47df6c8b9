package tokenize

import (
	"fmt"
	"os"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/musuliman/codesim/pkg/grammar"
	"github.com/musuliman/codesim/pkg/token"
)

// MaxFileSize is the largest source file the frontend will tokenize.
const MaxFileSize = 512 * 1024

// identifierKinds are tree-sitter leaf kinds normalized to "id" so that
// renamed identifiers still match structurally.
var identifierKinds = map[string]bool{
	"identifier":                            true,
	"type_identifier":                       true,
	"field_identifier":                      true,
	"package_identifier":                    true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
}

// literalKinds are normalized to "lit" so that changed constants still
// match structurally.
var literalKinds = map[string]bool{
	"interpreted_string_literal": true,
	"raw_string_literal":         true,
	"string":                     true,
	"template_string":            true,
	"string_literal":             true,
	"number":                     true,
	"integer":                    true,
	"float":                      true,
	"int_literal":                true,
	"float_literal":              true,
	"rune_literal":               true,
	"true":                       true,
	"false":                      true,
	"nil":                        true,
	"null":                       true,
	"none":                       true,
	"None":                       true,
	"undefined":                  true,
}

// keywordKinds keep their identity, prefixed to avoid clashing with
// operator text.
var keywordKinds = map[string]bool{
	"if":       true,
	"else":     true,
	"for":      true,
	"while":    true,
	"switch":   true,
	"case":     true,
	"return":   true,
	"break":    true,
	"continue": true,
	"func":     true,
	"function": true,
	"def":      true,
	"class":    true,
	"struct":   true,
	"import":   true,
	"try":      true,
	"catch":    true,
	"finally":  true,
	"throw":    true,
	"defer":    true,
	"go":       true,
	"async":    true,
	"await":    true,
}

// Tokenizer builds token lists from source files.
type Tokenizer struct {
	loader   grammar.Loader
	registry *typeRegistry
}

// New creates a tokenizer over the given grammar loader. One Tokenizer
// must serve a whole run so every submission shares the type registry.
func New(loader grammar.Loader) *Tokenizer {
	return &Tokenizer{
		loader:   loader,
		registry: newTypeRegistry(),
	}
}

// SubmissionList tokenizes the files of one submission into a single
// pivot-terminated list, with separators between files. Unsupported and
// oversized files are skipped silently; the caller decides which files to
// pass.
func (tz *Tokenizer) SubmissionList(name string, files []string) (*token.List, error) {
	list := token.NewList(name)

	for _, path := range files {
		lang := DetectLanguage(path)
		if lang == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > MaxFileSize {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(list.Files) > 0 {
			list.Separate()
		}
		if err := tz.appendFile(list, path, content, lang); err != nil {
			return nil, err
		}
		list.Files = append(list.Files, path)
	}

	list.EndFile()
	return list, nil
}

// appendFile parses one file and appends its normalized tokens.
func (tz *Tokenizer) appendFile(list *token.List, path string, content []byte, lang string) error {
	sitterLang, err := tz.loader.Load(lang)
	if err != nil {
		return fmt.Errorf("grammar for %s: %w", path, err)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitterLang); err != nil {
		return fmt.Errorf("set language for %s: %w", path, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return fmt.Errorf("parse %s failed", path)
	}
	defer tree.Close()

	sem := newAnnotator(lang)
	tz.walkLeaves(tree.RootNode(), content, list, sem)
	return nil
}

// walkLeaves collects leaf nodes depth-first and appends them as tokens.
func (tz *Tokenizer) walkLeaves(node *tree_sitter.Node, content []byte, list *token.List, sem *annotator) {
	if node.ChildCount() == 0 {
		kind := normalizeKind(node, content)
		if kind == "" {
			return
		}
		start := node.StartPosition()
		tok := token.Token{
			Type:      tz.registry.typeOf(kind),
			Line:      int(start.Row) + 1,
			Column:    int(start.Column),
			Length:    int(node.EndByte() - node.StartByte()),
			Semantics: sem.annotate(node, content),
		}
		list.Append(tok)
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			tz.walkLeaves(child, content, list, sem)
		}
	}
}

// normalizeKind maps a leaf node to its normalized kind, or "" for
// ignorable leaves such as comments.
func normalizeKind(node *tree_sitter.Node, content []byte) string {
	kind := node.Kind()
	if kind == "comment" || strings.HasSuffix(kind, "comment") {
		return ""
	}
	if identifierKinds[kind] {
		return "id"
	}
	if literalKinds[kind] {
		return "lit"
	}
	if keywordKinds[kind] {
		return "kw:" + kind
	}
	text := string(content[node.StartByte():node.EndByte()])
	if len(text) <= 3 {
		return text
	}
	return kind
}
