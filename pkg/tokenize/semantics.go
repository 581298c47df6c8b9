package tokenize

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/musuliman/codesim/pkg/token"
)

// fullSignificanceKinds are leaves that act as hard anchors: control flow
// and declaration keywords whose position must survive normalization.
var fullSignificanceKinds = map[string]bool{
	"func":     true,
	"return":   true,
	"if":       true,
	"else":     true,
	"switch":   true,
	"case":     true,
	"break":    true,
	"continue": true,
	"package":  true,
	"import":   true,
}

// partialSignificanceKinds keep relative order only among themselves.
var partialSignificanceKinds = map[string]bool{
	"defer": true,
	"go":    true,
}

// annotator derives per-token semantics for languages with a semantic
// pass. Languages without one get nil annotations, so normalization
// leaves their source-ordered streams unchanged downstream.
type annotator struct {
	enabled bool
	vars    map[string]*token.Variable
}

// newAnnotator creates the semantic pass for a file. Only Go is analyzed;
// the heuristics below lean on the Go grammar's node kinds.
func newAnnotator(lang string) *annotator {
	return &annotator{
		enabled: lang == LangGo,
		vars:    make(map[string]*token.Variable),
	}
}

// variable interns a variable identity by name, file-scoped.
func (a *annotator) variable(name string) *token.Variable {
	v, ok := a.vars[name]
	if !ok {
		v = token.NewVariable(name)
		a.vars[name] = v
	}
	return v
}

// annotate builds the semantics for one leaf, or nil when the leaf
// carries no constraint.
func (a *annotator) annotate(node *tree_sitter.Node, content []byte) *token.Semantics {
	if !a.enabled {
		return nil
	}

	kind := node.Kind()
	sem := &token.Semantics{}
	used := false

	switch {
	case kind == "{" && isLoopBlockBrace(node):
		sem.BlockDepthChange = 1
		used = true
	case kind == "}" && isLoopBlockBrace(node):
		sem.BlockDepthChange = -1
		used = true
	case fullSignificanceKinds[kind]:
		sem.FullPositionSignificance = true
		used = true
	case partialSignificanceKinds[kind]:
		sem.PartialPositionSignificance = true
		used = true
	case kind == "identifier":
		name := string(content[node.StartByte():node.EndByte()])
		v := a.variable(name)
		switch identifierAccess(node) {
		case accessWrite:
			sem.Writes = []*token.Variable{v}
			used = true
		case accessReadWrite:
			sem.Reads = []*token.Variable{v}
			sem.Writes = []*token.Variable{v}
			used = true
		case accessRead:
			sem.Reads = []*token.Variable{v}
			used = true
		}
	}

	if !used {
		return nil
	}
	return sem
}

// isLoopBlockBrace reports whether a brace opens or closes the body of a
// for statement, the bidirectional block of the Go grammar.
func isLoopBlockBrace(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "block" {
		return false
	}
	gp := parent.Parent()
	return gp != nil && gp.Kind() == "for_statement"
}

type access int

const (
	accessRead access = iota
	accessWrite
	accessReadWrite
)

// sameNode compares nodes by source extent.
func sameNode(a, b *tree_sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// identifierAccess classifies an identifier leaf as a read, a write, or
// both, from the statement shape around it.
func identifierAccess(node *tree_sitter.Node) access {
	child := node
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "assignment_statement", "short_var_declaration":
			if left := parent.ChildByFieldName("left"); left != nil && sameNode(left, child) {
				return accessWrite
			}
			return accessRead
		case "var_spec":
			if name := parent.ChildByFieldName("name"); name != nil && sameNode(name, child) {
				return accessWrite
			}
			return accessRead
		case "inc_statement", "dec_statement":
			return accessReadWrite
		case "function_declaration", "method_declaration", "source_file":
			return accessRead
		}
		child = parent
	}
	return accessRead
}
