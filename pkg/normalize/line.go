// Package normalize reorders a token stream on a per-line basis so that
// semantically equivalent but syntactically reshuffled code produces an
// identical stream. Lines become nodes in a dependency graph built from
// positional and dataflow constraints; a topological walk with a
// deterministic tie-break emits the canonical order.
package normalize

import "github.com/musuliman/codesim/pkg/token"

// Line is a consecutive run of tokens sharing one source line, with the
// merged semantics of its tokens. Pivot tokens form single-token lines of
// their own so they can never move.
type Line struct {
	// Number is the source line the run came from.
	Number int
	// Index is the position of the line in the original stream order.
	Index int

	Tokens []token.Token

	reads            []*token.Variable
	writes           []*token.Variable
	blockDepthChange int
	fullPosition     bool
	partialPosition  bool
}

// splitLines groups a token stream into Line nodes. Runs break on a line
// number change and around pivots.
func splitLines(tokens []token.Token) []*Line {
	var lines []*Line
	var cur *Line

	flush := func() {
		if cur != nil {
			lines = append(lines, cur)
			cur = nil
		}
	}

	for _, t := range tokens {
		if t.IsPivot() {
			flush()
			pivot := &Line{Number: t.Line, Index: len(lines), Tokens: []token.Token{t}}
			pivot.fullPosition = true
			lines = append(lines, pivot)
			continue
		}
		if cur == nil || cur.Number != t.Line {
			flush()
			cur = &Line{Number: t.Line, Index: len(lines)}
		}
		cur.absorb(t)
	}
	flush()
	return lines
}

// absorb appends a token and merges its semantics into the line: reads and
// writes union, depth changes sum, significance flags disjoin.
func (l *Line) absorb(t token.Token) {
	l.Tokens = append(l.Tokens, t)
	s := t.Semantics
	if s == nil {
		return
	}
	for _, v := range s.Reads {
		l.reads = appendVar(l.reads, v)
	}
	for _, v := range s.Writes {
		l.writes = appendVar(l.writes, v)
	}
	l.blockDepthChange += s.BlockDepthChange
	l.fullPosition = l.fullPosition || s.FullPositionSignificance
	l.partialPosition = l.partialPosition || s.PartialPositionSignificance
}

// appendVar adds v unless the set already holds it. Variable identity is
// pointer identity.
func appendVar(set []*token.Variable, v *token.Variable) []*token.Variable {
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}
