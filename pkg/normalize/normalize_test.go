package normalize

import (
	"testing"

	"github.com/musuliman/codesim/pkg/similarity"
	"github.com/musuliman/codesim/pkg/token"
)

// Token types used by the synthetic streams below.
const (
	typeAssign token.Type = 10
	typeIdent  token.Type = 11
	typeLit    token.Type = 12
	typeLoop   token.Type = 13
	typeEnd    token.Type = 14
)

// stmt appends a three-token assignment-shaped line to a list. The
// semantics annotation rides on the first token of the line.
func stmt(l *token.List, line int, sem *token.Semantics) {
	l.Append(token.Token{Type: typeIdent, Line: line, Semantics: sem})
	l.Append(token.Token{Type: typeAssign, Line: line})
	l.Append(token.Token{Type: typeLit, Line: line})
}

func mustNormalize(t *testing.T, l *token.List) *token.List {
	t.Helper()
	out, err := Normalize(l)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	return out
}

// lineOrder extracts the source line number of each emitted line run.
func lineOrder(l *token.List) []int {
	var out []int
	prev := -1
	for _, tok := range l.Tokens {
		if tok.IsPivot() {
			continue
		}
		if tok.Line != prev {
			out = append(out, tok.Line)
			prev = tok.Line
		}
	}
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Reordering semantics
// =============================================================================

func TestNormalizeIndependentWritesCanonicalOrder(t *testing.T) {
	// a=1; b=2; c=a+b versus b=2; a=1; c=a+b. Independent writes on
	// different variables reorder to the same canonical stream.
	build := func(name string, firstIsA bool) *token.List {
		l := token.NewList(name)
		va, vb, vc := token.NewVariable("a"), token.NewVariable("b"), token.NewVariable("c")
		if firstIsA {
			stmt(l, 1, &token.Semantics{Writes: []*token.Variable{va}})
			stmt(l, 2, &token.Semantics{Writes: []*token.Variable{vb}})
		} else {
			stmt(l, 1, &token.Semantics{Writes: []*token.Variable{vb}})
			stmt(l, 2, &token.Semantics{Writes: []*token.Variable{va}})
		}
		stmt(l, 3, &token.Semantics{
			Reads:  []*token.Variable{va, vb},
			Writes: []*token.Variable{vc},
		})
		l.EndFile()
		return l
	}

	na := mustNormalize(t, build("a-first", true))
	nb := mustNormalize(t, build("b-first", false))

	ta, tb := na.Types(), nb.Types()
	if len(ta) != len(tb) {
		t.Fatalf("normalized lengths differ: %d vs %d", len(ta), len(tb))
	}
	for i := range ta {
		if ta[i] != tb[i] {
			t.Fatalf("normalized streams diverge at %d: %v vs %v", i, ta, tb)
		}
	}
}

func TestNormalizedStreamsFullyMatch(t *testing.T) {
	// The follow-up to the reordering case above: after normalization the
	// matcher sees two identical streams and reports one full-length tile.
	build := func(name string, swap bool) *token.List {
		l := token.NewList(name)
		v, w, out := token.NewVariable("v"), token.NewVariable("w"), token.NewVariable("out")
		first, second := 1, 2
		if swap {
			first, second = 2, 1
		}
		stmt(l, first, &token.Semantics{Writes: []*token.Variable{v}})
		stmt(l, second, &token.Semantics{Writes: []*token.Variable{w}})
		stmt(l, 3, &token.Semantics{
			Reads:  []*token.Variable{v, w},
			Writes: []*token.Variable{out},
		})
		l.EndFile()
		return l
	}

	na := mustNormalize(t, build("straight", false))
	nb := mustNormalize(t, build("swapped", true))

	m := similarity.NewMatcher(3)
	c, err := m.Compare(na, nb)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if len(c.Matches) != 1 {
		t.Fatalf("expected one full-length match, got %v", c.Matches)
	}
	if got := c.Matches[0].Length; got != 9 {
		t.Fatalf("expected all 9 real tokens matched, got length %d", got)
	}
}

func TestNormalizeRespectsDataflow(t *testing.T) {
	// Stream order: line 5 writes v, line 2 reads v. The read-after-write
	// edge pins line 2 behind line 5 even though 2 < 5.
	l := token.NewList("raw")
	v := token.NewVariable("v")
	stmt(l, 5, &token.Semantics{Writes: []*token.Variable{v}})
	stmt(l, 2, &token.Semantics{Reads: []*token.Variable{v}})
	l.EndFile()

	got := lineOrder(mustNormalize(t, l))
	if !sameInts(got, []int{5, 2}) {
		t.Fatalf("read-after-write was reordered: line order %v", got)
	}
}

func TestNormalizeReordersUnconstrainedLines(t *testing.T) {
	l := token.NewList("free")
	v, w := token.NewVariable("v"), token.NewVariable("w")
	stmt(l, 5, &token.Semantics{Writes: []*token.Variable{v}})
	stmt(l, 2, &token.Semantics{Writes: []*token.Variable{w}})
	l.EndFile()

	got := lineOrder(mustNormalize(t, l))
	if !sameInts(got, []int{2, 5}) {
		t.Fatalf("independent lines should sort by line number, got %v", got)
	}
}

func TestNormalizeFullSignificancePins(t *testing.T) {
	// The fully significant line 5 comes first in the stream; nothing may
	// cross it, so line 2 stays behind it.
	l := token.NewList("pinned")
	l.Append(token.Token{Type: typeEnd, Line: 5, Semantics: &token.Semantics{FullPositionSignificance: true}})
	stmt(l, 2, nil)
	l.EndFile()

	got := lineOrder(mustNormalize(t, l))
	if !sameInts(got, []int{5, 2}) {
		t.Fatalf("full positional significance violated: line order %v", got)
	}
}

func TestNormalizePartialSignificanceKeepsRelativeOrder(t *testing.T) {
	l := token.NewList("partial")
	l.Append(token.Token{Type: typeIdent, Line: 7, Semantics: &token.Semantics{PartialPositionSignificance: true}})
	l.Append(token.Token{Type: typeIdent, Line: 3, Semantics: &token.Semantics{PartialPositionSignificance: true}})
	l.EndFile()

	got := lineOrder(mustNormalize(t, l))
	if !sameInts(got, []int{7, 3}) {
		t.Fatalf("partial significance order broken: %v", got)
	}
}

func TestNormalizeReverseFlowIsSoftInsideBlock(t *testing.T) {
	// Inside a bidirectional block, a write-after-read may reorder: the
	// loop's next iteration reverses the dependence anyway.
	l := token.NewList("loop")
	v := token.NewVariable("v")
	l.Append(token.Token{Type: typeLoop, Line: 4, Semantics: &token.Semantics{
		BlockDepthChange: 1,
		Reads:            []*token.Variable{v},
	}})
	l.Append(token.Token{Type: typeAssign, Line: 2, Semantics: &token.Semantics{
		Writes: []*token.Variable{v},
	}})
	l.Append(token.Token{Type: typeEnd, Line: 6, Semantics: &token.Semantics{BlockDepthChange: -1}})
	l.EndFile()

	got := lineOrder(mustNormalize(t, l))
	if !sameInts(got, []int{2, 4, 6}) {
		t.Fatalf("soft anti-dependence should allow the reorder, got %v", got)
	}
}

func TestNormalizeAntiDependenceIsHardOutsideBlock(t *testing.T) {
	l := token.NewList("no-loop")
	v := token.NewVariable("v")
	l.Append(token.Token{Type: typeIdent, Line: 4, Semantics: &token.Semantics{
		Reads: []*token.Variable{v},
	}})
	l.Append(token.Token{Type: typeAssign, Line: 2, Semantics: &token.Semantics{
		Writes: []*token.Variable{v},
	}})
	l.EndFile()

	got := lineOrder(mustNormalize(t, l))
	if !sameInts(got, []int{4, 2}) {
		t.Fatalf("write-after-read outside a block must not reorder, got %v", got)
	}
}

func TestNormalizePivotStaysLast(t *testing.T) {
	l := token.NewList("pivot")
	stmt(l, 9, nil)
	stmt(l, 1, nil)
	l.EndFile()

	out := mustNormalize(t, l)
	if !out.HasPivot() {
		t.Fatal("normalization lost the FileEnd pivot")
	}
	if got := lineOrder(out); !sameInts(got, []int{1, 9}) {
		t.Fatalf("expected unconstrained lines sorted, got %v", got)
	}
}

// =============================================================================
// Properties
// =============================================================================

func TestNormalizeIdempotent(t *testing.T) {
	l := token.NewList("idempotent")
	v, w := token.NewVariable("v"), token.NewVariable("w")
	stmt(l, 6, &token.Semantics{Writes: []*token.Variable{v}})
	stmt(l, 2, &token.Semantics{Writes: []*token.Variable{w}})
	stmt(l, 4, &token.Semantics{Reads: []*token.Variable{v, w}})
	l.EndFile()

	once := mustNormalize(t, l)
	twice := mustNormalize(t, once)

	to, tt2 := once.Types(), twice.Types()
	if len(to) != len(tt2) {
		t.Fatalf("idempotence broken: lengths %d vs %d", len(to), len(tt2))
	}
	for i := range to {
		if to[i] != tt2[i] {
			t.Fatalf("idempotence broken at token %d", i)
		}
	}
	if !sameInts(lineOrder(once), lineOrder(twice)) {
		t.Fatalf("line order changed on second pass: %v vs %v", lineOrder(once), lineOrder(twice))
	}
}

func TestNormalizeNoSemanticsIsIdentity(t *testing.T) {
	l := token.NewList("plain")
	stmt(l, 1, nil)
	stmt(l, 2, nil)
	stmt(l, 3, nil)
	l.EndFile()

	out := mustNormalize(t, l)
	if len(out.Tokens) != len(l.Tokens) {
		t.Fatalf("token count changed: %d vs %d", len(out.Tokens), len(l.Tokens))
	}
	for i := range out.Tokens {
		if out.Tokens[i].Type != l.Tokens[i].Type || out.Tokens[i].Line != l.Tokens[i].Line {
			t.Fatalf("identity normalization moved token %d", i)
		}
	}
}

// =============================================================================
// Graph internals
// =============================================================================

// edgeTypes returns the edge type set between two lines, or nil.
func edgeTypes(g *Graph, from, to *Line) edgeSet {
	return g.out[from][to]
}

func TestGraphSuccessiveFullNodesChainSingly(t *testing.T) {
	// Each full-significance line receives one POSITION_FULL edge from the
	// immediately preceding full line and none from earlier ones.
	l := token.NewList("chain")
	for i := 1; i <= 3; i++ {
		l.Append(token.Token{Type: typeEnd, Line: i, Semantics: &token.Semantics{FullPositionSignificance: true}})
	}
	lines := splitLines(l.Tokens)
	g := buildGraph(lines)

	if _, ok := edgeTypes(g, lines[0], lines[1])[PositionFull]; !ok {
		t.Fatal("edge 0->1 lacks POSITION_FULL")
	}
	if _, ok := edgeTypes(g, lines[1], lines[2])[PositionFull]; !ok {
		t.Fatal("edge 1->2 lacks POSITION_FULL")
	}
	if es := edgeTypes(g, lines[0], lines[2]); es != nil {
		t.Fatalf("unexpected edge 0->2: %v", es)
	}
}

func TestGraphEdgeMergeKeepsCause(t *testing.T) {
	l := token.NewList("merge")
	v := token.NewVariable("v")
	stmt(l, 1, &token.Semantics{Writes: []*token.Variable{v}})
	stmt(l, 2, &token.Semantics{Reads: []*token.Variable{v}, Writes: []*token.Variable{v}})
	l.EndFile()

	lines := splitLines(l.Tokens)
	g := buildGraph(lines)

	es := edgeTypes(g, lines[0], lines[1])
	if es == nil {
		t.Fatal("expected a merged edge between the two lines")
	}
	if cause, ok := es[VarFlow]; !ok || cause != v {
		t.Fatalf("VAR_FLOW missing or has wrong cause: %v", es)
	}
	if cause, ok := es[VarOrder]; !ok || cause != v {
		t.Fatalf("VAR_ORDER missing or has wrong cause: %v", es)
	}
}

func TestWalkDetectsCycle(t *testing.T) {
	// buildGraph only ever emits forward edges, so a cycle means the
	// annotator lied. Wire one by hand and make sure the walk reports it
	// instead of spinning.
	a := &Line{Number: 1, Index: 0, Tokens: []token.Token{{Type: typeIdent, Line: 1}}}
	b := &Line{Number: 2, Index: 1, Tokens: []token.Token{{Type: typeIdent, Line: 2}}}
	g := &Graph{
		lines: []*Line{a, b},
		out:   make(map[*Line]map[*Line]edgeSet),
		in:    make(map[*Line]map[*Line]edgeSet),
	}
	g.addEdge(a, b, VarOrder, nil)
	g.addEdge(b, a, VarOrder, nil)

	_, err := g.walk()
	cycleErr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if !sameInts(cycleErr.Lines, []int{1, 2}) {
		t.Fatalf("cycle diagnostic lines = %v", cycleErr.Lines)
	}
}
