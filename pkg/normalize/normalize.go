package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/musuliman/codesim/pkg/token"
)

// CycleError reports a cycle in the hard-edge subgraph. A cycle means the
// semantics annotator emitted contradictory constraints; the normalizer
// surfaces it instead of looping.
type CycleError struct {
	// Lines are the source line numbers that could not be scheduled.
	Lines []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, n := range e.Lines {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("normalization graph has a cycle among lines %s", strings.Join(parts, ", "))
}

// Normalize emits the canonical ordering of a token stream. It is
// deterministic and idempotent on its own output. Tokens keep their
// original intra-line order; only whole lines move, and only within the
// freedom the constraint graph allows. Lines without semantics
// annotations have no edges between them apart from the pivot anchors, so
// they come out in line-number order within each file; an unannotated
// stream in source order therefore comes back unchanged.
func Normalize(list *token.List) (*token.List, error) {
	lines := splitLines(list.Tokens)
	g := buildGraph(lines)

	order, err := g.walk()
	if err != nil {
		return nil, err
	}

	out := &token.List{
		Name:   list.Name,
		Files:  list.Files,
		Tokens: make([]token.Token, 0, len(list.Tokens)),
	}
	for _, l := range order {
		out.Tokens = append(out.Tokens, l.Tokens...)
	}
	return out, nil
}

// walk performs the topological emission: among lines with no remaining
// hard predecessors, the smallest original line number goes first (stream
// position breaks line-number ties across files). Soft reverse-flow edges
// never block readiness.
func (g *Graph) walk() ([]*Line, error) {
	hardIn := make(map[*Line]int, len(g.lines))
	for _, l := range g.lines {
		hardIn[l] = 0
	}
	for to, preds := range g.in {
		for _, es := range preds {
			if es.hard() {
				hardIn[to]++
			}
		}
	}

	var ready []*Line
	for _, l := range g.lines {
		if hardIn[l] == 0 {
			ready = append(ready, l)
		}
	}

	order := make([]*Line, 0, len(g.lines))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if lineBefore(ready[i], ready[best]) {
				best = i
			}
		}
		l := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, l)

		for succ, es := range g.out[l] {
			if !es.hard() {
				continue
			}
			hardIn[succ]--
			if hardIn[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(g.lines) {
		err := &CycleError{}
		for _, l := range g.lines {
			if hardIn[l] > 0 {
				err.Lines = append(err.Lines, l.Number)
			}
		}
		sort.Ints(err.Lines)
		return nil, err
	}
	return order, nil
}

// lineBefore is the walk's tie-break ordering.
func lineBefore(a, b *Line) bool {
	if a.Number != b.Number {
		return a.Number < b.Number
	}
	return a.Index < b.Index
}
