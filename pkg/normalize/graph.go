package normalize

import "github.com/musuliman/codesim/pkg/token"

// EdgeType classifies a constraint between two lines.
type EdgeType int

const (
	// PositionFull anchors a line against a fully position-significant
	// line: neither may cross the other.
	PositionFull EdgeType = iota
	// PositionPartial preserves relative order between partially
	// position-significant lines.
	PositionPartial
	// VarFlow is a read-after-write dependence.
	VarFlow
	// VarReverseFlow is an anti-dependence inside a bidirectional block.
	// It is soft: loop iteration can legitimately reverse it, so the walk
	// may reorder across it.
	VarReverseFlow
	// VarOrder is a write-after-write or out-of-block anti-dependence.
	VarOrder
)

func (e EdgeType) String() string {
	switch e {
	case PositionFull:
		return "POSITION_FULL"
	case PositionPartial:
		return "POSITION_PARTIAL"
	case VarFlow:
		return "VAR_FLOW"
	case VarReverseFlow:
		return "VAR_REVERSE_FLOW"
	case VarOrder:
		return "VAR_ORDER"
	}
	return "UNKNOWN"
}

// edgeSet is the merged constraint between one ordered pair of lines: the
// set of edge types, each with the variable that caused it (nil for
// positional types). The first cause per type is kept.
type edgeSet map[EdgeType]*token.Variable

// Graph is the dependency graph over the lines of one token stream.
type Graph struct {
	lines []*Line
	out   map[*Line]map[*Line]edgeSet
	in    map[*Line]map[*Line]edgeSet
}

// buildGraph constructs the graph for a stream in one pass over its lines,
// in source order.
func buildGraph(lines []*Line) *Graph {
	g := &Graph{
		lines: lines,
		out:   make(map[*Line]map[*Line]edgeSet, len(lines)),
		in:    make(map[*Line]map[*Line]edgeSet, len(lines)),
	}

	// Bidirectional block tracking.
	depth := 0
	inBlock := make(map[*Line]bool)

	// Positional anchors.
	var pendingFull []*Line
	var lastFull *Line
	var lastPartial *Line

	// Dataflow history per variable.
	reads := make(map[*token.Variable][]*Line)
	writes := make(map[*token.Variable][]*Line)

	for _, l := range lines {
		depth += l.blockDepthChange
		if depth > 0 {
			inBlock[l] = true
		} else {
			inBlock = make(map[*Line]bool)
		}

		if l.fullPosition {
			for _, n := range pendingFull {
				g.addEdge(n, l, PositionFull, nil)
			}
			pendingFull = pendingFull[:0]
			lastFull = l
		} else if lastFull != nil {
			g.addEdge(lastFull, l, PositionFull, nil)
		}
		pendingFull = append(pendingFull, l)

		if l.partialPosition {
			if lastPartial != nil {
				g.addEdge(lastPartial, l, PositionPartial, nil)
			}
			lastPartial = l
		}

		for _, v := range l.reads {
			for _, n := range writes[v] {
				g.addEdge(n, l, VarFlow, v)
			}
		}
		for _, v := range l.writes {
			for _, n := range writes[v] {
				g.addEdge(n, l, VarOrder, v)
			}
			for _, n := range reads[v] {
				if inBlock[n] {
					g.addEdge(n, l, VarReverseFlow, v)
				} else {
					g.addEdge(n, l, VarOrder, v)
				}
			}
			writes[v] = append(writes[v], l)
		}
		for _, v := range l.reads {
			reads[v] = append(reads[v], l)
		}
	}

	return g
}

// addEdge records a typed edge, merging into the existing edge between the
// pair if one exists. Self edges are dropped.
func (g *Graph) addEdge(from, to *Line, kind EdgeType, cause *token.Variable) {
	if from == to {
		return
	}
	fo := g.out[from]
	if fo == nil {
		fo = make(map[*Line]edgeSet)
		g.out[from] = fo
	}
	es := fo[to]
	if es == nil {
		es = make(edgeSet)
		fo[to] = es
		ti := g.in[to]
		if ti == nil {
			ti = make(map[*Line]edgeSet)
			g.in[to] = ti
		}
		ti[from] = es
	}
	if _, seen := es[kind]; !seen {
		es[kind] = cause
	}
}

// hard reports whether the edge constrains the walk: any type other than
// VarReverseFlow does.
func (es edgeSet) hard() bool {
	for kind := range es {
		if kind != VarReverseFlow {
			return true
		}
	}
	return false
}
