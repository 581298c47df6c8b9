package token

// Variable is an opaque identity for a program variable. Identity is
// pointer equality: two tokens reading the same *Variable read the same
// variable. The name is diagnostic only and does not participate in
// equality.
type Variable struct {
	Name string
}

// NewVariable allocates a fresh variable identity.
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

// Semantics annotates a token with the dataflow and ordering constraints
// the normalizer uses. Frontends without a semantic analyzer leave all
// fields zero.
type Semantics struct {
	// Reads and Writes are the variables this token reads and writes.
	Reads  []*Variable
	Writes []*Variable

	// BlockDepthChange is positive on entry to a bidirectional block
	// (a region whose statement order may vary across iterations, e.g. a
	// loop body) and negative on exit.
	BlockDepthChange int

	// FullPositionSignificance pins the token: no token may cross it in
	// either direction during normalization.
	FullPositionSignificance bool

	// PartialPositionSignificance preserves relative order with other
	// partially significant tokens only.
	PartialPositionSignificance bool
}

// ReadsVar reports whether v is in the read set.
func (s *Semantics) ReadsVar(v *Variable) bool {
	for _, r := range s.Reads {
		if r == v {
			return true
		}
	}
	return false
}

// WritesVar reports whether v is in the write set.
func (s *Semantics) WritesVar(v *Variable) bool {
	for _, w := range s.Writes {
		if w == v {
			return true
		}
	}
	return false
}
