// Package token defines the token stream model consumed by the similarity
// kernel: typed tokens with source positions, optional dataflow semantics,
// and ordered token lists with end-of-stream pivots.
package token

// Type identifies a token's lexical class. Real token types are
// non-negative; the reserved pivot types are negative so a language
// frontend can never collide with them.
type Type int

// Reserved token types. FileEnd terminates every list and guards
// end-of-stream reads in the matcher; Separator sits between files
// concatenated into one submission. Neither is ever part of a match.
const (
	FileEnd   Type = -1
	Separator Type = -2
)

// Token is a single lexical unit. The struct itself is written once by the
// frontend; the Basecode flag is the only field mutated afterwards, by the
// base-code pass, and is read-only once pairwise comparisons start.
type Token struct {
	Type   Type `json:"type"`
	Line   int  `json:"line"`
	Column int  `json:"col"`
	Length int  `json:"len"`

	// Semantics is nil when the frontend has no semantic analyzer for the
	// source language; normalization then leaves a stream in source order
	// unchanged.
	Semantics *Semantics `json:"-"`

	// Basecode marks a token matched against the shared base-code
	// submission. Marked regions are excluded from pairwise matching.
	Basecode bool `json:"-"`
}

// IsPivot reports whether the token is one of the reserved stream-control
// types.
func (t *Token) IsPivot() bool {
	return t.Type == FileEnd || t.Type == Separator
}

// List is an ordered token sequence for one submission. A well-formed list
// ends with a FileEnd token.
type List struct {
	// Name labels the submission the tokens came from.
	Name string

	// Files records the source files concatenated into the list, in order.
	Files []string

	Tokens []Token
}

// NewList returns an empty list for the named submission.
func NewList(name string) *List {
	return &List{Name: name}
}

// Append adds a token to the list.
func (l *List) Append(t Token) {
	l.Tokens = append(l.Tokens, t)
}

// EndFile appends the FileEnd pivot. Call once, after the last real token.
func (l *List) EndFile() {
	l.Tokens = append(l.Tokens, Token{Type: FileEnd})
}

// Separate appends a Separator token between concatenated files.
func (l *List) Separate() {
	l.Tokens = append(l.Tokens, Token{Type: Separator})
}

// Len returns the number of tokens including pivots.
func (l *List) Len() int {
	return len(l.Tokens)
}

// HasPivot reports whether the list is terminated by a FileEnd token. The
// matcher refuses lists without it.
func (l *List) HasPivot() bool {
	return len(l.Tokens) > 0 && l.Tokens[len(l.Tokens)-1].Type == FileEnd
}

// Types returns the token types as a plain slice. Intended for tests and
// diagnostics.
func (l *List) Types() []Type {
	out := make([]Type, len(l.Tokens))
	for i := range l.Tokens {
		out[i] = l.Tokens[i].Type
	}
	return out
}
