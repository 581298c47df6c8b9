package tokenize

import (
	"sync"

	"github.com/musuliman/codesim/pkg/token"
)

// typeRegistry interns normalized token kinds into numeric token types.
// All submissions in a run must share one registry so that equal kinds get
// equal types.
type typeRegistry struct {
	mu    sync.Mutex
	types map[string]token.Type
	next  token.Type
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		types: make(map[string]token.Type),
		next:  1,
	}
}

// typeOf returns the stable token type for a kind, allocating on first
// sight.
func (r *typeRegistry) typeOf(kind string) token.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.types[kind]; ok {
		return t
	}
	t := r.next
	r.next++
	r.types[kind] = t
	return t
}

// size returns the number of interned kinds.
func (r *typeRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.types)
}
