package similarity

// HashIndex is a multimap from window hash to the start positions where
// that hash occurs, in ascending order of insertion. Lookups are
// expected-constant-time.
type HashIndex struct {
	entries map[int][]int
}

// NewHashIndex creates an index pre-sized for roughly n windows.
func NewHashIndex(n int) *HashIndex {
	if n < 0 {
		n = 0
	}
	return &HashIndex{
		entries: make(map[int][]int, n),
	}
}

// Insert records a start position for a hash. Positions inserted in
// ascending order stay in ascending order within their bucket.
func (idx *HashIndex) Insert(hash, pos int) {
	idx.entries[hash] = append(idx.entries[hash], pos)
}

// Lookup returns the start positions recorded for a hash, or nil if the
// hash was never inserted. The returned slice is owned by the index and
// must not be mutated.
func (idx *HashIndex) Lookup(hash int) []int {
	return idx.entries[hash]
}

// Size returns the number of distinct hashes in the index.
func (idx *HashIndex) Size() int {
	return len(idx.entries)
}
