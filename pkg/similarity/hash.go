package similarity

import "github.com/musuliman/codesim/pkg/token"

// The rolling hash packs the low 6 bits of each token type into a
// positional polynomial with base 2:
//
//	H(i) = sum_{k=0..w-1} 2^(w-1-k) * (type[i+k] & 63)
//
// and slides in O(1) per position:
//
//	H(i+1) = 2*(H(i) - 2^(w-1)*(type[i] & 63)) + (type[i+w] & 63)
//
// Every term is bounded by 63 * 2^24 for the maximum window, so the value
// never overflows an int.
const hashMod = 63

// computeHashes assigns a window hash to every start position i in
// [0, len(tokens)-window). Windows that contain a marked token get NoHash.
// When idx is non-nil, every valid (hash, position) pair is inserted in
// ascending position order. Does nothing when the list is shorter than the
// window.
func computeHashes(tokens []token.Token, marked []bool, window int, idx *HashIndex) []int {
	n := len(tokens)
	if n < window {
		return nil
	}

	// latestMarked[p] is the largest marked index <= p, or -1.
	latestMarked := make([]int, n)
	last := -1
	for p := 0; p < n; p++ {
		if marked[p] {
			last = p
		}
		latestMarked[p] = last
	}

	hashes := make([]int, n-window)
	factor := 1 << (window - 1)

	h := 0
	for k := 0; k < window; k++ {
		h = 2*h + int(tokens[k].Type)&hashMod
	}

	for i := range hashes {
		if latestMarked[i+window-1] >= i {
			hashes[i] = NoHash
		} else {
			hashes[i] = h
			if idx != nil {
				idx.Insert(h, i)
			}
		}
		if i+1 < len(hashes) {
			h = 2*(h-factor*(int(tokens[i].Type)&hashMod)) + int(tokens[i+window].Type)&hashMod
		}
	}

	return hashes
}
