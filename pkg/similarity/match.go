package similarity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/musuliman/codesim/pkg/token"
)

// ErrMissingPivot is returned when a token list is not terminated by a
// FileEnd token. The matcher depends on the pivot to bound its inner
// scans, so a list without one is rejected before any work is done.
var ErrMissingPivot = errors.New("token list has no FileEnd pivot")

// Matcher finds all non-overlapping maximal common token runs between two
// submissions using Greedy String Tiling. A Matcher is safe for concurrent
// Compare calls; per-comparison state lives on the stack and the shared
// hash-table cache is guarded.
type Matcher struct {
	minMatch int

	mu     sync.Mutex
	tables map[*token.List]*lookupTable
}

// lookupTable is the cached hashing state for one token list: the window
// hash per start position and, when the list has served as the indexed
// side, the position index. maskBasecode records which marked-token set
// the hashes were computed under.
type lookupTable struct {
	window       int
	maskBasecode bool
	hashes       []int
	index        *HashIndex
}

// NewMatcher creates a matcher with the given minimum token match. Values
// outside [MinWindowSize, MaxWindowSize] are silently clamped.
func NewMatcher(minimumTokenMatch int) *Matcher {
	return &Matcher{
		minMatch: ClampWindow(minimumTokenMatch),
		tables:   make(map[*token.List]*lookupTable),
	}
}

// MinimumTokenMatch returns the effective (clamped) match floor.
func (m *Matcher) MinimumTokenMatch() int {
	return m.minMatch
}

// Compare matches two submissions pairwise. Tokens flagged by a prior
// base-code pass are excluded. The comparison is empty (never nil) when
// either list is too short; the error is non-nil only on a contract
// violation such as a missing pivot.
func (m *Matcher) Compare(a, b *token.List) (*Comparison, error) {
	return m.compare(a, b, nil)
}

// PreprocessBaseCode prepares the shared base-code submission: flags all
// of its real tokens as base code and pre-builds its hash table so the
// index is reused across every MarkBaseCode call. Call it once, before
// any submission runs a base-code comparison.
func (m *Matcher) PreprocessBaseCode(base *token.List) error {
	if !base.HasPivot() {
		return fmt.Errorf("%s: %w", base.Name, ErrMissingPivot)
	}
	for i := range base.Tokens {
		if !base.Tokens[i].IsPivot() {
			base.Tokens[i].Basecode = true
		}
	}
	if len(base.Tokens) > m.minMatch {
		m.table(base, true, true)
	}
	return nil
}

// MarkBaseCode matches sub against the shared base-code submission and
// flags every matched token in sub with Basecode. Matches themselves are
// not reported. The base list's hash table is cached across calls, so one
// base submission serves any number of MarkBaseCode calls cheaply.
func (m *Matcher) MarkBaseCode(sub, base *token.List) error {
	_, err := m.compare(sub, base, sub)
	if err != nil {
		return err
	}
	// The submission's marked-token set changed, so any hashes computed
	// for it before this pass are stale.
	m.mu.Lock()
	delete(m.tables, sub)
	m.mu.Unlock()
	return nil
}

// compare runs the main GST loop. flagList is nil for a pairwise
// comparison; for a base-code pass it names the submission whose matched
// tokens receive the Basecode flag.
func (m *Matcher) compare(a, b *token.List, flagList *token.List) (*Comparison, error) {
	isBaseCode := flagList != nil

	if !a.HasPivot() {
		return emptyComparison(a, b), fmt.Errorf("%s: %w", a.Name, ErrMissingPivot)
	}
	if !b.HasPivot() {
		return emptyComparison(a, b), fmt.Errorf("%s: %w", b.Name, ErrMissingPivot)
	}

	// The shorter list drives the outer scan.
	first, second := a, b
	if len(second.Tokens) < len(first.Tokens) {
		first, second = second, first
	}
	result := emptyComparison(first, second)

	if len(first.Tokens) <= m.minMatch {
		return result, nil
	}

	markedFirst := initialMarked(first, isBaseCode)
	markedSecond := initialMarked(second, isBaseCode)

	firstTable := m.table(first, isBaseCode, false)
	secondTable := m.table(second, isBaseCode, true)
	firstHashes := firstTable.hashes
	secondIndex := secondTable.index

	ft := first.Tokens
	st := second.Tokens

	for {
		maxMatch := m.minMatch
		var tiles []Match

		for x := 0; x < len(ft)-maxMatch; x++ {
			if markedFirst[x] || firstHashes[x] == NoHash {
				continue
			}
			for _, y := range secondIndex.Lookup(firstHashes[x]) {
				if markedSecond[y] || maxMatch >= len(st)-y {
					continue
				}

				// Back-scan the window the hashes promised. A marked
				// token inside it means the hash is stale for this
				// iteration's marked set.
				ok := true
				for j := maxMatch - 1; j >= 0; j-- {
					if ft[x+j].Type != st[y+j].Type || markedFirst[x+j] || markedSecond[y+j] {
						ok = false
						break
					}
				}
				if !ok {
					continue
				}

				// Forward-extend past the window. The FileEnd pivots are
				// always marked, so the scan terminates inside the lists.
				j := maxMatch
				for ft[x+j].Type == st[y+j].Type && !markedFirst[x+j] && !markedSecond[y+j] {
					j++
				}

				if (!isBaseCode && j > maxMatch) || (isBaseCode && j != maxMatch) {
					// A longer tile invalidates everything collected at
					// the old length. Base-code extraction keeps equal
					// tiles of the initial length, so it resets on any
					// deviation rather than only on growth.
					tiles = nil
					maxMatch = j
				}
				addTileIfNotOverlapping(&tiles, Match{StartInFirst: x, StartInSecond: y, Length: j})
			}
		}

		for _, tile := range tiles {
			result.Matches = append(result.Matches, tile)
			for k := 0; k < tile.Length; k++ {
				markedFirst[tile.StartInFirst+k] = true
				markedSecond[tile.StartInSecond+k] = true
			}
			if isBaseCode {
				flagBasecode(first, flagList, tile.StartInFirst, tile.Length)
				flagBasecode(second, flagList, tile.StartInSecond, tile.Length)
			}
		}

		if maxMatch == m.minMatch {
			break
		}
	}

	if isBaseCode {
		// Base-code matches are a side effect, not a result.
		result.Matches = nil
	}
	return result, nil
}

// addTileIfNotOverlapping appends the tile unless it claims a token some
// earlier tile of the same length already claimed. Discovery order wins.
func addTileIfNotOverlapping(tiles *[]Match, tile Match) {
	for _, t := range *tiles {
		if t.overlaps(tile) {
			return
		}
	}
	*tiles = append(*tiles, tile)
}

// flagBasecode sets the Basecode flag on a committed tile's tokens, but
// only on the submission side of a base-code pass.
func flagBasecode(side, flagList *token.List, start, length int) {
	if side != flagList {
		return
	}
	for k := 0; k < length; k++ {
		side.Tokens[start+k].Basecode = true
	}
}

// initialMarked builds the marked-token set a comparison starts from:
// every pivot, plus every base-code token when the comparison is pairwise.
func initialMarked(list *token.List, isBaseCode bool) []bool {
	marked := make([]bool, len(list.Tokens))
	for i := range list.Tokens {
		t := &list.Tokens[i]
		if t.IsPivot() || (!isBaseCode && t.Basecode) {
			marked[i] = true
		}
	}
	return marked
}

// table returns the cached hashing state for a list, computing it when the
// cache has nothing usable for this window and marked-token set. needIndex
// replaces a cached hash-only table with a freshly built one that also
// carries the index.
func (m *Matcher) table(list *token.List, isBaseCode bool, needIndex bool) *lookupTable {
	maskBasecode := !isBaseCode

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.tables[list]
	if t != nil && (t.window != m.minMatch || t.maskBasecode != maskBasecode) {
		t = nil
	}
	if t != nil && (!needIndex || t.index != nil) {
		return t
	}

	marked := initialMarked(list, isBaseCode)
	t = &lookupTable{window: m.minMatch, maskBasecode: maskBasecode}
	if needIndex {
		t.index = NewHashIndex(3 * (len(list.Tokens) - m.minMatch))
	}
	t.hashes = computeHashes(list.Tokens, marked, m.minMatch, t.index)
	m.tables[list] = t
	return t
}

// emptyComparison builds a match-free comparison carrying both identities
// and matchable token counts.
func emptyComparison(first, second *token.List) *Comparison {
	return &Comparison{
		First:        first.Name,
		Second:       second.Name,
		FirstTokens:  countMatchable(first),
		SecondTokens: countMatchable(second),
	}
}

func countMatchable(list *token.List) int {
	n := 0
	for i := range list.Tokens {
		if !list.Tokens[i].IsPivot() {
			n++
		}
	}
	return n
}
