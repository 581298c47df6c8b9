package runner

import (
	"context"
	"testing"

	"github.com/musuliman/codesim/pkg/submission"
	"github.com/musuliman/codesim/pkg/token"
)

// sub builds a submission straight from token types, bypassing the file
// frontend.
func sub(name string, types ...token.Type) *submission.Submission {
	l := token.NewList(name)
	for _, tt := range types {
		l.Append(token.Token{Type: tt})
	}
	l.EndFile()
	return &submission.Submission{Name: name, Tokens: l}
}

func TestRunAllPairs(t *testing.T) {
	subs := []*submission.Submission{
		sub("alice", 1, 2, 3, 4, 5, 6),
		sub("bob", 1, 2, 3, 4, 5, 6),
		sub("carol", 9, 8, 7, 6, 5, 4),
	}

	r := New(Options{MinimumTokenMatch: 3, Workers: 2})
	result, err := r.Run(context.Background(), subs)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.Comparisons) != 3 {
		t.Fatalf("expected 3 pairwise comparisons, got %d", len(result.Comparisons))
	}
	if result.FailedPairs != 0 {
		t.Fatalf("unexpected failed pairs: %d", result.FailedPairs)
	}

	// alice/bob are identical and must rank first.
	top := result.Comparisons[0]
	if top.Similarity() != 1.0 {
		t.Fatalf("top comparison should be the identical pair, got %+v", top)
	}
	names := map[string]bool{top.First: true, top.Second: true}
	if !names["alice"] || !names["bob"] {
		t.Fatalf("top pair should be alice/bob, got %s/%s", top.First, top.Second)
	}

	for _, c := range result.Comparisons[1:] {
		if c.Similarity() > top.Similarity() {
			t.Fatal("comparisons not sorted by descending similarity")
		}
	}
}

func TestRunRecordsFailedPairs(t *testing.T) {
	broken := &submission.Submission{Name: "broken", Tokens: token.NewList("broken")}
	broken.Tokens.Append(token.Token{Type: 1})
	broken.Tokens.Append(token.Token{Type: 2})
	broken.Tokens.Append(token.Token{Type: 3})
	broken.Tokens.Append(token.Token{Type: 4})
	// No FileEnd pivot: the matcher must reject the pair, the run must
	// survive it.

	subs := []*submission.Submission{
		sub("ok-a", 1, 2, 3, 4, 5),
		sub("ok-b", 1, 2, 3, 4, 5),
		broken,
	}

	r := New(Options{MinimumTokenMatch: 3})
	result, err := r.Run(context.Background(), subs)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.FailedPairs != 2 {
		t.Fatalf("expected 2 failed pairs involving the broken submission, got %d", result.FailedPairs)
	}
	if len(result.Comparisons) != 3 {
		t.Fatalf("failed pairs must still contribute empty comparisons, got %d", len(result.Comparisons))
	}
}

func TestRunWithBaseCode(t *testing.T) {
	base := sub("base", 7, 7, 7, 7)
	alice := sub("alice", 7, 7, 7, 7, 1, 2, 3)
	bob := sub("bob", 7, 7, 7, 7, 1, 2, 3)

	r := New(Options{MinimumTokenMatch: 3})
	if err := r.MarkBaseCode([]*submission.Submission{alice, bob}, base); err != nil {
		t.Fatalf("MarkBaseCode error: %v", err)
	}

	result, err := r.Run(context.Background(), []*submission.Submission{alice, bob})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	c := result.Comparisons[0]
	for _, m := range c.Matches {
		for k := 0; k < m.Length; k++ {
			if m.StartInFirst+k < 4 {
				t.Fatalf("match %+v covers base-code tokens", m)
			}
		}
	}
	if len(c.Matches) != 1 {
		t.Fatalf("expected exactly the non-base run to match, got %v", c.Matches)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(Options{MinimumTokenMatch: 3})
	_, err := r.Run(ctx, []*submission.Submission{
		sub("a", 1, 2, 3, 4),
		sub("b", 1, 2, 3, 4),
	})
	if err == nil {
		t.Fatal("expected context error from a cancelled run")
	}
}
