// Package runner drives all-pairs comparison across a set of submissions:
// an optional base-code pass first, then every unordered pair through the
// matcher on a bounded worker pool. Pairs are independent, so they
// parallelize freely; the per-comparison state lives inside the matcher
// call.
package runner

import (
	"context"
	"log"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/musuliman/codesim/pkg/similarity"
	"github.com/musuliman/codesim/pkg/submission"
)

var runnerLog = log.New(os.Stderr, "[codesim:runner] ", log.Ltime)

// Options configures a run.
type Options struct {
	// MinimumTokenMatch is the match-length floor, clamped by the matcher.
	MinimumTokenMatch int
	// Workers bounds comparison parallelism. Zero means GOMAXPROCS,
	// capped at 16.
	Workers int
}

func (o Options) workers() int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
		if w > 16 {
			w = 16
		}
	}
	return w
}

// Result is the outcome of one run.
type Result struct {
	Comparisons []*similarity.Comparison
	// FailedPairs counts pairs that yielded an empty comparison because
	// of a contract violation. Failures are non-fatal to the run.
	FailedPairs int
}

// Runner owns the matcher (and therefore its hash-table caches) for one
// batch of submissions.
type Runner struct {
	matcher *similarity.Matcher
	opts    Options
}

// New creates a runner.
func New(opts Options) *Runner {
	minMatch := opts.MinimumTokenMatch
	if minMatch == 0 {
		minMatch = similarity.DefaultMinimumTokenMatch
	}
	return &Runner{
		matcher: similarity.NewMatcher(minMatch),
		opts:    opts,
	}
}

// Matcher exposes the underlying matcher for single-pair callers.
func (r *Runner) Matcher() *similarity.Matcher {
	return r.matcher
}

// MarkBaseCode runs the base-code pass over every submission. It must be
// called before Run when a base submission exists; the base's hash table
// is built once and reused.
func (r *Runner) MarkBaseCode(subs []*submission.Submission, base *submission.Submission) error {
	if err := r.matcher.PreprocessBaseCode(base.Tokens); err != nil {
		return err
	}
	for _, sub := range subs {
		if err := r.matcher.MarkBaseCode(sub.Tokens, base.Tokens); err != nil {
			return err
		}
	}
	return nil
}

// Run compares every unordered pair of submissions. A pair that fails
// contributes its empty comparison and is counted, not fatal. The result
// is ordered by descending similarity.
func (r *Runner) Run(ctx context.Context, subs []*submission.Submission) (*Result, error) {
	type pair struct{ a, b int }
	var pairs []pair
	for i := 0; i < len(subs); i++ {
		for j := i + 1; j < len(subs); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	comparisons := make([]*similarity.Comparison, len(pairs))
	failed := make([]bool, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.workers())

	for idx, p := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := r.matcher.Compare(subs[p.a].Tokens, subs[p.b].Tokens)
			if err != nil {
				runnerLog.Printf("pair %s/%s failed: %v", subs[p.a].Name, subs[p.b].Name, err)
				failed[idx] = true
			}
			comparisons[idx] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Comparisons: comparisons}
	for _, f := range failed {
		if f {
			result.FailedPairs++
		}
	}
	sort.SliceStable(result.Comparisons, func(i, j int) bool {
		return result.Comparisons[i].Similarity() > result.Comparisons[j].Similarity()
	})
	return result, nil
}
