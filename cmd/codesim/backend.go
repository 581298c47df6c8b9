package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"

	"github.com/musuliman/codesim/pkg/grammar"
	"github.com/musuliman/codesim/pkg/ignore"
	"github.com/musuliman/codesim/pkg/runner"
	"github.com/musuliman/codesim/pkg/similarity"
	"github.com/musuliman/codesim/pkg/store"
	"github.com/musuliman/codesim/pkg/submission"
	"github.com/musuliman/codesim/pkg/tokenize"
)

// backend bundles the effective settings and shared components of one CLI
// invocation: the resolved flag/config values, the loader (one per run,
// so every submission shares a token-type registry), and the runner.
type backend struct {
	cfg *Config

	minMatch  int
	workers   int
	normalize bool
	baseArg   string
	save      bool
	jsonOut   bool

	loader *submission.Loader
	runner *runner.Runner
}

// newBackend resolves flags over the layered config and wires the
// components.
func newBackend(cfg *Config, args []string) (*backend, error) {
	b := &backend{
		cfg:       cfg,
		minMatch:  parseIntFlag(args, "--min-match=", cfg.MinMatch),
		workers:   parseIntFlag(args, "--workers=", cfg.Workers),
		normalize: cfg.Normalize || hasFlag(args, "--normalize"),
		baseArg:   parseFlag(args, "--base="),
		save:      hasFlag(args, "--save"),
		jsonOut:   hasFlag(args, "--json"),
	}
	if b.baseArg == "" {
		b.baseArg = cfg.BaseCode
	}

	matcher, err := ignore.Load(cfg.projectRoot)
	if err != nil {
		return nil, fmt.Errorf("ignore rules: %w", err)
	}

	tz := tokenize.New(grammar.NewCompositeLoader(cfg.GrammarDir))
	b.loader = submission.NewLoader(tz, matcher)
	b.loader.Normalize = b.normalize

	b.runner = runner.New(runner.Options{
		MinimumTokenMatch: b.minMatch,
		Workers:           b.workers,
	})
	return b, nil
}

// loadSubmission loads a directory or file as a submission named by its
// base name.
func (b *backend) loadSubmission(path string) (*submission.Submission, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return b.loader.Load(filepath.Base(abs), abs)
}

// applyBaseCode subtracts the base submission when one is configured.
// For directory layouts the base argument is a path; for run it is the
// name of a subdirectory, resolved by the caller.
func (b *backend) applyBaseCode(subs []*submission.Submission, base *submission.Submission) error {
	if base == nil {
		return nil
	}
	return b.runner.MarkBaseCode(subs, base)
}

// persist writes comparisons and submissions to the project store and the
// search index.
func (b *backend) persist(subs []*submission.Submission, comparisons []*similarity.Comparison) error {
	dbPath := storePath(b.cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	search, err := store.NewSearchStore(searchPath(b.cfg))
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer search.Close()

	for _, sub := range subs {
		rec := &store.SubmissionRecord{
			Name:       sub.Name,
			Root:       sub.Root,
			Files:      sub.Files,
			TokenCount: sub.TokenCount(),
		}
		if err := st.SaveSubmission(rec); err != nil {
			return err
		}
	}
	for _, c := range comparisons {
		rec, err := st.SaveComparison(c, b.runner.Matcher().MinimumTokenMatch())
		if err != nil {
			return err
		}
		if err := search.Index(rec); err != nil {
			return err
		}
	}
	return nil
}

// output renders comparisons as JSON or a table.
func (b *backend) output(comparisons []*similarity.Comparison) error {
	if b.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(comparisons)
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("First", "Second", "Similarity", "Matches", "Matched tokens")
	for _, c := range comparisons {
		table.Append([]string{
			c.First,
			c.Second,
			fmt.Sprintf("%.1f%%", c.Similarity()*100),
			fmt.Sprintf("%d", len(c.Matches)),
			fmt.Sprintf("%d", c.MatchedTokens()),
		})
	}
	return table.Render()
}
