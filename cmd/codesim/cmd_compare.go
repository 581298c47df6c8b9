package main

import (
	"fmt"

	"github.com/musuliman/codesim/pkg/similarity"
	"github.com/musuliman/codesim/pkg/submission"
)

// cmdCompare compares two submissions given as directories or files.
func cmdCompare(cfg *Config, args []string) error {
	paths := positional(args)
	if len(paths) != 2 {
		return fmt.Errorf("compare needs exactly two paths, got %d", len(paths))
	}

	b, err := newBackend(cfg, args)
	if err != nil {
		return err
	}

	a, err := b.loadSubmission(paths[0])
	if err != nil {
		return err
	}
	other, err := b.loadSubmission(paths[1])
	if err != nil {
		return err
	}

	var base *submission.Submission
	if b.baseArg != "" {
		base, err = b.loadSubmission(b.baseArg)
		if err != nil {
			return fmt.Errorf("base code: %w", err)
		}
		if err := b.applyBaseCode([]*submission.Submission{a, other}, base); err != nil {
			return err
		}
	}

	c, err := b.runner.Matcher().Compare(a.Tokens, other.Tokens)
	if err != nil {
		return err
	}
	comparisons := []*similarity.Comparison{c}

	if b.save {
		if err := b.persist([]*submission.Submission{a, other}, comparisons); err != nil {
			return err
		}
	}
	return b.output(comparisons)
}
