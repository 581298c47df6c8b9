package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/musuliman/codesim/pkg/submission"
)

// cmdRun compares every pair of subdirectories under a root, the usual
// layout for a batch of hand-ins. --base=NAME separates one subdirectory
// out as shared starter code.
func cmdRun(cfg *Config, args []string) error {
	paths := positional(args)
	if len(paths) != 1 {
		return fmt.Errorf("run needs exactly one submissions root")
	}

	b, err := newBackend(cfg, args)
	if err != nil {
		return err
	}

	all, err := b.loader.LoadAll(paths[0])
	if err != nil {
		return err
	}

	var base *submission.Submission
	subs := all[:0:0]
	for _, sub := range all {
		if b.baseArg != "" && sub.Name == b.baseArg {
			base = sub
			continue
		}
		subs = append(subs, sub)
	}
	if b.baseArg != "" && base == nil {
		return fmt.Errorf("base-code submission %q not found under %s", b.baseArg, paths[0])
	}
	if len(subs) < 2 {
		return fmt.Errorf("need at least two submissions, found %d", len(subs))
	}

	if err := b.applyBaseCode(subs, base); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := b.runner.Run(ctx, subs)
	if err != nil {
		return err
	}
	if result.FailedPairs > 0 {
		fmt.Fprintf(os.Stderr, "codesim: %d pair(s) failed and were recorded empty\n", result.FailedPairs)
	}

	if b.save {
		if err := b.persist(subs, result.Comparisons); err != nil {
			return err
		}
	}
	return b.output(result.Comparisons)
}
