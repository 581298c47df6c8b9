package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/musuliman/codesim/pkg/watcher"
)

// cmdWatch runs an initial comparison and repeats it whenever files change
// under either submission directory. A submission given as a single file
// is compared once but not watched.
func cmdWatch(cfg *Config, args []string) error {
	paths := positional(args)
	if len(paths) != 2 {
		return fmt.Errorf("watch needs exactly two paths")
	}

	compareOnce := func() {
		// Each round rebuilds the backend: token lists, basecode flags,
		// and hash caches must not leak across file changes.
		if err := cmdCompare(cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "codesim: compare failed: %v\n", err)
		}
	}
	compareOnce()

	w, err := watcher.New(watcher.Config{Roots: paths}, func(changed []string) {
		fmt.Fprintf(os.Stderr, "codesim: %d change(s), re-comparing\n", len(changed))
		compareOnce()
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}
