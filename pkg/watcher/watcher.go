// Package watcher re-triggers comparisons when submission files change.
// It recursively watches the submission roots with fsnotify and coalesces
// event bursts with a debounce window, so one save of many files causes
// one re-run.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/musuliman/codesim/pkg/ignore"
)

var watchLog = log.New(os.Stderr, "[codesim:watcher] ", log.Ltime)

// DefaultDebounceDelay is how long the watcher waits after the last event
// before firing.
const DefaultDebounceDelay = 2 * time.Second

// Config configures a Watcher.
type Config struct {
	// Roots are the directories to watch recursively.
	Roots []string
	// DebounceDelay overrides DefaultDebounceDelay when positive.
	DebounceDelay time.Duration
	// Ignore filters watched directories. Nil uses the built-in defaults.
	Ignore *ignore.Matcher
}

// Watcher coalesces file events under its roots into change batches.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	config   Config
	onChange func(changed []string)

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// New creates a watcher that calls onChange with the batch of changed
// paths after each quiet period.
func New(config Config, onChange func(changed []string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounceDelay
	}
	if config.Ignore == nil {
		config.Ignore = ignore.NewFromDefaults()
	}
	return &Watcher{
		fsnotify: fsWatcher,
		config:   config,
		onChange: onChange,
		stop:     make(chan struct{}),
		pending:  make(map[string]bool),
	}, nil
}

// Start registers the directory tree and begins processing events.
func (w *Watcher) Start() error {
	dirs := 0
	for _, root := range w.config.Roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil || !info.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && rel != "." && w.config.Ignore.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			if err := w.fsnotify.Add(path); err == nil {
				dirs++
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	watchLog.Printf("watching %d directories under %v (debounce: %v)",
		dirs, w.config.Roots, w.config.DebounceDelay)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stop) })
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories join the watch set immediately.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsnotify.Add(event.Name)
				}
			}
			w.record(event.Name)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			watchLog.Printf("watch error: %v", err)
		}
	}
}

// record buffers one changed path and (re)arms the debounce timer.
func (w *Watcher) record(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.DebounceDelay, w.fire)
}

// fire drains the pending batch and invokes the handler.
func (w *Watcher) fire() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	select {
	case <-w.stop:
		return
	default:
	}
	w.onChange(changed)
}
