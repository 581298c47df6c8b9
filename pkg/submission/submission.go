// Package submission models one unit of comparison: a named directory (or
// single file) whose supported sources are tokenized into one list.
package submission

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/musuliman/codesim/pkg/ignore"
	"github.com/musuliman/codesim/pkg/normalize"
	"github.com/musuliman/codesim/pkg/token"
	"github.com/musuliman/codesim/pkg/tokenize"
)

// Submission is a named body of code with its token list.
type Submission struct {
	Name  string
	Root  string
	Files []string

	Tokens *token.List
}

// TokenCount returns the number of matchable tokens, pivots excluded.
func (s *Submission) TokenCount() int {
	n := 0
	for i := range s.Tokens.Tokens {
		if !s.Tokens.Tokens[i].IsPivot() {
			n++
		}
	}
	return n
}

// Loader walks submission roots, filters files, and tokenizes them.
type Loader struct {
	tokenizer *tokenize.Tokenizer
	matcher   *ignore.Matcher

	// Normalize runs the token normalizer on every loaded submission.
	Normalize bool
}

// NewLoader creates a loader. The same loader must serve a whole run so
// all submissions share one token-type registry.
func NewLoader(tz *tokenize.Tokenizer, m *ignore.Matcher) *Loader {
	if m == nil {
		m = ignore.NewFromDefaults()
	}
	return &Loader{tokenizer: tz, matcher: m}
}

// Load builds a submission from a directory or a single file.
func (l *Loader) Load(name, root string) (*Submission, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("submission %s: %w", name, err)
	}

	var files []string
	if !info.IsDir() {
		if tokenize.SupportedFile(root) {
			files = []string{root}
		}
	} else {
		err = filepath.Walk(root, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil || rel == "." {
				return nil
			}
			if l.matcher.ShouldIgnore(rel, fi.IsDir()) {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !fi.IsDir() && tokenize.SupportedFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)

	list, err := l.tokenizer.SubmissionList(name, files)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", name, err)
	}
	if l.Normalize {
		normalized, err := normalize.Normalize(list)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", name, err)
		}
		list = normalized
	}

	return &Submission{
		Name:   name,
		Root:   root,
		Files:  list.Files,
		Tokens: list,
	}, nil
}

// LoadAll treats every child directory of root as one submission, the
// usual layout for a batch of student hand-ins. A child named like the
// base-code name is still loaded; the caller separates it out.
func (l *Loader) LoadAll(root string) ([]*Submission, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read submissions root: %w", err)
	}

	var subs []*Submission
	for _, e := range entries {
		if !e.IsDir() || l.matcher.ShouldIgnore(e.Name(), true) {
			continue
		}
		sub, err := l.Load(e.Name(), filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}
