// Package ignore filters files and directories out of submission walks
// using gitignore-style patterns. Patterns come from built-in defaults for
// build artifacts and vendored code, optionally extended by a project's
// .codesimignore file.
//
// Pattern syntax:
//
//	# comment
//	*.min.js        — extension match anywhere
//	vendor/         — directory by name at any depth (trailing slash)
//	**/testdata/**  — doublestar globs
//	!keep.go        — negate an earlier pattern
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// BuiltinDefaults are applied even without a .codesimignore file.
var BuiltinDefaults = []string{
	".git/",
	".svn/",
	".hg/",
	".codesim/",
	"node_modules/",
	"dist/",
	"coverage/",
	"__pycache__/",
	".venv/",
	"venv/",
	"vendor/",
	"target/",
	"build/",
	"out/",
	".idea/",
	".vscode/",
	"*.min.js",
	"*.pb.go",
	"*_generated.go",
}

// IgnoreFileName is the per-project pattern file.
const IgnoreFileName = ".codesimignore"

type rule struct {
	pattern  string
	negation bool
	dirOnly  bool
}

// Matcher tests whether a path should be excluded from tokenization.
type Matcher struct {
	rules []rule
}

// NewFromDefaults builds a matcher with only the built-in patterns.
func NewFromDefaults() *Matcher {
	m := &Matcher{}
	m.addPatterns(BuiltinDefaults)
	return m
}

// Load builds a matcher from the defaults plus the root's ignore file, if
// one exists.
func Load(root string) (*Matcher, error) {
	m := NewFromDefaults()

	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	m.addPatterns(patterns)
	return m, nil
}

func (m *Matcher) addPatterns(patterns []string) {
	for _, p := range patterns {
		r := rule{}
		if strings.HasPrefix(p, "!") {
			r.negation = true
			p = p[1:]
		}
		if strings.HasSuffix(p, "/") {
			r.dirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		r.pattern = p
		m.rules = append(m.rules, r)
	}
}

// ShouldIgnore reports whether a slash-separated path relative to the
// walk root is excluded. Later rules win, so negations can rescue paths
// an earlier rule dropped.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			// A directory rule still covers files beneath the directory;
			// segment matching below handles that.
			if !pathSegmentMatch(relPath, r.pattern) {
				continue
			}
			ignored = !r.negation
			continue
		}
		if matchRule(relPath, r.pattern) || pathSegmentMatch(relPath, r.pattern) {
			ignored = !r.negation
		}
	}
	return ignored
}

// matchRule matches the full relative path or its basename against a
// glob.
func matchRule(relPath, pattern string) bool {
	if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
		return true
	}
	if ok, err := doublestar.Match(pattern, filepath.Base(relPath)); err == nil && ok {
		return true
	}
	return false
}

// pathSegmentMatch reports whether any path segment matches the pattern,
// which is how a bare directory name ignores whole subtrees.
func pathSegmentMatch(relPath, pattern string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if ok, err := doublestar.Match(pattern, seg); err == nil && ok {
			return true
		}
	}
	return false
}
