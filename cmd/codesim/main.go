// Package main provides the CLI for codesim, a token-based source
// similarity detector.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/musuliman/codesim/internal/version"
)

const defaultStoreDir = ".codesim"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	cfg, err := loadConfig(findProjectRoot())
	if err != nil {
		fatal("config: %v", err)
	}

	if err := runCommand(cmd, cfg, args); err != nil {
		fatal("%v", err)
	}
}

func runCommand(cmd string, cfg *Config, args []string) error {
	switch cmd {
	case "compare":
		return cmdCompare(cfg, args)
	case "run":
		return cmdRun(cfg, args)
	case "history":
		return cmdHistory(cfg, args)
	case "watch":
		return cmdWatch(cfg, args)
	case "grammar":
		return cmdGrammar(cfg, args)
	case "mcp":
		return cmdMCP(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	case "version", "-v", "--version":
		return cmdVersion(args)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func cmdVersion(args []string) error {
	if hasFlag(args, "--json") {
		fmt.Println(version.JSON())
		return nil
	}
	fmt.Println(version.String())
	return nil
}

// findProjectRoot returns the enclosing git worktree root, or the current
// directory outside a repository. The store and config default to living
// there.
func findProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return cwd
	}
	wt, err := repo.Worktree()
	if err != nil {
		return cwd
	}
	return wt.Filesystem.Root()
}

// storePath returns the bbolt database location under the project root.
func storePath(cfg *Config) string {
	if cfg.StorePath != "" {
		return cfg.StorePath
	}
	return filepath.Join(cfg.projectRoot, defaultStoreDir, "results.db")
}

// searchPath returns the bleve sidecar index location.
func searchPath(cfg *Config) string {
	return filepath.Join(filepath.Dir(storePath(cfg)), "search.bleve")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "codesim: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`codesim — token-based source similarity detection

Usage:
  codesim compare <a> <b> [flags]   Compare two submissions (dirs or files)
  codesim run <root> [flags]        Compare every pair of subdirectories
  codesim history [query]           Show or search stored results
  codesim watch <a> <b> [flags]     Re-compare whenever sources change
  codesim grammar list              List available language grammars
  codesim mcp                       Serve compare tools over MCP stdio
  codesim version [--json]          Print version information

Flags (compare, run, watch):
  --min-match=N    Minimum token match length (default 9, clamped to 1..25)
  --normalize      Normalize token streams before matching
  --base=PATH      Base-code submission to subtract (run: subdirectory name)
  --workers=N      Comparison parallelism (run only)
  --save           Persist results to the project store
  --json           Emit JSON instead of a table

Configuration is read from codesim.json in the project root and from
CODESIM_* environment variables; flags win.
`)
}
