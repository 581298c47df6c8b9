package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/musuliman/codesim/pkg/grammar"
)

// cmdGrammar inspects the grammar loader.
func cmdGrammar(cfg *Config, args []string) error {
	sub := "list"
	if p := positional(args); len(p) > 0 {
		sub = p[0]
	}
	if sub != "list" {
		return fmt.Errorf("unknown grammar subcommand: %s", sub)
	}

	loader := grammar.NewCompositeLoader(cfg.GrammarDir)
	names := loader.Available()
	sort.Strings(names)

	builtin := grammar.NewBuiltinLoader()
	builtinSet := map[string]bool{}
	for _, n := range builtin.Available() {
		builtinSet[n] = true
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("Language", "Source")
	for _, name := range names {
		source := "dynamic"
		if builtinSet[name] {
			source = "built-in"
		}
		table.Append([]string{name, source})
	}
	return table.Render()
}
