package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/musuliman/codesim/pkg/store"
)

// cmdHistory lists stored results, or searches them when a query is
// given.
func cmdHistory(cfg *Config, args []string) error {
	limit := parseIntFlag(args, "--limit=", 20)
	query := strings.Join(positional(args), " ")

	st, err := store.NewBoltStore(storePath(cfg))
	if err != nil {
		return fmt.Errorf("open store (run something with --save first?): %w", err)
	}
	defer st.Close()

	var recs []*store.ComparisonRecord
	if query == "" {
		recs, err = st.ListComparisons(limit)
		if err != nil {
			return err
		}
	} else {
		search, err := store.NewSearchStore(searchPath(cfg))
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}
		defer search.Close()

		hits, err := search.Search(query, limit)
		if err != nil {
			return err
		}
		for _, hit := range hits {
			rec, err := st.GetComparison(hit.ID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
	}

	if len(recs) == 0 {
		fmt.Println("no stored comparisons")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "First", "Second", "Similarity", "Matches", "When")
	for _, rec := range recs {
		table.Append([]string{
			rec.ID,
			rec.First,
			rec.Second,
			fmt.Sprintf("%.1f%%", rec.Similarity*100),
			fmt.Sprintf("%d", len(rec.Matches)),
			rec.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}
