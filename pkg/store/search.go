// Package store persists run results.
// This file implements free-text search over stored comparison records
// using bleve (pure Go, self-contained).
package store

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchStore indexes comparison summaries for history lookups.
type SearchStore struct {
	index bleve.Index
	path  string
}

// SearchHit pairs a comparison ID with its relevance score.
type SearchHit struct {
	ID    string
	Score float64
}

// comparisonDoc is the indexed shape of a comparison record.
type comparisonDoc struct {
	First      string  `json:"first"`
	Second     string  `json:"second"`
	Similarity float64 `json:"similarity"`
}

// buildIndexMapping sets up a lowercased analyzer plus an edge n-gram
// variant so submission names match on prefixes.
func buildIndexMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	err := m.AddCustomAnalyzer("standard_lower", map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("standard analyzer: %w", err)
	}

	err = m.AddCustomTokenFilter("edge_ngram_filter", map[string]interface{}{
		"type": edgengram.Name,
		"min":  2.0,
		"max":  15.0,
	})
	if err != nil {
		return nil, fmt.Errorf("edge ngram filter: %w", err)
	}
	err = m.AddCustomAnalyzer("edge_ngram", map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, "edge_ngram_filter"},
	})
	if err != nil {
		return nil, fmt.Errorf("edge ngram analyzer: %w", err)
	}

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = "edge_ngram"

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("first", nameField)
	doc.AddFieldMappingsAt("second", nameField)

	m.DefaultMapping = doc
	m.DefaultAnalyzer = "standard_lower"
	return m, nil
}

// NewSearchStore opens (or creates) the bleve index at path.
func NewSearchStore(path string) (*SearchStore, error) {
	index, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("open search index: %w", err)
		}
		m, mapErr := buildIndexMapping()
		if mapErr != nil {
			return nil, mapErr
		}
		index, err = bleve.New(path, m)
		if err != nil {
			return nil, fmt.Errorf("create search index: %w", err)
		}
	}
	return &SearchStore{index: index, path: path}, nil
}

// Close releases the index.
func (s *SearchStore) Close() error {
	return s.index.Close()
}

// Index adds or replaces a comparison record in the search index.
func (s *SearchStore) Index(rec *ComparisonRecord) error {
	return s.index.Index(rec.ID, comparisonDoc{
		First:      rec.First,
		Second:     rec.Second,
		Similarity: rec.Similarity,
	})
}

// Search matches submission names fuzzily and by prefix, returning up to
// limit comparison IDs, best first.
func (s *SearchStore) Search(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}

	match := bleve.NewMatchQuery(query)
	fuzzy := bleve.NewMatchQuery(query)
	fuzzy.SetFuzziness(1)
	q := bleve.NewDisjunctionQuery(match, fuzzy)

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, SearchHit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}
