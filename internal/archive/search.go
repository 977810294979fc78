package archive

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// searchIndex wraps the bleve index over archived entries.
type searchIndex struct {
	index bleve.Index
}

// Hit is one search result.
type Hit struct {
	Date  string
	Score float64
	Text  string
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	entryMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = true
	entryMapping.AddFieldMappingsAt("text", textField)
	entryMapping.AddFieldMappingsAt("counseling", textField)

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name
	keywordField.Store = true
	entryMapping.AddFieldMappingsAt("date", keywordField)
	entryMapping.AddFieldMappingsAt("emotion", keywordField)

	indexMapping.DefaultMapping = entryMapping
	return indexMapping
}

func openSearchIndex(path string) (*searchIndex, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	return &searchIndex{index: index}, nil
}

func (s *searchIndex) Close() error {
	return s.index.Close()
}

// indexEntry indexes one entry under its date. Re-indexing the same date
// replaces the previous document.
func (s *searchIndex) indexEntry(date, text, counseling, emotion string) error {
	doc := map[string]any{
		"date":       date,
		"text":       text,
		"counseling": counseling,
		"emotion":    emotion,
	}
	if err := s.index.Index(date, doc); err != nil {
		return fmt.Errorf("failed to index entry %s: %w", date, err)
	}
	return nil
}

// Search runs a match query over entry text and counseling and returns up to
// k hits, best first.
func (a *Archive) Search(query string, k int) ([]Hit, error) {
	matchQuery := bleve.NewMatchQuery(query)
	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = k
	searchRequest.Fields = []string{"text"}

	searchResult, err := a.index.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []Hit
	for _, hit := range searchResult.Hits {
		h := Hit{Date: hit.ID, Score: hit.Score}
		if text, ok := hit.Fields["text"].(string); ok {
			h.Text = text
		}
		hits = append(hits, h)
	}
	return hits, nil
}
