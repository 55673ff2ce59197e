// Package knowledge stores career-guidance entries and retrieves the most
// relevant ones for a chat query, combining embedding similarity with a
// keyword fallback.
package knowledge

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/campushq/naitei/internal/models"
)

// KeywordIndex is a Bleve full-text index over knowledge entries. It backs
// retrieval when the embedder is unavailable and supplements semantic matches
// otherwise.
type KeywordIndex struct {
	index bleve.Index
}

// NewKeywordIndex creates or opens a Bleve index at path. An existing index
// is reused; remove the directory to force a rebuild after a mapping change.
func NewKeywordIndex(path string) (*KeywordIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so literal query
	// words match indexed words.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	im.AddDocumentMapping("entry", docMapping)
	im.DefaultType = "entry"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open keyword index: %w", openErr)
		}
		return &KeywordIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &KeywordIndex{index: index}, nil
}

// Index indexes one entry by id, replacing any previous version.
func (k *KeywordIndex) Index(ctx context.Context, entry *models.KnowledgeEntry) error {
	return k.index.Index(entry.ID, entry)
}

// KeywordResult is one keyword hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// Search runs a match query over title and content.
func (k *KeywordIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := k.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes an entry from the index.
func (k *KeywordIndex) Delete(ctx context.Context, id string) error {
	return k.index.Delete(id)
}

// DocCount returns the number of indexed entries.
func (k *KeywordIndex) DocCount() (uint64, error) {
	return k.index.DocCount()
}

// Close closes the index.
func (k *KeywordIndex) Close() error {
	return k.index.Close()
}
