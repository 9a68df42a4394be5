package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// NewSearchIndex opens the bleve index at the configured path, creating it
// with the regulation document mapping on first run.
func NewSearchIndex(cfg *Config) (bleve.Index, error) {
	path := cfg.SearchIndexPath

	if _, err := os.Stat(path); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open search index: %w", err)
		}
		return idx, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create search index directory: %w", err)
	}

	idx, err := bleve.New(path, regulationIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return idx, nil
}

func regulationIndexMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("reference", textField)
	doc.AddFieldMappingsAt("name", textField)
	doc.AddFieldMappingsAt("description", textField)
	doc.AddFieldMappingsAt("created_by", textField)
	doc.AddFieldMappingsAt("departments", textField)
	doc.AddFieldMappingsAt("status", keywordField)
	doc.AddFieldMappingsAt("type", keywordField)

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("regulation", doc)
	m.DefaultType = "regulation"
	return m
}
