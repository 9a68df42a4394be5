package search

import (
	"context"
	"errors"

	"github.com/blevesearch/bleve/v2"

	"compliance-platform/internal/domain"
)

// ErrIndexUnavailable signals that the text index cannot serve queries and
// the caller should use the database fallback.
var ErrIndexUnavailable = errors.New("search index unavailable")

// Document is the indexed shape of a regulation. Field names line up with
// the index mapping in internal/config.
type Document struct {
	ID          string   `json:"id"`
	Reference   string   `json:"reference"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Type        string   `json:"type"`
	CreatedBy   string   `json:"created_by"`
	Departments []string `json:"departments"`
}

// Hit is one query match with its relevance score.
type Hit struct {
	Document
	Score float64
}

// Index abstracts the text index so the service can run against bleve, or
// against nothing at all when search is disabled.
type Index interface {
	Index(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, text string, filter domain.RegulationFilter, limit, offset int) ([]Hit, int64, error)
}

type bleveIndex struct {
	idx bleve.Index
}

func NewBleveIndex(idx bleve.Index) Index {
	return &bleveIndex{idx: idx}
}

func (b *bleveIndex) Index(ctx context.Context, doc Document) error {
	return b.idx.Index(doc.ID, doc)
}

func (b *bleveIndex) Delete(ctx context.Context, id string) error {
	return b.idx.Delete(id)
}

func (b *bleveIndex) Query(ctx context.Context, text string, filter domain.RegulationFilter, limit, offset int) ([]Hit, int64, error) {
	// Reference matches outrank name matches, which outrank everything else.
	ref := bleve.NewMatchQuery(text)
	ref.SetField("reference")
	ref.SetBoost(3)

	name := bleve.NewMatchQuery(text)
	name.SetField("name")
	name.SetBoost(2)

	desc := bleve.NewMatchQuery(text)
	desc.SetField("description")

	creator := bleve.NewMatchQuery(text)
	creator.SetField("created_by")

	dept := bleve.NewMatchQuery(text)
	dept.SetField("departments")

	query := bleve.NewBooleanQuery()
	query.AddMust(bleve.NewDisjunctionQuery(ref, name, desc, creator, dept))

	if filter.Status != nil {
		tq := bleve.NewTermQuery(string(*filter.Status))
		tq.SetField("status")
		query.AddMust(tq)
	}
	if filter.Type != nil {
		tq := bleve.NewTermQuery(string(*filter.Type))
		tq.SetField("type")
		query.AddMust(tq)
	}

	req := bleve.NewSearchRequestOptions(query, limit, offset, false)
	req.Fields = []string{"*"}

	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{
			Document: Document{
				ID:          h.ID,
				Reference:   stringField(h.Fields, "reference"),
				Name:        stringField(h.Fields, "name"),
				Description: stringField(h.Fields, "description"),
				Status:      stringField(h.Fields, "status"),
				Type:        stringField(h.Fields, "type"),
				CreatedBy:   stringField(h.Fields, "created_by"),
				Departments: stringsField(h.Fields, "departments"),
			},
			Score: h.Score,
		})
	}
	return hits, int64(res.Total), nil
}

// Stored fields come back as interface{} and as a bare value when the slice
// had one element.
func stringField(fields map[string]interface{}, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func stringsField(fields map[string]interface{}, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// NoopIndex is the stand-in when search is disabled. Writes succeed silently
// and queries report the index unavailable so callers fall back to the
// database.
type NoopIndex struct{}

func NewNoopIndex() Index { return NoopIndex{} }

func (NoopIndex) Index(ctx context.Context, doc Document) error { return nil }
func (NoopIndex) Delete(ctx context.Context, id string) error   { return nil }

func (NoopIndex) Query(ctx context.Context, text string, filter domain.RegulationFilter, limit, offset int) ([]Hit, int64, error) {
	return nil, 0, ErrIndexUnavailable
}
