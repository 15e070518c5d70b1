// Package export serializes the visible subset of a catalog view.
package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amterp/forts/internal/blob"
	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/util"
	"github.com/amterp/forts/internal/version"
)

const ContentType = "application/json"

// Criteria is the JSON form of the filters that produced an export.
type Criteria struct {
	Search string `json:"q,omitempty"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// Document is the export file format.
type Document struct {
	Schema      string        `json:"forts_schema"`
	GeneratedAt time.Time     `json:"generated_at"`
	Criteria    Criteria      `json:"criteria"`
	Total       int           `json:"total"`
	Forts       []*model.Fort `json:"forts"`
}

// Build captures the presenter's current visible subset.
func Build(p *catalog.Presenter, now time.Time) *Document {
	c := p.Criteria()
	return &Document{
		Schema:      version.CurrentExportSchema(),
		GeneratedAt: now.UTC(),
		Criteria: Criteria{
			Search: c.Search,
			Type:   string(c.Type),
			Region: string(c.Region),
		},
		Total: p.Total(),
		Forts: p.Visible(),
	}
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write stores the document under key.
func Write(ctx context.Context, store blob.Store, key string, d *Document) (blob.Info, error) {
	data, err := d.Marshal()
	if err != nil {
		return blob.Info{}, err
	}
	return store.Put(ctx, key, data, ContentType)
}

// DefaultKey names an export file after its filters and date, for example
// forts-hill-fort-konkan-20250304.json. Unfiltered exports are forts-20250304.json.
func DefaultKey(c model.Criteria, now time.Time) string {
	c = c.Normalized()
	var parts []string
	if c.Type != model.AnyType {
		parts = append(parts, string(c.Type))
	}
	if c.Region != model.AnyRegion {
		parts = append(parts, string(c.Region))
	}
	parts = append(parts, c.Search)

	name := "forts"
	if slug := util.Slug(parts...); slug != "" {
		name += "-" + slug
	}
	return name + "-" + now.UTC().Format("20060102") + ".json"
}
