package cli

import (
	"encoding/json"
	"fmt"

	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/model"
)

// FortOutput wraps a single fort for JSON output.
type FortOutput struct {
	Fort *model.Fort `json:"fort"`
}

// CriteriaOutput is the JSON form of the active filters.
type CriteriaOutput struct {
	Search string `json:"q"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// ListOutput wraps the visible forts for JSON output.
type ListOutput struct {
	Forts    []*model.Fort  `json:"forts"`
	Total    int            `json:"total"`
	Criteria CriteriaOutput `json:"criteria"`
}

// NewListOutput captures the presenter's visible subset.
// Always returns an empty array (not null) when nothing matches.
func NewListOutput(p *catalog.Presenter) ListOutput {
	visible := p.Visible()
	if visible == nil {
		visible = []*model.Fort{}
	}
	c := p.Criteria()
	return ListOutput{
		Forts: visible,
		Total: p.Total(),
		Criteria: CriteriaOutput{
			Search: c.Search,
			Type:   string(c.Type),
			Region: string(c.Region),
		},
	}
}

// printJson marshals the value as indented JSON and prints it to stdout.
func printJson(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
