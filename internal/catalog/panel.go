package catalog

import (
	"net/url"

	"github.com/amterp/forts/internal/model"
)

// Query parameter names used by the filter controls.
const (
	ParamSearch = "q"
	ParamType   = "type"
	ParamRegion = "region"
)

// PanelCallbacks receive every control change as it happens.
type PanelCallbacks struct {
	OnSearch       func(query string)
	OnTypeChange   func(fortType string)
	OnRegionChange func(region string)
}

// Option is one entry of a selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FilterPanel is the fully controlled view of the three filter controls.
// It holds only the values handed to it by its owner and never decides
// anything on its own.
type FilterPanel struct {
	Search        string
	Type          string
	Region        string
	TypeOptions   []Option
	RegionOptions []Option

	callbacks PanelCallbacks
}

// NewFilterPanel builds a panel that reflects c exactly and reports changes
// through cb.
func NewFilterPanel(c model.Criteria, cb PanelCallbacks) FilterPanel {
	c = c.Normalized()

	typeOpts := []Option{{Value: model.FilterAllLabel, Label: model.FilterAllLabel, Selected: c.Type == model.AnyType}}
	for _, t := range model.AllFortTypes() {
		typeOpts = append(typeOpts, Option{Value: string(t), Label: string(t), Selected: c.Type == t})
	}

	regionOpts := []Option{{Value: model.FilterAllLabel, Label: model.FilterAllLabel, Selected: c.Region == model.AnyRegion}}
	for _, r := range model.FilterRegions() {
		regionOpts = append(regionOpts, Option{Value: string(r), Label: string(r), Selected: c.Region == r})
	}

	return FilterPanel{
		Search:        c.Search,
		Type:          string(c.Type),
		Region:        string(c.Region),
		TypeOptions:   typeOpts,
		RegionOptions: regionOpts,
		callbacks:     cb,
	}
}

// Report forwards each control value present in values to its callback,
// in search, type, region order. Absent controls are not reported.
func (p FilterPanel) Report(values url.Values) {
	if values.Has(ParamSearch) && p.callbacks.OnSearch != nil {
		p.callbacks.OnSearch(values.Get(ParamSearch))
	}
	if values.Has(ParamType) && p.callbacks.OnTypeChange != nil {
		p.callbacks.OnTypeChange(values.Get(ParamType))
	}
	if values.Has(ParamRegion) && p.callbacks.OnRegionChange != nil {
		p.callbacks.OnRegionChange(values.Get(ParamRegion))
	}
}

// Query encodes the panel's current values, omitting "no filter" selections.
func (p FilterPanel) Query() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set(ParamSearch, p.Search)
	}
	if p.Type != "" && p.Type != model.FilterAllLabel {
		v.Set(ParamType, p.Type)
	}
	if p.Region != "" && p.Region != model.FilterAllLabel {
		v.Set(ParamRegion, p.Region)
	}
	return v
}
