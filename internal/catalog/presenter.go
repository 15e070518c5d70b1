package catalog

import (
	"net/url"

	"github.com/amterp/forts/internal/model"
)

// Presenter owns one page view's snapshot and filter criteria.
//
// Visible is recomputed over the whole snapshot on every call. There is no
// index and no cached result: catalogs are a few hundred records at most.
type Presenter struct {
	snapshot []*model.Fort
	criteria model.Criteria
}

// NewPresenter takes ownership of snapshot. Callers must not retain or
// modify the slice afterwards; SnapshotCache.Get already returns a private copy.
func NewPresenter(snapshot []*model.Fort, c model.Criteria) *Presenter {
	if snapshot == nil {
		snapshot = []*model.Fort{}
	}
	return &Presenter{snapshot: snapshot, criteria: c.Normalized()}
}

// ListView is everything a list page renders.
type ListView struct {
	Panel FilterPanel
	Forts []*model.Fort
	Total int
	Empty bool
}

// Criteria returns the current criteria.
func (p *Presenter) Criteria() model.Criteria {
	return p.criteria
}

// SetSearch replaces the free-text query.
func (p *Presenter) SetSearch(q string) {
	p.criteria.Search = q
}

// SetType replaces the type filter. Unknown values clear the filter.
func (p *Presenter) SetType(t string) {
	p.criteria.Type = model.TypeFilter(t)
}

// SetRegion replaces the region filter. Unknown values clear the filter.
func (p *Presenter) SetRegion(r string) {
	p.criteria.Region = model.RegionFilter(r)
}

// Callbacks wires the presenter's setters into a filter panel.
func (p *Presenter) Callbacks() PanelCallbacks {
	return PanelCallbacks{
		OnSearch:       p.SetSearch,
		OnTypeChange:   p.SetType,
		OnRegionChange: p.SetRegion,
	}
}

// Panel returns a panel that reflects the current criteria.
func (p *Presenter) Panel() FilterPanel {
	return NewFilterPanel(p.criteria, p.Callbacks())
}

// Update feeds submitted control values through the panel into the presenter.
func (p *Presenter) Update(values url.Values) {
	p.Panel().Report(values)
}

// Visible derives the records matching the current criteria.
func (p *Presenter) Visible() []*model.Fort {
	return Apply(p.snapshot, p.criteria)
}

// Total is the snapshot size, regardless of criteria.
func (p *Presenter) Total() int {
	return len(p.snapshot)
}

// View renders the current state. Empty is set when nothing matches so the
// page shows its "no results" state rather than a blank area.
func (p *Presenter) View() ListView {
	visible := p.Visible()
	return ListView{
		Panel: p.Panel(),
		Forts: visible,
		Total: len(p.snapshot),
		Empty: len(visible) == 0,
	}
}
