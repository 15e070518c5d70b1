package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/testutil"
)

func TestFilterPanel_ReflectsCriteria(t *testing.T) {
	c := model.ParseCriteria("sea", string(model.SeaFort), string(model.Konkan))

	p := NewFilterPanel(c, PanelCallbacks{})

	assert.Equal(t, "sea", p.Search)
	assert.Equal(t, string(model.SeaFort), p.Type)
	assert.Equal(t, string(model.Konkan), p.Region)

	require.Len(t, p.TypeOptions, 4)
	assert.Equal(t, model.FilterAllLabel, p.TypeOptions[0].Value)
	selected := 0
	for _, o := range p.TypeOptions {
		if o.Selected {
			selected++
			assert.Equal(t, string(model.SeaFort), o.Value)
		}
	}
	assert.Equal(t, 1, selected)

	require.Len(t, p.RegionOptions, 6)
	assert.Equal(t, model.FilterAllLabel, p.RegionOptions[0].Value)
	assert.Equal(t, string(model.WesternMaharashtra), p.RegionOptions[1].Value)
}

func TestFilterPanel_ReportOrder(t *testing.T) {
	var calls []string
	cb := PanelCallbacks{
		OnSearch:       func(q string) { calls = append(calls, "search:"+q) },
		OnTypeChange:   func(v string) { calls = append(calls, "type:"+v) },
		OnRegionChange: func(v string) { calls = append(calls, "region:"+v) },
	}
	p := NewFilterPanel(model.NoFilter(), cb)

	p.Report(url.Values{
		ParamRegion: {"Konkan"},
		ParamSearch: {"raig"},
		ParamType:   {"Hill Fort"},
	})

	assert.Equal(t, []string{"search:raig", "type:Hill Fort", "region:Konkan"}, calls)
}

func TestFilterPanel_ReportSkipsAbsentControls(t *testing.T) {
	var calls []string
	cb := PanelCallbacks{
		OnSearch:       func(q string) { calls = append(calls, "search") },
		OnRegionChange: func(v string) { calls = append(calls, "region") },
	}
	p := NewFilterPanel(model.NoFilter(), cb)

	p.Report(url.Values{ParamType: {"Sea Fort"}, ParamRegion: {""}})

	assert.Equal(t, []string{"region"}, calls)
}

func TestFilterPanel_Query(t *testing.T) {
	p := NewFilterPanel(model.ParseCriteria("", "All", string(model.Vidarbha)), PanelCallbacks{})
	assert.Equal(t, "region=Vidarbha", p.Query().Encode())

	p = NewFilterPanel(model.NoFilter(), PanelCallbacks{})
	assert.Empty(t, p.Query())
}

func TestPresenter_UpdateThroughPanel(t *testing.T) {
	p := NewPresenter(testutil.SampleSnapshot(), model.NoFilter())

	p.Update(url.Values{ParamSearch: {"raig"}})
	assert.Equal(t, []string{"f1"}, ids(p.Visible()))

	p.Update(url.Values{ParamSearch: {""}, ParamType: {string(model.SeaFort)}})
	assert.Equal(t, []string{"f2"}, ids(p.Visible()))

	p.Update(url.Values{ParamType: {"Castle"}})
	assert.Equal(t, model.AnyType, p.Criteria().Type)
	assert.Len(t, p.Visible(), 5)
}

func TestPresenter_NilSnapshot(t *testing.T) {
	p := NewPresenter(nil, model.Criteria{})

	view := p.View()

	assert.True(t, view.Empty)
	assert.Equal(t, 0, view.Total)
	assert.Equal(t, model.FilterAllLabel, view.Panel.Type)
}

func TestPresenter_SnapshotUnchangedByFiltering(t *testing.T) {
	snapshot := testutil.SampleSnapshot()
	before := ids(snapshot)
	p := NewPresenter(snapshot, model.ParseCriteria("sinh", "", ""))

	_ = p.View()
	p.SetRegion(string(model.Konkan))
	_ = p.Visible()

	assert.Equal(t, before, ids(snapshot))
	assert.Equal(t, 5, p.Total())
}
