package store

import (
	"time"

	"github.com/amterp/forts/internal/id"
	"github.com/amterp/forts/internal/model"
)

// newRecord turns a validated draft into a stored record.
func newRecord(gen id.Generator, now func() time.Time, d *model.FortDraft) *model.Fort {
	return &model.Fort{
		ID:              gen.Generate(),
		Name:            d.Name,
		Type:            d.Type,
		District:        d.District,
		Region:          d.Region,
		Elevation:       d.Elevation,
		Period:          d.Period,
		BuiltBy:         d.BuiltBy,
		Significance:    d.Significance,
		CurrentStatus:   d.CurrentStatus,
		BestTimeToVisit: d.BestTimeToVisit,
		TrekDifficulty:  d.TrekDifficulty,
		EntranceFee:     d.EntranceFee,
		Images:          []string{},
		CreatedAtMillis: now().UnixMilli(),
	}
}
