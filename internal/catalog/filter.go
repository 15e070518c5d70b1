// Package catalog holds the list presentation layer: the filter predicate,
// the presenter that owns a page's snapshot, the stateless filter panel, and
// the revalidating snapshot cache that feeds them.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/amterp/forts/internal/model"
)

// SearchFields lists the record fields the free-text search looks at.
var SearchFields = []string{"name", "district", "region"}

// Match reports whether a fort satisfies all three clauses of the criteria.
func Match(f *model.Fort, c model.Criteria) bool {
	c = c.Normalized()
	return matchText(f, c.Search) && matchType(f, c.Type) && matchRegion(f, c.Region)
}

// Apply returns the ordered sub-sequence of snapshot that matches c.
// It is a stable filter: the snapshot order is kept and nothing is re-sorted.
// The result never aliases snapshot's backing array.
func Apply(snapshot []*model.Fort, c model.Criteria) []*model.Fort {
	c = c.Normalized()
	folded := fold(c.Search)

	visible := make([]*model.Fort, 0, len(snapshot))
	for _, f := range snapshot {
		if f == nil {
			continue
		}
		if matchFolded(f, folded) && matchType(f, c.Type) && matchRegion(f, c.Region) {
			visible = append(visible, f)
		}
	}
	return visible
}

func matchText(f *model.Fort, search string) bool {
	return matchFolded(f, fold(search))
}

func matchFolded(f *model.Fort, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range searchable(f) {
		if strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

func searchable(f *model.Fort) []string {
	return []string{f.Name, f.District, string(f.Region)}
}

func matchType(f *model.Fort, t model.FortType) bool {
	return t == model.AnyType || f.Type == t
}

func matchRegion(f *model.Fort, r model.Region) bool {
	return r == model.AnyRegion || f.Region == r
}

// fold applies full Unicode case folding. A new Caser is built per call
// because Casers are stateful and not safe for concurrent use.
func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
