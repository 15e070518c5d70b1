package model

import "strings"

// Criteria is the triple of filters applied to a snapshot.
// Criteria live only for one page view and are never persisted.
type Criteria struct {
	Search string
	Type   FortType
	Region Region
}

// NoFilter returns criteria that match every record.
func NoFilter() Criteria {
	return Criteria{Type: AnyType, Region: AnyRegion}
}

// ParseCriteria builds criteria from raw control values.
// Unknown or empty selector values fall back to the "no filter" sentinels,
// so the result is always well-formed.
func ParseCriteria(search, fortType, region string) Criteria {
	return Criteria{
		Search: search,
		Type:   TypeFilter(fortType),
		Region: RegionFilter(region),
	}
}

// TypeFilter maps a selector value to a type filter.
func TypeFilter(s string) FortType {
	t := FortType(strings.TrimSpace(s))
	if t.Valid() {
		return t
	}
	return AnyType
}

// RegionFilter maps a selector value to a region filter.
func RegionFilter(s string) Region {
	r := Region(strings.TrimSpace(s))
	if r.Valid() {
		return r
	}
	return AnyRegion
}

// Normalized replaces zero-valued selectors with their sentinels.
func (c Criteria) Normalized() Criteria {
	if !c.Type.Valid() {
		c.Type = AnyType
	}
	if !c.Region.Valid() {
		c.Region = AnyRegion
	}
	return c
}

// IsEmpty reports whether the criteria filter nothing out.
func (c Criteria) IsEmpty() bool {
	n := c.Normalized()
	return n.Search == "" && n.Type == AnyType && n.Region == AnyRegion
}
