package model

import (
	"fmt"
	"strings"

	fortserr "github.com/amterp/forts/internal/errors"
)

// FortType classifies a fort by its terrain.
type FortType string

const (
	HillFort FortType = "Hill Fort"
	SeaFort  FortType = "Sea Fort"
	LandFort FortType = "Land Fort"

	// AnyType is the filter sentinel meaning "no type filter".
	// It is never a valid record value.
	AnyType FortType = "All"
)

// Region is one of the administrative regions of Maharashtra.
type Region string

const (
	Konkan              Region = "Konkan"
	WesternMaharashtra  Region = "Western Maharashtra"
	Vidarbha            Region = "Vidarbha"
	Marathwada          Region = "Marathwada"
	NorthernMaharashtra Region = "Northern Maharashtra"

	// AnyRegion is the filter sentinel meaning "no region filter".
	AnyRegion Region = "All"
)

// TrekDifficulty rates the climb to a fort.
type TrekDifficulty string

const (
	Easy          TrekDifficulty = "Easy"
	Moderate      TrekDifficulty = "Moderate"
	Difficult     TrekDifficulty = "Difficult"
	VeryDifficult TrekDifficulty = "Very Difficult"
)

// FilterAllLabel is how the filter sentinels are shown in selectors.
const FilterAllLabel = "All"

// AllFortTypes returns the fort types in display order.
func AllFortTypes() []FortType {
	return []FortType{HillFort, SeaFort, LandFort}
}

// AllRegions returns the regions in the order the create form lists them.
func AllRegions() []Region {
	return []Region{Konkan, WesternMaharashtra, Vidarbha, Marathwada, NorthernMaharashtra}
}

// FilterRegions returns the regions in the order the filter panel lists them.
func FilterRegions() []Region {
	return []Region{WesternMaharashtra, Konkan, Marathwada, Vidarbha, NorthernMaharashtra}
}

// AllTrekDifficulties returns the difficulties from easiest to hardest.
func AllTrekDifficulties() []TrekDifficulty {
	return []TrekDifficulty{Easy, Moderate, Difficult, VeryDifficult}
}

func (t FortType) Valid() bool {
	for _, v := range AllFortTypes() {
		if t == v {
			return true
		}
	}
	return false
}

func (r Region) Valid() bool {
	for _, v := range AllRegions() {
		if r == v {
			return true
		}
	}
	return false
}

func (d TrekDifficulty) Valid() bool {
	for _, v := range AllTrekDifficulties() {
		if d == v {
			return true
		}
	}
	return false
}

// ParseFortType converts raw text into a FortType.
// Returns a ValidationError for anything outside the enumeration.
func ParseFortType(s string) (FortType, error) {
	t := FortType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fortserr.InvalidField("type", enumMessage(s, AllFortTypes()))
	}
	return t, nil
}

// ParseRegion converts raw text into a Region.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fortserr.InvalidField("region", enumMessage(s, AllRegions()))
	}
	return r, nil
}

// ParseTrekDifficulty converts raw text into a TrekDifficulty.
func ParseTrekDifficulty(s string) (TrekDifficulty, error) {
	d := TrekDifficulty(strings.TrimSpace(s))
	if !d.Valid() {
		return "", fortserr.InvalidField("trek_difficulty", enumMessage(s, AllTrekDifficulties()))
	}
	return d, nil
}

func enumMessage[T ~string](got string, allowed []T) string {
	if strings.TrimSpace(got) == "" {
		return "a value must be selected"
	}
	names := make([]string, len(allowed))
	for i, v := range allowed {
		names[i] = string(v)
	}
	return fmt.Sprintf("%q is not one of: %s", got, strings.Join(names, ", "))
}
