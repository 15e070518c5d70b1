package model

import (
	"strconv"
	"strings"
	"unicode/utf8"

	fortserr "github.com/amterp/forts/internal/errors"
)

// Fort is one catalog entry.
// The core never mutates a stored fort; it only filters, displays,
// creates and deletes whole records.
type Fort struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Type            FortType       `json:"type"`
	District        string         `json:"district"`
	Region          Region         `json:"region"`
	Elevation       string         `json:"elevation"`
	Period          string         `json:"period"`
	BuiltBy         string         `json:"built_by"`
	Significance    string         `json:"significance"`
	CurrentStatus   string         `json:"current_status"`
	BestTimeToVisit string         `json:"best_time_to_visit"`
	TrekDifficulty  TrekDifficulty `json:"trek_difficulty"`
	EntranceFee     string         `json:"entrance_fee,omitempty"`
	Images          []string       `json:"img"`
	CreatedAtMillis int64          `json:"created_at_millis"`
}

// Clone returns a deep copy so callers can hand out records without sharing
// the image slice.
func (f *Fort) Clone() *Fort {
	if f == nil {
		return nil
	}
	c := *f
	if f.Images != nil {
		c.Images = make([]string, len(f.Images))
		copy(c.Images, f.Images)
	}
	return &c
}

// BadgeVariant returns the card badge style for the fort's type.
func (f *Fort) BadgeVariant() string {
	switch f.Type {
	case HillFort:
		return "default"
	case SeaFort:
		return "secondary"
	default:
		return "outline"
	}
}

// FeeLabel is the entrance fee as displayed. A bare amount such as "25" gets
// the rupee sign; free text such as "Free" or "₹50" is shown as entered.
func (f *Fort) FeeLabel() string {
	if _, err := strconv.ParseUint(f.EntranceFee, 10, 64); err == nil {
		return "₹" + f.EntranceFee
	}
	return f.EntranceFee
}

// FortDraft is a fully-populated record awaiting insertion.
// Images are never supplied at creation.
type FortDraft struct {
	Name            string         `json:"name"`
	Type            FortType       `json:"type"`
	District        string         `json:"district"`
	Region          Region         `json:"region"`
	Elevation       string         `json:"elevation"`
	Period          string         `json:"period"`
	BuiltBy         string         `json:"built_by"`
	Significance    string         `json:"significance"`
	CurrentStatus   string         `json:"current_status"`
	BestTimeToVisit string         `json:"best_time_to_visit"`
	TrekDifficulty  TrekDifficulty `json:"trek_difficulty"`
	EntranceFee     string         `json:"entrance_fee,omitempty"`
}

// FormInput is the raw text of a create submission, before enum parsing.
// Both the HTML form and the JSON API decode into this shape.
type FormInput struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	District        string `json:"district"`
	Region          string `json:"region"`
	Elevation       string `json:"elevation"`
	Period          string `json:"period"`
	BuiltBy         string `json:"built_by"`
	Significance    string `json:"significance"`
	CurrentStatus   string `json:"current_status"`
	BestTimeToVisit string `json:"best_time_to_visit"`
	TrekDifficulty  string `json:"trek_difficulty"`
	EntranceFee     string `json:"entrance_fee,omitempty"`
}

const minTextLength = 2

// NewDraft parses raw input into a validated draft.
// Every failing field is reported in a single ValidationErrors.
func NewDraft(in FormInput) (*FortDraft, error) {
	var errs fortserr.ValidationErrors

	fortType, err := ParseFortType(in.Type)
	if err != nil {
		errs = append(errs, err.(*fortserr.ValidationError))
	}
	region, err := ParseRegion(in.Region)
	if err != nil {
		errs = append(errs, err.(*fortserr.ValidationError))
	}
	difficulty, err := ParseTrekDifficulty(in.TrekDifficulty)
	if err != nil {
		errs = append(errs, err.(*fortserr.ValidationError))
	}

	draft := &FortDraft{
		Name:            strings.TrimSpace(in.Name),
		Type:            fortType,
		District:        strings.TrimSpace(in.District),
		Region:          region,
		Elevation:       strings.TrimSpace(in.Elevation),
		Period:          strings.TrimSpace(in.Period),
		BuiltBy:         strings.TrimSpace(in.BuiltBy),
		Significance:    strings.TrimSpace(in.Significance),
		CurrentStatus:   strings.TrimSpace(in.CurrentStatus),
		BestTimeToVisit: strings.TrimSpace(in.BestTimeToVisit),
		TrekDifficulty:  difficulty,
		EntranceFee:     strings.TrimSpace(in.EntranceFee),
	}

	errs = append(errs, draft.textErrors()...)
	if len(errs) > 0 {
		return nil, errs
	}
	return draft, nil
}

// Validate checks every invariant of a draft, including enum membership.
// Callers that built the draft by hand must call this before writing.
func (d *FortDraft) Validate() error {
	var errs fortserr.ValidationErrors
	if !d.Type.Valid() {
		errs = append(errs, &fortserr.ValidationError{Field: "type", Message: enumMessage(string(d.Type), AllFortTypes())})
	}
	if !d.Region.Valid() {
		errs = append(errs, &fortserr.ValidationError{Field: "region", Message: enumMessage(string(d.Region), AllRegions())})
	}
	if !d.TrekDifficulty.Valid() {
		errs = append(errs, &fortserr.ValidationError{Field: "trek_difficulty", Message: enumMessage(string(d.TrekDifficulty), AllTrekDifficulties())})
	}
	errs = append(errs, d.textErrors()...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d *FortDraft) textErrors() fortserr.ValidationErrors {
	var errs fortserr.ValidationErrors
	if utf8.RuneCountInString(strings.TrimSpace(d.Name)) < minTextLength {
		errs = append(errs, &fortserr.ValidationError{Field: "name", Message: "Name must be at least 2 characters"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.District)) < minTextLength {
		errs = append(errs, &fortserr.ValidationError{Field: "district", Message: "District must be at least 2 characters"})
	}
	return errs
}
