package util

import (
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		input    []string
		expected string
	}{
		{[]string{"Western Maharashtra"}, "western-maharashtra"},
		{[]string{"Hill Fort", "Konkan"}, "hill-fort-konkan"},
		{[]string{"", "Sea Fort", ""}, "sea-fort"},
		{[]string{"Shivneri (Junnar)"}, "shivneri-junnar"},
		{[]string{"Café au lait"}, "cafe-au-lait"},
		{[]string{"Very   Difficult"}, "very-difficult"},
		{[]string{"---"}, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Slug(tt.input...); got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugWords_Empty(t *testing.T) {
	if words := SlugWords("   "); words != nil {
		t.Errorf("SlugWords of blank input = %q, want nil", words)
	}
}

func TestFormatMillis(t *testing.T) {
	ms := time.Date(2025, 3, 4, 5, 6, 0, 0, time.Local).UnixMilli()
	if got := FormatMillis(ms); got != "2025-03-04 05:06" {
		t.Errorf("FormatMillis = %q", got)
	}
}
