package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amterp/forts/internal/model"
)

// TestFort returns a fort with sensible test defaults.
func TestFort(id, name string, t model.FortType, r model.Region) *model.Fort {
	return &model.Fort{
		ID:              id,
		Name:            name,
		Type:            t,
		District:        "Pune",
		Region:          r,
		Elevation:       "1,300 m",
		Period:          "17th century",
		BuiltBy:         "Maratha Empire",
		Significance:    "Test significance.",
		CurrentStatus:   "Ruins",
		BestTimeToVisit: "October to February",
		TrekDifficulty:  model.Moderate,
		CreatedAtMillis: 1735689600000,
	}
}

// SampleSnapshot returns a small snapshot covering every type and most
// regions, in the store's name order.
func SampleSnapshot() []*model.Fort {
	raigad := TestFort("f1", "Raigad", model.HillFort, model.Konkan)
	raigad.District = "Raigad"
	raigad.Images = []string{"https://upload.wikimedia.org/raigad.jpg"}

	sindhudurg := TestFort("f2", "Sindhudurg", model.SeaFort, model.Konkan)
	sindhudurg.District = "Sindhudurg"
	sindhudurg.TrekDifficulty = model.Easy
	sindhudurg.EntranceFee = "25"

	sinhagad := TestFort("f3", "Sinhagad", model.HillFort, model.WesternMaharashtra)
	sinhagad.District = "Pune"

	gawilgad := TestFort("f4", "Gawilgad", model.HillFort, model.Vidarbha)
	gawilgad.District = "Amravati"
	gawilgad.TrekDifficulty = model.Difficult

	daulatabad := TestFort("f5", "Daulatabad", model.LandFort, model.Marathwada)
	daulatabad.District = "Aurangabad"

	return []*model.Fort{daulatabad, gawilgad, raigad, sindhudurg, sinhagad}
}

// ValidForm returns form input that passes create-flow validation.
func ValidForm(name string) model.FormInput {
	return model.FormInput{
		Name:            name,
		Type:            string(model.HillFort),
		District:        "Satara",
		Region:          string(model.WesternMaharashtra),
		Elevation:       "1,200 m",
		Period:          "1656",
		BuiltBy:         "Shivaji Maharaj",
		Significance:    "Site of the battle of Pratapgad.",
		CurrentStatus:   "Well preserved",
		BestTimeToVisit: "Monsoon",
		TrekDifficulty:  string(model.Easy),
	}
}

// TempDir creates a temporary directory for store and blob tests.
// Returns the path and a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "forts-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// WriteFile writes content under dir, creating parents.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
