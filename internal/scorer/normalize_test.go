package scorer

import (
	"strings"
	"testing"

	"github.com/marketproof/attribution-cli/internal/model"
)

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"lowercase", "Herman Miller", 200, "herman miller"},
		{"diacritics folded", "Mäkelä Öy", 200, "makela oy"},
		{"whitespace collapsed", "  fritz   hansen  ", 200, "fritz hansen"},
		{"pipes stripped", "vitra|eames", 200, "vitra eames"},
		{"newlines and tabs stripped", "line one\nline\ttwo\r", 200, "line one line two"},
		{"empty", "", 200, ""},
		{"rune cap", strings.Repeat("a", 10) + " tail", 10, "aaaaaaaaaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanValue(tt.in, tt.max); got != tt.want {
				t.Errorf("CleanValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	asset := model.AssetRecord{
		Name:        "Eames Lounge Chair",
		Description: "A classic | mid-century chair.",
		Tags:        []string{"Chair", "Lounge"},
		Author:      model.Author{ID: "u1", Name: "Jane Doe"},
		Fields: model.AttributionFields{
			Manufacturer: "Herman Miller ",
			Designer:     "Charles Eames",
			Collection:   "Eames",
			Variant:      "Rosewood",
			Year:         "1956",
		},
	}

	row := Normalize(asset)

	want := map[string]string{
		model.KeyManufacturer: "herman miller",
		model.KeyDesigner:     "charles eames",
		model.KeyCollection:   "eames",
		model.KeyVariant:      "rosewood",
		model.KeyYear:         "1956",
		model.KeyName:         "eames lounge chair",
		model.KeyDescription:  "a classic mid-century chair.",
		model.KeyAuthor:       "jane doe",
		model.KeyTags:         "chair lounge",
	}
	for key, w := range want {
		if got := row.Get(key); got != w {
			t.Errorf("row[%s] = %q, want %q", key, got, w)
		}
	}
}

func TestNormalize_DoesNotMutateSource(t *testing.T) {
	asset := model.AssetRecord{
		Name:   "ORIGINAL",
		Fields: model.AttributionFields{Manufacturer: "VITRA"},
	}
	_ = Normalize(asset)

	if asset.Name != "ORIGINAL" || asset.Fields.Manufacturer != "VITRA" {
		t.Error("source record must not be mutated")
	}
}
