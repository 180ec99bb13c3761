package artwork

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		valid    bool
	}{
		{"1889", 1889, true},
		{" 1503 ", 1503, true},
		{"1850.0", 1850, true},
		{"-300", -300, true},
		{"", 0, false},
		{"circa 1600", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			y := ParseYear(tt.input)
			v, ok := y.Int()
			if ok != tt.valid {
				t.Fatalf("Expected valid=%v, got %v", tt.valid, ok)
			}
			if ok && v != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, v)
			}
		})
	}
}

func TestInvalidYearNeverInRange(t *testing.T) {
	var y Year
	if y.Between(-1e9, 1e9) {
		t.Error("Expected invalid year to be outside every range")
	}
	if y.AtLeast(-1 << 30) {
		t.Error("Expected invalid year to fail AtLeast")
	}
	if y.String() != "" {
		t.Errorf("Expected empty string, got %q", y.String())
	}
}

func TestNormalize(t *testing.T) {
	rec, err := Normalize(RawRow{
		WikidataURL:    "http://www.wikidata.org/entity/Q12418/",
		ArtworkLabel:   "  Mona Lisa ",
		Year:           "1503",
		CreatorCountry: " Italy ",
		Width:          "[77]",
		GenreLabel:     "portrait, , religious art",
	}, NormalizeOptions{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if rec.ID != "Q12418" {
		t.Errorf("Expected ID Q12418, got %s", rec.ID)
	}
	if rec.Label != "Mona Lisa" {
		t.Errorf("Expected trimmed label, got %q", rec.Label)
	}
	if rec.Width != "77" {
		t.Errorf("Expected brackets stripped from width, got %q", rec.Width)
	}
	if !reflect.DeepEqual(rec.Genre, []string{"portrait", "religious art"}) {
		t.Errorf("Expected blank genre dropped, got %v", rec.Genre)
	}
	if !reflect.DeepEqual(rec.Values(AttrCountry), []string{"Italy"}) {
		t.Errorf("Expected country value, got %v", rec.Values(AttrCountry))
	}
	if rec.Values(AttrCreator) != nil {
		t.Errorf("Expected blank creator to yield no values, got %v", rec.Values(AttrCreator))
	}
}

func TestNormalizeMissingID(t *testing.T) {
	_, err := Normalize(RawRow{ArtworkLabel: "Untitled"}, NormalizeOptions{})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord, got %v", err)
	}

	_, err = NormalizeAll([]RawRow{{ID: "Q1"}, {}}, NormalizeOptions{})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord from NormalizeAll, got %v", err)
	}
}

func TestSplitValues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single", "oil paint", []string{"oil paint"}},
		{"trims and keeps order", " b , a ,c", []string{"b", "a", "c"}},
		{"blank", "   ", nil},
		{"only delimiters", ", ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitValues(tt.input, ",")
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSameData(t *testing.T) {
	data := []*Record{{ID: "a"}, {ID: "b"}}
	copied := append([]*Record(nil), data...)

	if !SameData(data, data) {
		t.Error("Expected a slice to be the same data as itself")
	}
	if SameData(data, copied) {
		t.Error("Expected a copy to be different data")
	}
	if SameData(data, data[:1]) {
		t.Error("Expected different lengths to be different data")
	}
}

func TestParseAttribute(t *testing.T) {
	if a, ok := ParseAttribute(" Movement "); !ok || a != AttrMovement {
		t.Errorf("Expected movement, got %q (%v)", a, ok)
	}
	if _, ok := ParseAttribute("colour"); ok {
		t.Error("Expected unknown attribute to be rejected")
	}
	if AttrCountry.MultiValued() {
		t.Error("Expected country to be scalar")
	}
}
