package artwork

import (
	"regexp"
	"strconv"
	"strings"
)

// RawRow is one row of the artwork export before normalization.
// Column names follow the Wikidata export built by the data pipeline.
type RawRow struct {
	// Identifiers
	ID          string `json:"id" parquet:"id"`
	WikidataURL string `json:"wikidataUrl" parquet:"wikidataUrl"` // Full entity URL, ID is its last segment

	// Descriptive metadata
	ArtworkLabel      string `json:"artworkLabel" parquet:"artworkLabel"`
	Year              string `json:"year" parquet:"year"`
	CreatorLabel      string `json:"creatorLabel" parquet:"creatorLabel"`
	CreatorBirthPlace string `json:"creatorBirthPlaceLabel" parquet:"creatorBirthPlaceLabel"`
	CreatorCountry    string `json:"creatorCountry" parquet:"creatorCountry"`
	Image             string `json:"image" parquet:"image"`
	Width             string `json:"width" parquet:"width"`
	Height            string `json:"height" parquet:"height"`

	// Multi-valued columns, joined with the dataset delimiter
	LocLabel        string `json:"locLabel" parquet:"locLabel"`
	CollectionLabel string `json:"collectionLabel" parquet:"collectionLabel"`
	Movement        string `json:"movement" parquet:"movement"`
	GenreLabel      string `json:"genreLabel" parquet:"genreLabel"`
	MaterialLabel   string `json:"materialLabel" parquet:"materialLabel"`
	Depicts         string `json:"depicts" parquet:"depicts"`
}

// Year is a creation year. The zero value is the invalid sentinel: it is
// never equal to, before, or after any other year.
type Year struct {
	value int
	valid bool
}

// NewYear returns a valid year.
func NewYear(v int) Year {
	return Year{value: v, valid: true}
}

// ParseYear parses a year column. Decimal exports such as "1850.0" are
// truncated. Anything unparsable yields the invalid sentinel.
func ParseYear(s string) Year {
	s = strings.TrimSpace(s)
	if s == "" {
		return Year{}
	}
	if v, err := strconv.Atoi(s); err == nil {
		return NewYear(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f || f > 1e9 || f < -1e9 {
		return Year{}
	}
	return NewYear(int(f))
}

// Valid reports whether the year parsed.
func (y Year) Valid() bool { return y.valid }

// Int returns the year and whether it is valid.
func (y Year) Int() (int, bool) { return y.value, y.valid }

// Between reports lo <= y <= hi. Invalid years are never in range.
func (y Year) Between(lo, hi float64) bool {
	if !y.valid {
		return false
	}
	v := float64(y.value)
	return v >= lo && v <= hi
}

// AtLeast reports y >= lo. Invalid years always fail.
func (y Year) AtLeast(lo int) bool {
	return y.valid && y.value >= lo
}

func (y Year) String() string {
	if !y.valid {
		return ""
	}
	return strconv.Itoa(y.value)
}

// Record is one normalized artwork. Records are created once at load
// time and shared by pointer; they are never mutated afterwards.
type Record struct {
	Index int // position in the dataset

	ID                string
	WikidataURL       string
	Label             string
	Year              Year
	Creator           string
	CreatorBirthPlace string
	Country           string
	ImageURL          string
	Width             string
	Height            string

	Location   []string
	Collection []string
	Movement   []string
	Genre      []string
	Material   []string
	Depicts    []string
}

// Attribute names a categorical field of a Record.
type Attribute string

const (
	AttrCountry    Attribute = "country"
	AttrCreator    Attribute = "creator"
	AttrLocation   Attribute = "location"
	AttrCollection Attribute = "collection"
	AttrMovement   Attribute = "movement"
	AttrGenre      Attribute = "genre"
	AttrMaterial   Attribute = "material"
	AttrDepicts    Attribute = "depicts"
)

// Attributes lists every categorical attribute in display order.
var Attributes = []Attribute{
	AttrCountry, AttrCreator, AttrLocation, AttrCollection,
	AttrMovement, AttrGenre, AttrMaterial, AttrDepicts,
}

// ParseAttribute maps a user-supplied name to an Attribute.
func ParseAttribute(s string) (Attribute, bool) {
	a := Attribute(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Attributes {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// MultiValued reports whether the attribute holds a sequence of values.
func (a Attribute) MultiValued() bool {
	switch a {
	case AttrCountry, AttrCreator:
		return false
	}
	return true
}

// Values returns the non-blank values of attr. A scalar attribute yields
// at most one value; a blank scalar yields none.
func (r *Record) Values(attr Attribute) []string {
	switch attr {
	case AttrCountry:
		return scalar(r.Country)
	case AttrCreator:
		return scalar(r.Creator)
	case AttrLocation:
		return r.Location
	case AttrCollection:
		return r.Collection
	case AttrMovement:
		return r.Movement
	case AttrGenre:
		return r.Genre
	case AttrMaterial:
		return r.Material
	case AttrDepicts:
		return r.Depicts
	}
	return nil
}

// HasValue reports whether any value of attr is in keys.
func (r *Record) HasValue(attr Attribute, keys map[string]struct{}) bool {
	for _, v := range r.Values(attr) {
		if _, ok := keys[v]; ok {
			return true
		}
	}
	return false
}

func scalar(s string) []string {
	if IsBlank(s) {
		return nil
	}
	return []string{s}
}

var blankRe = regexp.MustCompile(`^\s*$`)

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return blankRe.MatchString(s)
}

// SameData reports whether two subsets are the same slice of the dataset,
// not merely equal contents. Views use it to tell a new subset from a
// re-delivery of the one they already hold.
func SameData(a, b []*Record) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
