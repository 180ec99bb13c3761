package artwork

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrMalformedRecord is returned when a row is missing a required field.
// Blank optional fields never produce it.
var ErrMalformedRecord = errors.New("malformed record")

// DefaultDelimiter separates values inside multi-valued columns.
const DefaultDelimiter = ","

// NormalizeOptions controls how raw rows are turned into Records.
type NormalizeOptions struct {
	Delimiter string
}

func (o NormalizeOptions) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// Normalize converts one raw row into a Record. The returned record has
// Index 0; NormalizeAll assigns positions.
func Normalize(raw RawRow, opts NormalizeOptions) (*Record, error) {
	id := strings.TrimSpace(raw.ID)
	wikidataURL := strings.TrimSpace(raw.WikidataURL)
	if id == "" && wikidataURL != "" {
		// Entity URLs end in the Q-number
		parts := strings.Split(strings.TrimRight(wikidataURL, "/"), "/")
		id = parts[len(parts)-1]
	}
	if id == "" {
		return nil, fmt.Errorf("%w: row has neither id nor wikidataUrl", ErrMalformedRecord)
	}

	delim := opts.delimiter()
	return &Record{
		ID:                id,
		WikidataURL:       wikidataURL,
		Label:             strings.TrimSpace(raw.ArtworkLabel),
		Year:              ParseYear(raw.Year),
		Creator:           strings.TrimSpace(raw.CreatorLabel),
		CreatorBirthPlace: strings.TrimSpace(raw.CreatorBirthPlace),
		Country:           strings.TrimSpace(raw.CreatorCountry),
		ImageURL:          strings.TrimSpace(raw.Image),
		Width:             strings.Trim(strings.TrimSpace(raw.Width), "[]"),
		Height:            strings.Trim(strings.TrimSpace(raw.Height), "[]"),
		Location:          SplitValues(raw.LocLabel, delim),
		Collection:        SplitValues(raw.CollectionLabel, delim),
		Movement:          SplitValues(raw.Movement, delim),
		Genre:             SplitValues(raw.GenreLabel, delim),
		Material:          SplitValues(raw.MaterialLabel, delim),
		Depicts:           SplitValues(raw.Depicts, delim),
	}, nil
}

// NormalizeAll normalizes rows in order and assigns each record its index.
// The first malformed row aborts the load.
func NormalizeAll(rows []RawRow, opts NormalizeOptions) ([]*Record, error) {
	records := make([]*Record, 0, len(rows))
	invalidYears := 0
	for i, raw := range rows {
		rec, err := Normalize(raw, opts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rec.Index = len(records)
		if !rec.Year.Valid() {
			invalidYears++
		}
		records = append(records, rec)
	}

	slog.Debug("Normalized dataset", "records", len(records), "invalid_years", invalidYears)

	return records, nil
}

// SplitValues splits a multi-valued column on delim, trims each value and
// drops blanks. Order is preserved.
func SplitValues(s, delim string) []string {
	if IsBlank(s) {
		return nil
	}
	parts := strings.Split(s, delim)
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		values = append(values, p)
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// Denormalize converts a record back to a raw row, joining multi-valued
// fields with delim.
func Denormalize(r *Record, delim string) RawRow {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return RawRow{
		ID:                r.ID,
		WikidataURL:       r.WikidataURL,
		ArtworkLabel:      r.Label,
		Year:              r.Year.String(),
		CreatorLabel:      r.Creator,
		CreatorBirthPlace: r.CreatorBirthPlace,
		CreatorCountry:    r.Country,
		Image:             r.ImageURL,
		Width:             r.Width,
		Height:            r.Height,
		LocLabel:          strings.Join(r.Location, delim),
		CollectionLabel:   strings.Join(r.Collection, delim),
		Movement:          strings.Join(r.Movement, delim),
		GenreLabel:        strings.Join(r.Genre, delim),
		MaterialLabel:     strings.Join(r.Material, delim),
		Depicts:           strings.Join(r.Depicts, delim),
	}
}
