package artwork

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader handles loading of the artwork dataset
type Loader struct {
	datasetPath string
	opts        NormalizeOptions
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string, opts NormalizeOptions) *Loader {
	return &Loader{
		datasetPath: datasetPath,
		opts:        opts,
	}
}

// Load loads and normalizes every record from a dataset file (CSV, TSV, JSONL or Parquet)
func (l *Loader) Load() ([]*Record, error) {
	return l.LoadSample(-1)
}

// LoadSample loads at most limit records. A negative limit loads everything.
func (l *Loader) LoadSample(limit int) ([]*Record, error) {
	rows, err := l.readRows(limit)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(rows, l.opts)
}

func (l *Loader) readRows(limit int) ([]RawRow, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".csv":
		return l.loadDelimited(',', limit)
	case ".tsv":
		return l.loadDelimited('\t', limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	case ".parquet":
		return l.loadParquet(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .tsv, .jsonl, .parquet)", ext)
	}
}

// columnSetters maps export column names onto RawRow fields.
var columnSetters = map[string]func(*RawRow, string){
	"id":                     func(r *RawRow, v string) { r.ID = v },
	"wikidataUrl":            func(r *RawRow, v string) { r.WikidataURL = v },
	"artworkLabel":           func(r *RawRow, v string) { r.ArtworkLabel = v },
	"year":                   func(r *RawRow, v string) { r.Year = v },
	"creatorLabel":           func(r *RawRow, v string) { r.CreatorLabel = v },
	"creatorBirthPlaceLabel": func(r *RawRow, v string) { r.CreatorBirthPlace = v },
	"creatorCountry":         func(r *RawRow, v string) { r.CreatorCountry = v },
	"image":                  func(r *RawRow, v string) { r.Image = v },
	"width":                  func(r *RawRow, v string) { r.Width = v },
	"height":                 func(r *RawRow, v string) { r.Height = v },
	"locLabel":               func(r *RawRow, v string) { r.LocLabel = v },
	"collectionLabel":        func(r *RawRow, v string) { r.CollectionLabel = v },
	"movement":               func(r *RawRow, v string) { r.Movement = v },
	"genreLabel":             func(r *RawRow, v string) { r.GenreLabel = v },
	"materialLabel":          func(r *RawRow, v string) { r.MaterialLabel = v },
	"depicts":                func(r *RawRow, v string) { r.Depicts = v },
}

// loadDelimited loads rows from a CSV or TSV file with a header row
func (l *Loader) loadDelimited(comma rune, limit int) ([]RawRow, error) {
	slog.Debug("Opening delimited file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	setters := make([]func(*RawRow, string), len(header))
	hasKey := false
	for i, name := range header {
		name = strings.TrimSpace(name)
		setters[i] = columnSetters[name]
		if name == "id" || name == "wikidataUrl" {
			hasKey = true
		}
	}
	if !hasKey {
		return nil, fmt.Errorf("%w: header has neither id nor wikidataUrl column", ErrMalformedRecord)
	}

	var rows []RawRow
	lineNum := 1
	for limit < 0 || len(rows) < limit {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}

		var row RawRow
		for i, v := range fields {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, v)
			}
		}
		rows = append(rows, row)

		if lineNum%1000 == 0 {
			slog.Debug("Reading delimited file", "lines_read", lineNum)
		}
	}

	slog.Debug("Finished reading delimited file", "total_rows", len(rows))

	return rows, nil
}

// loadJSONL loads rows from a JSONL file
func (l *Loader) loadJSONL(limit int) ([]RawRow, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var rows []RawRow
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long lines
	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() && (limit < 0 || len(rows) < limit) {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var row RawRow
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_rows", len(rows), "total_lines", lineNum)

	return rows, nil
}

// loadParquet loads rows from a Parquet file
func (l *Loader) loadParquet(limit int) ([]RawRow, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[RawRow](pf)
	defer reader.Close()

	var rows []RawRow
	batch := make([]RawRow, 128)

	for limit < 0 || len(rows) < limit {
		n, err := reader.Read(batch)
		if n > 0 {
			if limit >= 0 && n > limit-len(rows) {
				n = limit - len(rows)
			}
			rows = append(rows, batch[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_rows", len(rows))

	return rows, nil
}

// WriteParquet writes records to path as raw rows, joining multi-valued
// fields with delim.
func WriteParquet(path string, records []*Record, delim string) error {
	rows := make([]RawRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, Denormalize(r, delim))
	}

	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}

	slog.Debug("Wrote Parquet file", "path", path, "rows", len(rows))

	return nil
}
