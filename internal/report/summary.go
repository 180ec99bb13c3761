// Package report renders dashboard summaries for the command line.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/crossview/internal/aggregate"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/grouping"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatYAML, FormatJSON, FormatCSV}

// Summary is what every panel of a dashboard shows, flattened for output.
type Summary struct {
	Dataset     string   `json:"dataset" yaml:"dataset"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	Records     int      `json:"records" yaml:"records"`
	Filters     []string `json:"filters" yaml:"filters"`

	Countries []aggregate.Entry `json:"countries" yaml:"countries"`
	Years     []views.Bin       `json:"years" yaml:"years"`
	Undated   int               `json:"undated" yaml:"undated"`
	Subjects  []aggregate.Entry `json:"subjects" yaml:"subjects"`

	ClusterAttribute string                 `json:"cluster_attribute" yaml:"cluster_attribute"`
	Clusters         []grouping.LegendEntry `json:"clusters" yaml:"clusters"`
	OtherKeys        []string               `json:"other_keys,omitempty" yaml:"other_keys,omitempty"`

	// Matching is the number of artworks passing every filter.
	Matching int         `json:"matching" yaml:"matching"`
	First    *views.Card `json:"first,omitempty" yaml:"first,omitempty"`
}

// FromSession summarizes s. top limits the country, subject and cluster
// lists; zero or less keeps everything.
func FromSession(s *dashboard.Session, dataset string, top int) Summary {
	snap := s.Snapshot()

	sum := Summary{
		Dataset:     dataset,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Records:     snap.Records,
		Filters:     make([]string, len(snap.Filters)),
	}
	for i, f := range snap.Filters {
		sum.Filters[i] = string(f)
	}

	if geo, ok := snap.Panels[views.GeographyID].View.(views.GeographySnapshot); ok {
		sum.Countries = limit(geo.Countries, top)
	}
	if tl, ok := snap.Panels[views.TimelineID].View.(views.TimelineSnapshot); ok {
		sum.Years = tl.Bins
		sum.Undated = tl.Undated
	}
	if tm, ok := snap.Panels[views.TreemapID].View.(views.TreemapSnapshot); ok {
		sum.Subjects = limit(tm.Subjects, top)
	}
	if cl, ok := snap.Panels[views.ClusterID].View.(views.ClusterSnapshot); ok {
		sum.ClusterAttribute = string(cl.Attribute)
		for _, e := range cl.Legend {
			sum.Clusters = append(sum.Clusters, e.LegendEntry)
		}
		sum.Clusters = limit(sum.Clusters, top)
		sum.OtherKeys = cl.OtherKeys
	}
	if d, ok := snap.Panels[views.DetailID].View.(views.DetailSnapshot); ok {
		sum.Matching = d.Total
		sum.First = d.Card
	}
	return sum
}

func limit[T any](entries []T, top int) []T {
	if top > 0 && len(entries) > top {
		return entries[:top]
	}
	return entries
}

// Write renders sum to w in format.
func Write(w io.Writer, sum Summary, format string) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return writeText(w, sum)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&sum); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, sum)
	}
	return fmt.Errorf("unsupported format %q (expected one of %s)", format, strings.Join(Formats, ", "))
}

// Save writes sum to path in format.
func Save(path string, sum Summary, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := Write(file, sum, format); err != nil {
		return err
	}
	return file.Close()
}

func writeText(w io.Writer, sum Summary) error {
	ew := &errWriter{w: w}

	ew.println(strings.Repeat("=", 70))
	ew.println("CROSSVIEW DATASET SUMMARY")
	ew.println(strings.Repeat("=", 70))
	ew.printf("Generated: %s\n", sum.GeneratedAt)
	ew.printf("Dataset: %s\n", sum.Dataset)
	ew.printf("Records: %d\n", sum.Records)
	if len(sum.Filters) > 0 {
		ew.printf("Filters: %s\n", strings.Join(sum.Filters, ", "))
		ew.printf("Matching: %d (%.1f%%)\n", sum.Matching, percent(sum.Matching, sum.Records))
	}
	ew.println("")

	ew.println("COUNTRIES")
	ew.println(strings.Repeat("-", 70))
	for _, e := range sum.Countries {
		ew.printf("  %-40s %6d\n", e.Value, e.Count)
	}
	ew.println("")

	ew.println("YEARS")
	ew.println(strings.Repeat("-", 70))
	for _, b := range sum.Years {
		ew.printf("  %6.0f - %-6.0f %6d\n", b.X0, b.X1, b.Count)
	}
	ew.printf("  Undated: %d\n", sum.Undated)
	ew.println("")

	ew.println("DEPICTED SUBJECTS")
	ew.println(strings.Repeat("-", 70))
	for _, e := range sum.Subjects {
		ew.printf("  %-40s %6d\n", e.Value, e.Count)
	}
	ew.println("")

	ew.printf("CLUSTERS BY %s\n", strings.ToUpper(sum.ClusterAttribute))
	ew.println(strings.Repeat("-", 70))
	for _, e := range sum.Clusters {
		ew.printf("  %-40s %6d\n", e.Key, e.Count)
	}
	if len(sum.OtherKeys) > 0 {
		ew.printf("  %s holds %d categories\n", grouping.OtherKey, len(sum.OtherKeys))
	}

	if sum.First != nil {
		ew.println("")
		ew.println("FIRST ARTWORK")
		ew.println(strings.Repeat("-", 70))
		ew.printf("Title: %s\n", sum.First.Title)
		ew.printf("Artist: %s\n", sum.First.Artist)
		ew.printf("Location: %s\n", sum.First.Where)
		ew.printf("Movement: %s\n", sum.First.Movement)
		ew.printf("Genre: %s\n", sum.First.Genre)
		ew.printf("Material: %s\n", sum.First.Material)
	}
	ew.println(strings.Repeat("=", 70))

	return ew.err
}

// writeCSV emits one row per legend entry: panel, key, count.
func writeCSV(w io.Writer, sum Summary) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"panel", "key", "count"}}
	for _, e := range sum.Countries {
		rows = append(rows, []string{string(views.GeographyID), e.Value, strconv.Itoa(e.Count)})
	}
	for _, b := range sum.Years {
		key := fmt.Sprintf("%g-%g", b.X0, b.X1)
		rows = append(rows, []string{string(views.TimelineID), key, strconv.Itoa(b.Count)})
	}
	for _, e := range sum.Subjects {
		rows = append(rows, []string{string(views.TreemapID), e.Value, strconv.Itoa(e.Count)})
	}
	for _, e := range sum.Clusters {
		rows = append(rows, []string{string(views.ClusterID), e.Key, strconv.Itoa(e.Count)})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(s string) {
	e.printf("%s\n", s)
}
