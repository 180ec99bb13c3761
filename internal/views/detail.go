package views

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
	"github.com/lehigh-university-libraries/crossview/internal/images"
)

// Preview box for the artwork image.
const (
	PreviewWidth       = 300.0
	PreviewMaxHeight   = 250.0
	PreviewPlaceholder = 50.0
)

// wikidataIDRe matches labels that are only an unresolved entity ID.
var wikidataIDRe = regexp.MustCompile(`Q[0-9]+$`)

// Detail pages through the current subset one artwork at a time.
//
// The page index restarts at the first artwork whenever a different
// subset arrives, and is clamped into range when the same subset is
// delivered again after Next or Prev.
type Detail struct {
	handle *crossfilter.Handle
	data   []*artwork.Record
	index  int

	shown      *artwork.Record
	generation uint64
	image      *images.Meta
}

// Card is the rendered description of one artwork.
type Card struct {
	Title       string       `json:"title"`
	Artist      string       `json:"artist"`
	Where       string       `json:"where"`
	Movement    string       `json:"movement"`
	Genre       string       `json:"genre"`
	Material    string       `json:"material"`
	ImageURL    string       `json:"image_url,omitempty"`
	WikidataURL string       `json:"wikidata_url,omitempty"`
	Image       *images.Meta `json:"image,omitempty"`
	Preview     [2]float64   `json:"preview"`
}

// DetailSnapshot is the rendered state of the detail panel. Position is
// one-based; it is zero when the subset is empty.
type DetailSnapshot struct {
	Position int   `json:"position"`
	Total    int   `json:"total"`
	Card     *Card `json:"card,omitempty"`
}

// ImageRequest asks for the metadata of the image currently shown.
type ImageRequest struct {
	Generation uint64
	URL        string
}

func NewDetail() *Detail {
	return &Detail{}
}

func (d *Detail) ID() crossfilter.ViewID { return DetailID }

func (d *Detail) Initialize(data []*artwork.Record, h *crossfilter.Handle) {
	d.handle = h
	d.data = nil
	d.Update(data)
}

func (d *Detail) Update(data []*artwork.Record) {
	switch {
	case d.data == nil || !artwork.SameData(data, d.data):
		d.data = data
		d.index = 0
	case d.index < 0:
		d.index = 0
	case d.index >= len(data):
		d.index = len(data) - 1
	}
	if len(data) == 0 {
		d.index = 0
	}

	current := d.Current()
	if current != d.shown {
		d.shown = current
		d.generation++
		d.image = nil
	}
}

// Next moves to the following artwork.
func (d *Detail) Next() error {
	d.index++
	return d.refresh()
}

// Prev moves to the preceding artwork.
func (d *Detail) Prev() error {
	d.index--
	return d.refresh()
}

func (d *Detail) refresh() error {
	if d.handle == nil {
		return ErrNotInitialized
	}
	return d.handle.Refresh()
}

// Index returns the zero-based position in the current subset.
func (d *Detail) Index() int {
	return d.index
}

// Current returns the artwork on display, or nil for an empty subset.
func (d *Detail) Current() *artwork.Record {
	if len(d.data) == 0 {
		return nil
	}
	return d.data[d.index]
}

// PendingImage returns the image whose metadata the panel still needs.
func (d *Detail) PendingImage() (ImageRequest, bool) {
	if d.shown == nil || d.image != nil || artwork.IsBlank(d.shown.ImageURL) {
		return ImageRequest{}, false
	}
	return ImageRequest{Generation: d.generation, URL: strings.TrimSpace(d.shown.ImageURL)}, true
}

// ApplyImage stores metadata fetched for req. Results for an artwork that
// is no longer shown are dropped and ApplyImage returns false.
func (d *Detail) ApplyImage(req ImageRequest, meta images.Meta) bool {
	if req.Generation != d.generation {
		return false
	}
	d.image = &meta
	return true
}

func (d *Detail) Snapshot() any {
	snap := DetailSnapshot{Total: len(d.data)}
	if r := d.Current(); r != nil {
		snap.Position = d.index + 1
		card := RenderCard(r, d.image)
		snap.Card = &card
	}
	return snap
}

// RenderCard describes r with placeholders for missing values. meta may
// be nil when the image has not been measured.
func RenderCard(r *artwork.Record, meta *images.Meta) Card {
	label := strings.TrimSpace(r.Label)
	if artwork.IsBlank(label) || wikidataIDRe.MatchString(label) {
		label = Unknown
	}

	card := Card{
		Title:       fmt.Sprintf("%s (%s)", label, orUnknown(r.Year.String())),
		Artist:      artist(r),
		Where:       where(r),
		Movement:    joinOrUnknown(r.Movement),
		Genre:       joinOrUnknown(r.Genre),
		Material:    joinOrUnknown(r.Material),
		ImageURL:    strings.TrimSpace(r.ImageURL),
		WikidataURL: r.WikidataURL,
		Image:       meta,
	}

	var m images.Meta
	if meta != nil {
		m = *meta
	}
	w, h := images.Fit(m, PreviewWidth, PreviewMaxHeight, PreviewPlaceholder)
	card.Preview = [2]float64{w, h}
	return card
}

func artist(r *artwork.Record) string {
	creator := "Unknown Artist"
	if !artwork.IsBlank(r.Creator) {
		creator = strings.TrimSpace(r.Creator)
	}
	parts := []string{creator}
	for _, s := range []string{r.CreatorBirthPlace, r.Country} {
		if !artwork.IsBlank(s) {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, ", ")
}

func where(r *artwork.Record) string {
	collection := strings.Join(r.Collection, ", ")
	location := strings.Join(r.Location, ", ")
	if location == "" {
		location = "Unknown Location"
	}
	if collection == location {
		return collection
	}
	if collection == "" {
		return location
	}
	return collection + ", " + location
}
