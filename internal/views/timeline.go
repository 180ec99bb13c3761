package views

import (
	"fmt"
	"math"
	"sort"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// Approximate number of histogram bins.
const (
	DefaultBinCount = 20
	MaxBinCount     = 500
)

// Timeline is a histogram of creation years over the extent of the whole
// dataset. Brushing a year range publishes a range filter.
type Timeline struct {
	handle     *crossfilter.Handle
	domain     [2]float64
	hasDomain  bool
	thresholds []float64
	maxCount   int

	bins    []Bin
	undated int
	subset  int
	brush   *[2]float64
}

// Bin is one histogram bar covering [X0, X1); the last bin also holds X1.
type Bin struct {
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Count int     `json:"count"`
}

// TimelineSnapshot is the rendered state of the timeline panel.
type TimelineSnapshot struct {
	Domain   [2]float64  `json:"domain"`
	Bins     []Bin       `json:"bins"`
	MaxCount int         `json:"max_count"`
	Brush    *[2]float64 `json:"brush,omitempty"`
	Undated  int         `json:"undated"`
	Records  int         `json:"records"`
}

// NewTimeline creates the panel. The year domain, bin thresholds and the
// bar height scale are fixed from all.
func NewTimeline(all []*artwork.Record, binCount int) *Timeline {
	if binCount <= 0 {
		binCount = DefaultBinCount
	}
	binCount = min(binCount, MaxBinCount)

	t := &Timeline{}
	for _, r := range all {
		y, ok := r.Year.Int()
		if !ok {
			continue
		}
		v := float64(y)
		if !t.hasDomain {
			t.domain = [2]float64{v, v}
			t.hasDomain = true
			continue
		}
		t.domain[0] = math.Min(t.domain[0], v)
		t.domain[1] = math.Max(t.domain[1], v)
	}

	if t.hasDomain {
		for _, tick := range Ticks(t.domain[0], t.domain[1], binCount) {
			if tick > t.domain[0] && tick < t.domain[1] {
				t.thresholds = append(t.thresholds, tick)
			}
		}
		for _, b := range t.bin(all) {
			t.maxCount = max(t.maxCount, b.Count)
		}
	}
	return t
}

func (t *Timeline) ID() crossfilter.ViewID { return TimelineID }

func (t *Timeline) Initialize(data []*artwork.Record, h *crossfilter.Handle) {
	t.handle = h
	t.brush = nil
	t.Update(data)
}

func (t *Timeline) Update(data []*artwork.Record) {
	t.bins = t.bin(data)
	t.subset = len(data)
	t.undated = 0
	for _, r := range data {
		if !r.Year.Valid() {
			t.undated++
		}
	}
}

// Brush publishes a filter keeping years in [lo, hi]. Artworks without a
// valid year never pass.
func (t *Timeline) Brush(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return fmt.Errorf("invalid brush range [%v, %v]", lo, hi)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	t.brush = &[2]float64{lo, hi}
	return publish(t.handle, func(r *artwork.Record) bool {
		return r.Year.Between(lo, hi)
	})
}

// ClearBrush removes the range filter.
func (t *Timeline) ClearBrush() error {
	t.brush = nil
	return publish(t.handle, nil)
}

// Bins returns the histogram of the current subset.
func (t *Timeline) Bins() []Bin {
	return t.bins
}

func (t *Timeline) bin(data []*artwork.Record) []Bin {
	if !t.hasDomain {
		return nil
	}

	edges := make([]float64, 0, len(t.thresholds)+2)
	edges = append(edges, t.domain[0])
	edges = append(edges, t.thresholds...)
	edges = append(edges, t.domain[1])

	bins := make([]Bin, len(edges)-1)
	for i := range bins {
		bins[i] = Bin{X0: edges[i], X1: edges[i+1]}
	}
	if len(bins) == 0 {
		// single-year dataset
		bins = []Bin{{X0: t.domain[0], X1: t.domain[1]}}
	}

	for _, r := range data {
		y, ok := r.Year.Int()
		if !ok {
			continue
		}
		v := float64(y)
		if v < t.domain[0] || v > t.domain[1] {
			continue
		}
		i := sort.Search(len(t.thresholds), func(i int) bool { return t.thresholds[i] > v })
		bins[i].Count++
	}
	return bins
}

func (t *Timeline) Snapshot() any {
	return TimelineSnapshot{
		Domain:   t.domain,
		Bins:     t.bins,
		MaxCount: t.maxCount,
		Brush:    t.brush,
		Undated:  t.undated,
		Records:  t.subset,
	}
}

// Ticks returns about count evenly spaced round values covering
// [start, stop], using steps of 1, 2 or 5 times a power of ten.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || start > stop {
		return nil
	}
	if start == stop {
		return []float64{start}
	}

	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	factor := 1.0
	switch e := step / math.Pow(10, power); {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}

	// Sub-unit steps divide by an integral inverse so 0.6 stays 0.6.
	if power < 0 {
		inv := math.Pow(10, -power) / factor
		lo, hi := math.Round(start*inv), math.Round(stop*inv)
		if lo/inv < start {
			lo++
		}
		if hi/inv > stop {
			hi--
		}
		return tickRange(lo, hi, func(i float64) float64 { return i / inv })
	}

	base := math.Pow(10, power) * factor
	return tickRange(math.Ceil(start/base), math.Floor(stop/base), func(i float64) float64 { return i * base })
}

func tickRange(lo, hi float64, at func(float64) float64) []float64 {
	if hi < lo {
		return nil
	}
	ticks := make([]float64, 0, int(hi-lo)+1)
	for i := lo; i <= hi; i++ {
		ticks = append(ticks, at(i))
	}
	return ticks
}
