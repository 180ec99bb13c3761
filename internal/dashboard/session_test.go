package dashboard

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
	"github.com/lehigh-university-libraries/crossview/internal/images"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

func testData(imageURL string) []*artwork.Record {
	rows := []struct {
		year     int
		country  string
		movement string
	}{
		{1750, "France", "Rococo"},
		{1820, "France", "Romanticism"},
		{1799, "Spain", "Romanticism"},
		{1900, "Spain", "Impressionism"},
		{1880, "Italy", "Impressionism"},
	}
	data := make([]*artwork.Record, len(rows))
	for i, r := range rows {
		data[i] = &artwork.Record{
			Index:    i,
			Label:    "Painting",
			Year:     artwork.NewYear(r.year),
			Country:  r.country,
			Movement: []string{r.movement},
			Depicts:  []string{"sky"},
			ImageURL: imageURL,
		}
	}
	return data
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := New("test", testData("https://example.org/a.png"), opts)
	require.NoError(t, err)
	return s
}

func TestNewSessionRendersEveryPanel(t *testing.T) {
	s := newSession(t, Options{})
	snap := s.Snapshot()

	assert.Equal(t, "test", snap.ID)
	assert.Equal(t, 5, snap.Records)
	assert.Empty(t, snap.Filters)
	require.Len(t, snap.Panels, 5)
	for id, p := range snap.Panels {
		assert.False(t, p.Active, "panel %s", id)
		assert.Equal(t, 5, p.Records, "panel %s", id)
		assert.NotNil(t, p.View, "panel %s", id)
	}
}

func TestApplyLinksPanels(t *testing.T) {
	s := newSession(t, Options{})
	ctx := context.Background()

	snap, err := s.Apply(ctx, Action{Kind: ActionToggle, View: views.GeographyID, Key: "Spain"})
	require.NoError(t, err)
	assert.Equal(t, []crossfilter.ViewID{views.GeographyID}, snap.Filters)
	assert.Equal(t, 5, snap.Panels[views.GeographyID].Records)
	assert.Equal(t, 2, snap.Panels[views.DetailID].Records)

	snap, err = s.Apply(ctx, Action{Kind: ActionBrush, View: views.TimelineID, Lo: 1800, Hi: 1950})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Panels[views.DetailID].Records)
	assert.Equal(t, 3, snap.Panels[views.GeographyID].Records)
	assert.Equal(t, 2, snap.Panels[views.TimelineID].Records)

	snap, err = s.Apply(ctx, Action{Kind: ActionClear, View: views.TimelineID})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Panels[views.DetailID].Records)

	snap, err = s.Apply(ctx, Action{Kind: ActionReset, View: views.GeographyID})
	require.NoError(t, err)
	assert.Empty(t, snap.Filters)
}

func TestApplyClusterAndDetail(t *testing.T) {
	s := newSession(t, Options{Threshold: 0.2})
	ctx := context.Background()

	snap, err := s.Apply(ctx, Action{Kind: ActionToggle, View: views.ClusterID, Key: "Other"})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Panels[views.DetailID].Records)

	_, err = s.Apply(ctx, Action{Kind: ActionReset, View: views.ClusterID})
	require.NoError(t, err)

	_, err = s.Apply(ctx, Action{Kind: ActionNext, View: views.DetailID})
	require.NoError(t, err)
	snap, err = s.Apply(ctx, Action{Kind: ActionNext, View: views.DetailID})
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Panels[views.DetailID].View.(views.DetailSnapshot).Position)

	snap, err = s.Apply(ctx, Action{Kind: ActionPrev, View: views.DetailID})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Panels[views.DetailID].View.(views.DetailSnapshot).Position)
}

func TestOtherRoundTripAfterRegrouping(t *testing.T) {
	s := newSession(t, Options{Threshold: 0.2})
	ctx := context.Background()

	snap, err := s.Apply(ctx, Action{Kind: ActionToggle, View: views.ClusterID, Key: "Other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Other", "Rococo"}, snap.Panels[views.ClusterID].View.(views.ClusterSnapshot).Selected)

	// Spain has no Rococo artworks, so the bucket disappears from the cluster panel
	snap, err = s.Apply(ctx, Action{Kind: ActionToggle, View: views.GeographyID, Key: "Spain"})
	require.NoError(t, err)
	assert.Empty(t, snap.Panels[views.ClusterID].View.(views.ClusterSnapshot).OtherKeys)

	snap, err = s.Apply(ctx, Action{Kind: ActionToggle, View: views.ClusterID, Key: "Other"})
	require.NoError(t, err)
	cs := snap.Panels[views.ClusterID].View.(views.ClusterSnapshot)
	assert.Empty(t, cs.Selected)
	assert.Equal(t, []crossfilter.ViewID{views.GeographyID}, snap.Filters)
	assert.Equal(t, 2, snap.Panels[views.DetailID].Records)
}

func TestApplyRejectsUnknownActions(t *testing.T) {
	s := newSession(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name   string
		action Action
		err    error
	}{
		{"unknown view", Action{Kind: ActionToggle, View: "nowhere"}, crossfilter.ErrUnknownView},
		{"read-only treemap", Action{Kind: ActionToggle, View: views.TreemapID, Key: "sky"}, ErrUnknownAction},
		{"brush on geography", Action{Kind: ActionBrush, View: views.GeographyID}, ErrUnknownAction},
		{"unknown cluster group", Action{Kind: ActionToggle, View: views.ClusterID, Key: "Cubism"}, views.ErrUnknownGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Apply(ctx, tt.action)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestApplyCanceledContext(t *testing.T) {
	s := newSession(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Apply(ctx, Action{Kind: ActionToggle, View: views.GeographyID, Key: "Spain"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Snapshot().Filters)
}

func TestConcurrentApplyIsSerialized(t *testing.T) {
	s := newSession(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Apply(ctx, Action{Kind: ActionToggle, View: views.GeographyID, Key: "Italy"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// an even number of toggles leaves nothing selected
	assert.Empty(t, s.Snapshot().Filters)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 600, 300))))
	return buf.Bytes()
}

func TestLoadImage(t *testing.T) {
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	s, err := New("img", testData(srv.URL+"/a.png"), Options{Fetcher: images.NewFetcher(time.Second)})
	require.NoError(t, err)

	applied, err := s.LoadImage(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)

	card := s.Snapshot().Panels[views.DetailID].View.(views.DetailSnapshot).Card
	require.NotNil(t, card)
	require.NotNil(t, card.Image)
	assert.Equal(t, 600, card.Image.Width)
	assert.Equal(t, [2]float64{300, 150}, card.Preview)

	// nothing left to measure
	_, err = s.LoadImage(context.Background())
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestLoadImageDiscardsStaleResult(t *testing.T) {
	body := pngBytes(t)
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	s, err := New("img", testData(srv.URL+"/a.png"), Options{Fetcher: images.NewFetcher(5 * time.Second)})
	require.NoError(t, err)

	done := make(chan bool, 1)
	go func() {
		applied, err := s.LoadImage(context.Background())
		assert.NoError(t, err)
		done <- applied
	}()

	// move on while the fetch is in flight
	<-arrived
	_, err = s.Apply(context.Background(), Action{Kind: ActionNext, View: views.DetailID})
	require.NoError(t, err)
	close(release)

	assert.False(t, <-done)
	card := s.Snapshot().Panels[views.DetailID].View.(views.DetailSnapshot).Card
	require.NotNil(t, card)
	assert.Nil(t, card.Image)
}

func TestLoadImageWithoutFetcher(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.LoadImage(context.Background())
	assert.ErrorIs(t, err, ErrNoImage)
}
