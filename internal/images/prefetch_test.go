package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestPrefetch(t *testing.T) {
	data := pngBytes(t, 20, 10)
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/a.png",
		server.URL + "/b.png",
		server.URL + "/a.png",
		server.URL + "/missing.png",
		"",
	}

	f := NewFetcher(5 * time.Second)
	metas, err := f.Prefetch(context.Background(), urls, 2)
	if err != nil {
		t.Fatalf("Prefetch failed: %v", err)
	}

	if len(metas) != 2 {
		t.Errorf("Expected 2 measured images, got %d", len(metas))
	}
	if m := metas[server.URL+"/b.png"]; m.Width != 20 || m.Height != 10 {
		t.Errorf("Expected 20x10, got %dx%d", m.Width, m.Height)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("Expected 3 requests for distinct URLs, got %d", got)
	}
}

func TestPrefetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(time.Second)
	if _, err := f.Prefetch(ctx, []string{"http://127.0.0.1:1/a.png"}, 1); err == nil {
		t.Error("Expected error for canceled context")
	}
}
