package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	data := []*artwork.Record{
		{Index: 0, Year: artwork.NewYear(1750), Country: "France", Movement: []string{"Rococo"}},
		{Index: 1, Year: artwork.NewYear(1820), Country: "France", Movement: []string{"Romanticism"}},
		{Index: 2, Year: artwork.NewYear(1900), Country: "Spain", Movement: []string{"Impressionism"}},
	}
	mux := http.NewServeMux()
	New(data, dashboard.Options{}).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func createSession(t *testing.T, srv *httptest.Server, body string) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	snap := decode[struct {
		ID      string `json:"id"`
		Records int    `json:"records"`
	}](t, resp)
	if snap.Records != 3 {
		t.Errorf("Expected 3 records, got %d", snap.Records)
	}
	return snap.ID
}

type panelCounts struct {
	Filters []string `json:"filters"`
	Panels  map[string]struct {
		Active  bool `json:"active"`
		Records int  `json:"records"`
	} `json:"panels"`
}

func TestHealthcheck(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/healthcheck")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := testServer(t)
	id := createSession(t, srv, "")

	resp, err := http.Get(srv.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	list := decode[[]SessionSummary](t, resp)
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("Expected one session %s, got %v", id, list)
	}

	resp, err = http.Post(srv.URL+"/api/sessions/"+id+"/actions?images=false", "application/json",
		strings.NewReader(`{"kind":"toggle","view":"geography","key":"France"}`))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	counts := decode[panelCounts](t, resp)
	if len(counts.Filters) != 1 || counts.Filters[0] != string(views.GeographyID) {
		t.Errorf("Expected geography filter, got %v", counts.Filters)
	}
	if got := counts.Panels[string(views.DetailID)].Records; got != 2 {
		t.Errorf("Expected 2 records in detail, got %d", got)
	}

	resp, err = http.Get(srv.URL + "/api/sessions/" + id)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	counts = decode[panelCounts](t, resp)
	if !counts.Panels[string(views.GeographyID)].Active {
		t.Error("Expected geography to stay active")
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/sessions/" + id)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestCreateSessionOverrides(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid overrides", `{"threshold":0.5,"cluster_attribute":"genre","drop_singletons":true}`, http.StatusCreated},
		{"threshold out of range", `{"threshold":2}`, http.StatusBadRequest},
		{"unknown attribute", `{"cluster_attribute":"colour"}`, http.StatusBadRequest},
		{"bins too large", `{"bins":1000000000}`, http.StatusBadRequest},
		{"bins not positive", `{"bins":0}`, http.StatusBadRequest},
		{"bins in range", `{"bins":40}`, http.StatusCreated},
		{"invalid json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/sessions", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestActionErrors(t *testing.T) {
	srv := testServer(t)
	id := createSession(t, srv, "{}")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown view", "POST", "/actions", `{"kind":"toggle","view":"nowhere"}`, http.StatusBadRequest},
		{"unsupported action", "POST", "/actions", `{"kind":"brush","view":"treemap"}`, http.StatusBadRequest},
		{"unknown group", "POST", "/actions", `{"kind":"toggle","view":"cluster","key":"Cubism"}`, http.StatusBadRequest},
		{"invalid json", "POST", "/actions", `not json`, http.StatusBadRequest},
		{"wrong method", "GET", "/actions", ``, http.StatusMethodNotAllowed},
		{"unknown subresource", "GET", "/unknown", ``, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+"/api/sessions/"+id+tt.path, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}
