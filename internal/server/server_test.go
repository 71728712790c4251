package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/layout"
	"github.com/taloscope/taloscope/pkg/observability"
	"github.com/taloscope/taloscope/pkg/pipeline"
)

const scenario = `{
  "talosClusters": [{"metadata": {"name": "c1"}, "spec": {"controlPlaneRef": {"name": "cp1"}, "workerRef": {"name": "wk1"}}}],
  "talosControlPlanes": [{"metadata": {"name": "cp1"}}],
  "talosWorkers": [{"metadata": {"name": "wk1"}, "spec": {"controlPlaneRef": {"name": "cp1"}}}],
  "talosMachines": [{"metadata": {"name": "m1", "ownerReferences": [{"kind": "TalosWorker", "name": "wk1"}]}}]
}`

func newTestServer(t *testing.T, load bool) (*Server, *httptest.Server) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resources.json")
	if err := os.WriteFile(path, []byte(scenario), 0644); err != nil {
		t.Fatal(err)
	}
	quiet := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, layout.NewEngine(layout.DefaultConfig(), quiet), quiet)

	metrics := observability.NewPrometheusHooks(prometheus.NewRegistry())
	s := New(runner, path, metrics.Handler(), quiet)
	if load {
		if err := s.Reload(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, false)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"loading"`) {
		t.Errorf("healthz before load = %d %s", resp.StatusCode, body)
	}
	if _, err := uuid.Parse(resp.Header.Get("X-Request-Id")); err != nil {
		t.Errorf("missing request id: %v", err)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	_, ts := newTestServer(t, true)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-Id", id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestLayoutNotReady(t *testing.T) {
	_, ts := newTestServer(t, false)
	resp, _ := do(t, http.MethodGet, ts.URL+"/api/layout", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestGetLayout(t *testing.T) {
	_, ts := newTestServer(t, true)
	resp, body := do(t, http.MethodGet, ts.URL+"/api/layout", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var res struct {
		Graph  graph.Graph   `json:"graph"`
		Report layout.Report `json:"report"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Graph.Nodes) != 4 || res.Report.Ranks != 3 {
		t.Errorf("layout = %d nodes, %d ranks", len(res.Graph.Nodes), res.Report.Ranks)
	}
	m1, _ := res.Graph.Node("m1")
	if m1.Position != (graph.Position{X: -275, Y: 450}) {
		t.Errorf("m1 = %v", m1.Position)
	}
}

func TestGetNode(t *testing.T) {
	_, ts := newTestServer(t, true)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/nodes/cp1", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"label":"TalosControlPlane: cp1"`) {
		t.Errorf("GET cp1 = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/api/nodes/ghost", "")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), `"code":"NOT_FOUND"`) {
		t.Errorf("GET ghost = %d %s", resp.StatusCode, body)
	}
}

func TestResolve(t *testing.T) {
	s, ts := newTestServer(t, true)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"pushed below c1", `{"node":"m1","x":-100,"y":50}`, http.StatusOK, `"position":{"x":-100,"y":100}`},
		{"free spot", `{"node":"m1","x":1000,"y":1000}`, http.StatusOK, `"position":{"x":1000,"y":1000}`},
		{"unknown node", `{"node":"ghost","x":0,"y":0}`, http.StatusNotFound, `"code":"NOT_FOUND"`},
		{"missing node", `{"x":0,"y":0}`, http.StatusBadRequest, `"code":"INVALID_INPUT"`},
		{"bad json", `{`, http.StatusBadRequest, `"code":"INVALID_INPUT"`},
		{"unknown field", `{"node":"m1","z":1}`, http.StatusBadRequest, `"code":"INVALID_INPUT"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+"/api/resolve", tt.body)
			if resp.StatusCode != tt.status || !strings.Contains(string(body), tt.want) {
				t.Errorf("POST %s = %d %s", tt.body, resp.StatusCode, body)
			}
		})
	}

	m1, _ := s.snapshot().Graph.Node("m1")
	if m1.Position != (graph.Position{X: -275, Y: 450}) {
		t.Errorf("uncommitted resolve moved m1 to %v", m1.Position)
	}
}

func TestResolveCommit(t *testing.T) {
	s, ts := newTestServer(t, true)
	resp, body := do(t, http.MethodPost, ts.URL+"/api/resolve", `{"node":"m1","x":1000,"y":0,"commit":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	m1, _ := s.snapshot().Graph.Node("m1")
	if m1.Position != (graph.Position{X: 1000, Y: 0}) {
		t.Errorf("committed m1 = %v", m1.Position)
	}
}

func TestReloadAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/layout/reload", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "# HELP") {
		t.Errorf("metrics = %d %.100s", resp.StatusCode, body)
	}
}

func TestReloadMissingFile(t *testing.T) {
	s, ts := newTestServer(t, true)
	s.source = filepath.Join(t.TempDir(), "gone.json")

	resp, body := do(t, http.MethodPost, ts.URL+"/api/layout/reload", "")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "FILE_NOT_FOUND") {
		t.Errorf("reload missing = %d %s", resp.StatusCode, body)
	}
	if s.snapshot() == nil {
		t.Error("failed reload dropped the previous layout")
	}
}
