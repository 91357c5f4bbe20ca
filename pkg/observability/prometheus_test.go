package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooksCounters(t *testing.T) {
	ctx := context.Background()
	h := NewPrometheusHooks()

	h.OnFetchComplete(ctx, "graph", 120, time.Second, nil)
	h.OnFetchComplete(ctx, "water", 0, time.Second, errors.New("boom"))
	h.OnRenderComplete(ctx, "noir", "png", 4096, time.Second, nil)
	h.OnRenderComplete(ctx, "noir", "png", 2048, time.Second, nil)
	h.OnCacheHit(ctx, "graph")
	h.OnCacheMiss(ctx, "graph")
	h.OnCacheSet(ctx, "graph", 100)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"graph ok fetches", testutil.ToFloat64(h.fetches.WithLabelValues("graph", "ok")), 1},
		{"water failed fetches", testutil.ToFloat64(h.fetches.WithLabelValues("water", "error")), 1},
		{"graph items", testutil.ToFloat64(h.fetchedItems.WithLabelValues("graph")), 120},
		{"png renders", testutil.ToFloat64(h.renders.WithLabelValues("png", "ok")), 2},
		{"png bytes", testutil.ToFloat64(h.renderBytes.WithLabelValues("png")), 6144},
		{"cache hits", testutil.ToFloat64(h.cacheOps.WithLabelValues("graph", "hit")), 1},
		{"cache bytes", testutil.ToFloat64(h.cacheBytes.WithLabelValues("graph")), 100},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestPrometheusWriteTextfile(t *testing.T) {
	h := NewPrometheusHooks()
	h.OnSessionComplete(context.Background(), "Paris, France", time.Second, nil)

	path := filepath.Join(t.TempDir(), "poster.prom")
	if err := h.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `poster_sessions_total{status="ok"} 1`) {
		t.Errorf("textfile missing session counter:\n%s", data)
	}
}

type recordingHTTPHooks struct {
	NoopHTTPHooks
	codes []int
}

func (r *recordingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	r.codes = append(r.codes, code)
}

func TestTransportReportsResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	rec := &recordingHTTPHooks{}
	SetHTTPHooks(rec)
	defer Reset()

	client := &http.Client{Transport: Transport(nil)}
	resp, err := client.Get(srv.URL + "/search")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if len(rec.codes) != 1 || rec.codes[0] != http.StatusTeapot {
		t.Errorf("recorded codes = %v, want [418]", rec.codes)
	}
}
