package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kronpano/city-map-poster/pkg/cache"
	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

const parisResponse = `[{
  "lat": "48.8588897",
  "lon": "2.3200410",
  "display_name": "Paris, Île-de-France, France métropolitaine, France",
  "address": {"city": "Paris", "state": "Île-de-France", "county": "Paris", "country": "France"}
}]`

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newClient(t *testing.T, srv *httptest.Server, c cache.Cache) *Client {
	t.Helper()
	return New(Options{
		Endpoint: srv.URL,
		Cache:    c,
		Interval: time.Millisecond,
	})
}

func TestLocate(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Paris, France" || q.Get("format") != "jsonv2" || q.Get("addressdetails") != "1" {
			t.Errorf("query = %v", q)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.Write([]byte(parisResponse))
	})

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := newClient(t, srv, fc)
	ctx := context.Background()

	place, err := c.Locate(ctx, "Paris", "France")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if place.Point.Lat != 48.8588897 || place.Point.Lon != 2.3200410 {
		t.Errorf("point = %v", place.Point)
	}
	if place.Region != "Île-de-France" {
		t.Errorf("region = %q, want state before county", place.Region)
	}
	if place.City != "Paris" || place.Country != "France" {
		t.Errorf("place = %+v", place)
	}

	if _, err := c.Locate(ctx, "Paris", "France"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("server hits = %d, want 1 (second call cached)", n)
	}

	region, err := c.Region(ctx, "Paris", "France")
	if err != nil || region != "Île-de-France" {
		t.Errorf("Region() = %q, %v", region, err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("server hits = %d, want 1 (region cached by Locate)", n)
	}
}

func TestLocateRefresh(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(parisResponse))
	})
	fc, _ := cache.NewFileCache(t.TempDir())
	ctx := context.Background()

	if _, err := newClient(t, srv, fc).Locate(ctx, "Paris", "France"); err != nil {
		t.Fatal(err)
	}
	c := New(Options{Endpoint: srv.URL, Cache: fc, Refresh: true, Interval: time.Millisecond})
	if _, err := c.Locate(ctx, "Paris", "France"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(hits); n != 2 {
		t.Errorf("server hits = %d, want 2 with refresh", n)
	}
}

func TestLocateNotFound(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	_, err := newClient(t, srv, nil).Locate(context.Background(), "Atlantis", "Nowhere")
	if !perrors.Is(err, perrors.ErrCodeNotFound) {
		t.Errorf("Locate(unknown) error = %v, want NOT_FOUND", err)
	}
}

func TestLocateClientError(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := newClient(t, srv, nil).Locate(context.Background(), "Paris", "France")
	if !perrors.Is(err, perrors.ErrCodeGeocode) {
		t.Errorf("Locate(403) error = %v, want GEOCODE_FAILED", err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("server hits = %d, want 1 (4xx not retried)", n)
	}
}

func TestLocateRetriesServerError(t *testing.T) {
	var calls int32
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(parisResponse))
	})
	if _, err := newClient(t, srv, nil).Locate(context.Background(), "Paris", "France"); err != nil {
		t.Fatalf("Locate after 503: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestRegionNotFoundIsEmpty(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	region, err := newClient(t, srv, nil).Region(context.Background(), "Atlantis", "Nowhere")
	if err != nil || region != "" {
		t.Errorf("Region(unknown) = %q, %v; want empty, nil", region, err)
	}
}

func TestLocateInvalidInput(t *testing.T) {
	c := New(Options{Endpoint: "http://127.0.0.1:0"})
	if _, err := c.Locate(context.Background(), "", "France"); !perrors.IsInput(err) {
		t.Errorf("Locate(empty city) error = %v, want input error", err)
	}
}

func TestRegionOf(t *testing.T) {
	tests := []struct {
		addr map[string]string
		want string
	}{
		{map[string]string{"state": "Bavaria", "county": "Munich"}, "Bavaria"},
		{map[string]string{"province": "Ontario"}, "Ontario"},
		{map[string]string{"region": "Tuscany", "county": "Florence"}, "Tuscany"},
		{map[string]string{"county": "Kent"}, "Kent"},
		{map[string]string{"state": " ", "county": "Kent"}, "Kent"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := regionOf(tt.addr); got != tt.want {
			t.Errorf("regionOf(%v) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
