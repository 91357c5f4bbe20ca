package cli

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/pipeline"
	"github.com/kronpano/city-map-poster/pkg/render/sink"
)

func TestOutputName(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	tests := []struct {
		city, theme string
		distance    int
		shift       string
		format      sink.Format
		want        string
	}{
		{"Paris", "noir", 29000, "", sink.FormatPNG, "paris_noir_29000_20260314_092653.png"},
		{"New York", "blueprint", 12000, "2ne", sink.FormatSVG, "new_york_blueprint_12000_2ne_20260314_092653.svg"},
		{"São Paulo", "forest", 5000, "", sink.FormatSVGLayered, "são_paulo_forest_5000_20260314_092653.layered.svg"},
		{"Tokyo", "feature_based", 8000, " 3.5NNW ", sink.FormatJSON, "tokyo_feature_based_8000_3.5nnw_20260314_092653.json"},
	}
	for _, tt := range tests {
		got := outputName(tt.city, tt.theme, tt.distance, tt.shift, tt.format, at)
		if got != tt.want {
			t.Errorf("outputName(%q, %q) = %q, want %q", tt.city, tt.theme, got, tt.want)
		}
	}
}

func TestCitySlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Paris", "paris"},
		{"  Rio de  Janeiro ", "rio_de_janeiro"},
		{"東京", "東京"},
	}
	for _, tt := range tests {
		if got := citySlug(tt.in); got != tt.want {
			t.Errorf("citySlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFallbackThemes(t *testing.T) {
	outputs := []pipeline.Output{
		{Theme: "nope", Format: sink.FormatPNG, Fallback: true},
		{Theme: "nope", Format: sink.FormatSVG, Fallback: true},
		{Theme: "noir", Format: sink.FormatPNG},
		{Theme: "missing", Format: sink.FormatPNG, Fallback: true},
		{Theme: "missing", Format: sink.FormatJSON, Fallback: true},
	}
	if got := strings.Join(fallbackThemes(outputs), ","); got != "nope,missing" {
		t.Errorf("fallbackThemes() = %s, want nope,missing", got)
	}
	if got := fallbackThemes(nil); len(got) != 0 {
		t.Errorf("fallbackThemes(nil) = %v, want none", got)
	}
}

// parseRender parses args into a render command and applies config defaults
// the way the command's pre-run does.
func parseRender(t *testing.T, args ...string) (*renderOpts, *cobra.Command) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	opts := &renderOpts{}
	cmd := c.renderCommandWith(opts)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	c.applyRenderDefaults(cmd, opts)
	return opts, cmd
}

func TestRenderFlags(t *testing.T) {
	t.Run("config defaults", func(t *testing.T) {
		opts, cmd := parseRender(t, "-c", "Paris", "-C", "France")
		po, err := opts.pipelineOptions(cmd)
		if err != nil {
			t.Fatalf("pipelineOptions: %v", err)
		}
		if po.Distance != 29000 || po.Aspect != "1:1" || po.Theme != "feature_based" {
			t.Errorf("defaults = distance %d, aspect %q, theme %q", po.Distance, po.Aspect, po.Theme)
		}
		if len(po.Formats) != 1 || po.Formats[0] != sink.FormatPNG {
			t.Errorf("Formats = %v, want [png]", po.Formats)
		}
		if po.HasCoordinates() {
			t.Error("coordinates set without --lat/--lon")
		}
		if opts.outputDir != "posters" || opts.jobs != 1 {
			t.Errorf("outputDir = %q, jobs = %d; want posters, 1", opts.outputDir, opts.jobs)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		opts, cmd := parseRender(t, "-c", "Paris", "-C", "France", "-t", "all", "-d", "4000",
			"-r", "16:9", "-f", "svg,png", "--lat", "48.85", "--long", "2.35", "-j", "3")
		po, err := opts.pipelineOptions(cmd)
		if err != nil {
			t.Fatalf("pipelineOptions: %v", err)
		}
		if po.Distance != 4000 || po.Aspect != "16:9" || po.Theme != "all" || po.Jobs != 3 {
			t.Errorf("options = %+v", po)
		}
		if len(po.Formats) != 2 || po.Formats[0] != sink.FormatSVG {
			t.Errorf("Formats = %v, want [svg png]", po.Formats)
		}
		if !po.HasCoordinates() || *po.Lat != 48.85 || *po.Lon != 2.35 {
			t.Errorf("coordinates = %v, %v", po.Lat, po.Lon)
		}
	})

	t.Run("lat without lon", func(t *testing.T) {
		opts, cmd := parseRender(t, "-c", "Paris", "-C", "France", "--lat", "48.85")
		if _, err := opts.pipelineOptions(cmd); !perrors.Is(err, perrors.ErrCodeInvalidCoordinates) {
			t.Errorf("pipelineOptions() error = %v, want INVALID_COORDINATES", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		opts, cmd := parseRender(t, "-c", "Paris", "-C", "France", "-f", "gif")
		if _, err := opts.pipelineOptions(cmd); !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
			t.Errorf("pipelineOptions() error = %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("bad shift", func(t *testing.T) {
		opts, cmd := parseRender(t, "-c", "Paris", "-C", "France", "-s", "north")
		if _, err := opts.pipelineOptions(cmd); !perrors.Is(err, perrors.ErrCodeInvalidShift) {
			t.Errorf("pipelineOptions() error = %v, want INVALID_SHIFT", err)
		}
	})
}
