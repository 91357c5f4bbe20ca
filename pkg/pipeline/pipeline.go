// Package pipeline provides the poster pipeline shared by the CLI and tools.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Locate: geocode the city, or resolve only the region for explicit
//     coordinates
//  2. Session: fetch, classify, project and crop the map data once
//  3. Render: compose and serialize one poster per theme and format
//
// The session built in stage 2 is immutable and shared by every render, so
// stage 3 runs in parallel across themes without copying map data.
//
// # Usage
//
//	runner := pipeline.NewRunner(fetcher, geocoder, themes, cache, logger)
//	opts := pipeline.Options{
//	    City:    "Paris",
//	    Country: "France",
//	    Theme:   "noir,blueprint",
//	    Formats: []sink.Format{sink.FormatPNG},
//	}
//	result, err := runner.Execute(ctx, opts, func(out pipeline.Output) error {
//	    return os.WriteFile(name(out), out.Data, 0o644)
//	})
//
// Run individual stages:
//
//	place, err := runner.Locate(ctx, &opts)
//	s, err := runner.BuildSession(ctx, place, &opts)
//	themes, err := runner.Themes.Resolve(opts.Theme)
//	outputs, failures, err := runner.RenderAll(ctx, s, themes, &opts, emit)
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/project"
	"github.com/kronpano/city-map-poster/pkg/render/sink"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDistance is the fetch radius in metres.
	DefaultDistance = 29000

	// DefaultAspect is the default poster aspect ratio.
	DefaultAspect = "1:1"

	// DefaultTheme is the theme used when none is selected.
	DefaultTheme = theme.FallbackID

	// DefaultJobs is the default number of themes rendered concurrently.
	DefaultJobs = 1
)

// DefaultFormats is the default output format list.
var DefaultFormats = []sink.Format{sink.FormatPNG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	City    string `json:"city"`
	Country string `json:"country"`

	// Lat and Lon replace geocoding when both are set. Setting only one is
	// an error.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	Distance int    `json:"distance,omitempty"`
	Shift    string `json:"shift,omitempty"`
	Aspect   string `json:"aspect,omitempty"`

	// Theme is a theme name, a comma-separated list, or "all".
	Theme   string        `json:"theme,omitempty"`
	Formats []sink.Format `json:"formats,omitempty"`

	Jobs       int  `json:"jobs,omitempty"`
	Refresh    bool `json:"refresh,omitempty"`
	EmbedFonts bool `json:"embed_fonts,omitempty"`
	MaxSize    int  `json:"max_size,omitempty"`

	// Logger overrides Runner.Logger for this run when set.
	Logger *log.Logger `json:"-"`

	shift     geo.Shift
	aspect    project.AspectRatio
	validated bool
}

// ValidateAndSetDefaults checks every option and applies defaults. It is
// idempotent and runs before anything is fetched.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if err := perrors.ValidatePlaceName("city", o.City); err != nil {
		return err
	}
	if err := perrors.ValidatePlaceName("country", o.Country); err != nil {
		return err
	}
	if (o.Lat == nil) != (o.Lon == nil) {
		return perrors.New(perrors.ErrCodeInvalidCoordinates, "latitude and longitude must be given together")
	}
	if o.HasCoordinates() {
		if err := perrors.ValidateCoordinates(*o.Lat, *o.Lon); err != nil {
			return err
		}
	}
	if err := perrors.ValidateDistance(o.Distance); err != nil {
		return err
	}

	shift, err := geo.ParseShift(o.Shift)
	if err != nil {
		return err
	}
	aspect, err := project.ParseAspectRatio(o.Aspect)
	if err != nil {
		return err
	}
	if strings.TrimSpace(o.Theme) == "" {
		return perrors.New(perrors.ErrCodeInvalidTheme, "no theme selected")
	}
	for _, f := range o.Formats {
		if !f.Valid() {
			return perrors.New(perrors.ErrCodeInvalidFormat, "unsupported format %q", f)
		}
	}
	if o.Jobs < 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "jobs must be at least 1, got %d", o.Jobs)
	}
	if o.MaxSize < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "max size must not be negative")
	}

	o.shift = shift
	o.aspect = aspect
	o.validated = true
	return nil
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Distance == 0 {
		o.Distance = DefaultDistance
	}
	if o.Aspect == "" {
		o.Aspect = DefaultAspect
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	if o.Jobs == 0 {
		o.Jobs = DefaultJobs
	}
}

// HasCoordinates reports whether explicit coordinates were given.
func (o *Options) HasCoordinates() bool {
	return o.Lat != nil && o.Lon != nil
}

// ParsedShift returns the validated shift.
func (o *Options) ParsedShift() geo.Shift { return o.shift }

// ParsedAspect returns the validated aspect ratio.
func (o *Options) ParsedAspect() project.AspectRatio { return o.aspect }

// =============================================================================
// Results
// =============================================================================

// Output is one rendered document.
type Output struct {
	Theme  string
	Format sink.Format
	Data   []byte
	// Fallback is set when the requested theme did not exist and the
	// built-in fallback was rendered instead.
	Fallback bool
	Duration time.Duration
}

// Failure is a render that did not produce output.
type Failure struct {
	Theme  string
	Format sink.Format
	Err    error
}

func (f Failure) Error() string {
	return f.Theme + "/" + string(f.Format) + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error { return f.Err }

// Result contains the outputs of a pipeline run.
type Result struct {
	Place     geo.Place
	SessionID string
	Outputs   []Output
	Failures  []Failure
	Stats     Stats
}

// Err joins the failures, or returns nil if every render succeeded.
func (r *Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return perrors.Join(errs...)
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LocateTime  time.Duration
	SessionTime time.Duration
	RenderTime  time.Duration
	Edges       int
}
