package sink

import (
	"context"
	"strings"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/fonts"
	"github.com/kronpano/city-map-poster/pkg/layers"
)

// Format is an output format name as given on the command line.
type Format string

const (
	FormatPNG        Format = "png"
	FormatPDF        Format = "pdf"
	FormatSVG        Format = "svg"
	FormatSVGLayered Format = "svg-layered"
	FormatJSON       Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatPNG, FormatPDF, FormatSVG, FormatSVGLayered, FormatJSON}

// Canvas resolutions per format family.
const (
	VectorDPI = 300
	RasterDPI = 200
	PagedDPI  = 72
)

// DPI returns the resolution posters for f are composed at.
func (f Format) DPI() float64 {
	switch f {
	case FormatPNG:
		return RasterDPI
	case FormatPDF:
		return PagedDPI
	default:
		return VectorDPI
	}
}

// Ext returns the file extension without the leading dot.
func (f Format) Ext() string {
	if f == FormatSVGLayered {
		return "layered.svg"
	}
	return string(f)
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// ParseFormats parses a comma-separated format list. Duplicates are
// dropped and order is preserved.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" || seen[f] {
			continue
		}
		if !f.Valid() {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", f, formatList())
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Sink serializes a composed poster into one format.
type Sink interface {
	Format() Format
	Render(ctx context.Context, p *layers.Poster) ([]byte, error)
}

// Options configures the sinks returned by [New].
type Options struct {
	// Fonts is used for raster labels and, with EmbedFonts, in SVG output.
	Fonts      *fonts.Set
	EmbedFonts bool
	// MaxSize caps the PNG side length in pixels; zero keeps full size.
	MaxSize int
	// SessionID is recorded in JSON output.
	SessionID string
}

type sinkFunc struct {
	format Format
	fn     func(ctx context.Context, p *layers.Poster) ([]byte, error)
}

func (s sinkFunc) Format() Format { return s.format }

func (s sinkFunc) Render(ctx context.Context, p *layers.Poster) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fn(ctx, p)
}

// New returns the sink for f.
func New(f Format, opts Options) (Sink, error) {
	var svgOpts []SVGOption
	if opts.EmbedFonts && opts.Fonts != nil {
		svgOpts = append(svgOpts, WithEmbeddedFonts(opts.Fonts))
	}

	switch f {
	case FormatPNG:
		return sinkFunc{f, func(_ context.Context, p *layers.Poster) ([]byte, error) {
			return RenderPNG(p, WithFonts(opts.Fonts), WithMaxSize(opts.MaxSize))
		}}, nil
	case FormatPDF:
		return sinkFunc{f, func(ctx context.Context, p *layers.Poster) ([]byte, error) {
			return RenderPDF(ctx, p, WithPDFSVGOptions(svgOpts...))
		}}, nil
	case FormatSVG:
		return sinkFunc{f, func(_ context.Context, p *layers.Poster) ([]byte, error) {
			return RenderSVG(p, svgOpts...)
		}}, nil
	case FormatSVGLayered:
		layered := append([]SVGOption{WithLayered()}, svgOpts...)
		return sinkFunc{f, func(_ context.Context, p *layers.Poster) ([]byte, error) {
			return RenderSVG(p, layered...)
		}}, nil
	case FormatJSON:
		return sinkFunc{f, func(_ context.Context, p *layers.Poster) ([]byte, error) {
			return RenderJSON(p, WithJSONSession(opts.SessionID))
		}}, nil
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
}
