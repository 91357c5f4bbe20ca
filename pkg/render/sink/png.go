package sink

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/fonts"
	"github.com/kronpano/city-map-poster/pkg/layers"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// fadeSteps is the number of bands a fade gradient is drawn with.
const fadeSteps = 256

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	fonts   *fonts.Set
	maxSize int
}

// WithFonts sets the font set used for labels.
func WithFonts(s *fonts.Set) PNGOption {
	return func(r *pngRenderer) { r.fonts = s }
}

// WithMaxSize downscales the image so that neither side exceeds px pixels.
// Zero disables downscaling.
func WithMaxSize(px int) PNGOption {
	return func(r *pngRenderer) { r.maxSize = px }
}

// RenderPNG rasterizes the poster.
func RenderPNG(p *layers.Poster, opts ...PNGOption) ([]byte, error) {
	img, err := RenderImage(p, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeRender, err, "encode png")
	}
	return buf.Bytes(), nil
}

// RenderImage rasterizes the poster into an image.
func RenderImage(p *layers.Poster, opts ...PNGOption) (image.Image, error) {
	r := pngRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.fonts == nil {
		r.fonts = fonts.Default()
	}

	w, h := int(math.Round(p.Width)), int(math.Round(p.Height))
	if w <= 0 || h <= 0 {
		return nil, perrors.New(perrors.ErrCodeRender, "invalid canvas %dx%d", w, h)
	}
	dc := gg.NewContext(w, h)

	dc.SetColor(parseColor(p.Background))
	dc.Clear()

	for _, l := range p.Layers {
		drawLayer(dc, p, l)
	}
	for _, f := range p.Fades {
		drawFade(dc, f)
	}
	r.drawLabels(dc, p)

	img := dc.Image()
	if r.maxSize > 0 && (w > r.maxSize || h > r.maxSize) {
		img = imaging.Fit(img, r.maxSize, r.maxSize, imaging.Lanczos)
	}
	return img, nil
}

func drawLayer(dc *gg.Context, p *layers.Poster, l layers.Layer) {
	dc.SetColor(parseColor(l.Color))
	if l.Kind == layers.Fill {
		// Rings are filled one by one so overlapping features stay solid.
		dc.SetFillRuleWinding()
		for _, path := range l.Paths {
			tracePath(dc, path.Points)
			dc.ClosePath()
			dc.Fill()
		}
		return
	}
	for _, path := range l.Paths {
		tracePath(dc, path.Points)
	}
	dc.SetLineWidth(p.Px(l.Width))
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.Stroke()
}

func tracePath(dc *gg.Context, pts []orb.Point) {
	for i, pt := range pts {
		if i == 0 {
			dc.MoveTo(pt.X(), pt.Y())
		} else {
			dc.LineTo(pt.X(), pt.Y())
		}
	}
}

func drawFade(dc *gg.Context, f layers.Fade) {
	base := parseColor(f.Color)
	step := f.Height / fadeSteps
	for i := 0; i < fadeSteps; i++ {
		y := f.Y + float64(i)*step
		a := f.AlphaAt(y + step/2)
		if a <= 0 {
			continue
		}
		c := base
		c.A = uint8(math.Round(float64(base.A) * a))
		dc.SetColor(c)
		dc.DrawRectangle(0, y, f.Width, step)
		dc.Fill()
	}
}

func (r *pngRenderer) drawLabels(dc *gg.Context, p *layers.Poster) {
	lb := p.Labels
	base := parseColor(lb.Color)

	r.drawText(dc, lb.Title, base)

	d := lb.Divider
	dc.SetColor(base)
	dc.SetLineWidth(d.Width)
	dc.SetLineCapButt()
	dc.DrawLine(d.X1, d.Y1, d.X2, d.Y2)
	dc.Stroke()

	for _, t := range []layers.Text{lb.Subtitle, lb.Coords, lb.Attribution} {
		r.drawText(dc, t, base)
	}
}

func (r *pngRenderer) drawText(dc *gg.Context, t layers.Text, base color.NRGBA) {
	if t.Content == "" || t.Size <= 0 {
		return
	}
	dc.SetFontFace(r.fonts.Face(t.Content, fontWeight(t.Weight), t.Size))
	c := base
	c.A = uint8(math.Round(float64(base.A) * t.Opacity))
	dc.SetColor(c)
	ax := 0.5
	if t.Anchor == layers.AnchorEnd {
		ax = 1
	}
	dc.DrawStringAnchored(t.Content, t.X, t.Y, ax, 0)
}

func fontWeight(w layers.Weight) fonts.Weight {
	switch {
	case w >= layers.WeightBold:
		return fonts.Bold
	case w <= layers.WeightLight:
		return fonts.Light
	default:
		return fonts.Regular
	}
}

// parseColor parses a hex color, using opaque black for invalid input.
func parseColor(s string) color.NRGBA {
	c, err := theme.ParseHex(s)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return c
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}
