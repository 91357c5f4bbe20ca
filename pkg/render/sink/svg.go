package sink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"

	"github.com/kronpano/city-map-poster/pkg/fonts"
	"github.com/kronpano/city-map-poster/pkg/layers"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	layered bool
	fonts   *fonts.Set
}

// WithLayered groups every layer under a named <g> element.
func WithLayered() SVGOption { return func(r *svgRenderer) { r.layered = true } }

// WithEmbeddedFonts embeds s as @font-face rules so the document renders
// the same on machines without the fonts installed.
func WithEmbeddedFonts(s *fonts.Set) SVGOption {
	return func(r *svgRenderer) { r.fonts = s }
}

// RenderSVG renders the poster as an SVG document.
func RenderSVG(p *layers.Poster, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("xmlns:xlink", "http://www.w3.org/1999/xlink")
	root.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", num(p.Width), num(p.Height)))
	root.CreateAttr("width", num(p.Width))
	root.CreateAttr("height", num(p.Height))

	bg := root.CreateElement("rect")
	if r.layered {
		bg.CreateAttr("id", "background")
	}
	bg.CreateAttr("width", "100%")
	bg.CreateAttr("height", "100%")
	bg.CreateAttr("fill", p.Background)

	r.renderDefs(root, p)

	for _, l := range p.Layers {
		r.renderLayer(root, p, l)
	}
	r.renderFades(root, p)
	r.renderLabels(root, p)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (r *svgRenderer) renderDefs(root *etree.Element, p *layers.Poster) {
	defs := root.CreateElement("defs")
	for _, f := range p.Fades {
		g := defs.CreateElement("linearGradient")
		g.CreateAttr("id", f.GradientID)
		g.CreateAttr("x1", "0%")
		g.CreateAttr("y1", "0%")
		g.CreateAttr("x2", "0%")
		g.CreateAttr("y2", "100%")
		stop(g, "0%", f.Color, f.TopAlpha)
		stop(g, "100%", f.Color, f.BottomAlpha)
	}
	if r.fonts != nil {
		style := defs.CreateElement("style")
		style.CreateAttr("type", "text/css")
		style.SetCData(fontFaces(r.fonts))
	}
}

func stop(g *etree.Element, offset, color string, alpha float64) {
	s := g.CreateElement("stop")
	s.CreateAttr("offset", offset)
	s.CreateAttr("style", fmt.Sprintf("stop-color:%s;stop-opacity:%s", color, num(alpha)))
}

func fontFaces(s *fonts.Set) string {
	var b strings.Builder
	for _, w := range []fonts.Weight{fonts.Light, fonts.Regular, fonts.Bold} {
		fmt.Fprintf(&b, "\n@font-face { font-family: '%s'; font-weight: %d; src: url(data:font/ttf;base64,%s) format('truetype'); }",
			s.Family(), cssWeight(w), s.Base64(w))
	}
	b.WriteString("\n")
	return b.String()
}

func (r *svgRenderer) renderLayer(root *etree.Element, p *layers.Poster, l layers.Layer) {
	closed := l.Kind == layers.Fill
	if !r.layered {
		el := root.CreateElement("path")
		paint(el, p, l)
		parts := make([]string, len(l.Paths))
		for i, path := range l.Paths {
			pts := path.Points
			if closed {
				pts = counterClockwise(pts)
			}
			parts[i] = pathData(pts, closed)
		}
		el.CreateAttr("d", strings.Join(parts, " "))
		return
	}

	g := root.CreateElement("g")
	g.CreateAttr("id", l.ID)
	g.CreateAttr("class", layerClass(l.ID))
	paint(g, p, l)
	for _, path := range l.Paths {
		el := g.CreateElement("path")
		el.CreateAttr("id", path.ID)
		el.CreateAttr("class", featureClass(l.ID))
		el.CreateAttr("d", pathData(path.Points, closed))
	}
}

// paint sets the presentation attributes of a layer on el.
func paint(el *etree.Element, p *layers.Poster, l layers.Layer) {
	if l.Kind == layers.Fill {
		el.CreateAttr("fill", l.Color)
		el.CreateAttr("fill-rule", "nonzero")
		el.CreateAttr("stroke", "none")
		return
	}
	el.CreateAttr("fill", "none")
	el.CreateAttr("stroke", l.Color)
	el.CreateAttr("stroke-width", num(p.Px(l.Width)))
	el.CreateAttr("stroke-linecap", "round")
	el.CreateAttr("stroke-linejoin", "round")
}

// layerClass returns "roads-layer roads-motorway" for road tiers and
// "{id}-layer" otherwise.
func layerClass(id string) string {
	if tier, ok := strings.CutPrefix(id, "roads-"); ok {
		return "roads-layer roads-" + tier
	}
	return id + "-layer"
}

func featureClass(id string) string {
	if strings.HasPrefix(id, "roads-") {
		return "road-feature"
	}
	return id + "-feature"
}

// counterClockwise returns ring wound counter-clockwise, copying it if it
// has to be reversed. A merged path of same-wound rings filled nonzero
// keeps overlaps solid.
func counterClockwise(ring []orb.Point) []orb.Point {
	if len(ring) < 3 || orb.Ring(ring).Orientation() != orb.CW {
		return ring
	}
	out := make([]orb.Point, len(ring))
	for i, pt := range ring {
		out[len(ring)-1-i] = pt
	}
	return out
}

func pathData(pts []orb.Point, closed bool) string {
	var b strings.Builder
	for i, pt := range pts {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		b.WriteString(num(pt.X()))
		b.WriteByte(',')
		b.WriteString(num(pt.Y()))
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func (r *svgRenderer) renderFades(root *etree.Element, p *layers.Poster) {
	parent := root
	if r.layered {
		parent = root.CreateElement("g")
		parent.CreateAttr("id", "gradients")
		parent.CreateAttr("class", "gradient-layer")
	}
	for _, f := range p.Fades {
		rect := parent.CreateElement("rect")
		if r.layered {
			rect.CreateAttr("id", f.ID)
		}
		rect.CreateAttr("x", "0")
		rect.CreateAttr("y", num(f.Y))
		rect.CreateAttr("width", num(f.Width))
		rect.CreateAttr("height", num(f.Height))
		rect.CreateAttr("fill", "url(#"+f.GradientID+")")
	}
}

func (r *svgRenderer) renderLabels(root *etree.Element, p *layers.Poster) {
	parent := root
	if r.layered {
		parent = root.CreateElement("g")
		parent.CreateAttr("id", "labels")
		parent.CreateAttr("class", "text-layer")
	}
	family := fonts.FallbackFamily
	if r.fonts != nil {
		family = r.fonts.Family() + ", " + fonts.FallbackFamily
	}

	lb := p.Labels
	r.text(parent, lb.Title, lb.Color, family)

	d := lb.Divider
	line := parent.CreateElement("line")
	if r.layered {
		line.CreateAttr("id", d.ID)
	}
	line.CreateAttr("x1", num(d.X1))
	line.CreateAttr("y1", num(d.Y1))
	line.CreateAttr("x2", num(d.X2))
	line.CreateAttr("y2", num(d.Y2))
	line.CreateAttr("stroke", lb.Color)
	line.CreateAttr("stroke-width", num(d.Width))

	for _, t := range []layers.Text{lb.Subtitle, lb.Coords, lb.Attribution} {
		r.text(parent, t, lb.Color, family)
	}
}

func (r *svgRenderer) text(parent *etree.Element, t layers.Text, color, family string) {
	el := parent.CreateElement("text")
	if r.layered {
		el.CreateAttr("id", t.ID)
	}
	el.CreateAttr("x", num(t.X))
	el.CreateAttr("y", num(t.Y))
	el.CreateAttr("text-anchor", string(t.Anchor))
	el.CreateAttr("font-family", family)
	el.CreateAttr("font-size", num(t.Size))
	el.CreateAttr("font-weight", strconv.Itoa(int(t.Weight)))
	el.CreateAttr("fill", color)
	if t.Opacity < 1 {
		el.CreateAttr("opacity", num(t.Opacity))
	}
	el.SetText(t.Content)
}

func cssWeight(w fonts.Weight) int {
	switch w {
	case fonts.Light:
		return int(layers.WeightLight)
	case fonts.Bold:
		return int(layers.WeightBold)
	default:
		return int(layers.WeightRegular)
	}
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64)
}
