package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/layers"
	"github.com/kronpano/city-map-poster/pkg/observability"
	"github.com/kronpano/city-map-poster/pkg/render/sink"
	"github.com/kronpano/city-map-poster/pkg/session"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// EmitFunc receives each rendered output. Calls are never concurrent.
type EmitFunc func(Output) error

// RenderAll renders every theme in every requested format from the shared
// session. Up to opts.Jobs themes render concurrently; formats of one theme
// share composed posters where their resolution matches.
//
// Outputs and failures are returned in theme then format order regardless of
// completion order. The returned error is non-nil only when ctx is done.
func (r *Runner) RenderAll(ctx context.Context, s *session.Session, themes []string, opts *Options, emit EmitFunc) ([]Output, []Failure, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	if emit == nil {
		emit = func(Output) error { return nil }
	}

	type slot struct {
		out  *Output
		fail *Failure
	}
	slots := make([][]slot, len(themes))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	for i, name := range themes {
		slots[i] = make([]slot, len(opts.Formats))
		g.Go(func() error {
			outs, fails := r.renderTheme(gctx, s, name, opts)
			for j := range opts.Formats {
				if fails[j] != nil {
					slots[i][j].fail = fails[j]
					continue
				}
				mu.Lock()
				err := emit(*outs[j])
				mu.Unlock()
				if err != nil {
					slots[i][j].fail = &Failure{Theme: name, Format: opts.Formats[j], Err: err}
					continue
				}
				slots[i][j].out = outs[j]
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var outputs []Output
	var failures []Failure
	for _, row := range slots {
		for _, sl := range row {
			switch {
			case sl.fail != nil:
				r.logger(opts).Error("render failed", "theme", sl.fail.Theme, "format", sl.fail.Format, "err", sl.fail.Err)
				failures = append(failures, *sl.fail)
			case sl.out != nil:
				outputs = append(outputs, *sl.out)
			}
		}
	}
	return outputs, failures, nil
}

// renderTheme produces one result per format, indexed like opts.Formats.
// Exactly one of the two entries at each index is set.
func (r *Runner) renderTheme(ctx context.Context, s *session.Session, name string, opts *Options) ([]*Output, []*Failure) {
	outs := make([]*Output, len(opts.Formats))
	fails := make([]*Failure, len(opts.Formats))
	failAll := func(err error) {
		for j, f := range opts.Formats {
			fails[j] = &Failure{Theme: name, Format: f, Err: err}
		}
	}

	th, fallback, err := r.Themes.Load(name)
	if err != nil {
		failAll(err)
		return outs, fails
	}
	if fallback {
		r.logger(opts).Warn("theme not found, using fallback", "theme", name, "fallback", th.ID)
	}

	posters := map[float64]*layers.Poster{}
	for j, f := range opts.Formats {
		if ctx.Err() != nil {
			fails[j] = &Failure{Theme: name, Format: f, Err: ctx.Err()}
			continue
		}
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, name, string(f))

		data, err := r.renderOne(ctx, s, th, f, opts, posters)

		d := time.Since(start)
		observability.Pipeline().OnRenderComplete(ctx, name, string(f), len(data), d, err)
		if err != nil {
			fails[j] = &Failure{Theme: name, Format: f, Err: err}
			continue
		}
		r.logger(opts).Info("rendered", "theme", name, "format", f, "bytes", len(data), "duration", d.Round(time.Millisecond))
		outs[j] = &Output{Theme: name, Format: f, Data: data, Fallback: fallback, Duration: d}
	}
	return outs, fails
}

func (r *Runner) renderOne(ctx context.Context, s *session.Session, th theme.Theme, f sink.Format, opts *Options, posters map[float64]*layers.Poster) ([]byte, error) {
	dpi := f.DPI()
	p, ok := posters[dpi]
	if !ok {
		var err error
		if p, err = layers.Compose(s, th, dpi); err != nil {
			return nil, err
		}
		posters[dpi] = p
	}

	sk, err := sink.New(f, sink.Options{
		Fonts:      r.Fonts,
		EmbedFonts: opts.EmbedFonts,
		MaxSize:    opts.MaxSize,
		SessionID:  s.ID(),
	})
	if err != nil {
		return nil, err
	}
	data, err := sk.Render(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if perrors.GetCode(err) == "" {
			err = perrors.Wrap(perrors.ErrCodeRender, err, "render %s", f)
		}
		return nil, err
	}
	return data, nil
}
