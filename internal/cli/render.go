package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/pipeline"
	"github.com/kronpano/city-map-poster/pkg/render/sink"
	"github.com/kronpano/city-map-poster/pkg/theme"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	city        string
	country     string
	lat         float64
	lon         float64
	theme       string
	distance    int
	shift       string
	ratio       string
	formats     string
	outputDir   string
	jobs        int
	noCache     bool
	refresh     bool
	embedFonts  bool
	maxSize     int
	metricsFile string
}

// renderCommand creates the render command, the main poster generator.
// Flag defaults come from the loaded configuration.
func (c *CLI) renderCommand() *cobra.Command {
	return c.renderCommandWith(&renderOpts{})
}

// renderCommandWith creates the render command bound to opts.
func (c *CLI) renderCommandWith(opts *renderOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a map poster for a city",
		Example: `  poster render -c Paris -C France
  poster render -c Tokyo -C Japan -t noir,blueprint -f png,svg-layered
  poster render -c Venice -C Italy -t all -d 4000 -r 1:1
  poster render -c Berlin -C Germany -s 2.5ne --lat 52.52 --lon 13.405`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			c.applyRenderDefaults(cmd, opts)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := opts.pipelineOptions(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), po, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.city, "city", "c", "", "city name (required)")
	f.StringVarP(&opts.country, "country", "C", "", "country name (required)")
	f.Float64Var(&opts.lat, "lat", 0, "latitude; skips geocoding of the center (requires --lon)")
	f.Float64Var(&opts.lon, "lon", 0, "longitude; skips geocoding of the center (requires --lat)")
	f.StringVarP(&opts.theme, "theme", "t", "", `theme name, comma-separated list, or "all"`)
	f.IntVarP(&opts.distance, "distance", "d", 0, "map radius in metres")
	f.StringVarP(&opts.shift, "shift", "s", "", "shift the map center, e.g. 2w, 5ne, 3.5nnw (km)")
	f.StringVarP(&opts.ratio, "ratio", "r", "", "aspect ratio w:h, e.g. 3:4, 1:1, 16:9")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(formatNames(), ", ")+" (comma-separated)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for generated posters")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "number of themes rendered in parallel")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the data cache")
	f.BoolVar(&opts.refresh, "refresh", false, "refetch data even if cached")
	f.BoolVar(&opts.embedFonts, "embed-fonts", false, "embed fonts in SVG and PDF output")
	f.IntVar(&opts.maxSize, "max-size", 0, "limit PNG width and height in pixels (0 = full size)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	f.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "long" {
			name = "lon"
		}
		return pflag.NormalizedName(name)
	})
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}

// applyRenderDefaults fills flags the user did not set from the config.
func (c *CLI) applyRenderDefaults(cmd *cobra.Command, opts *renderOpts) {
	cfg := c.config()
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if !set("theme") {
		opts.theme = cfg.Render.Theme
	}
	if !set("distance") {
		opts.distance = cfg.Render.Distance
	}
	if !set("ratio") {
		opts.ratio = cfg.Render.Aspect
	}
	if !set("format") {
		opts.formats = cfg.Render.Formats
	}
	if !set("output-dir") {
		opts.outputDir = cfg.OutputDir
	}
	if !set("jobs") {
		opts.jobs = cfg.Render.Jobs
	}
	if !set("metrics-file") {
		opts.metricsFile = cfg.MetricsFile
	}
}

// pipelineOptions converts flags into pipeline options.
func (o *renderOpts) pipelineOptions(cmd *cobra.Command) (pipeline.Options, error) {
	formats, err := sink.ParseFormats(o.formats)
	if err != nil {
		return pipeline.Options{}, err
	}
	po := pipeline.Options{
		City:       strings.TrimSpace(o.city),
		Country:    strings.TrimSpace(o.country),
		Distance:   o.distance,
		Shift:      o.shift,
		Aspect:     o.ratio,
		Theme:      o.theme,
		Formats:    formats,
		Jobs:       o.jobs,
		Refresh:    o.refresh,
		EmbedFonts: o.embedFonts,
		MaxSize:    o.maxSize,
	}
	if cmd.Flags().Changed("lat") {
		po.Lat = &o.lat
	}
	if cmd.Flags().Changed("lon") {
		po.Lon = &o.lon
	}
	if err := po.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return po, nil
}

// runRender executes the pipeline and writes each poster as it is rendered.
func (c *CLI) runRender(ctx context.Context, po pipeline.Options, opts *renderOpts) error {
	if opts.metricsFile != "" {
		c.enableMetrics()
		defer c.writeMetrics(opts.metricsFile)
	}

	runner, err := c.newRunner(ctx, opts.noCache, opts.refresh)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	printInfo("Generating posters for %s", StyleHighlight.Render(po.City+", "+po.Country))
	prog := newProgress(c.Logger)
	started := time.Now()

	var written []string
	result, err := runner.Execute(ctx, po, func(out pipeline.Output) error {
		path := filepath.Join(opts.outputDir, outputName(po.City, out.Theme, po.Distance, po.Shift, out.Format, started))
		if err := os.WriteFile(path, out.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	})
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Rendered %d poster(s)", len(result.Outputs)))
	printKeyValue("Location", result.Place.Point.String())
	if result.Place.Region != "" {
		printKeyValue("Region", result.Place.Region)
	}
	printKeyValue("Streets", strconv.Itoa(result.Stats.Edges)+" segments")
	for _, name := range fallbackThemes(result.Outputs) {
		printWarning("Theme %q not found, used %s", name, theme.FallbackID)
	}
	for _, path := range written {
		printFile(path)
	}
	if len(result.Failures) > 0 {
		for _, f := range result.Failures {
			printError("%s/%s: %s", f.Theme, f.Format, perrors.UserMessage(f.Err))
		}
		return fmt.Errorf("%d of %d renders failed", len(result.Failures), len(result.Failures)+len(result.Outputs))
	}
	printSuccess("Done")
	return nil
}

// fallbackThemes returns each theme rendered with the fallback theme once,
// in output order.
func fallbackThemes(outputs []pipeline.Output) []string {
	var names []string
	seen := map[string]bool{}
	for _, out := range outputs {
		if out.Fallback && !seen[out.Theme] {
			seen[out.Theme] = true
			names = append(names, out.Theme)
		}
	}
	return names
}

// outputName builds {city}_{theme}_{distance}[_{shift}]_{timestamp}.{ext}.
func outputName(city, themeName string, distance int, shift string, f sink.Format, t time.Time) string {
	parts := []string{citySlug(city), themeName, strconv.Itoa(distance)}
	if shift = strings.ToLower(strings.TrimSpace(shift)); shift != "" {
		parts = append(parts, shift)
	}
	parts = append(parts, t.Format("20060102_150405"))
	return strings.Join(parts, "_") + "." + f.Ext()
}

// citySlug lowercases city and replaces spaces with underscores. Other
// characters, including non-Latin letters, are kept.
func citySlug(city string) string {
	return strings.Join(strings.Fields(strings.ToLower(city)), "_")
}

func formatNames() []string {
	names := make([]string, len(sink.Formats))
	for i, f := range sink.Formats {
		names[i] = string(f)
	}
	return names
}
