// Command starrender draws a cluster dataset to a PNG without a window.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"constellation/internal/app"
	"constellation/internal/catalog"
	"constellation/internal/config"
	"constellation/internal/logger"
	"constellation/internal/render"
	"constellation/internal/version"
	"constellation/internal/viewport"
	"constellation/pkg/geometry"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const legendRows = 12

type options struct {
	configPath string
	cluster    string
	out        string
	size       string
	zoom       float64
	offset     string
	highlight  string
	dir        string
	baseURL    string
	fit        bool
	noGrid     bool
	noLegend   bool
}

// fitMargin keeps fitted stars clear of the image edge and the title.
const fitMargin = 48

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "starrender",
		Short: "Render a cluster dataset to a PNG",
		Example: `  starrender --cluster cluster_0 --out chart.png --size 1200x800
  starrender --dir ./data --cluster 12 --zoom 2 --offset 40,-25 --highlight 3
  starrender --cluster cluster_0 --fit`,
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (TOML)")
	f.StringVar(&opts.cluster, "cluster", "", "cluster id (default: data.root_cluster)")
	f.StringVarP(&opts.out, "out", "o", "chart.png", "output PNG path")
	f.StringVar(&opts.size, "size", "1200x800", "image size WIDTHxHEIGHT")
	f.Float64Var(&opts.zoom, "zoom", 1, "zoom factor")
	f.StringVar(&opts.offset, "offset", "0,0", "view offset X,Y in map units")
	f.StringVar(&opts.highlight, "highlight", "", "group or artist id to highlight")
	f.StringVar(&opts.dir, "dir", "", "read datasets from this directory")
	f.StringVar(&opts.baseURL, "base-url", "", "read datasets from this host")
	f.BoolVar(&opts.fit, "fit", false, "choose zoom and offset to show every star (overrides --zoom and --offset)")
	f.BoolVar(&opts.noGrid, "no-grid", false, "omit the background grid")
	f.BoolVar(&opts.noLegend, "no-legend", false, "omit the group legend")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dir != "" {
		cfg.Data.Dir = opts.dir
	}
	if opts.baseURL != "" {
		cfg.Data.BaseURL = opts.baseURL
		cfg.Data.Dir = ""
	}
	if opts.cluster == "" {
		opts.cluster = cfg.Data.RootCluster
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()

	w, h, err := parseSize(opts.size)
	if err != nil {
		return err
	}
	ox, oy, err := parseOffset(opts.offset)
	if err != nil {
		return err
	}

	start := time.Now()
	spinner, _ := pterm.DefaultSpinner.Start("Loading " + opts.cluster)
	ds, err := catalog.LoadDataset(ctx, app.NewSource(cfg), opts.cluster)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success(fmt.Sprintf("Loaded %s: %d groups, %d stars", opts.cluster, len(ds.Data), ds.Len()))

	view := viewport.State{OffsetX: ox, OffsetY: oy, Zoom: viewport.ClampZoom(opts.zoom)}
	if opts.fit {
		view = viewport.Fit(ds.Positions(), geometry.NewSize(float64(w), float64(h)), fitMargin)
	}
	if cfg.Viewport.ClampOffset {
		view = view.ClampOffset(cfg.Viewport.MaxOffset)
	}
	img, drawn := draw(ds, image.Rect(0, 0, w, h), view, opts)

	if err := writePNG(opts.out, img); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s (%dx%d, %d of %d stars visible) in %s",
		opts.out, w, h, drawn, ds.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}

// draw renders ds with a title and legend.
func draw(ds *catalog.Dataset, bounds image.Rectangle, view viewport.State, opts options) (*image.RGBA, int) {
	img := image.NewRGBA(bounds)
	r := render.New(!opts.noGrid)
	highlight := highlightGroup(ds, opts.highlight)
	drawn := r.Render(img, render.Scene{Dataset: ds, Highlight: highlight, View: view, Scale: 1})

	subtitle := fmt.Sprintf("%d groups, %d stars, zoom %.2f", len(ds.Data), ds.Len(), view.Zoom)
	render.DrawTitle(img, opts.cluster, subtitle)
	if !opts.noLegend {
		r.DrawLegend(img, ds, highlight, legendRows)
	}
	return img, drawn
}

// highlightGroup resolves id to a group id. An artist id selects the
// group that holds the artist.
func highlightGroup(ds *catalog.Dataset, id string) string {
	if id == "" {
		return ""
	}
	if _, ok := ds.Group(id); ok {
		return id
	}
	if _, g, ok := ds.Find(id); ok {
		return g.ID
	}
	return id
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, errors.Newf("size %q: want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q width", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q height", s)
	}
	if w <= 0 || h <= 0 || w > 16384 || h > 16384 {
		return 0, 0, errors.Newf("size %q out of range", s)
	}
	return w, h, nil
}

// parseOffset parses "X,Y".
func parseOffset(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.Newf("offset %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "offset %q x", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "offset %q y", s)
	}
	return x, y, nil
}
