// Package render draws the state of a clustering run as a scatter plot.
//
// # Overview
//
// A [Renderer] reads the dataset, labels, centroids and iteration count from a
// [State] (satisfied by *kmeans.Engine) and produces a PNG: data points
// colored by label and centroids overlaid as large red markers, titled with the
// iteration number.
//
//	r := render.New(render.WithSize(800, 600))
//	path, err := r.WriteFrame("images", eng)  // images/k_means_<iteration>.png
//
// Frame files follow the naming contract of the frames package so that the
// animator can find and order them.
//
// # On-screen Display
//
// When constructed [WithViewer], every written frame is also handed to the
// viewer. [SystemViewer] opens the file with the platform's default image viewer.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/paulbouuu/K-means/pkg/frames"
	"github.com/paulbouuu/K-means/pkg/kmeans"
)

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 640

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 480

	// dpi matches the resolution of gonum/plot's raster canvas.
	dpi = 96
)

// State is the read-only view of a clustering run that the renderer needs.
type State interface {
	Dataset() []kmeans.Point
	Labels() []int
	Centroids() []kmeans.Point
	Iteration() int
}

// Viewer displays a rendered frame on screen.
type Viewer interface {
	Show(path string) error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the output size in pixels. Non-positive values are ignored.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithPointRadius sets the glyph radius of data points.
func WithPointRadius(radius vg.Length) Option {
	return func(r *Renderer) { r.pointRadius = radius }
}

// WithCentroidRadius sets the glyph radius of centroids.
func WithCentroidRadius(radius vg.Length) Option {
	return func(r *Renderer) { r.centroidRadius = radius }
}

// WithViewer shows every frame written by WriteFrame. A nil viewer disables display.
func WithViewer(v Viewer) Option {
	return func(r *Renderer) { r.viewer = v }
}

// WithLogger sets the logger that receives display failures.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer turns clustering state into PNG scatter plots.
type Renderer struct {
	width          int
	height         int
	pointRadius    vg.Length
	centroidRadius vg.Length
	viewer         Viewer
	logger         *log.Logger
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		width:          DefaultWidth,
		height:         DefaultHeight,
		pointRadius:    vg.Points(1.5),
		centroidRadius: vg.Points(6),
		logger:         log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes a PNG scatter plot of s to w.
func (r *Renderer) Render(w io.Writer, s State) error {
	p, err := r.plot(s)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pixels(r.width), pixels(r.height), "png")
	if err != nil {
		return fmt.Errorf("create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WriteFrame renders s into dir under the frame name for s.Iteration() and
// returns the written path. The frame is shown when a viewer is configured;
// display failures do not fail the write.
func (r *Renderer) WriteFrame(dir string, s State) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, s); err != nil {
		return "", err
	}
	path := frames.Path(dir, s.Iteration())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write frame %s: %w", path, err)
	}
	if r.viewer != nil {
		if err := r.viewer.Show(path); err != nil {
			r.logger.Warn("could not display frame", "path", path, "error", err)
		}
	}
	return path, nil
}

func (r *Renderer) plot(s State) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Iteration %d", s.Iteration())
	p.Add(plotter.NewGrid())

	data := s.Dataset()
	labels := s.Labels()
	if len(labels) != len(data) {
		// Nothing stepped yet on this dataset: draw every point as cluster 0.
		labels = make([]int, len(data))
	}

	groups := make(map[int]plotter.XYs)
	maxLabel := -1
	for i, pt := range data {
		l := labels[i]
		groups[l] = append(groups[l], plotter.XY{X: pt.X, Y: pt.Y})
		if l > maxLabel {
			maxLabel = l
		}
	}
	for l := 0; l <= maxLabel; l++ {
		xys, ok := groups[l]
		if !ok {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("cluster %d points: %w", l, err)
		}
		sc.GlyphStyle.Color = translucent(plotutil.Color(l))
		sc.GlyphStyle.Radius = r.pointRadius
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
	}

	centroids := s.Centroids()
	if len(centroids) > 0 {
		xys := make(plotter.XYs, len(centroids))
		for i, c := range centroids {
			xys[i] = plotter.XY{X: c.X, Y: c.Y}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("centroids: %w", err)
		}
		sc.GlyphStyle.Color = translucent(color.RGBA{R: 255, A: 255})
		sc.GlyphStyle.Radius = r.centroidRadius
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
	}
	return p, nil
}

// translucent returns c at half opacity.
func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 128}
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}
