// Package animate assembles rendered frames into a looping GIF.
//
// Frames are discovered in a directory through the frames package naming
// contract and played in iteration order. Problems with individual files
// (unparseable names, undecodable images) are logged and skipped; an empty
// or fully unreadable directory produces no output and no error.
package animate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/frames"
)

const (
	// DefaultDuration is the default display time of each frame.
	DefaultDuration = 500 * time.Millisecond

	// paletteSize is the maximum number of colors in a GIF frame.
	paletteSize = 256
)

// Option configures Assemble.
type Option func(*config)

type config struct {
	duration time.Duration
	logger   *log.Logger
}

// WithDuration sets the per-frame display time. GIF delays have a resolution
// of 10ms; shorter non-zero durations are rounded up to 10ms.
func WithDuration(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithLogger sets the logger that receives per-file diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Result describes an assembly attempt.
type Result struct {
	// Output is the GIF path; empty when nothing was written.
	Output string

	// Written reports whether a GIF was produced.
	Written bool

	// Frames is the number of frames in the GIF.
	Frames int

	// Skipped lists files that were not used, with the reason.
	Skipped []frames.Skipped

	// Reason is a NO_FRAMES error explaining why nothing was written.
	Reason error
}

// Assemble collects the frames in dir and writes them to output as an
// infinitely looping GIF.
//
// Returns a nil error and Result.Written == false when no frame files exist or
// none can be decoded. Encoding or writing failures are returned as INTERNAL
// errors; cancellation of ctx between frames returns ctx.Err().
func Assemble(ctx context.Context, dir, output string, opts ...Option) (*Result, error) {
	cfg := config{
		duration: DefaultDuration,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	listing, err := frames.Scan(dir)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	for _, s := range listing.Skipped {
		cfg.logger.Warn("skipping frame", "path", s.Path, "err", errors.UserMessage(s.Err))
		res.Skipped = append(res.Skipped, s)
	}

	if len(listing.Frames) == 0 {
		res.Reason = errors.New(errors.ErrCodeNoFrames, "no files found matching %s", filepath.Join(dir, frames.Pattern))
		cfg.logger.Warn(errors.UserMessage(res.Reason))
		return res, nil
	}
	cfg.logger.Info("found frames", "count", len(listing.Frames))

	anim := &gif.GIF{LoopCount: 0}
	delay := delayFor(cfg.duration)
	for _, f := range listing.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imaging.Open(f.Path)
		if err != nil {
			wrapped := errors.Wrap(errors.ErrCodeDecode, err, "could not open %s", f.Path)
			cfg.logger.Warn("skipping frame", "path", f.Path, "err", err)
			res.Skipped = append(res.Skipped, frames.Skipped{Path: f.Path, Err: wrapped})
			continue
		}
		anim.Image = append(anim.Image, toPaletted(img))
		anim.Delay = append(anim.Delay, delay)
	}

	if len(anim.Image) == 0 {
		res.Reason = errors.New(errors.ErrCodeNoFrames, "no valid images to combine")
		cfg.logger.Warn(errors.UserMessage(res.Reason))
		return res, nil
	}

	anim.Config = canvas(anim.Image)
	if err := write(output, anim); err != nil {
		return nil, err
	}

	res.Output = output
	res.Written = true
	res.Frames = len(anim.Image)
	cfg.logger.Info("saved animation", "path", output, "frames", res.Frames)
	return res, nil
}

// delayFor converts a frame duration to GIF delay units (1/100 s), at least 1.
func delayFor(d time.Duration) int {
	cs := int((d + 9*time.Millisecond) / (10 * time.Millisecond))
	if cs < 1 {
		cs = 1
	}
	return cs
}

// toPaletted reduces img to an adaptive palette of at most 256 colors.
func toPaletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, paletteSize), img)
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// canvas returns a logical screen large enough for every frame.
func canvas(imgs []*image.Paletted) image.Config {
	var w, h int
	for _, img := range imgs {
		if dx := img.Bounds().Max.X; dx > w {
			w = dx
		}
		if dy := img.Bounds().Max.Y; dy > h {
			h = dy
		}
	}
	return image.Config{Width: w, Height: h}
}

func write(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "encode gif")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", path)
	}
	return nil
}
