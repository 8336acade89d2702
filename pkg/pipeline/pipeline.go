// Package pipeline drives a complete clustering demonstration.
//
// This package implements the generate → cluster → render → animate pipeline
// used by the CLI. By centralizing defaults and validation here, the commands
// and the interactive stepper behave identically.
//
// # Architecture
//
// A run consists of four stages:
//
//  1. Data: generate a Gaussian mixture (or import a CSV dataset)
//  2. Cluster: construct an engine and load the dataset
//  3. Iterate: step the engine a fixed number of times, rendering a frame after each step
//  4. Animate: assemble the frames into a looping GIF
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{K: 4, Iterations: 12}
//	result, err := runner.Run(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Animation.Output)
package pipeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Stepper
// =============================================================================

const (
	// DefaultK is the default number of clusters (and mixture components).
	DefaultK = 3

	// DefaultPointsPerCluster is the default number of samples per mixture component.
	DefaultPointsPerCluster = 200

	// DefaultIterations is the default number of steps in a run.
	DefaultIterations = 10

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultFramesDir is the default directory for per-iteration frames.
	DefaultFramesDir = "images"

	// DefaultOutput is the default animation path.
	DefaultOutput = "k_means_anim.gif"

	// DefaultFrameDurationMS is the default display time of each GIF frame.
	DefaultFrameDurationMS = 500
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a run.
// It can be loaded from TOML with LoadOptions and serialized to JSON for summaries.
type Options struct {
	// Data options
	K                int           `json:"k" toml:"k"`
	PointsPerCluster int           `json:"points_per_cluster" toml:"points_per_cluster"`
	Domain           kmeans.Domain `json:"domain" toml:"domain"`
	Seed             uint64        `json:"seed" toml:"seed"`
	Input            string        `json:"input,omitempty" toml:"input"` // CSV dataset replacing generation

	// Iteration options
	Iterations int `json:"iterations" toml:"iterations"`

	// Output options
	FramesDir       string `json:"frames_dir" toml:"frames_dir"`
	Output          string `json:"output" toml:"output"`
	FrameDurationMS int    `json:"frame_duration_ms" toml:"frame_duration_ms"`
	Width           int    `json:"width" toml:"width"`
	Height          int    `json:"height" toml:"height"`
	Show            bool   `json:"show,omitempty" toml:"show"`
	NoAnimation     bool   `json:"no_animation,omitempty" toml:"no_animation"`
	Summary         string `json:"summary,omitempty" toml:"summary"`

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-" toml:"-"`
	Viewer render.Viewer `json:"-" toml:"-"`
}

// SetDefaults fills zero-valued fields with the package defaults.
// Negative values are left in place for Validate to reject.
func (o *Options) SetDefaults() {
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.PointsPerCluster == 0 {
		o.PointsPerCluster = DefaultPointsPerCluster
	}
	if o.Domain == (kmeans.Domain{}) {
		o.Domain = kmeans.DefaultDomain
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.FramesDir == "" {
		o.FramesDir = DefaultFramesDir
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.FrameDurationMS == 0 {
		o.FrameDurationMS = DefaultFrameDurationMS
	}
	if o.Width == 0 {
		o.Width = render.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = render.DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. It does not apply defaults.
func (o *Options) Validate() error {
	if o.K <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "k must be positive, got %d", o.K)
	}
	if o.Input == "" && o.PointsPerCluster <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "points per cluster must be positive, got %d", o.PointsPerCluster)
	}
	if o.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "iterations must not be negative, got %d", o.Iterations)
	}
	if o.FrameDurationMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame duration must not be negative, got %dms", o.FrameDurationMS)
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame size must not be negative, got %dx%d", o.Width, o.Height)
	}
	return o.Domain.Validate()
}

// ValidateAndSetDefaults applies defaults then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// FrameDuration returns the GIF frame duration.
func (o *Options) FrameDuration() time.Duration {
	return time.Duration(o.FrameDurationMS) * time.Millisecond
}

// LoadOptions reads options from a TOML file. Unknown keys are rejected so
// that typos do not silently fall back to defaults.
func LoadOptions(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if os.IsNotExist(err) {
		return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return opts, nil
}

// =============================================================================
// Result
// =============================================================================

// IterationRecord captures the engine state after one step.
type IterationRecord struct {
	Iteration int            `json:"iteration"`
	Centroids []kmeans.Point `json:"centroids"`
	Sizes     []int          `json:"sizes"`
	Reseeded  []int          `json:"reseeded,omitempty"`
	Inertia   float64        `json:"inertia"`
	Frame     string         `json:"frame,omitempty"`
}

// Stats contains run timing and size information.
type Stats struct {
	Points      int
	Iterations  int
	DataTime    time.Duration
	ClusterTime time.Duration
	RenderTime  time.Duration
	AnimateTime time.Duration
}

// String renders a one-line description of the stats.
func (s Stats) String() string {
	return fmt.Sprintf("%d points, %d iterations (cluster %s, render %s, animate %s)",
		s.Points, s.Iterations,
		s.ClusterTime.Round(time.Millisecond),
		s.RenderTime.Round(time.Millisecond),
		s.AnimateTime.Round(time.Millisecond))
}
