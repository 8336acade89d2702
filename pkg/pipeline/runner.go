package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/paulbouuu/K-means/pkg/animate"
	"github.com/paulbouuu/K-means/pkg/dataset"
	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/frames"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/observability"
	"github.com/paulbouuu/K-means/pkg/render"
)

// Result holds everything produced by a run.
type Result struct {
	// RunID uniquely identifies the run in summaries and logs.
	RunID string

	// Options are the effective options after defaults were applied.
	Options Options

	// Points is the clustered dataset.
	Points []kmeans.Point

	// Labels and Centroids describe the final state of the engine.
	Labels    []int
	Centroids []kmeans.Point

	// History has one record per step, in order.
	History []IterationRecord

	// Frames lists the written frame paths in iteration order.
	Frames []string

	// Animation is nil when animation was disabled or failed.
	Animation *animate.Result

	Stats Stats
}

// Runner executes runs. It holds no run state, so one Runner may be shared.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Prepare builds the dataset described by opts and returns an engine loaded
// with it. Generated data and initial centroids come from a single random
// stream seeded with opts.Seed, with the data drawn first.
func (r *Runner) Prepare(opts Options) (*kmeans.Engine, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	rng := kmeans.NewRand(opts.Seed)

	points, err := r.loadData(opts, rng)
	if err != nil {
		return nil, err
	}
	engine, err := kmeans.New(opts.K, kmeans.WithDomain(opts.Domain), kmeans.WithRand(rng))
	if err != nil {
		return nil, err
	}
	engine.Load(points)
	return engine, nil
}

func (r *Runner) loadData(opts Options, rng *rand.Rand) ([]kmeans.Point, error) {
	if opts.Input == "" {
		return dataset.Generate(opts.K, opts.PointsPerCluster, opts.Domain, rng)
	}

	points, err := dataset.ImportCSV(opts.Input)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset %s is empty", opts.Input)
	}
	outside := 0
	for _, p := range points {
		if !opts.Domain.Contains(p) {
			outside++
		}
	}
	if outside > 0 {
		opts.Logger.Warn("points outside domain", "count", outside, "domain", opts.Domain.String())
	}
	return points, nil
}

// Run executes the complete generate → cluster → render → animate pipeline.
//
// Frames from earlier runs are removed from opts.FramesDir before the first
// step. Animation failures are logged and leave Result.Animation nil; every
// other failure aborts the run.
func (r *Runner) Run(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	runHooks := observability.Run()
	outHooks := observability.Output()
	start := time.Now()

	result = &Result{
		RunID:   uuid.NewString(),
		Options: opts,
	}

	engine, err := r.Prepare(opts)
	if err != nil {
		return nil, err
	}
	result.Points = engine.Dataset()
	result.Stats.Points = len(result.Points)
	result.Stats.DataTime = time.Since(start)
	logger.Info("prepared dataset",
		"points", result.Stats.Points,
		"k", opts.K,
		"run", result.RunID)

	runHooks.OnRunStart(ctx, opts.K, result.Stats.Points, opts.Iterations)
	defer func() {
		runHooks.OnRunComplete(ctx, engine.Iteration(), time.Since(start), err)
	}()

	removed, err := frames.Clear(opts.FramesDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "prepare frames dir")
	}
	if removed > 0 {
		logger.Debug("removed stale frames", "dir", opts.FramesDir, "count", removed)
	}

	renderOpts := []render.Option{render.WithSize(opts.Width, opts.Height), render.WithLogger(logger)}
	if opts.Show {
		var viewer render.Viewer = render.SystemViewer{}
		if opts.Viewer != nil {
			viewer = opts.Viewer
		}
		renderOpts = append(renderOpts, render.WithViewer(viewer))
	}
	renderer := render.New(renderOpts...)

	for i := 0; i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stepStart := time.Now()
		if err := engine.Step(); err != nil {
			return nil, err
		}
		stepTime := time.Since(stepStart)
		result.Stats.ClusterTime += stepTime

		rec := record(engine)
		runHooks.OnStep(ctx, rec.Iteration, len(rec.Reseeded), rec.Inertia, stepTime)
		if len(rec.Reseeded) > 0 {
			logger.Warn("re-seeded empty clusters", "iteration", rec.Iteration, "clusters", rec.Reseeded)
		}

		renderStart := time.Now()
		path, err := renderer.WriteFrame(opts.FramesDir, engine)
		renderTime := time.Since(renderStart)
		outHooks.OnFrame(ctx, rec.Iteration, path, renderTime, err)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render iteration %d", rec.Iteration)
		}
		result.Stats.RenderTime += renderTime

		rec.Frame = path
		result.History = append(result.History, rec)
		result.Frames = append(result.Frames, path)
		logger.Debug("step",
			"iteration", rec.Iteration,
			"inertia", rec.Inertia,
			"sizes", rec.Sizes)
	}
	result.Stats.Iterations = engine.Iteration()
	result.Labels = engine.Labels()
	result.Centroids = engine.Centroids()

	logger.Info("clustered",
		"iterations", result.Stats.Iterations,
		"inertia", engine.Inertia(),
		"duration", result.Stats.ClusterTime+result.Stats.RenderTime)

	if !opts.NoAnimation {
		if err := r.animate(ctx, opts, result); err != nil {
			return nil, err
		}
	}

	if opts.Summary != "" {
		if err := WriteSummary(opts.Summary, result.Summary()); err != nil {
			return nil, err
		}
		logger.Debug("wrote summary", "path", opts.Summary)
	}

	return result, nil
}

// animate assembles the run's frames. Only cancellation is returned as an
// error; assembly failures are logged.
func (r *Runner) animate(ctx context.Context, opts Options, result *Result) error {
	animStart := time.Now()
	anim, err := animate.Assemble(ctx, opts.FramesDir, opts.Output,
		animate.WithDuration(opts.FrameDuration()),
		animate.WithLogger(opts.Logger))
	result.Stats.AnimateTime = time.Since(animStart)

	if err != nil {
		observability.Output().OnAnimate(ctx, 0, 0, result.Stats.AnimateTime, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		opts.Logger.Warn("could not create animation", "err", errors.UserMessage(err))
		return nil
	}
	observability.Output().OnAnimate(ctx, anim.Frames, len(anim.Skipped), result.Stats.AnimateTime, nil)
	result.Animation = anim
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func record(e *kmeans.Engine) IterationRecord {
	return IterationRecord{
		Iteration: e.Iteration(),
		Centroids: e.Centroids(),
		Sizes:     e.Sizes(),
		Reseeded:  e.Reseeded(),
		Inertia:   e.Inertia(),
	}
}
