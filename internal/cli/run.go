package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/observability"
	"github.com/paulbouuu/K-means/pkg/pipeline"
	"github.com/paulbouuu/K-means/pkg/render"
)

// runFlags holds flag values for the run command. Values only take effect
// for flags the user set explicitly; see resolve.
type runFlags struct {
	config   string
	opts     pipeline.Options
	domain   string
	duration time.Duration
}

// runCommand creates the run command that executes the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster a dataset and animate the iterations",
		Long: `Run the complete clustering pipeline.

A Gaussian mixture with one component per cluster is generated inside the
domain (or a CSV dataset is imported with --input), then the algorithm runs for
a fixed number of iterations. A PNG frame is written after every iteration and
the frames are combined into a looping GIF.

Settings are resolved from defaults, then the --config TOML file, then
explicitly set flags. Numeric flags must not be zero, and --duration must be
at least 1ms.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return c.runRun(cmd.Context(), opts)
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

// register defines the run flags on fs.
func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "TOML file with run settings")
	fs.IntVarP(&f.opts.K, "clusters", "k", pipeline.DefaultK, "number of clusters")
	fs.IntVar(&f.opts.PointsPerCluster, "points", pipeline.DefaultPointsPerCluster, "points generated per cluster")
	fs.StringVar(&f.domain, "domain", formatDomain(kmeans.DefaultDomain), "coordinate range lo,hi for generated data and centroids")
	fs.IntVarP(&f.opts.Iterations, "iterations", "n", pipeline.DefaultIterations, "number of iterations")
	fs.Uint64Var(&f.opts.Seed, "seed", pipeline.DefaultSeed, "random seed")
	fs.StringVar(&f.opts.Input, "input", "", "CSV dataset to cluster instead of generating one")
	fs.StringVar(&f.opts.FramesDir, "frames-dir", pipeline.DefaultFramesDir, "directory for per-iteration frames")
	fs.StringVarP(&f.opts.Output, "output", "o", pipeline.DefaultOutput, "animation output path")
	fs.DurationVar(&f.duration, "duration", pipeline.DefaultFrameDurationMS*time.Millisecond, "display time of each frame")
	fs.IntVar(&f.opts.Width, "width", render.DefaultWidth, "frame width in pixels")
	fs.IntVar(&f.opts.Height, "height", render.DefaultHeight, "frame height in pixels")
	fs.BoolVar(&f.opts.Show, "show", false, "open every frame in the system image viewer")
	fs.BoolVar(&f.opts.NoAnimation, "no-gif", false, "skip GIF assembly")
	fs.StringVar(&f.opts.Summary, "summary", "", "write a JSON run summary to this path")
}

// resolve layers explicitly set flags over the config file (if any).
// Fields left zero are filled by pipeline.Options.SetDefaults.
func (f *runFlags) resolve(fs *pflag.FlagSet) (pipeline.Options, error) {
	if err := rejectZeroFlags(fs); err != nil {
		return pipeline.Options{}, err
	}

	var opts pipeline.Options
	if f.config != "" {
		loaded, err := pipeline.LoadOptions(f.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts = loaded
	}

	var visitErr error
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "clusters":
			opts.K = f.opts.K
		case "points":
			opts.PointsPerCluster = f.opts.PointsPerCluster
		case "domain":
			d, err := parseDomain(f.domain)
			if err != nil {
				visitErr = err
				return
			}
			opts.Domain = d
		case "iterations":
			opts.Iterations = f.opts.Iterations
		case "seed":
			opts.Seed = f.opts.Seed
		case "input":
			opts.Input = f.opts.Input
		case "frames-dir":
			opts.FramesDir = f.opts.FramesDir
		case "output":
			opts.Output = f.opts.Output
		case "duration":
			opts.FrameDurationMS = int(f.duration / time.Millisecond)
		case "width":
			opts.Width = f.opts.Width
		case "height":
			opts.Height = f.opts.Height
		case "show":
			opts.Show = f.opts.Show
		case "no-gif":
			opts.NoAnimation = f.opts.NoAnimation
		case "summary":
			opts.Summary = f.opts.Summary
		}
	})
	if visitErr != nil {
		return pipeline.Options{}, visitErr
	}
	return opts, nil
}

// unsetByZero names the flags whose zero value pipeline.Options reads as
// "use the default". Passing zero explicitly is rejected.
var unsetByZero = map[string]bool{
	"clusters":   true,
	"points":     true,
	"iterations": true,
	"seed":       true,
	"duration":   true,
	"width":      true,
	"height":     true,
}

// rejectZeroFlags fails when any flag in unsetByZero was explicitly set to zero.
func rejectZeroFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(fl *pflag.Flag) {
		if err == nil && unsetByZero[fl.Name] && isZero(fl) {
			err = errors.New(errors.ErrCodeInvalidInput, "--%s must not be zero", fl.Name)
		}
	})
	return err
}

// isZero reports whether a numeric flag resolves to zero. Durations are
// stored in whole milliseconds, so anything shorter counts as zero.
func isZero(fl *pflag.Flag) bool {
	if fl.Value.Type() == "duration" {
		d, err := time.ParseDuration(fl.Value.String())
		return err == nil && d < time.Millisecond
	}
	return fl.Value.String() == "0"
}

// runRun executes the pipeline and prints the produced files.
func (c *CLI) runRun(ctx context.Context, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Clustering...")
	observability.SetRunHooks(&spinnerHooks{spinner: spinner, total: opts.Iterations})
	defer observability.Reset()
	spinner.Start()

	result, err := c.newRunner().Run(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			printWarning("Run cancelled")
			return err
		}
		spinner.StopWithError("Run failed")
		return err
	}
	spinner.StopWithSuccess("Clustering complete")
	prog.done(fmt.Sprintf("Clustered %d points", result.Stats.Points), "iterations", result.Stats.Iterations, "run", result.RunID)

	var inertia float64
	if n := len(result.History); n > 0 {
		inertia = result.History[n-1].Inertia
	}
	printStats(result.Stats.Points, result.Stats.Iterations, inertia)
	printDetail("run %s", result.RunID)
	for i, centroid := range result.Centroids {
		printKeyValue(fmt.Sprintf("cluster %d", i), centroid.String())
	}

	printNewline()
	printInfo("%d frames in %s", len(result.Frames), opts.FramesDir)
	switch {
	case result.Animation != nil && result.Animation.Written:
		printFile(result.Animation.Output)
	case result.Animation != nil:
		printWarning("No animation written")
		printDetail("%s", errors.UserMessage(result.Animation.Reason))
	case !opts.NoAnimation:
		printWarning("No animation written")
	}
	if opts.Summary != "" {
		printFile(opts.Summary)
	}

	if opts.NoAnimation && len(result.Frames) > 0 {
		printNewline()
		printNextStep("Animate", fmt.Sprintf("%s animate %s", appName, opts.FramesDir))
	}
	return nil
}
