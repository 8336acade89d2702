package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/paulbouuu/K-means/pkg/frames"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/pipeline"
	"github.com/paulbouuu/K-means/pkg/render"
)

// stepCommand creates the interactive step command.
func (c *CLI) stepCommand() *cobra.Command {
	var (
		domain string
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Step through the algorithm interactively",
		Long: `Step through the algorithm one iteration at a time.

Press space, enter or → to perform a step, r to draw fresh random centroids
and q to quit. With --frames-dir a frame is rendered after every step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rejectZeroFlags(cmd.Flags()); err != nil {
				return err
			}
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			opts.Domain = d
			return c.runStep(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.K, "clusters", "k", pipeline.DefaultK, "number of clusters")
	cmd.Flags().IntVar(&opts.PointsPerCluster, "points", pipeline.DefaultPointsPerCluster, "points generated per cluster")
	cmd.Flags().StringVar(&domain, "domain", formatDomain(kmeans.DefaultDomain), "coordinate range lo,hi")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&opts.Input, "input", "", "CSV dataset to cluster instead of generating one")
	cmd.Flags().StringVar(&opts.FramesDir, "frames-dir", "", "render a frame per step into this directory")
	cmd.Flags().IntVar(&opts.Width, "width", render.DefaultWidth, "frame width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", render.DefaultHeight, "frame height in pixels")

	return cmd
}

// runStep prepares an engine and hands it to the bubbletea program.
func (c *CLI) runStep(ctx context.Context, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger
	framesDir := opts.FramesDir

	engine, err := c.newRunner().Prepare(opts)
	if err != nil {
		return err
	}
	logger.Debug("prepared engine", "k", engine.K(), "points", len(engine.Dataset()))

	model := NewStepModel(engine)
	if framesDir != "" {
		if _, err := frames.Clear(framesDir); err != nil {
			return fmt.Errorf("prepare frames dir: %w", err)
		}
		model.FramesDir = framesDir
		model.Renderer = render.New(render.WithSize(opts.Width, opts.Height))
	}

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(StepModel); ok && m.Engine.Iteration() > 0 {
		printSuccess("Stopped after %d iterations", m.Engine.Iteration())
		if m.LastFrame != "" {
			printNextStep("Animate", fmt.Sprintf("%s animate %s", appName, framesDir))
		}
	}
	return nil
}
