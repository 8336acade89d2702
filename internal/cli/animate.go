package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paulbouuu/K-means/pkg/animate"
	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/frames"
	"github.com/paulbouuu/K-means/pkg/pipeline"
)

// animateCommand creates the animate command that assembles existing frames.
func (c *CLI) animateCommand() *cobra.Command {
	var (
		output   string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "animate [dir]",
		Short: "Assemble rendered frames into a looping GIF",
		Long: fmt.Sprintf(`Assemble the frames in dir (default %q) into a looping GIF.

Frames are files named %s, played in numeric order of n.
Files that do not follow the pattern or cannot be decoded are skipped.`,
			pipeline.DefaultFramesDir, frames.Pattern),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := pipeline.DefaultFramesDir
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runAnimate(cmd.Context(), dir, output, duration)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", pipeline.DefaultOutput, "output GIF path")
	cmd.Flags().DurationVar(&duration, "duration", pipeline.DefaultFrameDurationMS*time.Millisecond, "display time of each frame")

	return cmd
}

// runAnimate assembles the GIF and reports what was written and skipped.
func (c *CLI) runAnimate(ctx context.Context, dir, output string, duration time.Duration) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	res, err := animate.Assemble(ctx, dir, output,
		animate.WithDuration(duration),
		animate.WithLogger(logger))
	if err != nil {
		return err
	}

	if !res.Written {
		printWarning("No animation written")
		printDetail("%s", errors.UserMessage(res.Reason))
		return nil
	}

	prog.done(fmt.Sprintf("Assembled %d frames", res.Frames), "skipped", len(res.Skipped))
	printSuccess("Animation complete")
	printFile(res.Output)
	for _, s := range res.Skipped {
		printDetail("skipped %s: %s", s.Path, errors.UserMessage(s.Err))
	}
	return nil
}
