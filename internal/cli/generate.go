package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/paulbouuu/K-means/pkg/dataset"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/pipeline"
)

// generateCommand creates the generate command that writes a dataset as CSV.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output string
		domain string
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a Gaussian mixture dataset as CSV",
		Long: `Generate a 2D Gaussian mixture and write it as CSV with an "x,y" header.

Each component has a mean drawn uniformly in the domain and a random
covariance. The output can be clustered later with 'run --input'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			opts.Domain = d
			return c.runGenerate(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVarP(&opts.K, "clusters", "k", pipeline.DefaultK, "number of mixture components")
	cmd.Flags().IntVar(&opts.PointsPerCluster, "points", pipeline.DefaultPointsPerCluster, "points per component")
	cmd.Flags().StringVar(&domain, "domain", formatDomain(kmeans.DefaultDomain), "range lo,hi for component means")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")

	return cmd
}

// runGenerate samples the mixture and writes it to output (or stdout).
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(logger)
	points, err := dataset.Generate(opts.K, opts.PointsPerCluster, opts.Domain, kmeans.NewRand(opts.Seed))
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return fmt.Errorf("create output %s: %w", output, err)
	}
	defer out.Close()

	if err := dataset.WriteCSV(out, points); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if output == "" {
		return nil
	}

	prog.done(fmt.Sprintf("Generated %d points", len(points)), "k", opts.K, "seed", opts.Seed)
	printSuccess("Dataset written")
	printFile(output)
	printNewline()
	printNextStep("Cluster it", fmt.Sprintf("%s run --input %s -k %d", appName, output, opts.K))
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns os.Stdout when path is empty, otherwise creates path.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
