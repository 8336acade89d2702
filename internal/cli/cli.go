package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/paulbouuu/K-means/pkg/buildinfo"
	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the binary name used in help text and hints.
const appName = "kmeans"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Watch k-means cluster a 2D Gaussian mixture",
		Long: `kmeans generates a 2D Gaussian mixture, clusters it with Lloyd's algorithm,
renders a scatter plot after every iteration and assembles the frames into a
looping GIF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.animateCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseDomain parses a "lo,hi" pair.
func parseDomain(s string) (kmeans.Domain, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return kmeans.Domain{}, errors.New(errors.ErrCodeInvalidDomain, "domain must be lo,hi, got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return kmeans.Domain{}, errors.Wrap(errors.ErrCodeInvalidDomain, err, "domain lower bound %q", parts[0])
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return kmeans.Domain{}, errors.Wrap(errors.ErrCodeInvalidDomain, err, "domain upper bound %q", parts[1])
	}
	d := kmeans.Domain{Lo: lo, Hi: hi}
	if err := d.Validate(); err != nil {
		return kmeans.Domain{}, err
	}
	return d, nil
}

// formatDomain is the inverse of parseDomain, used for flag defaults.
func formatDomain(d kmeans.Domain) string {
	return fmt.Sprintf("%g,%g", d.Lo, d.Hi)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}
