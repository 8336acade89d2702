// Package frames defines the file naming contract shared by the renderer and
// the animator.
//
// A frame for iteration n is stored as "k_means_<n>.png" (decimal, no padding)
// in a frames directory. The animator discovers frames by [Pattern] and orders
// them by the parsed iteration index, so "k_means_10.png" sorts after
// "k_means_2.png".
package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/paulbouuu/K-means/pkg/errors"
)

const (
	// Prefix starts every frame file name.
	Prefix = "k_means_"

	// Ext is the frame file extension.
	Ext = ".png"

	// Pattern is the glob matching candidate frame files.
	Pattern = Prefix + "*" + Ext
)

var nameRe = regexp.MustCompile(`^` + regexp.QuoteMeta(Prefix) + `(\d+)` + regexp.QuoteMeta(Ext) + `$`)

// Name returns the file name of the frame for iteration.
func Name(iteration int) string {
	return Prefix + strconv.Itoa(iteration) + Ext
}

// Path joins dir and the frame name for iteration.
func Path(dir string, iteration int) string {
	return filepath.Join(dir, Name(iteration))
}

// Index parses the iteration index from a frame path. Only the base name is
// inspected. Names that do not follow the contract yield an INVALID_FILENAME error.
func Index(path string) (int, error) {
	base := filepath.Base(path)
	m := nameRe.FindStringSubmatch(base)
	if m == nil {
		return 0, errors.New(errors.ErrCodeInvalidFilename, "filename does not match pattern %s: %s", Pattern, base)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFilename, err, "iteration index out of range: %s", base)
	}
	return n, nil
}

// Frame is a frame file with its parsed iteration index.
type Frame struct {
	Path      string
	Iteration int
}

// Skipped records a candidate file that was not accepted as a frame.
type Skipped struct {
	Path string
	Err  error
}

// Listing is the result of scanning a frames directory.
type Listing struct {
	// Frames are ordered by ascending iteration index.
	Frames []Frame

	// Skipped holds files matching Pattern whose names could not be parsed.
	Skipped []Skipped
}

// Paths returns the frame paths in order.
func (l Listing) Paths() []string {
	paths := make([]string, len(l.Frames))
	for i, f := range l.Frames {
		paths[i] = f.Path
	}
	return paths
}

// Scan lists the frames in dir. Files matching Pattern whose suffix is not a
// decimal index are reported in Listing.Skipped rather than failing the scan.
// A missing directory yields an empty listing.
func Scan(dir string) (Listing, error) {
	matches, err := candidates(dir)
	if err != nil {
		return Listing{}, err
	}
	return Sort(matches), nil
}

// candidates lists the regular files in dir whose names match Pattern. The
// directory name is never interpreted as a glob, so paths such as "run[1]"
// are safe.
func candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read frames dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, Prefix) || !strings.HasSuffix(name, Ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// Sort parses and orders the given paths numerically by iteration index.
// Paths with equal indices keep their relative order.
func Sort(paths []string) Listing {
	var l Listing
	for _, p := range paths {
		n, err := Index(p)
		if err != nil {
			l.Skipped = append(l.Skipped, Skipped{Path: p, Err: err})
			continue
		}
		l.Frames = append(l.Frames, Frame{Path: p, Iteration: n})
	}
	sort.SliceStable(l.Frames, func(i, j int) bool {
		return l.Frames[i].Iteration < l.Frames[j].Iteration
	})
	return l
}

// Clear prepares dir for a new run: it is created if missing and any existing
// files matching Pattern are removed. Other files are left alone.
func Clear(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create frames dir %s: %w", dir, err)
	}
	matches, err := candidates(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", m, err)
		}
		removed++
	}
	return removed, nil
}
