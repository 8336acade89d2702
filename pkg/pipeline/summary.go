package pipeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/paulbouuu/K-means/pkg/buildinfo"
	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
)

// Summary is the JSON document written when Options.Summary is set.
type Summary struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Version   string            `json:"version"`
	Options   Options           `json:"options"`
	Points    int               `json:"points"`
	Labels    []int             `json:"labels"`
	Centroids []kmeans.Point    `json:"centroids"`
	Sizes     []int             `json:"sizes"`
	Inertia   float64           `json:"inertia"`
	History   []IterationRecord `json:"history"`
	Animation string            `json:"animation,omitempty"`
}

// Summary returns the serializable summary of the run.
func (r *Result) Summary() Summary {
	s := Summary{
		RunID:     r.RunID,
		CreatedAt: time.Now().UTC(),
		Version:   buildinfo.Version,
		Options:   r.Options,
		Points:    len(r.Points),
		Labels:    r.Labels,
		Centroids: r.Centroids,
		History:   r.History,
	}
	if n := len(r.History); n > 0 {
		s.Sizes = r.History[n-1].Sizes
		s.Inertia = r.History[n-1].Inertia
	}
	if r.Animation != nil && r.Animation.Written {
		s.Animation = r.Animation.Output
	}
	return s
}

// WriteSummary writes s to path as indented JSON.
func WriteSummary(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode summary")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write summary %s", path)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Summary{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "summary %s", path)
		}
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "read summary %s", path)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse summary %s", path)
	}
	return s, nil
}
