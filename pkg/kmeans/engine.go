package kmeans

import (
	"math"
	"math/rand/v2"

	"github.com/paulbouuu/K-means/pkg/errors"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDomain sets the domain used for centroid initialization and re-seeding.
func WithDomain(d Domain) Option {
	return func(e *Engine) { e.domain = d }
}

// WithRand sets the random source for initialization and re-seeding.
// A nil source is ignored.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed is shorthand for WithRand with a PCG source seeded by seed.
func WithSeed(seed uint64) Option {
	return WithRand(NewRand(seed))
}

// NewRand returns the PCG-backed source used throughout the module for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Engine holds the state of one clustering run: the centroid set, the dataset,
// the latest label assignment and the iteration counter.
type Engine struct {
	k      int
	domain Domain
	rng    *rand.Rand

	centroids []Point
	data      []Point
	loaded    bool
	labels    []int
	reseeded  []int
	iteration int
}

// New creates an engine with k clusters and draws k initial centroids uniformly
// from the domain (centroid 0 first, x before y).
//
// It returns an INVALID_INPUT error if k <= 0 and an INVALID_DOMAIN error if the
// domain is empty or not finite.
func New(k int, opts ...Option) (*Engine, error) {
	e := &Engine{k: k, domain: DefaultDomain}
	for _, opt := range opts {
		opt(e)
	}
	if k <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cluster count must be positive, got %d", k)
	}
	if err := e.domain.Validate(); err != nil {
		return nil, err
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.centroids = e.initialCentroids()
	return e, nil
}

func (e *Engine) initialCentroids() []Point {
	c := make([]Point, e.k)
	for i := range c {
		c[i] = e.domain.Sample(e.rng)
	}
	return c
}

// Load stores a copy of points as the working dataset. Centroids and the
// iteration counter are left untouched; labels from a previous dataset are
// discarded.
func (e *Engine) Load(points []Point) {
	e.data = append([]Point(nil), points...)
	e.loaded = true
	e.labels = nil
	e.reseeded = nil
}

// Reinitialize draws fresh centroids from the domain and resets the iteration
// counter and labels. The loaded dataset is kept.
func (e *Engine) Reinitialize() {
	e.centroids = e.initialCentroids()
	e.labels = nil
	e.reseeded = nil
	e.iteration = 0
}

// Step performs one iteration: assign, update (re-seeding empty clusters),
// relabel against the updated centroids, and advance the iteration counter.
//
// It returns a PRECONDITION_FAILED error, leaving the state untouched, when no
// dataset has been loaded.
func (e *Engine) Step() error {
	if !e.loaded {
		return errors.New(errors.ErrCodePrecondition, "step called before a dataset was loaded")
	}

	labels := assign(e.data, e.centroids)

	sums := make([]Point, e.k)
	counts := make([]int, e.k)
	for i, p := range e.data {
		c := labels[i]
		sums[c].X += p.X
		sums[c].Y += p.Y
		counts[c]++
	}

	next := make([]Point, e.k)
	var reseeded []int
	for i := range next {
		if counts[i] == 0 {
			next[i] = e.domain.Sample(e.rng)
			reseeded = append(reseeded, i)
			continue
		}
		n := float64(counts[i])
		next[i] = Point{X: sums[i].X / n, Y: sums[i].Y / n}
	}

	e.centroids = next
	e.labels = assign(e.data, e.centroids)
	e.reseeded = reseeded
	e.iteration++
	return nil
}

// assign returns, for every point, the index of its nearest centroid.
// Ties resolve to the lowest index.
func assign(points, centroids []Point) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		best := 0
		bestDist := math.Inf(1)
		for j, c := range centroids {
			if d := p.Dist(c); d < bestDist {
				bestDist = d
				best = j
			}
		}
		labels[i] = best
	}
	return labels
}

// K returns the number of clusters.
func (e *Engine) K() int { return e.k }

// Domain returns the configured domain.
func (e *Engine) Domain() Domain { return e.domain }

// Iteration returns the number of completed steps.
func (e *Engine) Iteration() int { return e.iteration }

// Centroids returns a copy of the current centroids; centroid i belongs to label i.
func (e *Engine) Centroids() []Point {
	return append([]Point(nil), e.centroids...)
}

// Labels returns a copy of the latest label assignment, or nil before the
// first step on the loaded dataset.
func (e *Engine) Labels() []int {
	if e.labels == nil {
		return nil
	}
	return append([]int(nil), e.labels...)
}

// Dataset returns a copy of the loaded dataset.
func (e *Engine) Dataset() []Point {
	return append([]Point(nil), e.data...)
}

// Reseeded returns the indices of the clusters that were empty during the
// latest step and received a random centroid.
func (e *Engine) Reseeded() []int {
	return append([]int(nil), e.reseeded...)
}

// Inertia returns the sum of squared distances from each point to the centroid
// of its label. It is 0 until a step has labelled the dataset.
func (e *Engine) Inertia() float64 {
	if len(e.labels) != len(e.data) {
		return 0
	}
	var sum float64
	for i, p := range e.data {
		d := p.Dist(e.centroids[e.labels[i]])
		sum += d * d
	}
	return sum
}

// Sizes returns the number of points carrying each label.
func (e *Engine) Sizes() []int {
	sizes := make([]int, e.k)
	for _, l := range e.labels {
		sizes[l]++
	}
	return sizes
}
