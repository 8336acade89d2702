package kmeans

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulbouuu/K-means/pkg/errors"
)

// scriptedSource replays fixed uniform draws so tests can place centroids exactly.
type scriptedSource struct {
	vals []uint64
	i    int
}

func (s *scriptedSource) Uint64() uint64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// uniforms returns a *rand.Rand whose successive Float64 calls yield fs.
func uniforms(fs ...float64) *rand.Rand {
	vals := make([]uint64, len(fs))
	for i, f := range fs {
		vals[i] = uint64(f * (1 << 53))
	}
	return rand.New(&scriptedSource{vals: vals})
}

func TestNew_InvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		k      int
		domain Domain
		code   errors.Code
	}{
		{"zero k", 0, DefaultDomain, errors.ErrCodeInvalidInput},
		{"negative k", -3, DefaultDomain, errors.ErrCodeInvalidInput},
		{"lo equals hi", 2, Domain{Lo: 1, Hi: 1}, errors.ErrCodeInvalidDomain},
		{"lo above hi", 2, Domain{Lo: 5, Hi: -5}, errors.ErrCodeInvalidDomain},
		{"nan bound", 2, Domain{Lo: math.NaN(), Hi: 1}, errors.ErrCodeInvalidDomain},
		{"infinite bound", 2, Domain{Lo: 0, Hi: math.Inf(1)}, errors.ErrCodeInvalidDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(tt.k, WithDomain(tt.domain), WithSeed(1))
			require.Error(t, err)
			assert.Nil(t, eng)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestNew_InitialCentroidsInDomain(t *testing.T) {
	d := Domain{Lo: -2, Hi: 3}
	eng, err := New(50, WithDomain(d), WithSeed(7))
	require.NoError(t, err)

	centroids := eng.Centroids()
	require.Len(t, centroids, 50)
	for _, c := range centroids {
		assert.True(t, d.Contains(c), "centroid %v outside %v", c, d)
	}
	assert.Equal(t, 0, eng.Iteration())
	assert.Nil(t, eng.Labels())
	assert.Equal(t, 0.0, eng.Inertia())
}

func TestStep_BeforeLoad(t *testing.T) {
	eng, err := New(2, WithSeed(1))
	require.NoError(t, err)
	before := eng.Centroids()

	err = eng.Step()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePrecondition))
	assert.Equal(t, 0, eng.Iteration())
	assert.Equal(t, before, eng.Centroids())
}

func TestStep_TwoClusterScenario(t *testing.T) {
	// Initial centroids near (-1, 0) and (1, 0).
	eng, err := New(2, WithDomain(Domain{Lo: -5, Hi: 5}), WithRand(uniforms(0.4, 0.5, 0.6, 0.5)))
	require.NoError(t, err)

	init := eng.Centroids()
	assert.InDelta(t, -1, init[0].X, 1e-9)
	assert.InDelta(t, 0, init[0].Y, 1e-9)
	assert.InDelta(t, 1, init[1].X, 1e-9)
	assert.InDelta(t, 0, init[1].Y, 1e-9)

	eng.Load([]Point{{-4, 0}, {-3, 0}, {4, 0}, {3, 0}})

	require.NoError(t, eng.Step())
	assert.Equal(t, []int{0, 0, 1, 1}, eng.Labels())
	assert.Equal(t, []Point{{-3.5, 0}, {3.5, 0}}, eng.Centroids())
	assert.Equal(t, 1, eng.Iteration())
	assert.Empty(t, eng.Reseeded())

	require.NoError(t, eng.Step())
	assert.Equal(t, []int{0, 0, 1, 1}, eng.Labels())
	assert.Equal(t, []Point{{-3.5, 0}, {3.5, 0}}, eng.Centroids())
	assert.Equal(t, 2, eng.Iteration())
	assert.InDelta(t, 1.0, eng.Inertia(), 1e-12)
}

func TestStep_LabelsReflectUpdatedCentroids(t *testing.T) {
	// Domain [-8, 8]: u=0.5 -> 0, u=0.75 -> 4.
	eng, err := New(2, WithDomain(Domain{Lo: -8, Hi: 8}), WithRand(uniforms(0.5, 0.5, 0.75, 0.5)))
	require.NoError(t, err)
	require.Equal(t, []Point{{0, 0}, {4, 0}}, eng.Centroids())

	// Against the initial centroids 1.5 belongs to cluster 0; after the update
	// (centroids -0.25 and 2.5) it is closer to cluster 1.
	eng.Load([]Point{{-2, 0}, {1.5, 0}, {2.5, 0}})
	require.NoError(t, eng.Step())

	assert.Equal(t, []Point{{-0.25, 0}, {2.5, 0}}, eng.Centroids())
	assert.Equal(t, []int{0, 1, 1}, eng.Labels())
}

func TestStep_TiesGoToLowestIndex(t *testing.T) {
	// Both centroids start at the same location.
	eng, err := New(2, WithDomain(Domain{Lo: -8, Hi: 8}), WithRand(uniforms(0.5, 0.5, 0.5, 0.5, 0.25, 0.25)))
	require.NoError(t, err)

	eng.Load([]Point{{1, 1}, {-1, -1}})
	require.NoError(t, eng.Step())

	// Every point ties and goes to cluster 0, so cluster 1 is re-seeded at (-4, -4).
	assert.Equal(t, []int{1}, eng.Reseeded())
	assert.Equal(t, []Point{{0, 0}, {-4, -4}}, eng.Centroids())
	assert.Equal(t, []int{0, 0}, eng.Labels())
}

func TestStep_EmptyClusterIsReseededInDomain(t *testing.T) {
	d := Domain{Lo: -8, Hi: 8}
	// Centroids (-4, 0), (4, 0) and (0, 7.2); then the re-seed draw (-4, 4).
	eng, err := New(3, WithDomain(d), WithRand(uniforms(0.25, 0.5, 0.75, 0.5, 0.5, 0.95, 0.25, 0.75)))
	require.NoError(t, err)
	before := eng.Centroids()

	eng.Load([]Point{
		{-4.1, 0}, {-3.9, 0.1}, {-4, -0.1},
		{4.1, 0}, {3.9, -0.1}, {4, 0.1},
	})
	require.NoError(t, eng.Step())

	centroids := eng.Centroids()
	require.Len(t, centroids, 3)
	assert.Equal(t, []int{2}, eng.Reseeded())
	assert.NotEqual(t, before[2], centroids[2])
	assert.Equal(t, Point{X: -4, Y: 4}, centroids[2])
	assert.True(t, d.Contains(centroids[2]))
	assert.False(t, math.IsNaN(centroids[2].X) || math.IsNaN(centroids[2].Y))
}

func TestStep_MoreClustersThanPoints(t *testing.T) {
	eng, err := New(5, WithSeed(3))
	require.NoError(t, err)
	eng.Load([]Point{{0, 0}, {1, 1}})

	for i := 0; i < 4; i++ {
		require.NoError(t, eng.Step())
		assert.Len(t, eng.Centroids(), 5)
		assert.GreaterOrEqual(t, len(eng.Reseeded()), 3)
	}
}

func TestStep_Invariants(t *testing.T) {
	r := NewRand(99)
	for trial := 0; trial < 25; trial++ {
		k := 1 + r.IntN(6)
		n := 1 + r.IntN(40)
		points := make([]Point, n)
		for i := range points {
			points[i] = Point{X: r.NormFloat64() * 3, Y: r.NormFloat64() * 3}
		}

		eng, err := New(k, WithRand(r))
		require.NoError(t, err)
		eng.Load(points)

		for step := 1; step <= 5; step++ {
			require.NoError(t, eng.Step())
			labels := eng.Labels()
			require.Len(t, labels, n)
			for _, l := range labels {
				assert.GreaterOrEqual(t, l, 0)
				assert.Less(t, l, k)
			}
			assert.Len(t, eng.Centroids(), k)
			assert.Equal(t, step, eng.Iteration())
		}
	}
}

func TestStep_FixedPoint(t *testing.T) {
	r := NewRand(5)
	points := make([]Point, 60)
	for i := range points {
		cx := float64(i%3)*6 - 6
		points[i] = Point{X: cx + r.NormFloat64()*0.3, Y: r.NormFloat64() * 0.3}
	}

	eng, err := New(3, WithSeed(11))
	require.NoError(t, err)
	eng.Load(points)

	prevLabels := []int(nil)
	for i := 0; i < 50; i++ {
		require.NoError(t, eng.Step())
		labels := eng.Labels()
		if prevLabels != nil && equalInts(prevLabels, labels) && len(eng.Reseeded()) == 0 {
			fixed := eng.Centroids()
			require.NoError(t, eng.Step())
			assert.Equal(t, fixed, eng.Centroids())
			assert.Equal(t, labels, eng.Labels())
			return
		}
		prevLabels = labels
	}
	t.Fatal("labels never stabilized")
}

func TestStep_Deterministic(t *testing.T) {
	points := make([]Point, 100)
	r := NewRand(1)
	for i := range points {
		points[i] = Point{X: r.Float64()*10 - 5, Y: r.Float64()*10 - 5}
	}

	run := func() ([][]Point, [][]int) {
		eng, err := New(4, WithSeed(2024))
		require.NoError(t, err)
		eng.Load(points)
		var cs [][]Point
		var ls [][]int
		for i := 0; i < 8; i++ {
			require.NoError(t, eng.Step())
			cs = append(cs, eng.Centroids())
			ls = append(ls, eng.Labels())
		}
		return cs, ls
	}

	c1, l1 := run()
	c2, l2 := run()
	assert.Equal(t, c1, c2)
	assert.Equal(t, l1, l2)
}

func TestLoad_KeepsCentroidsAndIteration(t *testing.T) {
	eng, err := New(2, WithSeed(8))
	require.NoError(t, err)
	eng.Load([]Point{{-1, 0}, {1, 0}})
	require.NoError(t, eng.Step())

	centroids := eng.Centroids()
	eng.Load([]Point{{2, 2}, {3, 3}, {4, 4}})

	assert.Equal(t, centroids, eng.Centroids())
	assert.Equal(t, 1, eng.Iteration())
	assert.Nil(t, eng.Labels())
	assert.Len(t, eng.Dataset(), 3)
}

func TestLoad_CopiesInput(t *testing.T) {
	eng, err := New(1, WithSeed(8))
	require.NoError(t, err)

	points := []Point{{1, 1}, {3, 3}}
	eng.Load(points)
	points[0] = Point{100, 100}

	require.NoError(t, eng.Step())
	assert.Equal(t, []Point{{2, 2}}, eng.Centroids())
}

func TestAccessorsReturnCopies(t *testing.T) {
	eng, err := New(2, WithSeed(8))
	require.NoError(t, err)
	eng.Load([]Point{{-1, 0}, {1, 0}})
	require.NoError(t, eng.Step())

	c := eng.Centroids()
	c[0] = Point{99, 99}
	l := eng.Labels()
	l[0] = 1
	ds := eng.Dataset()
	ds[0] = Point{42, 42}

	assert.NotEqual(t, Point{99, 99}, eng.Centroids()[0])
	assert.Equal(t, Point{-1, 0}, eng.Dataset()[0])
	assert.Equal(t, eng.Labels(), eng.Labels())
}

func TestReinitialize(t *testing.T) {
	eng, err := New(3, WithSeed(4))
	require.NoError(t, err)
	eng.Load([]Point{{0, 0}, {1, 1}, {2, 2}})
	require.NoError(t, eng.Step())
	require.NoError(t, eng.Step())

	eng.Reinitialize()
	assert.Equal(t, 0, eng.Iteration())
	assert.Nil(t, eng.Labels())
	assert.Len(t, eng.Dataset(), 3)
	for _, c := range eng.Centroids() {
		assert.True(t, eng.Domain().Contains(c))
	}
	require.NoError(t, eng.Step())
	assert.Equal(t, 1, eng.Iteration())
}

func TestSizes(t *testing.T) {
	eng, err := New(2, WithDomain(Domain{Lo: -5, Hi: 5}), WithRand(uniforms(0.4, 0.5, 0.6, 0.5)))
	require.NoError(t, err)
	eng.Load([]Point{{-4, 0}, {-3, 0}, {-2, 0}, {3, 0}})
	require.NoError(t, eng.Step())
	assert.Equal(t, []int{3, 1}, eng.Sizes())
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
