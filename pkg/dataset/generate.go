// Package dataset produces and persists the 2D point sets fed to the
// clustering engine.
//
// [Generate] samples a mixture of Gaussian components whose means are uniform
// in a domain and whose covariances are random rotated ellipses. [WriteCSV]
// and [ReadCSV] move point sets to and from a two-column CSV format so that a
// run can be replayed on the same data.
package dataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
)

// Eigenvalue bounds for the component covariances.
const (
	MinEigenvalue = 0.2
	MaxEigenvalue = 1.0
)

// Component describes one Gaussian of the mixture.
type Component struct {
	Mean       kmeans.Point
	Covariance *mat.SymDense
}

// Components draws k mixture components. Means are uniform in the domain;
// each covariance is R·diag(λ1, λ2)·Rᵀ / 2 with λ uniform in
// [MinEigenvalue, MaxEigenvalue) and R a rotation by an angle uniform in [0, 2π).
func Components(k int, domain kmeans.Domain, rng *rand.Rand) ([]Component, error) {
	if k <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "component count must be positive, got %d", k)
	}
	if err := domain.Validate(); err != nil {
		return nil, err
	}

	comps := make([]Component, k)
	for i := range comps {
		comps[i].Mean = domain.Sample(rng)
	}
	for i := range comps {
		ev1 := MinEigenvalue + rng.Float64()*(MaxEigenvalue-MinEigenvalue)
		ev2 := MinEigenvalue + rng.Float64()*(MaxEigenvalue-MinEigenvalue)
		angle := rng.Float64() * 2 * math.Pi
		comps[i].Covariance = covariance(ev1, ev2, angle)
	}
	return comps, nil
}

func covariance(ev1, ev2, angle float64) *mat.SymDense {
	sin, cos := math.Sincos(angle)
	r := mat.NewDense(2, 2, []float64{
		cos, -sin,
		sin, cos,
	})
	d := mat.NewDiagDense(2, []float64{ev1, ev2})

	var rd, full mat.Dense
	rd.Mul(r, d)
	full.Mul(&rd, r.T())
	full.Scale(0.5, &full)

	// Average the off-diagonal terms so rounding cannot break symmetry.
	off := (full.At(0, 1) + full.At(1, 0)) / 2
	return mat.NewSymDense(2, []float64{
		full.At(0, 0), off,
		off, full.At(1, 1),
	})
}

// Generate returns k·perCluster points, perCluster drawn from each component
// of a freshly drawn mixture (component-major order).
func Generate(k, perCluster int, domain kmeans.Domain, rng *rand.Rand) ([]kmeans.Point, error) {
	if perCluster <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "points per cluster must be positive, got %d", perCluster)
	}
	comps, err := Components(k, domain, rng)
	if err != nil {
		return nil, err
	}
	return Sample(comps, perCluster, rng)
}

// Sample draws perCluster points from each component in order.
func Sample(comps []Component, perCluster int, rng *rand.Rand) ([]kmeans.Point, error) {
	points := make([]kmeans.Point, 0, len(comps)*perCluster)
	buf := make([]float64, 2)
	for i, c := range comps {
		normal, ok := distmv.NewNormal([]float64{c.Mean.X, c.Mean.Y}, c.Covariance, rng)
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "covariance of component %d is not positive definite", i)
		}
		for j := 0; j < perCluster; j++ {
			normal.Rand(buf)
			points = append(points, kmeans.Point{X: buf[0], Y: buf[1]})
		}
	}
	return points, nil
}
