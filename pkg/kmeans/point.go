package kmeans

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/paulbouuu/K-means/pkg/errors"
)

// Point is a location in the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4g, %.4g)", p.X, p.Y)
}

// Domain is the closed interval [Lo, Hi] applied independently to both
// coordinates. It bounds randomly initialized and re-seeded centroids only;
// data-derived centroids may leave it.
type Domain struct {
	Lo float64 `json:"lo" toml:"lo"`
	Hi float64 `json:"hi" toml:"hi"`
}

// DefaultDomain is the domain used when none is configured.
var DefaultDomain = Domain{Lo: -5, Hi: 5}

// Validate reports an INVALID_DOMAIN error unless Lo < Hi and both bounds are finite.
func (d Domain) Validate() error {
	if math.IsNaN(d.Lo) || math.IsNaN(d.Hi) || math.IsInf(d.Lo, 0) || math.IsInf(d.Hi, 0) {
		return errors.New(errors.ErrCodeInvalidDomain, "domain bounds must be finite, got [%v, %v]", d.Lo, d.Hi)
	}
	if d.Lo >= d.Hi {
		return errors.New(errors.ErrCodeInvalidDomain, "domain lower bound must be below upper bound, got [%v, %v]", d.Lo, d.Hi)
	}
	return nil
}

// Width returns Hi - Lo.
func (d Domain) Width() float64 {
	return d.Hi - d.Lo
}

// Contains reports whether both coordinates of p lie in [Lo, Hi].
func (d Domain) Contains(p Point) bool {
	return p.X >= d.Lo && p.X <= d.Hi && p.Y >= d.Lo && p.Y <= d.Hi
}

// Sample draws a point uniformly from the domain, x first.
func (d Domain) Sample(r *rand.Rand) Point {
	x := d.Lo + r.Float64()*d.Width()
	y := d.Lo + r.Float64()*d.Width()
	return Point{X: x, Y: y}
}

func (d Domain) String() string {
	return fmt.Sprintf("[%g, %g]", d.Lo, d.Hi)
}
