// Package pointset generates the uniform and low-discrepancy point sets
// used by the cubature estimators. Each generator instance owns its own
// randomization state, so independent instances with different seeds
// give independent randomized copies of the same underlying construction.
package pointset

import (
	"fmt"
	"math/rand"

	"github.com/lowdisc/qmcpricer/pkg/validation"
)

// Method selects the point-set construction.
type Method string

const (
	// MethodIID draws independent uniform points with no cross-point structure.
	MethodIID Method = "iid"

	// MethodSobol generates scrambled, digitally shifted Sobol' points.
	MethodSobol Method = "sobol"

	// MethodLattice generates randomly shifted rank-1 lattice points.
	MethodLattice Method = "lattice"
)

// ParseMethod converts a configuration string into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodIID, MethodSobol, MethodLattice:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown sampling method %q (want iid, sobol, or lattice)", s)
}

// Generator produces point sets in [0,1)^d. Low-discrepancy generators
// return the first n points of their randomized sequence on every call;
// the independent-random generator draws a fresh batch each call.
type Generator interface {
	Dimension() int
	Gen(n int) ([][]float64, error)
}

// New constructs a generator for the given method, dimension, and
// randomization seed.
func New(method Method, d int, seed int64) (Generator, error) {
	if err := validation.ValidateDimension(d); err != nil {
		return nil, err
	}
	switch method {
	case MethodIID:
		return NewIID(d, seed)
	case MethodSobol:
		return NewSobol(d, seed)
	case MethodLattice:
		return NewLattice(d, seed)
	}
	return nil, fmt.Errorf("unknown sampling method %q", method)
}

// iidGenerator draws each coordinate independently and uniformly.
type iidGenerator struct {
	d   int
	rng *rand.Rand
}

// NewIID creates an independent uniform random generator.
func NewIID(d int, seed int64) (Generator, error) {
	if err := validation.ValidateDimension(d); err != nil {
		return nil, err
	}
	return &iidGenerator{d: d, rng: rand.New(rand.NewSource(seed))}, nil
}

func (g *iidGenerator) Dimension() int { return g.d }

func (g *iidGenerator) Gen(n int) ([][]float64, error) {
	if err := validation.ValidateSampleCount(n); err != nil {
		return nil, err
	}
	points := make([][]float64, n)
	for i := range points {
		row := make([]float64, g.d)
		for j := range row {
			row[j] = g.rng.Float64()
		}
		points[i] = row
	}
	return points, nil
}
