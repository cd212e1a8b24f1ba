// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/lowdisc/qmcpricer/pkg/constants"
)

// ClampUnit clamps a value into the open unit interval so that normal
// quantile transforms stay finite.
func ClampUnit(u float64) float64 {
	if u < constants.UniformClampEpsilon {
		return constants.UniformClampEpsilon
	}
	if u > 1-constants.UniformClampEpsilon {
		return 1 - constants.UniformClampEpsilon
	}
	return u
}

// Frac returns the fractional part of a value in [0,1).
func Frac(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}

// IsPowerOfTwo checks whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
