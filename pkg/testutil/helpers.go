// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/lowdisc/qmcpricer/internal/pricer"
)

// FindResult finds a result by scenario name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []pricer.Result, name string) *pricer.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// ApproxEqual reports whether two values agree within tolerance.
func ApproxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
