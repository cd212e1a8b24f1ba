// Package validation provides parameter validation utilities.
package validation

import (
	"fmt"

	"github.com/lowdisc/qmcpricer/pkg/mathutil"
)

// ValidateDimension checks that a point-set dimension is usable.
func ValidateDimension(d int) error {
	if d <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", d)
	}
	return nil
}

// ValidateSampleCount checks that a requested point count is usable.
func ValidateSampleCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("sample count must be positive, got %d", n)
	}
	return nil
}

// ValidateMonitoringTimes checks that a monitoring time vector is
// non-empty, positive, and strictly increasing.
func ValidateMonitoringTimes(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("monitoring time vector must be non-empty")
	}
	prev := 0.0
	for i, t := range times {
		if t <= prev {
			return fmt.Errorf("monitoring times must be positive and strictly increasing, got %v at index %d", t, i)
		}
		prev = t
	}
	return nil
}

// ValidateAssetParams checks the market parameters of a pricing request.
func ValidateAssetParams(initPrice, vol float64) error {
	if initPrice <= 0 {
		return fmt.Errorf("initial price must be positive, got %v", initPrice)
	}
	if vol < 0 {
		return fmt.Errorf("volatility must be non-negative, got %v", vol)
	}
	return nil
}

// ValidateStrike checks that a strike price is non-negative.
func ValidateStrike(strike float64) error {
	if strike < 0 {
		return fmt.Errorf("strike must be non-negative, got %v", strike)
	}
	return nil
}

// ValidateTolerances checks that a tolerance pair yields a usable
// stopping bound.
func ValidateTolerances(absTol, relTol float64) error {
	if absTol < 0 {
		return fmt.Errorf("absolute tolerance must be non-negative, got %v", absTol)
	}
	if relTol < 0 {
		return fmt.Errorf("relative tolerance must be non-negative, got %v", relTol)
	}
	if absTol == 0 && relTol == 0 {
		return fmt.Errorf("at least one of absolute and relative tolerance must be positive")
	}
	return nil
}

// ValidateOutputFormat checks that an output format name is supported.
func ValidateOutputFormat(format string) error {
	switch format {
	case "pretty", "csv":
		return nil
	}
	return fmt.Errorf("invalid output format %s; must be one of pretty, csv", format)
}

// WarnSampleCount returns soft warnings about a point count that is
// legal but weakens equidistribution guarantees.
func WarnSampleCount(method string, n int) []string {
	var warnings []string
	if n > 0 && !mathutil.IsPowerOfTwo(n) {
		switch method {
		case "sobol":
			warnings = append(warnings, fmt.Sprintf("Sobol' point count %d is not a power of two; equidistribution guarantees are weakened", n))
		case "lattice":
			warnings = append(warnings, fmt.Sprintf("lattice point count %d is not a power of two; embedded doubling will round up", n))
		}
	}
	return warnings
}
