package testutil

import (
	"testing"

	"github.com/lowdisc/qmcpricer/internal/pricer"
)

func TestFindResult(t *testing.T) {
	results := []pricer.Result{
		{Name: "sobol"},
		{Name: "lattice"},
	}

	if got := FindResult(results, "lattice"); got == nil || got.Name != "lattice" {
		t.Errorf("FindResult failed to locate existing scenario")
	}
	if got := FindResult(results, "missing"); got != nil {
		t.Errorf("FindResult returned %v for a missing scenario", got)
	}
}

func TestApproxEqual(t *testing.T) {
	if !ApproxEqual(1.0, 1.004, 0.005) {
		t.Errorf("values within tolerance reported unequal")
	}
	if ApproxEqual(1.0, 1.006, 0.005) {
		t.Errorf("values outside tolerance reported equal")
	}
}
