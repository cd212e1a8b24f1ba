package integration

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/lowdisc/qmcpricer/internal/config"
	"github.com/lowdisc/qmcpricer/internal/pricer"
	"github.com/lowdisc/qmcpricer/pkg/cubature"
	"github.com/lowdisc/qmcpricer/pkg/testutil"
)

// Loads the shipped example configuration and prices it end to end with
// a relaxed tolerance so the independent-random scenario stays fast.
func TestExampleConfigEndToEnd(t *testing.T) {
	conf, err := config.LoadConfiguration("../../config.yaml.example")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if err := conf.ExpandMonitoringTimes(); err != nil {
		t.Fatalf("ExpandMonitoringTimes() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("example config produced warnings: %v", warnings)
	}

	conf.Common.AbsTol = 0.05

	results, err := pricer.GetEstimates(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("GetEstimates() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, name := range []string{"independent random", "scrambled sobol", "shifted lattice"} {
		result := testutil.FindResult(results, name)
		if result == nil {
			t.Fatalf("missing result for scenario %q", name)
		}
		if result.Estimate.Status != cubature.StatusConverged {
			t.Errorf("%s: status = %s, expected converged", name, result.Estimate.Status)
			continue
		}
		if math.IsNaN(result.Reference) {
			t.Fatalf("%s: geometric payoff should carry a closed-form reference", name)
		}
		if !testutil.ApproxEqual(result.Estimate.Price, result.Reference, conf.Common.AbsTol) {
			t.Errorf("%s: price %v misses closed form %v beyond tolerance %v",
				name, result.Estimate.Price, result.Reference, conf.Common.AbsTol)
		}
		if result.Estimate.Elapsed <= 0 {
			t.Errorf("%s: estimate missing elapsed time", name)
		}
	}

	// The low-discrepancy methods should not need more samples than the
	// independent-random method at the same tolerance.
	iid := testutil.FindResult(results, "independent random")
	sobol := testutil.FindResult(results, "scrambled sobol")
	if sobol.Estimate.Samples > iid.Estimate.Samples*4 {
		t.Errorf("sobol needed %d samples vs iid %d at the same tolerance",
			sobol.Estimate.Samples, iid.Estimate.Samples)
	}
}
