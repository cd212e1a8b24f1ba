package pricer

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/lowdisc/qmcpricer/internal/config"
	"github.com/lowdisc/qmcpricer/pkg/cubature"
	"github.com/lowdisc/qmcpricer/pkg/payoff"
)

// weeklyConfig is the reference request: 13 weekly monitorings over a
// quarter, at-the-money geometric call.
func weeklyConfig() config.Configuration {
	times := make([]float64, 13)
	for i := range times {
		times[i] = float64(i+1) / 52
	}
	return config.Configuration{
		Common: config.Common{
			InitPrice:       100,
			Rate:            0.02,
			Vol:             0.5,
			MonitoringTimes: times,
			Mean:            "geometric",
			Kind:            "call",
			Strike:          100,
			AbsTol:          0.005,
		},
	}
}

func TestGetEstimatesSkipsInactiveScenarios(t *testing.T) {
	conf := weeklyConfig()
	conf.Common.AbsTol = 0.05
	conf.Scenarios = []config.Scenario{
		{Name: "active", Active: true, Method: "sobol", Seed: 1},
		{Name: "inactive", Active: false, Method: "lattice"},
	}

	results, err := GetEstimates(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetEstimates() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result for the active scenario, got %d", len(results))
	}
	if results[0].Name != "active" {
		t.Errorf("expected result for 'active', got '%s'", results[0].Name)
	}
}

func TestGetEstimatesZeroVolatility(t *testing.T) {
	conf := weeklyConfig()
	conf.Common.Vol = 0
	conf.Scenarios = []config.Scenario{
		{Name: "degenerate", Active: true, Method: "sobol"},
	}

	results, err := GetEstimates(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetEstimates() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	result := results[0]
	if result.Estimate.Status != cubature.StatusConverged {
		t.Errorf("status = %s, expected converged", result.Estimate.Status)
	}
	if result.Estimate.Samples != 1 {
		t.Errorf("samples = %d, expected single deterministic evaluation", result.Estimate.Samples)
	}
	if result.Estimate.ErrBound != 0 {
		t.Errorf("error bound = %v, expected 0 for a deterministic payoff", result.Estimate.ErrBound)
	}
	if result.Estimate.Elapsed <= 0 {
		t.Errorf("elapsed = %v, expected a measured duration", result.Estimate.Elapsed)
	}
	if math.Abs(result.Estimate.Price-result.Reference) > 1e-9 {
		t.Errorf("deterministic price %v differs from closed form %v", result.Estimate.Price, result.Reference)
	}
}

func TestGetEstimatesBudgetExhaustionIsReported(t *testing.T) {
	conf := weeklyConfig()
	conf.Common.AbsTol = 1e-9
	conf.Common.SampleBudget = 500
	conf.Scenarios = []config.Scenario{
		{Name: "starved", Active: true, Method: "lattice", Seed: 2},
	}

	results, err := GetEstimates(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetEstimates() should record exhaustion on the result, got error %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Estimate.Status != cubature.StatusBudgetExhausted {
		t.Errorf("status = %s, expected budget-exhausted", results[0].Estimate.Status)
	}
}

func TestGetEstimatesInvalidRequest(t *testing.T) {
	conf := weeklyConfig()
	conf.Common.MonitoringTimes = []float64{0.2, 0.1}
	conf.Scenarios = []config.Scenario{{Name: "bad", Active: true, Method: "iid"}}

	if _, err := GetEstimates(zap.NewNop(), conf); err == nil {
		t.Errorf("expected invalid-argument error before any sampling")
	}
}

func TestGetEstimatesArithmeticHasNoReference(t *testing.T) {
	conf := weeklyConfig()
	conf.Common.Mean = "arithmetic"
	conf.Common.AbsTol = 0.05
	conf.Scenarios = []config.Scenario{{Name: "arith", Active: true, Method: "sobol", Seed: 3}}

	results, err := GetEstimates(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetEstimates() error = %v", err)
	}
	if !math.IsNaN(results[0].Reference) {
		t.Errorf("arithmetic-mean reference = %v, expected NaN", results[0].Reference)
	}
	// Discrete arithmetic-mean call dominates the geometric one.
	geoRef, err := payoff.GeometricClosedForm(
		payoff.AssetPathParams{InitPrice: 100, Rate: 0.02, Vol: 0.5, Times: conf.Common.MonitoringTimes},
		payoff.PayoffParams{Mean: payoff.MeanGeometric, Kind: payoff.OptionCall, Strike: 100},
	)
	if err != nil {
		t.Fatalf("GeometricClosedForm() error = %v", err)
	}
	if results[0].Estimate.Price <= geoRef-0.05 {
		t.Errorf("arithmetic price %v should not fall below geometric %v", results[0].Estimate.Price, geoRef)
	}
}

// Reference scenario: with the tolerance at 0.005, the quasi-Monte
// Carlo methods must land within tolerance of the closed form.
func TestGetEstimatesMatchesClosedForm(t *testing.T) {
	conf := weeklyConfig()
	conf.Scenarios = []config.Scenario{
		{Name: "sobol sequential", Active: true, Method: "sobol", Seed: 11},
		{Name: "sobol pca", Active: true, Method: "sobol", Construction: "pca", Seed: 12},
		{Name: "lattice", Active: true, Method: "lattice", Seed: 13},
	}

	results, err := GetEstimates(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetEstimates() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, result := range results {
		if result.Estimate.Status != cubature.StatusConverged {
			t.Errorf("%s: status = %s, expected converged", result.Name, result.Estimate.Status)
			continue
		}
		gap := math.Abs(result.Estimate.Price - result.Reference)
		if gap > conf.Common.AbsTol {
			t.Errorf("%s: price %v misses closed form %v by %v (> %v)",
				result.Name, result.Estimate.Price, result.Reference, gap, conf.Common.AbsTol)
		}
	}
}

// The independent-random method needs tens of millions of paths to hit
// the 0.005 tolerance, so the full run only happens outside -short.
func TestGetEstimatesIIDMatchesClosedForm(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-tolerance independent-random run in short mode")
	}

	conf := weeklyConfig()
	conf.Common.SampleBudget = 1 << 27
	conf.Scenarios = []config.Scenario{
		{Name: "iid", Active: true, Method: "iid", Seed: 14},
	}

	results, err := GetEstimates(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetEstimates() error = %v", err)
	}
	result := results[0]
	if result.Estimate.Status != cubature.StatusConverged {
		t.Fatalf("status = %s, expected converged", result.Estimate.Status)
	}
	gap := math.Abs(result.Estimate.Price - result.Reference)
	if gap > conf.Common.AbsTol {
		t.Errorf("iid price %v misses closed form %v by %v", result.Estimate.Price, result.Reference, gap)
	}
}
