// Package pricer runs the configured pricing scenarios and collects
// their estimates.
package pricer

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lowdisc/qmcpricer/internal/config"
	"github.com/lowdisc/qmcpricer/pkg/cubature"
	"github.com/lowdisc/qmcpricer/pkg/payoff"
)

// Result holds the estimate for one scenario. Reference carries the
// closed-form price when the payoff admits one, NaN otherwise.
type Result struct {
	Name      string
	Method    string
	Estimate  cubature.PriceEstimate
	Reference float64
}

// GetEstimates prices the common request once per active scenario.
// Budget exhaustion in a scenario is recorded on its Result rather than
// aborting the run.
func GetEstimates(logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	requests, err := conf.PricingRequests()
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, req := range requests {
		logger.Debug(fmt.Sprintf("pricing scenario %s", req.Name),
			zap.String("op", "pricer.GetEstimates"),
			zap.String("method", string(req.Method)),
			zap.String("construction", string(req.Construction)),
		)

		evaluator, err := payoff.NewEvaluator(req.Asset, req.Payoff, req.Construction)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", req.Name, err)
		}

		reference := math.NaN()
		if req.Payoff.Mean == payoff.MeanGeometric {
			reference, err = payoff.GeometricClosedForm(req.Asset, req.Payoff)
			if err != nil {
				return results, fmt.Errorf("scenario %s: %w", req.Name, err)
			}
		}

		result := Result{Name: req.Name, Method: string(req.Method), Reference: reference}

		if evaluator.Deterministic() {
			// Zero volatility: the path distribution is degenerate, so a
			// single evaluation is the exact price.
			start := time.Now()
			u := make([]float64, evaluator.Dimension())
			for i := range u {
				u[i] = 0.5
			}
			price, evalErr := evaluator.Evaluate(u)
			if evalErr != nil {
				return results, fmt.Errorf("scenario %s: %w", req.Name, evalErr)
			}
			result.Estimate = cubature.PriceEstimate{
				Price:   price,
				Samples: 1,
				Elapsed: time.Since(start),
				Status:  cubature.StatusConverged,
			}
			results = append(results, result)
			continue
		}

		estimate, err := cubature.Estimate(logger, req.Method, evaluator, cubature.Options{
			Tolerance:     req.Tolerance,
			SampleBudget:  req.SampleBudget,
			InitialPoints: req.InitialPoints,
			Replicates:    req.Replicates,
			Seed:          req.Seed,
		})
		if err != nil && err != cubature.ErrBudgetExhausted {
			return results, fmt.Errorf("scenario %s: %w", req.Name, err)
		}
		if err == cubature.ErrBudgetExhausted {
			logger.Warn("sample budget exhausted before tolerance was met",
				zap.String("op", "pricer.GetEstimates"),
				zap.String("scenario", req.Name),
				zap.Int("samples", estimate.Samples),
				zap.Float64("errBound", estimate.ErrBound),
			)
		}
		result.Estimate = estimate
		results = append(results, result)
	}

	return results, nil
}
