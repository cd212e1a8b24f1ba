// Package cubature implements adaptive Monte Carlo and quasi-Monte
// Carlo estimation with tolerance-based stopping and an explicit sample
// budget.
package cubature

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/lowdisc/qmcpricer/pkg/constants"
	"github.com/lowdisc/qmcpricer/pkg/mathutil"
	"github.com/lowdisc/qmcpricer/pkg/pointset"
	"github.com/lowdisc/qmcpricer/pkg/validation"
)

// ErrBudgetExhausted reports that sampling stopped at the budget without
// meeting the requested tolerance. The accompanying estimate is still
// returned, flagged StatusBudgetExhausted.
var ErrBudgetExhausted = errors.New("sample budget exhausted before tolerance was met")

// ToleranceSpec derives the stopping error bound. At least one of the
// two tolerances must be positive.
type ToleranceSpec struct {
	AbsTol float64
	RelTol float64
}

// Validate rejects unusable tolerance pairs.
func (t ToleranceSpec) Validate() error {
	return validation.ValidateTolerances(t.AbsTol, t.RelTol)
}

// Bound returns the error bound a given estimate must satisfy.
func (t ToleranceSpec) Bound(estimate float64) float64 {
	return mathutil.Max(t.AbsTol, t.RelTol*math.Abs(estimate))
}

// Status reports how an estimation run terminated.
type Status string

const (
	StatusConverged       Status = "converged"
	StatusBudgetExhausted Status = "budget-exhausted"
)

// PriceEstimate is the immutable terminal output of one estimator run.
type PriceEstimate struct {
	Price    float64
	ErrBound float64
	Samples  int
	Elapsed  time.Duration
	Status   Status
}

// Integrand is the function being averaged over the unit hypercube.
type Integrand interface {
	Dimension() int
	Evaluate(u []float64) (float64, error)
}

// Options configure one estimation run. Zero values fall back to the
// package defaults.
type Options struct {
	Tolerance     ToleranceSpec
	SampleBudget  int
	InitialBatch  int
	InitialPoints int
	Replicates    int
	Seed          int64
}

func (o *Options) applyDefaults() {
	if o.SampleBudget <= 0 {
		o.SampleBudget = constants.DefaultSampleBudget
	}
	if o.InitialBatch <= 0 {
		o.InitialBatch = constants.DefaultInitialBatch
	}
	if o.InitialPoints <= 0 {
		o.InitialPoints = constants.DefaultInitialPoints
	}
	if o.Replicates <= 1 {
		o.Replicates = constants.DefaultReplicates
	}
}

// Estimate runs the adaptive estimator for the given sampling method
// until the tolerance is met or the sample budget is exhausted.
func Estimate(logger *zap.Logger, method pointset.Method, f Integrand, opts Options) (PriceEstimate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := opts.Tolerance.Validate(); err != nil {
		return PriceEstimate{}, err
	}
	opts.applyDefaults()

	start := time.Now()
	var est PriceEstimate
	var err error
	switch method {
	case pointset.MethodIID:
		est, err = estimateIID(logger, f, opts)
	case pointset.MethodSobol, pointset.MethodLattice:
		est, err = estimateQMC(logger, method, f, opts)
	default:
		return PriceEstimate{}, fmt.Errorf("unknown sampling method %q", method)
	}
	if err != nil {
		return est, err
	}

	est.Elapsed = time.Since(start)
	if est.Status == StatusBudgetExhausted {
		return est, ErrBudgetExhausted
	}
	return est, nil
}

// estimateIID draws successively doubling independent batches and stops
// when the inflated confidence-interval half-width meets the tolerance.
func estimateIID(logger *zap.Logger, f Integrand, opts Options) (PriceEstimate, error) {
	gen, err := pointset.NewIID(f.Dimension(), opts.Seed)
	if err != nil {
		return PriceEstimate{}, err
	}

	var mean, m2 float64
	total := 0
	batch := opts.InitialBatch
	for {
		if batch > opts.SampleBudget-total {
			batch = opts.SampleBudget - total
		}
		points, err := gen.Gen(batch)
		if err != nil {
			return PriceEstimate{}, err
		}
		bMean, bM2, err := batchStats(f, points)
		if err != nil {
			return PriceEstimate{}, err
		}
		mean, m2 = mergeStats(mean, m2, total, bMean, bM2, batch)
		total += batch

		variance := 0.0
		if total > 1 {
			variance = m2 / float64(total-1)
		}
		halfWidth := constants.ErrorInflation * constants.ConfidenceQuantile * math.Sqrt(variance/float64(total))
		logger.Debug("independent-random batch complete",
			zap.String("op", "cubature.estimateIID"),
			zap.Int("samples", total),
			zap.Float64("mean", mean),
			zap.Float64("halfWidth", halfWidth),
		)

		if halfWidth <= opts.Tolerance.Bound(mean) {
			return PriceEstimate{Price: mean, ErrBound: halfWidth, Samples: total, Status: StatusConverged}, nil
		}
		if total >= opts.SampleBudget {
			return PriceEstimate{Price: mean, ErrBound: halfWidth, Samples: total, Status: StatusBudgetExhausted}, nil
		}
		batch = total // doubles the cumulative sample count
	}
}

// estimateQMC averages R independent randomized copies of an n-point
// low-discrepancy set, estimates the error from the spread of the
// replicate means, and doubles n until the tolerance is met.
func estimateQMC(logger *zap.Logger, method pointset.Method, f Integrand, opts Options) (PriceEstimate, error) {
	replicates := opts.Replicates
	gens := make([]pointset.Generator, replicates)
	for r := range gens {
		gen, err := pointset.New(method, f.Dimension(), opts.Seed+int64(r)+1)
		if err != nil {
			return PriceEstimate{}, err
		}
		gens[r] = gen
	}

	n := opts.InitialPoints
	if replicates*n > opts.SampleBudget {
		n = opts.SampleBudget / replicates
		if n < 1 {
			n = 1
		}
	}
	total := 0
	for {
		means := make([]float64, replicates)
		errs := make([]error, replicates)
		var wg sync.WaitGroup
		for r := range gens {
			wg.Add(1)
			go func(r int) {
				defer wg.Done()
				means[r], errs[r] = replicateMean(f, gens[r], n)
			}(r)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return PriceEstimate{}, err
			}
		}
		total += replicates * n

		price := stat.Mean(means, nil)
		stderr := stat.StdDev(means, nil) / math.Sqrt(float64(replicates))
		errBound := constants.ErrorInflation * constants.ConfidenceQuantile * stderr
		logger.Debug("randomized replicates complete",
			zap.String("op", "cubature.estimateQMC"),
			zap.String("method", string(method)),
			zap.Int("pointsPerReplicate", n),
			zap.Int("samples", total),
			zap.Float64("price", price),
			zap.Float64("errBound", errBound),
		)

		if errBound <= opts.Tolerance.Bound(price) {
			return PriceEstimate{Price: price, ErrBound: errBound, Samples: total, Status: StatusConverged}, nil
		}
		if total+2*n*replicates > opts.SampleBudget {
			return PriceEstimate{Price: price, ErrBound: errBound, Samples: total, Status: StatusBudgetExhausted}, nil
		}
		n *= 2
	}
}

// replicateMean averages the integrand over the first n points of one
// randomized generator instance.
func replicateMean(f Integrand, gen pointset.Generator, n int) (float64, error) {
	points, err := gen.Gen(n)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, u := range points {
		v, err := f.Evaluate(u)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(n), nil
}

// batchStats computes the mean and sum of squared deviations of one batch.
func batchStats(f Integrand, points [][]float64) (float64, float64, error) {
	var mean, m2 float64
	for i, u := range points {
		v, err := f.Evaluate(u)
		if err != nil {
			return 0, 0, err
		}
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	return mean, m2, nil
}

// mergeStats combines two running (mean, M2) accumulators using the
// pairwise update, which is associative up to rounding and therefore
// independent of batch evaluation order.
func mergeStats(meanA, m2A float64, nA int, meanB, m2B float64, nB int) (float64, float64) {
	if nA == 0 {
		return meanB, m2B
	}
	if nB == 0 {
		return meanA, m2A
	}
	na, nb := float64(nA), float64(nB)
	delta := meanB - meanA
	mean := meanA + delta*nb/(na+nb)
	m2 := m2A + m2B + delta*delta*na*nb/(na+nb)
	return mean, m2
}
