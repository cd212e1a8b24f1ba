package payoff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lowdisc/qmcpricer/pkg/mathutil"
)

// Evaluator maps one row of uniforms in [0,1)^d to a discounted payoff.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	asset    AssetPathParams
	payoff   PayoffParams
	dim      int
	discount float64

	// sequential construction: per-step increment scales
	sqrtDt []float64

	// principal-component construction: transform[i][k] carries
	// sqrt(lambda_k) * e_k[i] with eigenpairs in descending order, so
	// W = transform * z.
	transform [][]float64
}

// NewEvaluator validates the request and precomputes the path transform.
func NewEvaluator(asset AssetPathParams, pay PayoffParams, construction Construction) (*Evaluator, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if err := pay.Validate(); err != nil {
		return nil, err
	}

	e := &Evaluator{
		asset:    asset,
		payoff:   pay,
		dim:      len(asset.Times),
		discount: math.Exp(-asset.Rate * asset.Maturity()),
	}

	switch construction {
	case Sequential:
		e.sqrtDt = make([]float64, e.dim)
		prev := 0.0
		for i, t := range asset.Times {
			e.sqrtDt[i] = math.Sqrt(t - prev)
			prev = t
		}
	case PrincipalComponent:
		transform, err := brownianPCA(asset.Times)
		if err != nil {
			return nil, err
		}
		e.transform = transform
	default:
		return nil, fmt.Errorf("unknown path construction %q", construction)
	}
	return e, nil
}

// brownianPCA eigendecomposes the Brownian covariance C[i][j] =
// min(t_i, t_j) and returns the transform mapping standard normals to
// path values, with the dominant component first.
func brownianPCA(times []float64) ([][]float64, error) {
	d := len(times)
	cov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			cov.SetSym(i, j, math.Min(times[i], times[j]))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil, fmt.Errorf("eigendecomposition of Brownian covariance failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// EigenSym returns ascending eigenvalues; reverse to put the
	// dominant component in the first coordinate.
	transform := make([][]float64, d)
	for i := 0; i < d; i++ {
		row := make([]float64, d)
		for k := 0; k < d; k++ {
			src := d - 1 - k
			lambda := vals[src]
			if lambda < 0 {
				lambda = 0
			}
			row[k] = math.Sqrt(lambda) * vecs.At(i, src)
		}
		transform[i] = row
	}
	return transform, nil
}

// Dimension returns the number of uniforms consumed per path.
func (e *Evaluator) Dimension() int { return e.dim }

// Deterministic reports whether the path distribution is degenerate
// (zero volatility), in which case every input row evaluates to the
// same discounted payoff.
func (e *Evaluator) Deterministic() bool { return e.asset.Vol == 0 }

// Evaluate constructs one asset path from a row of uniforms and returns
// the discounted payoff. Pure function of its inputs.
func (e *Evaluator) Evaluate(u []float64) (float64, error) {
	if len(u) != e.dim {
		return 0, fmt.Errorf("point dimension %d does not match monitoring grid length %d", len(u), e.dim)
	}

	z := make([]float64, e.dim)
	for i, ui := range u {
		z[i] = distuv.UnitNormal.Quantile(mathutil.ClampUnit(ui))
	}

	w := make([]float64, e.dim)
	if e.sqrtDt != nil {
		acc := 0.0
		for i := range w {
			acc += e.sqrtDt[i] * z[i]
			w[i] = acc
		}
	} else {
		for i := range w {
			var acc float64
			row := e.transform[i]
			for k, zk := range z {
				acc += row[k] * zk
			}
			w[i] = acc
		}
	}

	drift := e.asset.Rate - 0.5*e.asset.Vol*e.asset.Vol
	var avg float64
	switch e.payoff.Mean {
	case MeanGeometric:
		// Geometric mean via the average log price.
		logSum := 0.0
		for i, t := range e.asset.Times {
			logSum += math.Log(e.asset.InitPrice) + drift*t + e.asset.Vol*w[i]
		}
		avg = math.Exp(logSum / float64(e.dim))
	default:
		sum := 0.0
		for i, t := range e.asset.Times {
			sum += e.asset.InitPrice * math.Exp(drift*t+e.asset.Vol*w[i])
		}
		avg = sum / float64(e.dim)
	}

	var intrinsic float64
	if e.payoff.Kind == OptionCall {
		intrinsic = avg - e.payoff.Strike
	} else {
		intrinsic = e.payoff.Strike - avg
	}
	if intrinsic < 0 {
		intrinsic = 0
	}
	return e.discount * intrinsic, nil
}
