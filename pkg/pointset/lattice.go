package pointset

import (
	"math"
	"math/rand"
	"sync"

	"github.com/lowdisc/qmcpricer/pkg/mathutil"
	"github.com/lowdisc/qmcpricer/pkg/validation"
)

// korobovExhaustiveLimit is the largest point count for which every odd
// multiplier below n/2 is scored. Above it the search falls back to a
// fixed random candidate set.
const korobovExhaustiveLimit = 1 << 13

// korobovCandidates is the number of multipliers examined when the
// point count is too large for an exhaustive search.
const korobovCandidates = 128

// latticeGenerator produces randomly shifted rank-1 lattice point sets
// {k*z/n mod 1} with a Korobov generating vector z = (1, a, a^2, ...)
// mod n. The multiplier a is picked by a deterministic search
// minimizing the P_2 worst-case criterion, so the base point set is
// reproducible across instances; the uniform shift is the only
// per-instance randomization.
type latticeGenerator struct {
	d     int
	shift []float64
}

// Generating vectors are deterministic per (d, n), so independent
// replicate instances share one cache.
var (
	korobovMu    sync.Mutex
	korobovCache = make(map[[2]int][]int64)
)

// NewLattice creates a randomized rank-1 lattice generator.
func NewLattice(d int, seed int64) (Generator, error) {
	if err := validation.ValidateDimension(d); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	shift := make([]float64, d)
	for j := range shift {
		shift[j] = rng.Float64()
	}
	return &latticeGenerator{d: d, shift: shift}, nil
}

func (g *latticeGenerator) Dimension() int { return g.d }

func (g *latticeGenerator) Gen(n int) ([][]float64, error) {
	if err := validation.ValidateSampleCount(n); err != nil {
		return nil, err
	}

	key := [2]int{g.d, n}
	korobovMu.Lock()
	z, ok := korobovCache[key]
	if !ok {
		z = korobovVector(g.d, n)
		korobovCache[key] = z
	}
	korobovMu.Unlock()

	points := make([][]float64, n)
	for k := 0; k < n; k++ {
		row := make([]float64, g.d)
		for j := 0; j < g.d; j++ {
			// Integer arithmetic keeps k*z_j mod n exact.
			frac := float64((int64(k)*z[j])%int64(n)) / float64(n)
			row[j] = mathutil.Frac(frac + g.shift[j])
		}
		points[k] = row
	}
	return points, nil
}

// korobovVector returns the Korobov generating vector (1, a, a^2, ...)
// mod n for the multiplier found by korobovSearch.
func korobovVector(d, n int) []int64 {
	a := korobovSearch(d, n)
	z := make([]int64, d)
	z[0] = 1
	for j := 1; j < d; j++ {
		z[j] = (z[j-1] * a) % int64(n)
	}
	return z
}

// korobovSearch picks the multiplier minimizing the P_2 criterion. For
// point counts up to korobovExhaustiveLimit every odd multiplier below
// n/2 is scored; larger counts score a fixed, deterministically drawn
// candidate set. Either way the result depends only on (d, n), never on
// the instance randomization seed.
func korobovSearch(d, n int) int64 {
	if n < 8 {
		return 1
	}

	best := int64(1)
	bestScore := math.Inf(1)
	consider := func(a int64) {
		score := p2Criterion(d, n, a)
		if score < bestScore {
			bestScore = score
			best = a
		}
	}

	if n <= korobovExhaustiveLimit {
		for a := int64(1); a < int64(n)/2; a += 2 {
			consider(a)
		}
		return best
	}

	rng := rand.New(rand.NewSource(int64(n)*31 + int64(d)))
	seen := map[int64]bool{}
	for tries := 0; tries < 4*korobovCandidates && len(seen) < korobovCandidates; tries++ {
		a := int64(2*rng.Intn(n/2-1) + 1)
		if seen[a] {
			continue
		}
		seen[a] = true
		consider(a)
	}
	return best
}

// p2Criterion computes the squared worst-case integration error of the
// Korobov lattice with multiplier a in the weighted Korobov space with
// smoothness 2 and unit product weights:
//
//	P_2 = -1 + (1/n) sum_k prod_j (1 + 2*pi^2*B_2({k z_j / n}))
//
// where B_2(x) = x^2 - x + 1/6 is the second Bernoulli polynomial.
func p2Criterion(d, n int, a int64) float64 {
	z := make([]int64, d)
	z[0] = 1
	for j := 1; j < d; j++ {
		z[j] = (z[j-1] * a) % int64(n)
	}

	const twoPiSq = 2 * math.Pi * math.Pi
	total := 0.0
	for k := 0; k < n; k++ {
		prod := 1.0
		for j := 0; j < d; j++ {
			x := float64((int64(k)*z[j])%int64(n)) / float64(n)
			prod *= 1 + twoPiSq*(x*x-x+1.0/6.0)
		}
		total += prod
	}
	return total/float64(n) - 1
}
