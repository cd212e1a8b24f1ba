package pointset

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/lowdisc/qmcpricer/pkg/constants"
	"github.com/lowdisc/qmcpricer/pkg/validation"
)

// sobolBits is the digit depth of the generated sequence.
const sobolBits = 32

// sobolPoly holds one row of the Joe-Kuo D(6) primitive-polynomial
// table: polynomial degree, middle coefficient bits, and initial
// direction-number seeds. The first dimension (van der Corput) is
// implicit and not listed.
type sobolPoly struct {
	s int
	a uint32
	m []uint32
}

// Joe-Kuo D(6) initialization for dimensions 2 through 32.
var sobolTable = []sobolPoly{
	{1, 0, []uint32{1}},
	{2, 1, []uint32{1, 3}},
	{3, 1, []uint32{1, 3, 1}},
	{3, 2, []uint32{1, 1, 1}},
	{4, 1, []uint32{1, 1, 3, 3}},
	{4, 4, []uint32{1, 3, 5, 13}},
	{5, 2, []uint32{1, 1, 5, 5, 17}},
	{5, 4, []uint32{1, 1, 5, 5, 5}},
	{5, 7, []uint32{1, 1, 7, 11, 19}},
	{5, 11, []uint32{1, 1, 5, 1, 1}},
	{5, 13, []uint32{1, 1, 1, 3, 11}},
	{5, 14, []uint32{1, 3, 5, 5, 31}},
	{6, 1, []uint32{1, 3, 3, 9, 7, 49}},
	{6, 13, []uint32{1, 1, 1, 15, 21, 21}},
	{6, 16, []uint32{1, 3, 1, 13, 27, 49}},
	{6, 19, []uint32{1, 1, 1, 15, 7, 5}},
	{6, 22, []uint32{1, 3, 1, 15, 13, 25}},
	{6, 25, []uint32{1, 1, 5, 5, 19, 61}},
	{7, 1, []uint32{1, 3, 7, 11, 23, 15, 103}},
	{7, 4, []uint32{1, 3, 7, 13, 13, 15, 69}},
	{7, 7, []uint32{1, 1, 3, 13, 7, 35, 63}},
	{7, 8, []uint32{1, 3, 5, 9, 1, 25, 53}},
	{7, 14, []uint32{1, 3, 1, 13, 9, 35, 107}},
	{7, 19, []uint32{1, 3, 1, 5, 27, 61, 31}},
	{7, 21, []uint32{1, 1, 5, 11, 19, 41, 61}},
	{7, 28, []uint32{1, 3, 5, 3, 3, 13, 69}},
	{7, 31, []uint32{1, 1, 7, 13, 1, 19, 1}},
	{7, 32, []uint32{1, 3, 7, 5, 13, 19, 59}},
	{7, 37, []uint32{1, 1, 3, 9, 25, 29, 41}},
	{7, 41, []uint32{1, 3, 5, 13, 23, 1, 55}},
	{7, 42, []uint32{1, 3, 7, 3, 13, 59, 17}},
}

// directionNumbers expands the table into per-dimension direction
// numbers, left-aligned so bit 31 carries the first binary digit.
func directionNumbers(d int) [][]uint32 {
	v := make([][]uint32, d)

	// Dimension 1: van der Corput sequence in base 2.
	v[0] = make([]uint32, sobolBits)
	for k := 0; k < sobolBits; k++ {
		v[0][k] = 1 << (sobolBits - 1 - k)
	}

	for dim := 1; dim < d; dim++ {
		poly := sobolTable[dim-1]
		s := poly.s
		m := make([]uint32, sobolBits)
		copy(m, poly.m)
		for k := s; k < sobolBits; k++ {
			mk := m[k-s] ^ (m[k-s] << uint(s))
			for i := 1; i < s; i++ {
				if (poly.a>>uint(s-1-i))&1 == 1 {
					mk ^= m[k-i] << uint(i)
				}
			}
			m[k] = mk
		}
		v[dim] = make([]uint32, sobolBits)
		for k := 0; k < sobolBits; k++ {
			v[dim][k] = m[k] << uint(sobolBits-1-k)
		}
	}
	return v
}

// sobolGenerator produces a scrambled, digitally shifted Sobol'
// sequence. The scramble is Matousek's random linear scramble: a random
// nonsingular lower-triangular bit matrix per coordinate, applied to
// the direction numbers (equivalent by linearity to applying it to
// every point), followed by a full digital shift.
type sobolGenerator struct {
	d     int
	v     [][]uint32 // scrambled direction numbers
	shift []uint32   // per-dimension digital shift
}

// NewSobol creates a randomized Sobol' generator. Dimensions above the
// built-in direction-number table are rejected.
func NewSobol(d int, seed int64) (Generator, error) {
	if err := validation.ValidateDimension(d); err != nil {
		return nil, err
	}
	if d > constants.MaxSobolDimension {
		return nil, fmt.Errorf("sobol dimension %d exceeds direction-number table limit %d", d, constants.MaxSobolDimension)
	}

	rng := rand.New(rand.NewSource(seed))
	v := directionNumbers(d)

	g := &sobolGenerator{d: d, v: make([][]uint32, d), shift: make([]uint32, d)}
	for dim := 0; dim < d; dim++ {
		rows := scrambleMatrix(rng)
		sv := make([]uint32, sobolBits)
		for k := 0; k < sobolBits; k++ {
			sv[k] = scrambleWord(v[dim][k], rows)
		}
		g.v[dim] = sv
		g.shift[dim] = rng.Uint32()
	}
	return g, nil
}

// scrambleMatrix draws a random nonsingular lower-triangular bit
// matrix. Row i produces output digit i from input digits 1..i, so its
// mask carries the diagonal bit plus random bits in the more
// significant digit positions.
func scrambleMatrix(rng *rand.Rand) [sobolBits]uint32 {
	var rows [sobolBits]uint32
	for i := 0; i < sobolBits; i++ {
		diag := uint32(1) << uint(sobolBits-1-i)
		var above uint32
		if i > 0 {
			above = rng.Uint32() &^ (^uint32(0) >> uint(i))
		}
		rows[i] = diag | above
	}
	return rows
}

// scrambleWord applies the bit matrix to one word of binary digits.
func scrambleWord(w uint32, rows [sobolBits]uint32) uint32 {
	var out uint32
	for i := 0; i < sobolBits; i++ {
		if bits.OnesCount32(w&rows[i])&1 == 1 {
			out |= 1 << uint(sobolBits-1-i)
		}
	}
	return out
}

func (g *sobolGenerator) Dimension() int { return g.d }

// Gen returns the first n points of the randomized sequence. Power-of-two
// n realizes the full equidistribution guarantees; other n are permitted.
func (g *sobolGenerator) Gen(n int) ([][]float64, error) {
	if err := validation.ValidateSampleCount(n); err != nil {
		return nil, err
	}

	points := make([][]float64, n)
	cur := make([]uint32, g.d)
	for i := 0; i < n; i++ {
		row := make([]float64, g.d)
		for dim := 0; dim < g.d; dim++ {
			row[dim] = float64(cur[dim]^g.shift[dim]) * 0x1p-32
		}
		points[i] = row

		// Gray-code step to the next point.
		c := bits.TrailingZeros32(uint32(i) + 1)
		for dim := 0; dim < g.d; dim++ {
			cur[dim] ^= g.v[dim][c]
		}
	}
	return points, nil
}
