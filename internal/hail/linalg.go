package hail

import (
	"fmt"
	"math"
	"math/big"

	"github.com/skelterjohn/go.matrix"
)

// maxRefinements bounds the correction steps in planeSolve.
const maxRefinements = 8

// SolveLinear finds the rock without a constraint solver. For any two
// hailstones the rock's nonlinear terms cancel from the cross-product
// identity on a pair of axes, which leaves one linear equation in four
// unknowns; four consecutive pairs give a 4x4 system. The X/Y plane yields
// x, y, vx, vy and the Z/Y plane yields z, vz.
//
// Positions are taken relative to the first hailstone. The systems are
// inverted in float64 and the integer solution is refined against exact
// residuals, then checked with Verify.
func SolveLinear(stones []Hailstone) (*Rock, error) {
	if len(stones) < 5 {
		return nil, fmt.Errorf("%w: linear route needs 5, have %d", ErrTooFewHailstones, len(stones))
	}
	origin := stones[0].Pos
	xy, err := planeSolve(stones, origin, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("x/y plane: %w", err)
	}
	zy, err := planeSolve(stones, origin, 2, 1)
	if err != nil {
		return nil, fmt.Errorf("z/y plane: %w", err)
	}

	at := func(n *big.Int, shift int64) *big.Rat {
		r := new(big.Rat).SetInt(n)
		return r.Add(r, new(big.Rat).SetInt64(shift))
	}
	rock := &Rock{
		Pos: [3]*big.Rat{at(xy[0], origin[0]), at(xy[1], origin[1]), at(zy[0], origin[2])},
		Vel: [3]*big.Rat{at(xy[2], 0), at(xy[3], 0), at(zy[2], 0)},
	}
	times, err := Verify(rock, stones)
	if err != nil {
		return nil, fmt.Errorf("solution %s does not hold: %w", rock, err)
	}
	rock.Times = times
	return rock, nil
}

// planeSolve returns the integer (p_a, p_b, v_a, v_b) of the rock, positions
// relative to origin, from
// (v_a - va_i)(p_b - pb_i) == (v_b - vb_i)(p_a - pa_i) over hailstones 0..4.
func planeSolve(stones []Hailstone, origin Vec3, a, b int) ([4]*big.Int, error) {
	var (
		coef [4][4]int64
		rhs  [4]*big.Int
	)
	bi := func(n int64) *big.Int { return big.NewInt(n) }
	mul := func(x, y int64) *big.Int { return new(big.Int).Mul(bi(x), bi(y)) }
	for i := 0; i < 4; i++ {
		h1, h2 := stones[i], stones[i+1]
		pa1, pb1 := h1.Pos[a]-origin[a], h1.Pos[b]-origin[b]
		pa2, pb2 := h2.Pos[a]-origin[a], h2.Pos[b]-origin[b]
		va1, vb1 := h1.Vel[a], h1.Vel[b]
		va2, vb2 := h2.Vel[a], h2.Vel[b]

		coef[i] = [4]int64{vb2 - vb1, va1 - va2, pb1 - pb2, pa2 - pa1}
		r := new(big.Int).Sub(mul(va1, pb1), mul(vb1, pa1))
		r.Sub(r, mul(va2, pb2))
		rhs[i] = r.Add(r, mul(vb2, pa2))
	}

	m := matrix.Zeros(4, 4)
	for i := range coef {
		for j, c := range coef[i] {
			m.Set(i, j, float64(c))
		}
	}
	inv, err := m.Inverse()
	if err != nil {
		return [4]*big.Int{}, fmt.Errorf("invert: %w", err)
	}

	x := [4]*big.Int{new(big.Int), new(big.Int), new(big.Int), new(big.Int)}
	for step := 0; step <= maxRefinements; step++ {
		var res [4]*big.Int
		exact := true
		for i := range coef {
			res[i] = new(big.Int).Set(rhs[i])
			for j, c := range coef[i] {
				res[i].Sub(res[i], new(big.Int).Mul(bi(c), x[j]))
			}
			exact = exact && res[i].Sign() == 0
		}
		if exact {
			return x, nil
		}
		if step == maxRefinements {
			break
		}

		moved := false
		for k := 0; k < 4; k++ {
			sum := 0.0
			for j := 0; j < 4; j++ {
				f, _ := new(big.Float).SetInt(res[j]).Float64()
				sum += inv.Get(k, j) * f
			}
			if math.IsNaN(sum) || math.IsInf(sum, 0) {
				return [4]*big.Int{}, fmt.Errorf("unknown %d is not finite", k)
			}
			d, _ := new(big.Float).SetFloat64(math.Round(sum)).Int(nil)
			if d.Sign() != 0 {
				moved = true
				x[k].Add(x[k], d)
			}
		}
		if !moved {
			break
		}
	}
	return [4]*big.Int{}, fmt.Errorf("%w: no integer solution in the plane of axes %d and %d", ErrNotIntegral, a, b)
}
