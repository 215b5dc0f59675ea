package hail

import "math/big"

// Area is an inclusive square test area on the X/Y plane.
type Area struct {
	Min int64
	Max int64
}

// DefaultArea is the test area used for real puzzle inputs.
var DefaultArea = Area{Min: 200000000000000, Max: 400000000000000}

// Crossing is where two hailstone paths meet on the X/Y plane, and when each
// hailstone gets there.
type Crossing struct {
	X, Y   *big.Rat
	T1, T2 *big.Rat
}

// CrossXY intersects the X/Y paths of a and b, ignoring Z. Parallel paths,
// including identical ones, have no single crossing and return false.
func CrossXY(a, b Hailstone) (Crossing, bool) {
	bi := func(n int64) *big.Int { return big.NewInt(n) }
	mul := func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) }
	sub := func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) }

	// a.Pos + a.Vel*t1 == b.Pos + b.Vel*t2, solved by Cramer's rule.
	det := sub(mul(bi(b.Vel[0]), bi(a.Vel[1])), mul(bi(a.Vel[0]), bi(b.Vel[1])))
	if det.Sign() == 0 {
		return Crossing{}, false
	}
	dx := sub(bi(b.Pos[0]), bi(a.Pos[0]))
	dy := sub(bi(b.Pos[1]), bi(a.Pos[1]))

	t1 := new(big.Rat).SetFrac(sub(mul(bi(b.Vel[0]), dy), mul(bi(b.Vel[1]), dx)), det)
	t2 := new(big.Rat).SetFrac(sub(mul(bi(a.Vel[0]), dy), mul(bi(a.Vel[1]), dx)), det)

	at := func(p, v int64) *big.Rat {
		r := new(big.Rat).Mul(new(big.Rat).SetInt64(v), t1)
		return r.Add(r, new(big.Rat).SetInt64(p))
	}
	return Crossing{
		X:  at(a.Pos[0], a.Vel[0]),
		Y:  at(a.Pos[1], a.Vel[1]),
		T1: t1,
		T2: t2,
	}, true
}

// Contains reports whether (x, y) lies inside the area.
func (ar Area) Contains(x, y *big.Rat) bool {
	lo := new(big.Rat).SetInt64(ar.Min)
	hi := new(big.Rat).SetInt64(ar.Max)
	return x.Cmp(lo) >= 0 && x.Cmp(hi) <= 0 && y.Cmp(lo) >= 0 && y.Cmp(hi) <= 0
}

// CountCrossings counts unordered pairs of hailstones whose X/Y paths cross
// inside area at a time that is in the future for both of them.
func CountCrossings(stones []Hailstone, area Area) int {
	n := 0
	for i := range stones {
		for j := i + 1; j < len(stones); j++ {
			c, ok := CrossXY(stones[i], stones[j])
			if !ok || c.T1.Sign() < 0 || c.T2.Sign() < 0 {
				continue
			}
			if area.Contains(c.X, c.Y) {
				n++
			}
		}
	}
	return n
}
