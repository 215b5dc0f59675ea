package smt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolyArithmetic(t *testing.T) {
	names := []string{"x", "y"}
	x, y := varPoly(0), varPoly(1)
	two := constPoly(big.NewRat(2, 1))

	// (x + 2) * (y - 2) = x*y - 2*x + 2*y - 4
	p := x.add(two).mul(y.sub(two))
	assert.Equal(t, "x*y - 2*x + 2*y - 4", format(p, names))
	assert.Equal(t, 1, p.degreeIn(0))
	assert.Equal(t, []int{0, 1}, p.varIDs())

	assert.True(t, p.sub(p).isZero())
}

func TestPolySplitAndSubst(t *testing.T) {
	names := []string{"x", "t"}
	x, tt := varPoly(0), varPoly(1)
	three := constPoly(big.NewRat(3, 1))

	// x*t + 3*t - x
	p := x.mul(tt).add(three.mul(tt)).sub(x)
	a, b := p.split(1)
	assert.Equal(t, "x + 3", format(a, names))
	assert.Equal(t, "-1*x", format(b, names))
	assert.False(t, b.has(1))

	q := p.subst(map[int]*big.Rat{0: big.NewRat(1, 1)})
	assert.Equal(t, "4*t - 1", format(q, names))

	c, ok := q.subst(map[int]*big.Rat{1: big.NewRat(1, 4)}).constant()
	assert.True(t, ok)
	assert.Equal(t, 0, c.Sign())
}

func TestPolySquares(t *testing.T) {
	x := varPoly(0)
	p := x.mul(x)
	assert.Equal(t, 2, p.degreeIn(0))
	assert.Equal(t, "x*x", format(p, []string{"x"}))
}
