package smt_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hailstorm/internal/smt"
)

func value(t *testing.T, m *smt.Model, v smt.Var) *big.Rat {
	t.Helper()
	r, ok := m.Value(v)
	require.True(t, ok, "no value for %s", v)
	return r
}

func TestEngineSolvesLinearSystem(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	y := s.Real("y")
	s.Assert(x.Expr().Add(y.Expr()).Eq(smt.Int(10)))
	s.Assert(x.Expr().Sub(y.Expr()).Eq(smt.Int(2)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, "6", value(t, m, x).RatString())
	assert.Equal(t, "4", value(t, m, y).RatString())
}

func TestEngineKeepsFractions(t *testing.T) {
	s := smt.New(nil)
	x := s.Real("x")
	s.Assert(smt.Int(3).Mul(x.Expr()).Eq(smt.Int(1)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, "1/3", value(t, m, x).RatString())
}

func TestEngineDetectsContradiction(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	y := s.Real("y")
	s.Assert(x.Expr().Add(y.Expr()).Eq(smt.Int(1)))
	s.Assert(x.Expr().Add(y.Expr()).Eq(smt.Int(2)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, smt.Unsat, res)
	assert.ErrorIs(t, res.Err(), smt.ErrUnsat)

	_, err = s.Model()
	assert.ErrorIs(t, err, smt.ErrNoModel)
}

func TestEngineSolvesProductAfterSubstitution(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	y := s.Real("y")
	s.Assert(x.Expr().Mul(y.Expr()).Eq(smt.Int(6)))
	s.Assert(x.Expr().Eq(smt.Int(2)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, "2", value(t, m, x).RatString())
	assert.Equal(t, "3", value(t, m, y).RatString())
}

func TestEngineEliminatesSharedTime(t *testing.T) {
	// Two lines through the origin with different slopes meet at one time:
	// a*t == 2 and b*t == 4 with a = 1 forces t = 2, b = 2.
	s := smt.New(smt.NewEngine())
	a := s.Real("a")
	b := s.Real("b")
	tt := s.Real("t")
	s.Assert(a.Expr().Mul(tt.Expr()).Eq(smt.Int(2)))
	s.Assert(b.Expr().Mul(tt.Expr()).Eq(smt.Int(4)))
	s.Assert(a.Expr().Eq(smt.Int(1)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, "2", value(t, m, tt).RatString())
	assert.Equal(t, "2", value(t, m, b).RatString())
}

func TestEngineReportsUnknownForIrrationalRoot(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	s.Assert(x.Expr().Mul(x.Expr()).Eq(smt.Int(2)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, smt.Unknown, res)
	assert.ErrorIs(t, res.Err(), smt.ErrUnknown)
}

func TestEngineHonorsCancellation(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	s.Assert(x.Expr().Eq(smt.Int(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Check(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, smt.Unknown, res)
}

func TestModelIteratesInDeclarationOrderAndEvaluates(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	y := s.Real("y")
	c := x.Expr().Mul(y.Expr()).Eq(smt.Int(12))
	s.Assert(x.Expr().Eq(smt.Int(3)))
	s.Assert(c)

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	vars := m.Vars()
	require.Len(t, vars, 2)
	assert.Equal(t, "x", vars[0].Name())
	assert.Equal(t, "y", vars[1].Name())
	assert.True(t, m.Holds(c))
	sum, ok := m.Eval(x.Expr().Add(y.Expr()))
	require.True(t, ok)
	assert.Equal(t, "7", sum.RatString())
}

func TestEvalRejectsUnboundVariable(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	s.Assert(x.Expr().Eq(smt.Int(1)))
	_, err := s.Check(context.Background())
	require.NoError(t, err)
	m, err := s.Model()
	require.NoError(t, err)

	other := smt.New(nil)
	other.Real("a")
	b := other.Real("b")

	_, ok := m.Eval(b.Expr())
	assert.False(t, ok)
	assert.False(t, m.Holds(b.Expr().Eq(smt.Int(0))))
}

func TestEngineAssignsUnderdeterminedSystem(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	y := s.Real("y")
	c := x.Expr().Add(y.Expr()).Eq(smt.Int(3))
	s.Assert(c)

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	assert.True(t, m.Holds(c))
	assert.Equal(t, "1", value(t, m, y).RatString())
	assert.Equal(t, "2", value(t, m, x).RatString())
}

func TestEngineSolvesTransversalThroughThreeLines(t *testing.T) {
	// A line p + v*t meeting three moving points, one time each: nine
	// bilinear equations in nine unknowns with a single solution
	// p = (24, 13, 10), v = (-3, 1, 2).
	s := smt.New(smt.NewEngine())
	p := [3]smt.Var{s.Real("x"), s.Real("y"), s.Real("z")}
	v := [3]smt.Var{s.Real("vx"), s.Real("vy"), s.Real("vz")}
	points := []struct{ pos, vel [3]int64 }{
		{[3]int64{19, 13, 30}, [3]int64{-2, 1, -2}},
		{[3]int64{18, 19, 22}, [3]int64{-1, -1, -2}},
		{[3]int64{20, 25, 34}, [3]int64{-2, -2, -4}},
	}
	for i, pt := range points {
		tt := s.Real("t" + string(rune('1'+i)))
		for a := 0; a < 3; a++ {
			lhs := p[a].Expr().Add(v[a].Expr().Mul(tt.Expr()))
			rhs := smt.Int(pt.pos[a]).Add(smt.Int(pt.vel[a]).Mul(tt.Expr()))
			s.Assert(lhs.Eq(rhs))
		}
	}

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	got := make([]string, 0, 6)
	for _, u := range append(p[:], v[:]...) {
		got = append(got, value(t, m, u).RatString())
	}
	assert.Equal(t, []string{"24", "13", "10", "-3", "1", "2"}, got)
}

func TestUnconstrainedVariableDefaultsToZero(t *testing.T) {
	s := smt.New(smt.NewEngine())
	x := s.Real("x")
	free := s.Real("free")
	s.Assert(x.Expr().Eq(smt.Int(5)))

	res, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, smt.Sat, res)

	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, 0, value(t, m, free).Sign())
	assert.Equal(t, 2, s.NumVars())
	assert.Equal(t, 1, s.NumConstraints())
}
