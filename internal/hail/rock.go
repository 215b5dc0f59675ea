package hail

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"hailstorm/internal/smt"
)

// Errors returned while solving for the rock.
var (
	ErrTooFewHailstones = errors.New("too few hailstones")
	ErrNotIntegral      = errors.New("coordinate is not an integer")
)

// RockSystem is the constraint system for one set of hailstones. It keeps
// handles to the rock unknowns so results are read back by reference.
type RockSystem struct {
	Solver *smt.Solver

	X, Y, Z    smt.Var
	VX, VY, VZ smt.Var
	Times      []smt.Var

	constraints []smt.Constraint
}

// BuildRockSystem declares the six rock unknowns and one time per hailstone,
// and asserts rock(t_i) == hailstone_i(t_i) on every axis.
func BuildRockSystem(stones []Hailstone, backend smt.Backend) *RockSystem {
	s := smt.New(backend)
	rs := &RockSystem{
		Solver: s,
		X:      s.Real("x"),
		Y:      s.Real("y"),
		Z:      s.Real("z"),
		VX:     s.Real("vx"),
		VY:     s.Real("vy"),
		VZ:     s.Real("vz"),
	}
	pos := rs.Position()
	vel := rs.Velocity()
	for i, h := range stones {
		t := s.Real("t" + strconv.Itoa(i+1))
		rs.Times = append(rs.Times, t)
		for a := 0; a < 3; a++ {
			rock := pos[a].Expr().Add(vel[a].Expr().Mul(t.Expr()))
			stone := smt.Int(h.Pos[a]).Add(smt.Int(h.Vel[a]).Mul(t.Expr()))
			c := rock.Eq(stone)
			s.Assert(c)
			rs.constraints = append(rs.constraints, c)
		}
	}
	return rs
}

// Position returns the rock's position unknowns in axis order.
func (rs *RockSystem) Position() [3]smt.Var { return [3]smt.Var{rs.X, rs.Y, rs.Z} }

// Velocity returns the rock's velocity unknowns in axis order.
func (rs *RockSystem) Velocity() [3]smt.Var { return [3]smt.Var{rs.VX, rs.VY, rs.VZ} }

// Constraints returns every asserted equation, three per hailstone.
func (rs *RockSystem) Constraints() []smt.Constraint { return rs.constraints }

// Solve checks the system and reads the rock back from the model.
func (rs *RockSystem) Solve(ctx context.Context) (*Rock, *smt.Model, error) {
	res, err := rs.Solver.Check(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("check: %w", err)
	}
	if err := res.Err(); err != nil {
		return nil, nil, fmt.Errorf("check returned %s: %w", res, err)
	}
	m, err := rs.Solver.Model()
	if err != nil {
		return nil, nil, err
	}

	read := func(v smt.Var) (*big.Rat, error) {
		r, ok := m.Value(v)
		if !ok {
			return nil, fmt.Errorf("model has no value for %s", v)
		}
		return r, nil
	}
	rock := &Rock{Times: make([]*big.Rat, len(rs.Times))}
	for a, v := range rs.Position() {
		if rock.Pos[a], err = read(v); err != nil {
			return nil, nil, err
		}
	}
	for a, v := range rs.Velocity() {
		if rock.Vel[a], err = read(v); err != nil {
			return nil, nil, err
		}
	}
	for i, v := range rs.Times {
		if rock.Times[i], err = read(v); err != nil {
			return nil, nil, err
		}
	}
	return rock, m, nil
}

// Rock is a solved throw: where it starts, how it moves, and when it meets
// each hailstone.
type Rock struct {
	Pos   [3]*big.Rat
	Vel   [3]*big.Rat
	Times []*big.Rat
}

// PositionSum adds the three starting coordinates. Each must be an integer.
func (r *Rock) PositionSum() (*big.Int, error) {
	sum := new(big.Int)
	for a, c := range r.Pos {
		if c == nil || !c.IsInt() {
			return nil, fmt.Errorf("%w: axis %d = %v", ErrNotIntegral, a, c)
		}
		sum.Add(sum, c.Num())
	}
	return sum, nil
}

func (r *Rock) String() string {
	join := func(rs []*big.Rat) string {
		return strings.Join(lo.Map(rs, func(c *big.Rat, _ int) string { return c.RatString() }), ", ")
	}
	return join(r.Pos[:]) + " @ " + join(r.Vel[:])
}

// SolveRock builds the constraint system for stones, solves it with backend
// (nil selects the built-in engine) and verifies the result.
func SolveRock(ctx context.Context, stones []Hailstone, backend smt.Backend) (*Rock, error) {
	if len(stones) == 0 {
		return nil, fmt.Errorf("%w: need at least 1", ErrTooFewHailstones)
	}
	rock, _, err := BuildRockSystem(stones, backend).Solve(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := Verify(rock, stones); err != nil {
		return nil, err
	}
	return rock, nil
}

// Verify checks that the rock meets every hailstone at one non-negative time
// and returns those times. When the rock matches a hailstone's velocity on an
// axis, their positions on that axis must already agree.
func Verify(r *Rock, stones []Hailstone) ([]*big.Rat, error) {
	times := make([]*big.Rat, len(stones))
	for i, h := range stones {
		var t *big.Rat
		for a := 0; a < 3; a++ {
			dv := new(big.Rat).Sub(r.Vel[a], new(big.Rat).SetInt64(h.Vel[a]))
			dp := new(big.Rat).Sub(new(big.Rat).SetInt64(h.Pos[a]), r.Pos[a])
			if dv.Sign() == 0 {
				if dp.Sign() != 0 {
					return nil, fmt.Errorf("hailstone %d: parallel on axis %d and never meets", i+1, a)
				}
				continue
			}
			at := dp.Quo(dp, dv)
			if t == nil {
				t = at
				continue
			}
			if t.Cmp(at) != 0 {
				return nil, fmt.Errorf("hailstone %d: axes disagree on time (%s vs %s)", i+1, t.RatString(), at.RatString())
			}
		}
		if t == nil {
			t = new(big.Rat)
		}
		if t.Sign() < 0 {
			return nil, fmt.Errorf("hailstone %d: collision at negative time %s", i+1, t.RatString())
		}
		times[i] = t
	}
	return times, nil
}
