package smt

import (
	"context"
	"math/big"
	"slices"

	"github.com/rs/zerolog"
)

// Default limits for the built-in engine.
const (
	defaultMaxRounds = 64
	defaultMaxFanout = 32
)

// Engine is the built-in backend. It decides systems of polynomial
// equalities exactly over the rationals by alternating linearization with
// resultant elimination of variables that occur with degree one.
//
// When neither step makes progress the system is underdetermined at that
// point, and the engine assigns the next small positive integer to the
// latest declared variable still in play. Every candidate model is checked
// against the original constraints, so a bad guess yields Unknown, never a
// wrong model. Unsat is only reported when no guess was made.
type Engine struct {
	maxRounds int
	maxFanout int
	log       zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger routes per-round debug events to l.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMaxRounds bounds the number of linearize/eliminate rounds.
func WithMaxRounds(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxRounds = n
		}
	}
}

// NewEngine returns an Engine with default limits.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		maxRounds: defaultMaxRounds,
		maxFanout: defaultMaxFanout,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Solve implements Backend.
func (e *Engine) Solve(ctx context.Context, p *Problem) (Result, []*big.Rat, error) {
	orig := make([]poly, len(p.Constraints))
	for i, c := range p.Constraints {
		orig[i] = c.residual()
	}

	work := orig
	vals := map[int]*big.Rat{}
	eliminated := map[int]bool{}
	guesses := 0
	unsat := func(round int, why string) (Result, []*big.Rat, error) {
		if guesses > 0 {
			e.log.Debug().Int("round", round).Int("guesses", guesses).Msg(why + " after guessing")
			return Unknown, nil, nil
		}
		e.log.Debug().Int("round", round).Msg(why)
		return Unsat, nil, nil
	}

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return Unknown, nil, err
		}
		if round > e.maxRounds {
			e.log.Debug().Int("rounds", e.maxRounds).Msg("round limit reached")
			break
		}

		var contradiction bool
		work, contradiction = substitute(work, vals)
		if contradiction {
			return unsat(round, "constant contradiction")
		}
		if len(work) == 0 {
			break
		}

		sys := newLinearSystem(work)
		if err := sys.reduce(ctx); err != nil {
			return Unknown, nil, err
		}
		if sys.inconsistent() {
			return unsat(round, "linear contradiction")
		}
		fixed := sys.determined()
		for id, v := range fixed {
			vals[id] = v
		}
		e.log.Debug().
			Int("round", round).
			Int("constraints", len(work)).
			Int("columns", len(sys.cols)).
			Int("assigned", len(fixed)).
			Msg("linearized")
		if len(fixed) > 0 {
			continue
		}

		derived, picked := e.eliminate(work, eliminated)
		if len(derived) > 0 {
			e.log.Debug().
				Int("round", round).
				Int("variables", len(picked)).
				Int("resultants", len(derived)).
				Msg("eliminated")
			work = append(slices.Clip(work), derived...)
			continue
		}

		id := latestVar(work)
		guesses++
		vals[id] = big.NewRat(int64(guesses), 1)
		e.log.Debug().Int("round", round).Str("var", p.Names[id]).Int("value", guesses).Msg("guessed")
	}

	out := make([]*big.Rat, len(p.Names))
	free := 0
	for i := range out {
		if v, ok := vals[i]; ok {
			out[i] = v
			continue
		}
		out[i] = new(big.Rat)
		free++
	}
	if free > 0 {
		e.log.Debug().Int("free", free).Msg("defaulting unconstrained variables to zero")
	}

	all := make(map[int]*big.Rat, len(out))
	for i, v := range out {
		all[i] = v
	}
	for i, r := range orig {
		if c, _ := r.subst(all).constant(); c == nil || c.Sign() != 0 {
			e.log.Debug().Int("constraint", i).Str("residual", format(r, p.Names)).Msg("candidate model rejected")
			return Unknown, nil, nil
		}
	}
	return Sat, out, nil
}

// substitute applies vals to every polynomial and drops the ones that vanish.
// It reports true if any becomes a nonzero constant.
func substitute(polys []poly, vals map[int]*big.Rat) ([]poly, bool) {
	out := make([]poly, 0, len(polys))
	for _, p := range polys {
		q := p
		if len(vals) > 0 {
			q = p.subst(vals)
		}
		if c, ok := q.constant(); ok {
			if c.Sign() != 0 {
				return nil, true
			}
			continue
		}
		out = append(out, q)
	}
	return out, false
}

// latestVar returns the highest variable id occurring in polys.
func latestVar(polys []poly) int {
	id := -1
	for _, p := range polys {
		for _, v := range p.varIDs() {
			id = max(id, v)
		}
	}
	return id
}

// eliminate picks the not yet eliminated variables that occur with degree at
// most one in the fewest constraints, and returns the pairwise resultants of
// those constraints with respect to each picked variable. Variables picked
// together never share a constraint, and later declared variables go first.
//
// A variable that never multiplies another one is skipped: its resultants
// are linear combinations the linear step already sees.
func (e *Engine) eliminate(work []poly, done map[int]bool) ([]poly, []int) {
	occ := map[int][]int{}
	nonlinear := map[int]bool{}
	inProduct := map[int]bool{}
	for i, p := range work {
		for _, v := range p.varIDs() {
			occ[v] = append(occ[v], i)
			if p.degreeIn(v) > 1 {
				nonlinear[v] = true
			}
		}
		for _, t := range p {
			if len(t.vars) > 1 {
				for _, v := range t.vars {
					inProduct[v] = true
				}
			}
		}
	}

	var cands []int
	fewest := -1
	for v, rows := range occ {
		if done[v] || nonlinear[v] || !inProduct[v] || len(rows) < 2 || len(rows) > e.maxFanout {
			continue
		}
		cands = append(cands, v)
		if fewest < 0 || len(rows) < fewest {
			fewest = len(rows)
		}
	}
	slices.Sort(cands)
	slices.Reverse(cands)

	var (
		derived []poly
		picked  []int
	)
	taken := map[int]bool{}
	for _, v := range cands {
		rows := occ[v]
		if len(rows) != fewest {
			continue
		}
		if slices.ContainsFunc(rows, func(r int) bool { return taken[r] }) {
			continue
		}
		for _, r := range rows {
			taken[r] = true
		}
		done[v] = true
		picked = append(picked, v)

		as := make([]poly, len(rows))
		bs := make([]poly, len(rows))
		for i, r := range rows {
			as[i], bs[i] = work[r].split(v)
		}
		for j := 0; j < len(rows); j++ {
			for k := j + 1; k < len(rows); k++ {
				res := as[j].mul(bs[k]).sub(as[k].mul(bs[j]))
				if !res.isZero() {
					derived = append(derived, res)
				}
			}
		}
	}
	return derived, picked
}
