package smt

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors returned by callers that require a model.
var (
	ErrUnsat   = errors.New("constraints are unsatisfiable")
	ErrUnknown = errors.New("solver could not decide the constraints")
	ErrNoModel = errors.New("no model: last check was not sat")
)

// Result is the outcome of a satisfiability check.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Err maps a non-sat result to its sentinel error.
func (r Result) Err() error {
	switch r {
	case Sat:
		return nil
	case Unsat:
		return ErrUnsat
	default:
		return ErrUnknown
	}
}

// Problem is the declared variables and asserted constraints handed to a
// Backend. Backends must not modify it.
type Problem struct {
	Names       []string
	Constraints []Constraint
}

// Backend decides a Problem. On Sat it returns values for every variable,
// indexed by declaration order.
type Backend interface {
	Solve(ctx context.Context, p *Problem) (Result, []*big.Rat, error)
}

// Solver collects declarations and assertions and checks them with a Backend.
// A Solver is not safe for concurrent use.
type Solver struct {
	backend Backend
	prob    Problem
	result  Result
	model   *Model
}

// New returns an empty solver. A nil backend selects the built-in Engine.
func New(b Backend) *Solver {
	if b == nil {
		b = NewEngine()
	}
	return &Solver{backend: b}
}

// Real declares a fresh real-valued unknown. Names are labels only and need
// not be unique.
func (s *Solver) Real(name string) Var {
	v := Var{id: len(s.prob.Names), name: name}
	s.prob.Names = append(s.prob.Names, name)
	s.model = nil
	return v
}

// Assert adds a constraint.
func (s *Solver) Assert(c Constraint) {
	s.prob.Constraints = append(s.prob.Constraints, c)
	s.model = nil
}

// NumVars returns how many variables have been declared.
func (s *Solver) NumVars() int { return len(s.prob.Names) }

// NumConstraints returns how many constraints have been asserted.
func (s *Solver) NumConstraints() int { return len(s.prob.Constraints) }

// Check runs the backend over everything asserted so far.
func (s *Solver) Check(ctx context.Context) (Result, error) {
	s.model = nil
	res, vals, err := s.backend.Solve(ctx, &s.prob)
	if err != nil {
		s.result = Unknown
		return Unknown, err
	}
	s.result = res
	if res != Sat {
		return res, nil
	}
	if len(vals) != len(s.prob.Names) {
		s.result = Unknown
		return Unknown, fmt.Errorf("backend returned %d values for %d variables", len(vals), len(s.prob.Names))
	}
	s.model = &Model{names: s.prob.Names, vals: vals}
	return res, nil
}

// Model returns the assignment found by the last Check.
func (s *Solver) Model() (*Model, error) {
	if s.model == nil {
		return nil, ErrNoModel
	}
	return s.model, nil
}

// Model is a satisfying assignment of every declared variable.
type Model struct {
	names []string
	vals  []*big.Rat
}

// Value returns a copy of the value assigned to v.
func (m *Model) Value(v Var) (*big.Rat, bool) {
	if v.id < 0 || v.id >= len(m.vals) || m.vals[v.id] == nil {
		return nil, false
	}
	return new(big.Rat).Set(m.vals[v.id]), true
}

// Vars returns every variable in the model in declaration order.
func (m *Model) Vars() []Var {
	out := make([]Var, len(m.names))
	for i, n := range m.names {
		out[i] = Var{id: i, name: n}
	}
	return out
}

// Eval evaluates e under the model. It reports false if e uses a variable
// the model does not bind, such as one declared on another solver.
func (m *Model) Eval(e Expr) (*big.Rat, bool) {
	vals := make(map[int]*big.Rat, len(m.vals))
	for i, v := range m.vals {
		vals[i] = v
	}
	return e.p.subst(vals).constant()
}

// Holds reports whether c is satisfied exactly by the model.
func (m *Model) Holds(c Constraint) bool {
	r, ok := m.Eval(c.lhs.Sub(c.rhs))
	return ok && r.Sign() == 0
}
