package smt

import (
	"fmt"
	"math/big"
	"strings"
)

// Var is a handle to a real-valued unknown declared on a Solver.
type Var struct {
	id   int
	name string
}

// Name returns the name the variable was declared with.
func (v Var) Name() string { return v.name }

func (v Var) String() string { return v.name }

// Expr returns the expression consisting of v alone.
func (v Var) Expr() Expr { return Expr{p: varPoly(v.id)} }

// Expr is an immutable polynomial expression over declared variables.
// The zero value is the constant 0.
type Expr struct {
	p poly
}

// Int returns the constant expression n.
func Int(n int64) Expr { return Expr{p: constPoly(big.NewRat(n, 1))} }

func (e Expr) Add(o Expr) Expr { return Expr{p: e.p.add(o.p)} }
func (e Expr) Sub(o Expr) Expr { return Expr{p: e.p.sub(o.p)} }
func (e Expr) Mul(o Expr) Expr { return Expr{p: e.p.mul(o.p)} }

// Eq builds the constraint e == o.
func (e Expr) Eq(o Expr) Constraint {
	return Constraint{lhs: e, rhs: o}
}

// Constraint is an equality between two expressions.
type Constraint struct {
	lhs, rhs Expr
}

// residual returns lhs - rhs, which is zero exactly when the constraint holds.
func (c Constraint) residual() poly { return c.lhs.p.sub(c.rhs.p) }

// format renders p using names for variable ids. Used in logs and errors.
func format(p poly, names []string) string {
	if p.isZero() {
		return "0"
	}
	var b strings.Builder
	for i, t := range p.sortedTerms() {
		c := t.coef
		if i > 0 {
			if c.Sign() < 0 {
				b.WriteString(" - ")
				c = new(big.Rat).Neg(c)
			} else {
				b.WriteString(" + ")
			}
		}
		one := c.Cmp(big.NewRat(1, 1)) == 0
		if !one || len(t.vars) == 0 {
			b.WriteString(c.RatString())
		}
		for j, v := range t.vars {
			if j > 0 || !one {
				b.WriteByte('*')
			}
			name := fmt.Sprintf("_%d", v)
			if v < len(names) {
				name = names[v]
			}
			b.WriteString(name)
		}
	}
	return b.String()
}
