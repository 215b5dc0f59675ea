package smt

import (
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// term is one monomial of a polynomial: coef * vars[0] * vars[1] * ...
// vars is sorted and may repeat an id for higher powers.
type term struct {
	vars []int
	coef *big.Rat
}

// poly is a polynomial with rational coefficients keyed by monomial.
// The zero polynomial is an empty (or nil) map. Zero coefficients are never stored.
type poly map[string]term

func monoKey(vars []int) string {
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	for i, v := range vars {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func constPoly(r *big.Rat) poly {
	p := poly{}
	if r.Sign() != 0 {
		p[""] = term{coef: new(big.Rat).Set(r)}
	}
	return p
}

func varPoly(id int) poly {
	vars := []int{id}
	return poly{monoKey(vars): term{vars: vars, coef: big.NewRat(1, 1)}}
}

func (p poly) clone() poly {
	out := make(poly, len(p))
	for k, t := range p {
		out[k] = term{vars: t.vars, coef: new(big.Rat).Set(t.coef)}
	}
	return out
}

// addTerm accumulates c*vars into p in place.
func (p poly) addTerm(vars []int, c *big.Rat) {
	if c.Sign() == 0 {
		return
	}
	k := monoKey(vars)
	if t, ok := p[k]; ok {
		sum := new(big.Rat).Add(t.coef, c)
		if sum.Sign() == 0 {
			delete(p, k)
			return
		}
		p[k] = term{vars: t.vars, coef: sum}
		return
	}
	p[k] = term{vars: vars, coef: new(big.Rat).Set(c)}
}

func (p poly) add(q poly) poly {
	out := p.clone()
	for _, t := range q {
		out.addTerm(t.vars, t.coef)
	}
	return out
}

func (p poly) scale(r *big.Rat) poly {
	out := poly{}
	if r.Sign() == 0 {
		return out
	}
	for k, t := range p {
		out[k] = term{vars: t.vars, coef: new(big.Rat).Mul(t.coef, r)}
	}
	return out
}

func (p poly) sub(q poly) poly {
	return p.add(q.scale(big.NewRat(-1, 1)))
}

func (p poly) mul(q poly) poly {
	out := poly{}
	for _, a := range p {
		for _, b := range q {
			vars := mergeVars(a.vars, b.vars)
			out.addTerm(vars, new(big.Rat).Mul(a.coef, b.coef))
		}
	}
	return out
}

func mergeVars(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return out
}

func (p poly) isZero() bool { return len(p) == 0 }

// constant reports the value of p if it has no variables.
func (p poly) constant() (*big.Rat, bool) {
	switch len(p) {
	case 0:
		return new(big.Rat), true
	case 1:
		if t, ok := p[""]; ok {
			return new(big.Rat).Set(t.coef), true
		}
	}
	return nil, false
}

// degreeIn returns the highest power of id in any term of p.
func (p poly) degreeIn(id int) int {
	d := 0
	for _, t := range p {
		n := 0
		for _, v := range t.vars {
			if v == id {
				n++
			}
		}
		if n > d {
			d = n
		}
	}
	return d
}

func (p poly) has(id int) bool {
	for _, t := range p {
		if slices.Contains(t.vars, id) {
			return true
		}
	}
	return false
}

// varIDs returns the sorted distinct variable ids of p.
func (p poly) varIDs() []int {
	seen := map[int]bool{}
	var out []int
	for _, t := range p {
		for _, v := range t.vars {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return out
}

// split writes p as a*x + b where neither a nor b mention x.
// p must have degree at most one in x.
func (p poly) split(id int) (a, b poly) {
	a, b = poly{}, poly{}
	for _, t := range p {
		i := slices.Index(t.vars, id)
		if i < 0 {
			b.addTerm(t.vars, t.coef)
			continue
		}
		rest := make([]int, 0, len(t.vars)-1)
		rest = append(rest, t.vars[:i]...)
		rest = append(rest, t.vars[i+1:]...)
		a.addTerm(rest, t.coef)
	}
	return a, b
}

// subst replaces every assigned variable with its value.
func (p poly) subst(vals map[int]*big.Rat) poly {
	out := poly{}
	for _, t := range p {
		c := new(big.Rat).Set(t.coef)
		rest := make([]int, 0, len(t.vars))
		for _, v := range t.vars {
			if x, ok := vals[v]; ok {
				c.Mul(c, x)
				continue
			}
			rest = append(rest, v)
		}
		out.addTerm(rest, c)
	}
	return out
}

// sortedTerms returns the monomials of p in a stable order: higher degree
// first, then by key.
func (p poly) sortedTerms() []term {
	out := make([]term, 0, len(p))
	for _, t := range p {
		out = append(out, t)
	}
	slices.SortFunc(out, compareMono)
	return out
}

func compareMono(a, b term) int {
	if len(a.vars) != len(b.vars) {
		return len(b.vars) - len(a.vars)
	}
	return slices.Compare(a.vars, b.vars)
}
