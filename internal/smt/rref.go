package smt

import (
	"context"
	"math/big"
	"slices"
)

// sparseRow maps column index to a nonzero coefficient.
type sparseRow map[int]*big.Rat

// linearSystem treats every monomial of a set of polynomials as an
// independent column. Nonlinear columns sort first so that reduction
// cancels shared nonlinear monomials before it reaches the linear ones.
type linearSystem struct {
	cols     []term
	constCol int
	rows     []sparseRow
	pivotRow map[int]int
}

func newLinearSystem(polys []poly) *linearSystem {
	seen := map[string]term{}
	for _, p := range polys {
		for k, t := range p {
			if _, ok := seen[k]; !ok {
				seen[k] = term{vars: t.vars}
			}
		}
	}
	cols := make([]term, 0, len(seen))
	for _, t := range seen {
		cols = append(cols, t)
	}
	slices.SortFunc(cols, compareMono)

	index := make(map[string]int, len(cols))
	constCol := -1
	for i, t := range cols {
		index[monoKey(t.vars)] = i
		if len(t.vars) == 0 {
			constCol = i
		}
	}

	rows := make([]sparseRow, len(polys))
	for i, p := range polys {
		r := make(sparseRow, len(p))
		for k, t := range p {
			r[index[k]] = new(big.Rat).Set(t.coef)
		}
		rows[i] = r
	}
	return &linearSystem{cols: cols, constCol: constCol, rows: rows, pivotRow: map[int]int{}}
}

// reduce brings the rows to reduced row echelon form in place.
func (s *linearSystem) reduce(ctx context.Context) error {
	used := make([]bool, len(s.rows))
	for c := range s.cols {
		if c%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		pr := -1
		for r, row := range s.rows {
			if !used[r] && row[c] != nil {
				pr = r
				break
			}
		}
		if pr < 0 {
			continue
		}
		used[pr] = true
		s.pivotRow[c] = pr

		pivot := s.rows[pr]
		inv := new(big.Rat).Inv(pivot[c])
		for k, v := range pivot {
			v.Mul(v, inv)
			pivot[k] = v
		}

		for r, row := range s.rows {
			if r == pr {
				continue
			}
			f := row[c]
			if f == nil {
				continue
			}
			f = new(big.Rat).Set(f)
			for k, v := range pivot {
				d := new(big.Rat).Mul(f, v)
				if cur, ok := row[k]; ok {
					cur.Sub(cur, d)
					if cur.Sign() == 0 {
						delete(row, k)
					}
					continue
				}
				row[k] = d.Neg(d)
			}
		}
	}
	return nil
}

// inconsistent reports whether reduction produced a row 0 = c with c != 0.
func (s *linearSystem) inconsistent() bool {
	if s.constCol < 0 {
		return false
	}
	_, ok := s.pivotRow[s.constCol]
	return ok
}

// determined returns the variables the reduced rows fix to a constant.
func (s *linearSystem) determined() map[int]*big.Rat {
	out := map[int]*big.Rat{}
	for c, r := range s.pivotRow {
		if len(s.cols[c].vars) != 1 {
			continue
		}
		row := s.rows[r]
		val := new(big.Rat)
		pinned := true
		for k, v := range row {
			switch k {
			case c:
			case s.constCol:
				val.Neg(v)
			default:
				pinned = false
			}
		}
		if pinned {
			out[s.cols[c].vars[0]] = val
		}
	}
	return out
}
