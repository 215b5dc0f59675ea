package smt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// sexpr is a parsed s-expression: either an atom or a list.
type sexpr struct {
	atom   string
	list   []sexpr
	isList bool
}

func (s sexpr) String() string {
	if !s.isList {
		return s.atom
	}
	parts := make([]string, len(s.list))
	for i, e := range s.list {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func tokenize(src string) []string {
	var (
		toks []string
		cur  strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	quoted := false
	for _, r := range src {
		switch {
		case quoted:
			cur.WriteRune(r)
			if r == '|' {
				quoted = false
			}
		case r == '|':
			cur.WriteRune(r)
			quoted = true
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// parseSexprs parses every top-level s-expression in src.
func parseSexprs(src string) ([]sexpr, error) {
	toks := tokenize(src)
	var (
		out []sexpr
		pos int
	)
	var parse func() (sexpr, error)
	parse = func() (sexpr, error) {
		if pos >= len(toks) {
			return sexpr{}, errors.New("unexpected end of input")
		}
		t := toks[pos]
		pos++
		switch t {
		case ")":
			return sexpr{}, errors.New("unexpected )")
		case "(":
			node := sexpr{isList: true}
			for {
				if pos >= len(toks) {
					return sexpr{}, errors.New("unclosed (")
				}
				if toks[pos] == ")" {
					pos++
					return node, nil
				}
				child, err := parse()
				if err != nil {
					return sexpr{}, err
				}
				node.list = append(node.list, child)
			}
		default:
			return sexpr{atom: t}, nil
		}
	}
	for pos < len(toks) {
		e, err := parse()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ratValue evaluates an SMT-LIB real constant such as 24.0, (- 3.0) or
// (/ 1.0 2.0).
func ratValue(e sexpr) (*big.Rat, error) {
	if !e.isList {
		r, ok := new(big.Rat).SetString(e.atom)
		if !ok {
			return nil, fmt.Errorf("not a numeral: %q", e.atom)
		}
		return r, nil
	}
	if len(e.list) == 0 || e.list[0].isList {
		return nil, fmt.Errorf("unsupported value %s", e)
	}
	args := make([]*big.Rat, 0, len(e.list)-1)
	for _, a := range e.list[1:] {
		r, err := ratValue(a)
		if err != nil {
			return nil, err
		}
		args = append(args, r)
	}
	switch op := e.list[0].atom; {
	case op == "-" && len(args) == 1:
		return args[0].Neg(args[0]), nil
	case op == "-" && len(args) == 2:
		return args[0].Sub(args[0], args[1]), nil
	case op == "+" && len(args) > 0:
		sum := new(big.Rat)
		for _, a := range args {
			sum.Add(sum, a)
		}
		return sum, nil
	case op == "/" && len(args) == 2:
		if args[1].Sign() == 0 {
			return nil, fmt.Errorf("division by zero in %s", e)
		}
		return args[0].Quo(args[0], args[1]), nil
	default:
		return nil, fmt.Errorf("unsupported value %s", e)
	}
}

// smtRat renders r as an SMT-LIB real constant.
func smtRat(r *big.Rat) string {
	abs := new(big.Rat).Abs(r)
	var s string
	if abs.IsInt() {
		s = abs.Num().String() + ".0"
	} else {
		s = fmt.Sprintf("(/ %s.0 %s.0)", abs.Num(), abs.Denom())
	}
	if r.Sign() < 0 {
		return "(- " + s + ")"
	}
	return s
}
