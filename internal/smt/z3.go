package smt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Z3 is a Backend that runs the z3 binary on an SMT-LIB2 rendering of the
// problem. Variables are renamed to v<index> so user labels never need quoting.
type Z3 struct {
	path string
	log  zerolog.Logger
}

// NewZ3 returns a backend that runs the binary at path ("z3" if empty).
func NewZ3(path string, log zerolog.Logger) *Z3 {
	if strings.TrimSpace(path) == "" {
		path = "z3"
	}
	return &Z3{path: path, log: log}
}

// Solve implements Backend.
func (z *Z3) Solve(ctx context.Context, p *Problem) (Result, []*big.Rat, error) {
	script := renderScript(p)

	cmd := exec.CommandContext(ctx, z.path, "-in", "-smt2")
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	z.log.Debug().Str("bin", z.path).Int("vars", len(p.Names)).Int("asserts", len(p.Constraints)).Msg("running z3")
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Unknown, nil, fmt.Errorf("z3 cancelled: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Unknown, nil, fmt.Errorf("run z3: %w", err)
	}

	res, vals, perr := parseZ3Output(stdout.String(), len(p.Names))
	if perr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return Unknown, nil, fmt.Errorf("z3 output: %w (%s)", perr, msg)
	}
	return res, vals, nil
}

func smtSymbol(id int) string { return "v" + strconv.Itoa(id) }

// renderScript writes p as a QF_NRA script ending in check-sat and get-value.
func renderScript(p *Problem) string {
	var b strings.Builder
	b.WriteString("(set-logic QF_NRA)\n")
	for i, name := range p.Names {
		fmt.Fprintf(&b, "(declare-const %s Real) ; %s\n", smtSymbol(i), name)
	}
	for _, c := range p.Constraints {
		fmt.Fprintf(&b, "(assert (= %s 0.0))\n", smtPoly(c.residual()))
	}
	b.WriteString("(check-sat)\n")
	if len(p.Names) > 0 {
		syms := make([]string, len(p.Names))
		for i := range p.Names {
			syms[i] = smtSymbol(i)
		}
		fmt.Fprintf(&b, "(get-value (%s))\n", strings.Join(syms, " "))
	}
	return b.String()
}

func smtPoly(p poly) string {
	if p.isZero() {
		return "0.0"
	}
	terms := p.sortedTerms()
	parts := make([]string, len(terms))
	for i, t := range terms {
		if len(t.vars) == 0 {
			parts[i] = smtRat(t.coef)
			continue
		}
		factors := make([]string, 0, len(t.vars)+1)
		factors = append(factors, smtRat(t.coef))
		for _, v := range t.vars {
			factors = append(factors, smtSymbol(v))
		}
		parts[i] = "(* " + strings.Join(factors, " ") + ")"
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(+ " + strings.Join(parts, " ") + ")"
}

// parseZ3Output reads the check-sat answer and, when sat, the get-value list.
func parseZ3Output(out string, n int) (Result, []*big.Rat, error) {
	exprs, err := parseSexprs(out)
	if err != nil {
		return Unknown, nil, err
	}
	if len(exprs) == 0 || exprs[0].isList {
		return Unknown, nil, errors.New("missing check-sat answer")
	}
	switch exprs[0].atom {
	case "unsat":
		return Unsat, nil, nil
	case "unknown":
		return Unknown, nil, nil
	case "sat":
	default:
		return Unknown, nil, fmt.Errorf("unexpected answer %q", exprs[0].atom)
	}
	if n == 0 {
		return Sat, nil, nil
	}
	if len(exprs) < 2 || !exprs[1].isList {
		return Unknown, nil, errors.New("missing get-value list")
	}

	vals := make([]*big.Rat, n)
	for _, pair := range exprs[1].list {
		if !pair.isList || len(pair.list) != 2 || pair.list[0].isList {
			return Unknown, nil, fmt.Errorf("malformed binding %s", pair)
		}
		id, err := strconv.Atoi(strings.TrimPrefix(pair.list[0].atom, "v"))
		if err != nil || id < 0 || id >= n {
			return Unknown, nil, fmt.Errorf("unknown symbol %s", pair.list[0])
		}
		v, err := ratValue(pair.list[1])
		if err != nil {
			return Unknown, nil, fmt.Errorf("value of %s: %w", pair.list[0], err)
		}
		vals[id] = v
	}
	for i, v := range vals {
		if v == nil {
			return Unknown, nil, fmt.Errorf("no value for %s", smtSymbol(i))
		}
	}
	return Sat, vals, nil
}
