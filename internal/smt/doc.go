// Package smt is a small constraint solver for equalities between
// polynomial expressions over real-valued unknowns.
//
// A Solver collects declarations (Real) and assertions (Assert), then Check
// hands them to a Backend and, on Sat, exposes the assignment through Model.
// Two backends are provided:
//
//   - Engine decides systems exactly over math/big rationals in-process.
//   - Z3 renders the problem as SMT-LIB2 and runs the z3 binary.
//
// Callers own their Solver; there is no package-level state.
package smt
