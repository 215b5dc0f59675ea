// Package hail models hailstones and the rock thrown to hit all of them.
package hail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrMalformed is returned for a line that is not "px, py, pz @ vx, vy, vz".
var ErrMalformed = errors.New("malformed hailstone")

// Vec3 is an integer vector indexed by axis: 0 = x, 1 = y, 2 = z.
type Vec3 [3]int64

func (v Vec3) String() string {
	return strings.Join(lo.Map(v[:], func(n int64, _ int) string {
		return strconv.FormatInt(n, 10)
	}), ", ")
}

// Hailstone is a particle at Pos at time zero moving by Vel per unit of time.
type Hailstone struct {
	Pos Vec3
	Vel Vec3
}

// String renders h in the input format.
func (h Hailstone) String() string {
	return h.Pos.String() + " @ " + h.Vel.String()
}

// ParseLine parses one "px, py, pz @ vx, vy, vz" line. Whitespace is ignored.
func ParseLine(line string) (Hailstone, error) {
	compact := strings.Join(strings.Fields(line), "")
	parts := strings.Split(compact, "@")
	if len(parts) != 2 {
		return Hailstone{}, fmt.Errorf("%w: want one '@', got %q", ErrMalformed, line)
	}
	pos, err := parseVec3(parts[0])
	if err != nil {
		return Hailstone{}, fmt.Errorf("%w: position: %v", ErrMalformed, err)
	}
	vel, err := parseVec3(parts[1])
	if err != nil {
		return Hailstone{}, fmt.Errorf("%w: velocity: %v", ErrMalformed, err)
	}
	return Hailstone{Pos: pos, Vel: vel}, nil
}

func parseVec3(s string) (Vec3, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return Vec3{}, fmt.Errorf("want 3 components, got %d in %q", len(fields), s)
	}
	var v Vec3
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return Vec3{}, err
		}
		v[i] = n
	}
	return v, nil
}

// Parse reads one hailstone per line. Blank lines are skipped; any other
// malformed line fails the whole parse.
func Parse(r io.Reader) ([]Hailstone, error) {
	var out []Hailstone
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		h, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, h)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read hailstones: %w", err)
	}
	return out, nil
}

// ParseString is Parse over an in-memory input.
func ParseString(s string) ([]Hailstone, error) {
	return Parse(strings.NewReader(s))
}
