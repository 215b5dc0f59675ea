package hail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hailstorm/internal/hail"
)

func TestCountCrossingsExample(t *testing.T) {
	n := hail.CountCrossings(exampleStones(t), hail.Area{Min: 7, Max: 27})
	assert.Equal(t, 2, n)
}

func TestCrossXY(t *testing.T) {
	stones := exampleStones(t)

	c, ok := hail.CrossXY(stones[0], stones[1])
	require.True(t, ok)
	assert.Equal(t, "43/3", c.X.RatString())
	assert.Equal(t, "46/3", c.Y.RatString())
	assert.Equal(t, "7/3", c.T1.RatString())
	assert.Equal(t, "11/3", c.T2.RatString())

	// 18, 19 @ -1, -1 and 20, 25 @ -2, -2 are parallel.
	_, ok = hail.CrossXY(stones[1], stones[2])
	assert.False(t, ok)
}

func TestCountCrossingsSkipsPast(t *testing.T) {
	// The first stone already passed the crossing point at (0, 0).
	stones := []hail.Hailstone{
		{Pos: hail.Vec3{5, 0, 0}, Vel: hail.Vec3{1, 0, 0}},
		{Pos: hail.Vec3{0, -5, 0}, Vel: hail.Vec3{0, 1, 0}},
	}
	assert.Equal(t, 0, hail.CountCrossings(stones, hail.Area{Min: -10, Max: 10}))

	stones[0].Vel = hail.Vec3{-1, 0, 0}
	assert.Equal(t, 1, hail.CountCrossings(stones, hail.Area{Min: -10, Max: 10}))
	assert.Equal(t, 0, hail.CountCrossings(stones, hail.Area{Min: 1, Max: 10}))
}
