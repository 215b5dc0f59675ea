package hail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hailstorm/internal/hail"
)

const example = `19, 13, 30 @ -2,  1, -2
18, 19, 22 @ -1, -1, -2
20, 25, 34 @ -2, -2, -4
12, 31, 28 @ -1, -2, -1
20, 19, 15 @  1, -5, -3
`

func exampleStones(t *testing.T) []hail.Hailstone {
	t.Helper()
	stones, err := hail.ParseString(example)
	require.NoError(t, err)
	require.Len(t, stones, 5)
	return stones
}

func TestParseLine(t *testing.T) {
	h, err := hail.ParseLine("20, 19, 15 @  1, -5, -3")
	require.NoError(t, err)
	assert.Equal(t, hail.Vec3{20, 19, 15}, h.Pos)
	assert.Equal(t, hail.Vec3{1, -5, -3}, h.Vel)
}

func TestParseLineWithoutSpaces(t *testing.T) {
	h, err := hail.ParseLine("\t246694783951603,201349632539530,307741668306846@7,-63,-62 ")
	require.NoError(t, err)
	assert.Equal(t, hail.Vec3{246694783951603, 201349632539530, 307741668306846}, h.Pos)
	assert.Equal(t, hail.Vec3{7, -63, -62}, h.Vel)
}

func TestParseRoundTrip(t *testing.T) {
	for _, h := range exampleStones(t) {
		again, err := hail.ParseLine(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, again)
	}
	assert.Equal(t, "19, 13, 30 @ -2, 1, -2", exampleStones(t)[0].String())
}

func TestParseLineRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"missing at":        "19, 13, 30, -2, 1, -2",
		"two ats":           "19, 13, 30 @ -2, 1 @ -2",
		"two components":    "19, 13 @ -2, 1, -2",
		"four components":   "19, 13, 30, 4 @ -2, 1, -2",
		"short velocity":    "19, 13, 30 @ -2, 1",
		"not a number":      "19, x, 30 @ -2, 1, -2",
		"empty component":   "19,, 30 @ -2, 1, -2",
		"fractional number": "19.5, 13, 30 @ -2, 1, -2",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := hail.ParseLine(line)
			assert.ErrorIs(t, err, hail.ErrMalformed)
		})
	}
}

func TestParseReportsLineNumber(t *testing.T) {
	_, err := hail.ParseString("19, 13, 30 @ -2, 1, -2\n\n18, 19 @ -1, -1, -2\n")
	require.ErrorIs(t, err, hail.ErrMalformed)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseSkipsBlankLines(t *testing.T) {
	stones, err := hail.ParseString("\n19, 13, 30 @ -2, 1, -2\n   \n")
	require.NoError(t, err)
	assert.Len(t, stones, 1)
}
