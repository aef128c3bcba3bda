package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighbors(t *testing.T) {
	for _, c := range []HexCoord{Cube(0, 0), Cube(3, -7), Cube(-12, 5)} {
		ns := c.Neighbors()
		require.Len(t, ns, 6)

		seen := make(map[HexCoord]bool)
		for _, n := range ns {
			assert.Equal(t, 1, Distance(c, n), "neighbor %v of %v", n, c)
			assert.NotEqual(t, c, n)
			assert.Zero(t, n.Q+n.R+n.S, "cube invariant")
			seen[n] = true
		}
		assert.Len(t, seen, 6, "neighbors must be distinct")
	}
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance(Cube(2, -1), Cube(2, -1)))
	assert.Equal(t, 1, Distance(Cube(0, 0), Cube(1, 0)))
	assert.Equal(t, 7, Distance(Cube(0, 0), Cube(7, -3)))
	assert.Equal(t, Distance(Cube(-2, 5), Cube(3, -3)), Distance(Cube(3, -3), Cube(-2, 5)))
}

func TestAtPanicsOnBadCoordinate(t *testing.T) {
	assert.Panics(t, func() { At(1, 1, 1) })
	assert.NotPanics(t, func() { At(1, 0, -1) })
}

func TestRing(t *testing.T) {
	center := Cube(2, -3)
	for radius := 1; radius <= 4; radius++ {
		var got []HexCoord
		for c := range Ring(center, radius) {
			got = append(got, c)
		}
		require.Len(t, got, 6*radius, "radius %d", radius)
		for _, c := range got {
			assert.Equal(t, radius, Distance(center, c))
		}
	}
}

func TestRingRestartable(t *testing.T) {
	seq := Ring(Cube(0, 0), 2)
	var first, second []HexCoord
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second)
}

func TestRingZeroRadius(t *testing.T) {
	var got []HexCoord
	for c := range Ring(Cube(1, 1), 0) {
		got = append(got, c)
	}
	assert.Equal(t, []HexCoord{Cube(1, 1)}, got)
}

func TestRange(t *testing.T) {
	var got []HexCoord
	for c := range Range(Cube(0, 0), 2) {
		got = append(got, c)
	}
	// 1 + 6 + 12 hexes within radius 2.
	require.Len(t, got, 19)
	for _, c := range got {
		assert.LessOrEqual(t, Distance(Cube(0, 0), c), 2)
	}
}

func TestLine(t *testing.T) {
	a, b := Cube(0, 0), Cube(4, -2)
	path := Line(a, b)
	require.Len(t, path, Distance(a, b)+1)
	assert.Equal(t, a, path[0])
	assert.Equal(t, b, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		assert.Equal(t, 1, Distance(path[i-1], path[i]), "line steps are adjacent")
	}

	assert.Equal(t, []HexCoord{a}, Line(a, a))
}
