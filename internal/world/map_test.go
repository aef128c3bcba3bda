package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMap(radius int) *Map {
	return NewMap(&FixedSource{
		Tiles: map[HexCoord]HexSeed{
			Cube(0, 0): {Terrain: TerrainPlains},
			Cube(1, 0): {Terrain: TerrainForest},
			Cube(0, 1): {Terrain: TerrainCity, Settlement: "Ironford", Port: true},
		},
		Default: TerrainPlains,
	}, radius)
}

func TestRevealIdempotent(t *testing.T) {
	m := fixedMap(0)

	h1, ok := m.Reveal(Cube(1, 0))
	require.True(t, ok)
	assert.Equal(t, TerrainForest, h1.Terrain)
	assert.True(t, h1.Explored)

	h2, ok := m.Reveal(Cube(1, 0))
	require.True(t, ok)
	assert.Equal(t, h1.Terrain, h2.Terrain, "second reveal is a no-op on terrain")
	assert.True(t, h2.Explored)
	assert.Equal(t, 1, m.HexCount())
}

func TestRevealOutOfBounds(t *testing.T) {
	m := fixedMap(2)

	_, ok := m.Reveal(Cube(3, 0))
	assert.False(t, ok)
	assert.Equal(t, 0, m.HexCount())

	_, ok = m.Reveal(Cube(2, 0))
	assert.True(t, ok)
}

func TestGetAbsentIsNotAnError(t *testing.T) {
	m := fixedMap(0)
	_, ok := m.Get(Cube(5, 5))
	assert.False(t, ok)
	assert.Equal(t, GenNotRequested, m.StatusOf(Cube(5, 5)))
}

func TestPeekDoesNotMaterialize(t *testing.T) {
	m := fixedMap(0)
	terrain, port := m.Peek(Cube(0, 1))
	assert.Equal(t, TerrainCity, terrain)
	assert.True(t, port)
	assert.Equal(t, 0, m.HexCount())
}

func TestSetDescription(t *testing.T) {
	m := fixedMap(0)

	// Writes to a missing hex are dropped.
	assert.False(t, m.SetDescription(Cube(0, 0), "ghost", GenDone))

	m.Reveal(Cube(0, 0))
	assert.True(t, m.SetDescription(Cube(0, 0), "rolling grass", GenDone))

	h, _ := m.Get(Cube(0, 0))
	assert.Equal(t, "rolling grass", h.Description)
	assert.Equal(t, GenDone, h.Status)

	// A Done hex is never downgraded.
	assert.False(t, m.SetDescription(Cube(0, 0), "other text", GenFailed))
	h, _ = m.Get(Cube(0, 0))
	assert.Equal(t, "rolling grass", h.Description)
	assert.Equal(t, GenDone, h.Status)
}

func TestMarkPending(t *testing.T) {
	m := fixedMap(0)
	m.Reveal(Cube(0, 0))

	m.MarkPending(Cube(0, 0))
	assert.Equal(t, GenPending, m.StatusOf(Cube(0, 0)))

	m.SetDescription(Cube(0, 0), "done", GenDone)
	m.MarkPending(Cube(0, 0))
	assert.Equal(t, GenDone, m.StatusOf(Cube(0, 0)), "done hexes stay done")
}

func TestAllExploredOrderedAndRestartable(t *testing.T) {
	m := fixedMap(0)
	for _, c := range []HexCoord{Cube(2, 0), Cube(-1, 1), Cube(0, 0), Cube(2, -2)} {
		m.Reveal(c)
	}

	seq := m.AllExplored()
	var first []HexCoord
	for h := range seq {
		first = append(first, h.Coord)
	}
	require.Len(t, first, 4)
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		less := prev.Q < cur.Q || (prev.Q == cur.Q && prev.R < cur.R)
		assert.True(t, less, "explored hexes in coordinate order")
	}

	var second []HexCoord
	for h := range seq {
		second = append(second, h.Coord)
	}
	assert.Equal(t, first, second)
}

func TestSeededSourceDeterministic(t *testing.T) {
	a := NewSeededSource(DefaultGenConfig(12345))
	b := NewSeededSource(DefaultGenConfig(12345))
	c := NewSeededSource(DefaultGenConfig(54321))

	sample := []HexCoord{Cube(0, 0), Cube(10, -4), Cube(-25, 13), Cube(40, 2)}
	identical := true
	for _, coord := range sample {
		sa, sb := a.Generate(coord), b.Generate(coord)
		assert.Equal(t, sa, sb, "same seed reproduces %v", coord)
		if a.Generate(coord) != c.Generate(coord) {
			identical = false
		}
	}
	// Spot check across a wider area for the different seed.
	for q := -15; q <= 15 && identical; q += 3 {
		for r := -15; r <= 15 && identical; r += 3 {
			if a.Generate(Cube(q, r)) != c.Generate(Cube(q, r)) {
				identical = false
			}
		}
	}
	assert.False(t, identical, "different seeds should diverge somewhere")
}

func TestSeededSourceCityNames(t *testing.T) {
	src := NewSeededSource(DefaultGenConfig(7))
	found := false
	for q := -30; q <= 30 && !found; q++ {
		for r := -30; r <= 30 && !found; r++ {
			seed := src.Generate(Cube(q, r))
			if seed.Terrain == TerrainCity {
				assert.NotEmpty(t, seed.Settlement, "cities carry a settlement name")
				found = true
			}
		}
	}
	// A 61x61 area without a single city would mean the civ threshold
	// is effectively unreachable.
	assert.True(t, found, "expected at least one city in the sample area")
}

func TestFixedSourceNeverRegenerates(t *testing.T) {
	m := fixedMap(0)
	m.Reveal(Cube(0, 1))
	m.SetDescription(Cube(0, 1), "harbor town", GenDone)

	h, _ := m.Reveal(Cube(0, 1))
	assert.Equal(t, "Ironford", h.Settlement)
	assert.Equal(t, "harbor town", h.Description)
}
