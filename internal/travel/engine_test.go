package travel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexcrawl/internal/world"
)

// recorder collects scout submissions for assertions.
type recorder struct {
	coords []world.HexCoord
}

func (r *recorder) Submit(c world.HexCoord, t world.Terrain) {
	r.coords = append(r.coords, c)
}

func testMap(tiles map[world.HexCoord]world.HexSeed) *world.Map {
	return world.NewMap(&world.FixedSource{
		Tiles:   tiles,
		Default: world.TerrainPlains,
	}, 0)
}

func newTestEngine(t *testing.T, tiles map[world.HexCoord]world.HexSeed) (*Engine, *Party, *world.Map, *recorder) {
	t.Helper()
	m := testMap(tiles)
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric", "Mira")
	scout := &recorder{}
	e := NewEngine(DefaultConfig(), m, party, scout, rand.New(rand.NewSource(1)))
	return e, party, m, scout
}

func TestMoveIntoForest(t *testing.T) {
	target := world.Cube(1, 0)
	e, party, m, scout := newTestEngine(t, map[world.HexCoord]world.HexSeed{
		target: {Terrain: world.TerrainForest},
	})
	require.Equal(t, 8.0, party.Movement, "normal pace grants 8 points")

	require.NoError(t, e.AttemptMove(target))
	assert.Equal(t, 6.5, party.Movement)
	assert.Equal(t, target, party.Position)
	assert.Equal(t, StatePlanning, e.State())

	// Vision radius 1: the target and all six neighbors are explored.
	h, ok := m.Get(target)
	require.True(t, ok)
	assert.True(t, h.Explored)
	for _, n := range target.Neighbors() {
		nh, ok := m.Get(n)
		require.True(t, ok, "neighbor %v revealed", n)
		assert.True(t, nh.Explored)
	}
	assert.NotEmpty(t, scout.coords, "revealed hexes handed to the scout")
}

func TestMoveNonAdjacentUnreachable(t *testing.T) {
	e, party, _, _ := newTestEngine(t, nil)
	err := e.AttemptMove(world.Cube(2, 0))
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, world.Cube(0, 0), party.Position)
	assert.Equal(t, 8.0, party.Movement)
}

func TestHorseCannotEnterMountain(t *testing.T) {
	target := world.Cube(1, 0)
	m := testMap(map[world.HexCoord]world.HexSeed{
		target: {Terrain: world.TerrainMountain},
	})
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric")
	party.Transport = Horse
	e := NewEngine(DefaultConfig(), m, party, nil, rand.New(rand.NewSource(1)))

	err := e.AttemptMove(target)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, world.Cube(0, 0), party.Position)
	assert.Equal(t, 8.0, party.Movement, "failed move must not mutate state")
	_, exists := m.Get(target)
	assert.False(t, exists, "failed move must not reveal the target")
}

func TestAirshipIgnoresTerrainButNotBounds(t *testing.T) {
	ocean := world.Cube(1, 0)
	m := world.NewMap(&world.FixedSource{
		Tiles:   map[world.HexCoord]world.HexSeed{ocean: {Terrain: world.TerrainOcean}},
		Default: world.TerrainPlains,
	}, 1)
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric")
	party.Transport = Airship
	e := NewEngine(DefaultConfig(), m, party, nil, rand.New(rand.NewSource(1)))

	require.NoError(t, e.AttemptMove(ocean))
	assert.Equal(t, 7.5, party.Movement, "airship cost is 0.5 everywhere")

	// Beyond the bounded map edge even flight stops.
	err := e.AttemptMove(world.Cube(2, 0))
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestInsufficientMovement(t *testing.T) {
	target := world.Cube(1, 0)
	e, party, _, _ := newTestEngine(t, map[world.HexCoord]world.HexSeed{
		target: {Terrain: world.TerrainForest},
	})
	party.Movement = 1.0

	err := e.AttemptMove(target)
	assert.ErrorIs(t, err, ErrInsufficientMovement)
	assert.Equal(t, 1.0, party.Movement)
	assert.Equal(t, world.Cube(0, 0), party.Position)
}

func TestExactCostReachesResolving(t *testing.T) {
	target := world.Cube(1, 0)
	e, party, _, _ := newTestEngine(t, map[world.HexCoord]world.HexSeed{
		target: {Terrain: world.TerrainSwamp},
	})
	party.Movement = 2.0

	require.NoError(t, e.AttemptMove(target))
	assert.Zero(t, party.Movement)
	assert.Equal(t, StateResolving, e.State())
}

func TestChangePaceOnlyBeforeMoving(t *testing.T) {
	e, party, _, _ := newTestEngine(t, nil)

	require.NoError(t, e.ChangePace(PaceFast))
	assert.Equal(t, 10.0, party.Movement)
	require.NoError(t, e.ChangePace(PaceSlow))
	assert.Equal(t, 6.0, party.Movement)

	require.NoError(t, e.AttemptMove(world.Cube(1, 0)))
	assert.ErrorIs(t, e.ChangePace(PaceFast), ErrInvalidStateTransition)
	assert.Equal(t, PaceSlow, party.Pace)
}

func TestAdvanceDayNoopWhilePlanning(t *testing.T) {
	e, party, _, _ := newTestEngine(t, nil)
	e.AdvanceDay()
	assert.Zero(t, party.Day)
	assert.Equal(t, StatePlanning, e.State())
}

func TestAdvanceDayAfterResolving(t *testing.T) {
	target := world.Cube(1, 0)
	e, party, _, _ := newTestEngine(t, map[world.HexCoord]world.HexSeed{
		target: {Terrain: world.TerrainSwamp},
	})
	party.Movement = 2.0
	require.NoError(t, e.AttemptMove(target))
	require.Equal(t, StateResolving, e.State())

	e.AdvanceDay()
	assert.Equal(t, 1, party.Day)
	assert.Equal(t, 8.0, party.Movement)
	assert.Equal(t, StatePlanning, e.State())
}

func TestRestRestoresAndScouts(t *testing.T) {
	e, party, m, _ := newTestEngine(t, nil)
	require.NoError(t, e.AttemptMove(world.Cube(1, 0)))
	require.Equal(t, 7.0, party.Movement)

	require.NoError(t, e.Rest())
	assert.Equal(t, 8.0, party.Movement)
	assert.Equal(t, 1, party.Day)
	assert.Equal(t, 9.0, party.Supplies)

	// Rest reveals radius 2 around the party: 19 hexes.
	revealed := 0
	for c := range world.Range(party.Position, 2) {
		if h, ok := m.Get(c); ok && h.Explored {
			revealed++
		}
	}
	assert.Equal(t, 19, revealed)
}

func TestRestWithNothingToRecover(t *testing.T) {
	e, _, _, _ := newTestEngine(t, nil)
	assert.ErrorIs(t, e.Rest(), ErrInvalidStateTransition)
}

func TestForcedMarchGrantsMovement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MarchRisk = 0 // never tires
	m := testMap(nil)
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric")
	e := NewEngine(cfg, m, party, nil, rand.New(rand.NewSource(1)))

	require.NoError(t, e.ForcedMarch())
	assert.Equal(t, 9.0, party.Movement)
	assert.Zero(t, party.Exhaustion)
}

func TestForcedMarchExhaustionCapHalvesNextDay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MarchRisk = 1 // the check always fails
	m := testMap(nil)
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric")
	party.Exhaustion = cfg.ExhaustionCap - 1
	e := NewEngine(cfg, m, party, nil, rand.New(rand.NewSource(1)))

	require.NoError(t, e.ForcedMarch())
	assert.Equal(t, cfg.ExhaustionCap, party.Exhaustion)
	assert.Equal(t, StateExhausted, e.State())
	assert.True(t, party.Members[0].Condition.Has(CondExhausted))

	e.AdvanceDay()
	assert.Equal(t, 4.0, party.Movement, "halved while over the cap")
	assert.Equal(t, StateExhausted, e.State())
}

func TestRestClearsExhaustion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MarchRisk = 1
	m := testMap(nil)
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric")
	party.Exhaustion = cfg.ExhaustionCap - 1
	e := NewEngine(cfg, m, party, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, e.ForcedMarch())
	require.Equal(t, StateExhausted, e.State())

	require.NoError(t, e.Rest())
	assert.Equal(t, cfg.ExhaustionCap-1, party.Exhaustion)
	assert.Equal(t, StatePlanning, e.State())
	assert.Equal(t, 8.0, party.Movement, "back under the cap, full budget")
	assert.False(t, party.Members[0].Condition.Has(CondExhausted))
}

func TestChangeTransport(t *testing.T) {
	e, party, _, _ := newTestEngine(t, nil)
	require.NoError(t, e.ChangeTransport(Horse))
	assert.Equal(t, Horse, party.Transport)

	require.NoError(t, e.AttemptMove(world.Cube(1, 0)))
	assert.ErrorIs(t, e.ChangeTransport(Boat), ErrInvalidStateTransition)
}

func TestEngineFromSaveKeepsBudget(t *testing.T) {
	m := testMap(nil)
	m.Reveal(world.Cube(0, 0))
	party := NewParty("Aldric")
	party.Movement = 0
	party.Day = 4
	e := NewEngineFromSave(DefaultConfig(), m, party, StateResolving, nil, rand.New(rand.NewSource(1)))

	assert.Zero(t, party.Movement, "restored budget is not refilled")
	assert.Equal(t, StateResolving, e.State())
	e.AdvanceDay()
	assert.Equal(t, 5, party.Day)
	assert.Equal(t, 8.0, party.Movement)
}
