package travel

import "github.com/talgya/hexcrawl/internal/world"

// Base movement-point multipliers per terrain for land travel.
// Mountain and Ocean are absent: impassable without special transport.
var baseCost = map[world.Terrain]float64{
	world.TerrainPlains:   1.0,
	world.TerrainRoad:     0.75,
	world.TerrainForest:   1.5,
	world.TerrainDesert:   1.5,
	world.TerrainSwamp:    2.0,
	world.TerrainTundra:   1.5,
	world.TerrainVolcanic: 2.0,
	world.TerrainCity:     1.0,
}

// airshipCost is flat everywhere: the doubled speed halves the cost and
// no terrain slows flight.
const airshipCost = 0.5

// MovementCost returns the points required to enter a hex of the given
// terrain with the given transport, and whether the hex is passable at
// all. port marks a city hex with harbor access for ships.
func MovementCost(t world.Terrain, tr Transport, port bool) (float64, bool) {
	switch tr {
	case Airship:
		// Flight ignores terrain entirely. Map boundaries are enforced
		// by the engine, not here.
		return airshipCost, true

	case Boat:
		switch {
		case t == world.TerrainOcean:
			return 1.0, true
		case t == world.TerrainCity && port:
			return 1.0, true
		default:
			return 0, false
		}

	case OnFoot, Horse:
		cost, ok := baseCost[t]
		if !ok {
			return 0, false
		}
		return cost, true

	default:
		return 0, false
	}
}
