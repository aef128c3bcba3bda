package travel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hexcrawl/internal/world"
)

func TestMovementCostTable(t *testing.T) {
	tests := []struct {
		terrain  world.Terrain
		tr       Transport
		port     bool
		cost     float64
		passable bool
	}{
		{world.TerrainPlains, OnFoot, false, 1.0, true},
		{world.TerrainRoad, OnFoot, false, 0.75, true},
		{world.TerrainForest, OnFoot, false, 1.5, true},
		{world.TerrainDesert, OnFoot, false, 1.5, true},
		{world.TerrainSwamp, OnFoot, false, 2.0, true},
		{world.TerrainTundra, OnFoot, false, 1.5, true},
		{world.TerrainVolcanic, OnFoot, false, 2.0, true},
		{world.TerrainCity, OnFoot, false, 1.0, true},
		{world.TerrainMountain, OnFoot, false, 0, false},
		{world.TerrainOcean, OnFoot, false, 0, false},

		{world.TerrainPlains, Horse, false, 1.0, true},
		{world.TerrainMountain, Horse, false, 0, false},
		{world.TerrainOcean, Horse, false, 0, false},

		{world.TerrainOcean, Boat, false, 1.0, true},
		{world.TerrainCity, Boat, true, 1.0, true},
		{world.TerrainCity, Boat, false, 0, false},
		{world.TerrainPlains, Boat, false, 0, false},
		{world.TerrainSwamp, Boat, false, 0, false},

		{world.TerrainMountain, Airship, false, 0.5, true},
		{world.TerrainOcean, Airship, false, 0.5, true},
		{world.TerrainSwamp, Airship, false, 0.5, true},
	}

	for _, tc := range tests {
		cost, passable := MovementCost(tc.terrain, tc.tr, tc.port)
		assert.Equal(t, tc.passable, passable, "%s by %s", tc.terrain, tc.tr)
		if tc.passable {
			assert.Equal(t, tc.cost, cost, "%s by %s", tc.terrain, tc.tr)
			assert.Positive(t, cost)
		}
	}
}

func TestMovementCostAlwaysPositiveOrImpassable(t *testing.T) {
	for _, terrain := range world.Terrains() {
		for _, tr := range []Transport{OnFoot, Horse, Boat, Airship} {
			for _, port := range []bool{false, true} {
				cost, passable := MovementCost(terrain, tr, port)
				if passable {
					assert.Positive(t, cost, "%s by %s", terrain, tr)
				}
			}
		}
	}
}
