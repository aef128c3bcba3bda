package gen

import (
	"hash/fnv"

	"github.com/talgya/hexcrawl/internal/world"
)

// Fallback prose per terrain, used when the external generator is
// absent or its retry budget is spent. Gameplay never waits on these.
var fallbacks = map[world.Terrain][]string{
	world.TerrainPlains: {
		"Endless grasslands ripple in the wind like a golden sea. The horizon seems infinitely distant.",
		"The open plains stretch to the horizon under vast skies. Wild flowers dot the landscape.",
	},
	world.TerrainForest: {
		"Ancient trees tower overhead, their branches creating a verdant canopy. The air is thick with the scent of moss and decay.",
		"The forest whispers with unseen life and hidden paths. Shadows dance between the massive trunks.",
	},
	world.TerrainMountain: {
		"Jagged peaks pierce the clouds, eternal and imposing. The air grows thin and cold.",
		"Rocky cliffs and steep paths challenge any traveler. Eagles circle overhead.",
	},
	world.TerrainOcean: {
		"Deep waters reflect the sky, hiding depths unknown. Gentle waves lap at unseen shores.",
		"The water's surface conceals aquatic mysteries. Strange ripples disturb the calm.",
	},
	world.TerrainDesert: {
		"Sand dunes shift endlessly under the scorching sun. Mirages dance on the horizon.",
		"The desert's harsh beauty masks hidden oases. Wind-carved rocks create natural sculptures.",
	},
	world.TerrainSwamp: {
		"Murky waters and twisted trees create an eerie landscape. Strange bubbles rise from the depths.",
		"The swamp bubbles with mysterious life and decay. Fog drifts between gnarled roots.",
	},
	world.TerrainTundra: {
		"Frozen wastes stretch endlessly, beautiful and desolate. The wind cuts like ice.",
		"Ice and snow dominate this harsh, unforgiving land. Aurora lights dance overhead.",
	},
	world.TerrainVolcanic: {
		"Blackened earth smolders underfoot while distant vents belch ash into a bruised sky.",
		"Rivers of cooled lava twist between cinder cones. The ground hums with buried heat.",
	},
	world.TerrainCity: {
		"Walls and watchtowers rise above a press of rooftops. Smoke from a hundred hearths hangs over the streets.",
		"Market cries and temple bells drift from behind the gates. Travelers of every stripe crowd the roads.",
	},
	world.TerrainRoad: {
		"A well-worn trade road runs straight and true, its milestones carved by hands long dead.",
		"Packed earth and old cobbles mark a route merchants have trusted for generations.",
	},
}

// Fallback returns deterministic placeholder text for a hex: the same
// coordinate always picks the same variant for its terrain, and every
// terrain has at least one non-empty entry.
func Fallback(t world.Terrain, c world.HexCoord) string {
	variants := fallbacks[t]
	if len(variants) == 0 {
		return "An unexplored region awaits discovery."
	}
	return variants[coordHash(c)%uint64(len(variants))]
}

func coordHash(c world.HexCoord) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(uint64(c.Q) >> (8 * i))
		buf[8+i] = byte(uint64(c.R) >> (8 * i))
	}
	h.Write(buf[:])
	return h.Sum64()
}
