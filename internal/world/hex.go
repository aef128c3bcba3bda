package world

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open grasslands
	TerrainForest                  // Dense woodland
	TerrainMountain                // Rocky peaks, impassable on foot
	TerrainOcean                   // Deep waters, ships only
	TerrainDesert                  // Sandy dunes
	TerrainSwamp                   // Murky wetlands
	TerrainTundra                  // Frozen wasteland
	TerrainVolcanic                // Ash fields and lava flows
	TerrainCity                    // Settlement hex
	TerrainRoad                    // Maintained trade road
)

var terrainNames = [...]string{
	TerrainPlains:   "plains",
	TerrainForest:   "forest",
	TerrainMountain: "mountain",
	TerrainOcean:    "ocean",
	TerrainDesert:   "desert",
	TerrainSwamp:    "swamp",
	TerrainTundra:   "tundra",
	TerrainVolcanic: "volcanic",
	TerrainCity:     "city",
	TerrainRoad:     "road",
}

// String returns the lowercase terrain name.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "unknown"
}

// ParseTerrain maps a name back to its terrain value.
func ParseTerrain(name string) (Terrain, bool) {
	for i, n := range terrainNames {
		if n == name {
			return Terrain(i), true
		}
	}
	return 0, false
}

// Terrains lists every terrain value, in declaration order.
func Terrains() []Terrain {
	all := make([]Terrain, len(terrainNames))
	for i := range terrainNames {
		all[i] = Terrain(i)
	}
	return all
}

// GenStatus tracks the description-generation lifecycle of a hex.
type GenStatus uint8

const (
	GenNotRequested GenStatus = iota
	GenPending
	GenDone
	GenFailed
)

// String returns the status name used in the API and save files.
func (g GenStatus) String() string {
	switch g {
	case GenNotRequested:
		return "not_requested"
	case GenPending:
		return "pending"
	case GenDone:
		return "done"
	case GenFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Hex is a snapshot of a single tile. Values returned by Map are copies;
// mutation goes through Map methods only.
type Hex struct {
	Coord       HexCoord  `json:"coord"`
	Terrain     Terrain   `json:"terrain"`
	Explored    bool      `json:"explored"`
	Description string    `json:"description,omitempty"`
	Status      GenStatus `json:"status"`

	// Settlement name for city hexes; empty elsewhere.
	Settlement string `json:"settlement,omitempty"`
	// Port marks a city reachable by ship.
	Port bool `json:"port,omitempty"`
}
