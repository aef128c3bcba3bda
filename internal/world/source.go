// Terrain sources: where a hex's terrain comes from when travel first
// reveals it. The seeded source derives terrain from layered simplex
// noise so identical seeds reproduce identical maps; the fixed source
// serves a pre-authored table.
package world

import (
	"hash/fnv"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// HexSeed is the immutable part of a freshly created hex.
type HexSeed struct {
	Terrain    Terrain
	Settlement string
	Port       bool
}

// TerrainSource produces the terrain for a coordinate the first time it
// is revealed. Implementations must be pure: the same coordinate always
// yields the same seed.
type TerrainSource interface {
	Generate(c HexCoord) HexSeed
}

// GenConfig holds seeded-source tuning parameters.
type GenConfig struct {
	Seed        int64   `yaml:"seed"`
	SeaLevel    float64 `yaml:"sea_level"`     // Elevation threshold for ocean
	MountainLvl float64 `yaml:"mountain_lvl"`  // Elevation threshold for mountains
	CityLvl     float64 `yaml:"city_lvl"`      // Civilization threshold for cities
	RoadLvl     float64 `yaml:"road_lvl"`      // Civilization threshold for roads
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig(seed int64) GenConfig {
	return GenConfig{
		Seed:        seed,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
		CityLvl:     0.93,
		RoadLvl:     0.86,
	}
}

// SeededSource derives terrain from layered simplex noise. Evaluation is
// coordinate-pure, so an unbounded map can be generated lazily, one hex
// at a time, in any order.
type SeededSource struct {
	cfg  GenConfig
	elev opensimplex.Noise
	rain opensimplex.Noise
	temp opensimplex.Noise
	civ  opensimplex.Noise
}

// NewSeededSource builds a source for the given configuration.
func NewSeededSource(cfg GenConfig) *SeededSource {
	return &SeededSource{
		cfg:  cfg,
		elev: opensimplex.NewNormalized(cfg.Seed),
		rain: opensimplex.NewNormalized(cfg.Seed + 1),
		temp: opensimplex.NewNormalized(cfg.Seed + 2),
		civ:  opensimplex.NewNormalized(cfg.Seed + 3),
	}
}

// Generate derives the hex seed for a coordinate.
func (s *SeededSource) Generate(c HexCoord) HexSeed {
	elev, rain, temp := s.climate(c)
	civ := octaveNoise(s.civ, hexToPlane(c), 2, 0.10, 0.5)

	terrain := deriveTerrain(elev, rain, temp, s.cfg)

	// Civilization overlays: cities on noise peaks, roads in the band
	// just below, both only on habitable land.
	if habitable(terrain) {
		switch {
		case civ >= s.cfg.CityLvl:
			name := settlementName(c)
			return HexSeed{
				Terrain:    TerrainCity,
				Settlement: name,
				Port:       s.nearOcean(c),
			}
		case civ >= s.cfg.RoadLvl:
			return HexSeed{Terrain: TerrainRoad}
		}
	}

	return HexSeed{Terrain: terrain}
}

// climate samples the three environmental layers for a coordinate.
func (s *SeededSource) climate(c HexCoord) (elev, rain, temp float64) {
	p := hexToPlane(c)
	elev = octaveNoise(s.elev, p, 4, 0.08, 0.5)
	rain = octaveNoise(s.rain, p, 3, 0.06, 0.5)
	temp = octaveNoise(s.temp, p, 3, 0.05, 0.5)
	// Higher ground runs colder.
	temp = temp*0.7 + (1.0-elev)*0.3
	return elev, rain, temp
}

// nearOcean reports whether any neighbor would generate as ocean.
func (s *SeededSource) nearOcean(c HexCoord) bool {
	for _, n := range c.Neighbors() {
		elev, _, _ := s.climate(n)
		if elev < s.cfg.SeaLevel {
			return true
		}
	}
	return false
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		return TerrainOcean
	}
	if elev > cfg.MountainLvl {
		if temp > 0.62 {
			return TerrainVolcanic
		}
		return TerrainMountain
	}
	if temp < 0.25 {
		return TerrainTundra
	}
	if rain < 0.25 && temp > 0.5 {
		return TerrainDesert
	}
	if rain > 0.7 && elev < 0.45 {
		return TerrainSwamp
	}
	if rain > 0.45 && elev > 0.45 {
		return TerrainForest
	}
	return TerrainPlains
}

func habitable(t Terrain) bool {
	switch t {
	case TerrainPlains, TerrainForest, TerrainDesert, TerrainTundra:
		return true
	default:
		return false
	}
}

// hexToPlane converts cube coords to continuous space for noise sampling.
// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2.
func hexToPlane(c HexCoord) [2]float64 {
	x := float64(c.Q) + float64(c.R)*0.5
	y := float64(c.R) * math.Sqrt(3.0) / 2.0
	return [2]float64{x, y}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, p [2]float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(p[0]*frequency, p[1]*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

var namePrefixes = []string{
	"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
	"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
	"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
	"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
}

var nameSuffixes = []string{
	"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
	"stead", "wood", "field", "dale", "crest", "vale", "port",
	"town", "bury", "marsh", "well", "brook", "cliff", "moor",
	"ridge", "watch", "fall", "rest", "point", "reach", "helm",
}

// settlementName combines syllables deterministically from the
// coordinate, so a city keeps its name across sessions.
func settlementName(c HexCoord) string {
	h := fnv.New64a()
	var buf [8]byte
	putInt := func(v int) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	putInt(c.Q)
	putInt(c.R)
	sum := h.Sum64()
	return namePrefixes[sum%uint64(len(namePrefixes))] +
		nameSuffixes[(sum/uint64(len(namePrefixes)))%uint64(len(nameSuffixes))]
}

// FixedSource serves a pre-authored map. Coordinates missing from the
// table fall back to a default terrain; authored entries are never
// regenerated.
type FixedSource struct {
	Tiles   map[HexCoord]HexSeed
	Default Terrain
}

// Generate looks up the authored tile for the coordinate.
func (f *FixedSource) Generate(c HexCoord) HexSeed {
	if seed, ok := f.Tiles[c]; ok {
		return seed
	}
	return HexSeed{Terrain: f.Default}
}
