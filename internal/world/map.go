package world

import (
	"fmt"
	"iter"
	"slices"
	"sync"
)

// record is a stored hex plus the lock guarding its mutable fields.
// The per-hex lock keeps description writes atomic with respect to
// reads without serializing writes to different hexes.
type record struct {
	mu sync.RWMutex
	h  Hex
}

// Map owns the coordinate → hex mapping. Topology (hex creation) is
// guarded by the map lock; per-hex mutable state by the hex lock.
// Lock order is always map before record.
type Map struct {
	mu     sync.RWMutex
	hexes  map[HexCoord]*record
	source TerrainSource
	radius int // 0 = unbounded
}

// NewMap creates an empty map drawing terrain from source on reveal.
// A radius of 0 means unbounded extent; otherwise coordinates with
// max(|q|,|r|,|s|) > radius are outside the map.
func NewMap(source TerrainSource, radius int) *Map {
	return &Map{
		hexes:  make(map[HexCoord]*record),
		source: source,
		radius: radius,
	}
}

// InBounds reports whether the coordinate lies within the map extent.
func (m *Map) InBounds(c HexCoord) bool {
	if m.radius <= 0 {
		return true
	}
	return max(abs(c.Q), abs(c.R), abs(c.S)) <= m.radius
}

// Get returns a snapshot of the hex at the coordinate. Absence means
// unexplored territory, not an error.
func (m *Map) Get(c HexCoord) (Hex, bool) {
	m.mu.RLock()
	rec, ok := m.hexes[c]
	m.mu.RUnlock()
	if !ok {
		return Hex{}, false
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.h, true
}

// Reveal marks the hex at the coordinate explored, creating it from the
// terrain source if it does not exist yet. A second reveal is a no-op on
// terrain. Returns false without creating anything when the coordinate
// is outside a bounded map.
func (m *Map) Reveal(c HexCoord) (Hex, bool) {
	if !m.InBounds(c) {
		return Hex{}, false
	}

	m.mu.Lock()
	rec, ok := m.hexes[c]
	if !ok {
		seed := m.source.Generate(c)
		rec = &record{h: Hex{
			Coord:      c,
			Terrain:    seed.Terrain,
			Explored:   true,
			Status:     GenNotRequested,
			Settlement: seed.Settlement,
			Port:       seed.Port,
		}}
		m.hexes[c] = rec
	}
	m.mu.Unlock()

	rec.mu.Lock()
	rec.h.Explored = true
	h := rec.h
	rec.mu.Unlock()
	return h, true
}

// SetDescription writes generated text and status for a hex. Used only
// by the generation manager. Idempotent: a hex already Done keeps its
// text, and writes to a missing hex are dropped.
func (m *Map) SetDescription(c HexCoord, text string, status GenStatus) bool {
	m.mu.RLock()
	rec, ok := m.hexes[c]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.h.Status == GenDone {
		return false
	}
	rec.h.Description = text
	rec.h.Status = status
	return true
}

// MarkPending flips a hex to Pending unless generation already finished.
func (m *Map) MarkPending(c HexCoord) {
	m.mu.RLock()
	rec, ok := m.hexes[c]
	m.mu.RUnlock()
	if !ok {
		return
	}
	rec.mu.Lock()
	if rec.h.Status == GenNotRequested || rec.h.Status == GenFailed {
		rec.h.Status = GenPending
	}
	rec.mu.Unlock()
}

// Peek returns the terrain and port flag the coordinate has, or would
// have if revealed, without materializing the hex. Safe for move-cost
// checks that must not mutate the map on failure.
func (m *Map) Peek(c HexCoord) (Terrain, bool) {
	if h, ok := m.Get(c); ok {
		return h.Terrain, h.Port
	}
	seed := m.source.Generate(c)
	return seed.Terrain, seed.Port
}

// TerrainAt returns the terrain of an existing hex.
func (m *Map) TerrainAt(c HexCoord) (Terrain, bool) {
	h, ok := m.Get(c)
	return h.Terrain, ok
}

// StatusOf returns the generation status of the hex, GenNotRequested if
// the hex does not exist.
func (m *Map) StatusOf(c HexCoord) GenStatus {
	h, ok := m.Get(c)
	if !ok {
		return GenNotRequested
	}
	return h.Status
}

// AllExplored yields snapshots of every explored hex in deterministic
// coordinate order. The sequence is restartable; each restart re-reads
// current hex state.
func (m *Map) AllExplored() iter.Seq[Hex] {
	return func(yield func(Hex) bool) {
		m.mu.RLock()
		coords := make([]HexCoord, 0, len(m.hexes))
		for c := range m.hexes {
			coords = append(coords, c)
		}
		m.mu.RUnlock()

		slices.SortFunc(coords, func(a, b HexCoord) int {
			if a.Q != b.Q {
				return a.Q - b.Q
			}
			return a.R - b.R
		})

		for _, c := range coords {
			h, ok := m.Get(c)
			if !ok || !h.Explored {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}

// ExploredCount returns the number of explored hexes.
func (m *Map) ExploredCount() int {
	n := 0
	for range m.AllExplored() {
		n++
	}
	return n
}

// HexCount returns the total number of materialized hexes.
func (m *Map) HexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hexes)
}

// TerrainCounts returns the terrain distribution of materialized hexes.
func (m *Map) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	m.mu.RLock()
	recs := make([]*record, 0, len(m.hexes))
	for _, rec := range m.hexes {
		recs = append(recs, rec)
	}
	m.mu.RUnlock()
	for _, rec := range recs {
		rec.mu.RLock()
		counts[rec.h.Terrain]++
		rec.mu.RUnlock()
	}
	return counts
}

// Restore inserts a hex loaded from a save file, overwriting any
// existing record. Used by the persistence layer only.
func (m *Map) Restore(h Hex) {
	m.mu.Lock()
	m.hexes[h.Coord] = &record{h: h}
	m.mu.Unlock()
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d)", m.radius, m.HexCount())
}
