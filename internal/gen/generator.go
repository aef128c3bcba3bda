// Package gen produces descriptive text for revealed hexes: a bounded
// worker pool dispatches requests to an external text generator and
// falls back to deterministic per-terrain prose when it is unavailable.
package gen

import (
	"context"

	"github.com/talgya/hexcrawl/internal/world"
)

// Request describes one hex needing text.
type Request struct {
	Coord   world.HexCoord
	Terrain world.Terrain
	// Context hints at why the hex was revealed ("scouting", "resting").
	Context string
}

// TextGenerator is the external description capability. Implementations
// must honor ctx cancellation and deadlines; a hung call past its
// deadline would otherwise pin a dispatch slot.
type TextGenerator interface {
	Describe(ctx context.Context, req Request) (string, error)
}
