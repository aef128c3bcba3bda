// Package world provides the hex grid, terrain, and exploration state.
// Uses cube coordinates (q, r, s) with the invariant q + r + s = 0.
package world

import (
	"fmt"
	"iter"
)

// HexCoord represents a position on the hex grid using cube coordinates.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// Cube builds a coordinate from the axial pair, deriving s.
func Cube(q, r int) HexCoord {
	return HexCoord{Q: q, R: r, S: -q - r}
}

// At builds a coordinate from all three components. Panics if the cube
// invariant is violated — malformed coordinates are a programming error,
// not a runtime condition.
func At(q, r, s int) HexCoord {
	if q+r+s != 0 {
		panic(fmt.Sprintf("invalid cube coordinate (%d, %d, %d)", q, r, s))
	}
	return HexCoord{Q: q, R: r, S: s}
}

// Add returns the component-wise sum of two coordinates.
func (c HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: c.Q + o.Q, R: c.R + o.R, S: c.S + o.S}
}

// Scale multiplies every component by k.
func (c HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: c.Q * k, R: c.R * k, S: c.S * k}
}

func (c HexCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.Q, c.R, c.S)
}

// Directions defines the six neighbor offsets in clockwise order,
// starting east. The order is fixed: rendering and pathing tie-breaks
// depend on it being stable.
var Directions = [6]HexCoord{
	{Q: 1, R: 0, S: -1},
	{Q: 1, R: -1, S: 0},
	{Q: 0, R: -1, S: 1},
	{Q: -1, R: 0, S: 1},
	{Q: -1, R: 1, S: 0},
	{Q: 0, R: 1, S: -1},
}

// Neighbors returns the six adjacent coordinates in direction order.
func (c HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range Directions {
		result[i] = c.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	return (abs(a.Q-b.Q) + abs(a.R-b.R) + abs(a.S-b.S)) / 2
}

// Ring yields the coordinates at exactly the given distance from center,
// clockwise. Radius 0 yields only the center. The sequence is restartable.
func Ring(center HexCoord, radius int) iter.Seq[HexCoord] {
	return func(yield func(HexCoord) bool) {
		if radius <= 0 {
			yield(center)
			return
		}
		// Start at the south-west corner and walk each edge of the ring.
		cur := center.Add(Directions[4].Scale(radius))
		for _, dir := range Directions {
			for range radius {
				if !yield(cur) {
					return
				}
				cur = cur.Add(dir)
			}
		}
	}
}

// Range yields every coordinate within the given distance of center,
// including center itself. Used for reveal and vision radii.
func Range(center HexCoord, radius int) iter.Seq[HexCoord] {
	return func(yield func(HexCoord) bool) {
		for dq := -radius; dq <= radius; dq++ {
			lo := max(-radius, -dq-radius)
			hi := min(radius, -dq+radius)
			for dr := lo; dr <= hi; dr++ {
				if !yield(center.Add(HexCoord{Q: dq, R: dr, S: -dq - dr})) {
					return
				}
			}
		}
	}
}

// Line returns the interpolated path from a to b inclusive, for movement
// previews and line-of-sight checks.
func Line(a, b HexCoord) []HexCoord {
	n := Distance(a, b)
	if n == 0 {
		return []HexCoord{a}
	}
	path := make([]HexCoord, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		q := float64(a.Q) + (float64(b.Q)-float64(a.Q))*t
		r := float64(a.R) + (float64(b.R)-float64(a.R))*t
		s := float64(a.S) + (float64(b.S)-float64(a.S))*t
		path = append(path, roundCube(q, r, s))
	}
	return path
}

// roundCube snaps fractional cube coordinates to the nearest hex,
// repairing the component with the largest rounding error so the
// invariant holds.
func roundCube(q, r, s float64) HexCoord {
	rq, rr, rs := roundf(q), roundf(r), roundf(s)
	dq, dr, ds := absf(float64(rq)-q), absf(float64(rr)-r), absf(float64(rs)-s)
	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	default:
		rs = -rq - rr
	}
	return HexCoord{Q: rq, R: rr, S: rs}
}

func roundf(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
