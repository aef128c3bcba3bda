// Package travel implements the tabletop travel rules: pace, terrain
// cost, transportation access, forced marches, and exhaustion.
package travel

import (
	"github.com/talgya/hexcrawl/internal/world"
)

// Pace is the daily travel speed setting.
type Pace uint8

const (
	PaceSlow Pace = iota
	PaceNormal
	PaceFast
)

// String returns the lowercase pace name.
func (p Pace) String() string {
	switch p {
	case PaceSlow:
		return "slow"
	case PaceNormal:
		return "normal"
	case PaceFast:
		return "fast"
	default:
		return "unknown"
	}
}

// ParsePace maps a name back to its pace value.
func ParsePace(name string) (Pace, bool) {
	switch name {
	case "slow":
		return PaceSlow, true
	case "normal":
		return PaceNormal, true
	case "fast":
		return PaceFast, true
	default:
		return 0, false
	}
}

// Transport is the party's transportation mode.
type Transport uint8

const (
	OnFoot Transport = iota
	Horse
	Boat
	Airship
)

// String returns the lowercase transport name.
func (t Transport) String() string {
	switch t {
	case OnFoot:
		return "on_foot"
	case Horse:
		return "horse"
	case Boat:
		return "boat"
	case Airship:
		return "airship"
	default:
		return "unknown"
	}
}

// ParseTransport maps a name back to its transport value.
func ParseTransport(name string) (Transport, bool) {
	switch name {
	case "on_foot":
		return OnFoot, true
	case "horse":
		return Horse, true
	case "boat":
		return Boat, true
	case "airship":
		return Airship, true
	default:
		return 0, false
	}
}

// Condition flags for individual party members.
type Condition uint8

const (
	CondWell      Condition = 0
	CondInjured   Condition = 1 << 0
	CondSick      Condition = 1 << 1
	CondPoisoned  Condition = 1 << 2
	CondExhausted Condition = 1 << 3
)

// Has reports whether the flag is set.
func (c Condition) Has(flag Condition) bool {
	return c&flag != 0
}

// Member is an individual party member.
type Member struct {
	Name      string    `json:"name"`
	Condition Condition `json:"condition"`
}

// Party holds the travelling group's state. Mutated exclusively by the
// travel engine; one instance per session.
type Party struct {
	Position   world.HexCoord `json:"position"`
	Movement   float64        `json:"movement"`
	Pace       Pace           `json:"pace"`
	Transport  Transport      `json:"transport"`
	Exhaustion int            `json:"exhaustion"`
	Day        int            `json:"day"`
	Supplies   float64        `json:"supplies"`
	Members    []Member       `json:"members"`
}

// NewParty creates a party at the origin with default roster and supplies.
func NewParty(members ...string) *Party {
	p := &Party{
		Position:  world.Cube(0, 0),
		Pace:      PaceNormal,
		Transport: OnFoot,
		Supplies:  10,
	}
	for _, name := range members {
		p.Members = append(p.Members, Member{Name: name})
	}
	return p
}

// Resupply adds travel supplies, capped at 30 days' worth.
func (p *Party) Resupply(days float64) {
	p.Supplies = min(p.Supplies+days, 30)
}

func (p *Party) setMemberFlag(flag Condition, on bool) {
	for i := range p.Members {
		if on {
			p.Members[i].Condition |= flag
		} else {
			p.Members[i].Condition &^= flag
		}
	}
}
