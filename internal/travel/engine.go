package travel

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/talgya/hexcrawl/internal/world"
)

// Named command failures surfaced to the control surface. All are
// recoverable; a failed command never mutates party or map state.
var (
	ErrUnreachable            = errors.New("target unreachable")
	ErrInsufficientMovement   = errors.New("insufficient movement points")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// State is the travel-day state machine position.
type State uint8

const (
	StatePlanning  State = iota // Day started, points available
	StateResolving              // Points spent, awaiting day rollover
	StateExhausted              // Over the exhaustion cap
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePlanning:
		return "planning"
	case StateResolving:
		return "resolving"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Scout receives coordinates the engine reveals so descriptions can be
// generated in the background. Implementations must not block.
type Scout interface {
	Submit(c world.HexCoord, t world.Terrain)
}

// Config holds the travel policy knobs. All values have table defaults
// but are configuration, not constants.
type Config struct {
	SlowPoints   float64 `yaml:"slow_points"`
	NormalPoints float64 `yaml:"normal_points"`
	FastPoints   float64 `yaml:"fast_points"`

	VisionRange   int     `yaml:"vision_range"`   // Reveal radius on move
	RestRadius    int     `yaml:"rest_radius"`    // Reveal radius on rest
	ExhaustionCap int     `yaml:"exhaustion_cap"` // Levels before collapse
	MarchRisk     float64 `yaml:"march_risk"`     // P(exhaustion) per forced march
	MarchBonus    float64 `yaml:"march_bonus"`    // Extra points per forced march
}

// DefaultConfig returns the standard travel rules.
func DefaultConfig() Config {
	return Config{
		SlowPoints:    6,
		NormalPoints:  8,
		FastPoints:    10,
		VisionRange:   1,
		RestRadius:    2,
		ExhaustionCap: 3,
		MarchRisk:     0.3,
		MarchBonus:    1.0,
	}
}

// Engine drives the per-day travel state machine. It reads the map,
// mutates the party, and reveals hexes as the party moves. Not safe for
// concurrent use; the control surface serializes commands.
type Engine struct {
	cfg   Config
	m     *world.Map
	party *Party
	scout Scout
	rng   *rand.Rand

	state State
	moved bool // any movement spent this day
}

// NewEngine creates an engine over the given map and party, granting
// the first day's movement budget. scout may be nil when description
// generation is disabled. The rng drives forced march risk rolls only.
func NewEngine(cfg Config, m *world.Map, party *Party, scout Scout, rng *rand.Rand) *Engine {
	e := &Engine{
		cfg:   cfg,
		m:     m,
		party: party,
		scout: scout,
		rng:   rng,
	}
	party.Movement = e.dailyPoints()
	if party.Exhaustion >= cfg.ExhaustionCap {
		e.state = StateExhausted
	}
	return e
}

// NewEngineFromSave rebuilds an engine mid-day from persisted state.
// The party's movement budget is taken as-is.
func NewEngineFromSave(cfg Config, m *world.Map, party *Party, state State, scout Scout, rng *rand.Rand) *Engine {
	return &Engine{
		cfg:   cfg,
		m:     m,
		party: party,
		scout: scout,
		rng:   rng,
		state: state,
		moved: state != StatePlanning,
	}
}

// State returns the current state machine position.
func (e *Engine) State() State { return e.state }

// Party returns a snapshot of the party.
func (e *Engine) Party() Party {
	p := *e.party
	p.Members = append([]Member(nil), e.party.Members...)
	return p
}

func (e *Engine) paceBase(p Pace) float64 {
	switch p {
	case PaceSlow:
		return e.cfg.SlowPoints
	case PaceFast:
		return e.cfg.FastPoints
	default:
		return e.cfg.NormalPoints
	}
}

// dailyPoints computes the day's movement budget: pace base, halved
// while the party is over the exhaustion cap.
func (e *Engine) dailyPoints() float64 {
	base := e.paceBase(e.party.Pace)
	if e.party.Exhaustion >= e.cfg.ExhaustionCap {
		base /= 2
	}
	return base
}

// AttemptMove moves the party one hex. The target must be adjacent,
// passable for the current transport, and affordable; otherwise the
// matching error is returned and nothing changes. On success the cost is
// deducted, the party repositioned, and the vision radius revealed.
func (e *Engine) AttemptMove(target world.HexCoord) error {
	if world.Distance(e.party.Position, target) != 1 {
		return ErrUnreachable
	}
	if !e.m.InBounds(target) {
		// Hard map boundary — even airships stop here.
		return ErrUnreachable
	}

	terrain, port := e.m.Peek(target)
	cost, passable := MovementCost(terrain, e.party.Transport, port)
	if !passable {
		return ErrUnreachable
	}
	if e.party.Movement+1e-9 < cost {
		return ErrInsufficientMovement
	}

	e.party.Movement -= cost
	if e.party.Movement < 1e-9 {
		e.party.Movement = 0
	}
	e.party.Position = target
	e.moved = true

	e.revealAround(target, e.cfg.VisionRange)

	if e.party.Movement == 0 && e.state == StatePlanning {
		e.state = StateResolving
	}

	slog.Debug("party moved",
		"to", target,
		"terrain", terrain.String(),
		"cost", cost,
		"remaining", e.party.Movement,
	)
	return nil
}

// Rest takes a long rest: restores the movement budget, scouts the rest
// radius, clears one exhaustion level, and consumes a day of supplies.
// Only meaningful once some of the day has been spent.
func (e *Engine) Rest() error {
	if e.state == StatePlanning && !e.moved && e.party.Exhaustion == 0 &&
		e.party.Movement >= e.dailyPoints() {
		// Nothing to recover from.
		return ErrInvalidStateTransition
	}

	if e.party.Exhaustion > 0 {
		e.party.Exhaustion--
	}
	if e.party.Exhaustion < e.cfg.ExhaustionCap {
		e.state = StatePlanning
		e.party.setMemberFlag(CondExhausted, false)
	}

	e.party.Day++
	e.party.Movement = e.dailyPoints()
	e.party.Supplies = max(e.party.Supplies-1, 0)
	e.moved = false

	e.revealAround(e.party.Position, e.cfg.RestRadius)

	slog.Info("party rested",
		"day", e.party.Day,
		"movement", e.party.Movement,
		"exhaustion", e.party.Exhaustion,
	)
	return nil
}

// ForcedMarch pushes past the day's allowance: grants extra movement
// points and rolls the configured risk of gaining an exhaustion level.
// Crossing the cap collapses the party.
func (e *Engine) ForcedMarch() error {
	if e.state != StatePlanning && e.state != StateResolving {
		return ErrInvalidStateTransition
	}

	e.party.Movement += e.cfg.MarchBonus
	if e.state == StateResolving {
		e.state = StatePlanning
	}

	if e.rng.Float64() < e.cfg.MarchRisk {
		e.party.Exhaustion++
		slog.Info("forced march took its toll", "exhaustion", e.party.Exhaustion)
	}
	if e.party.Exhaustion >= e.cfg.ExhaustionCap {
		e.state = StateExhausted
		e.party.setMemberFlag(CondExhausted, true)
		slog.Warn("party collapsed from exhaustion", "level", e.party.Exhaustion)
	}
	return nil
}

// Resupply adds travel supplies to the party.
func (e *Engine) Resupply(days float64) {
	e.party.Resupply(days)
}

// ChangePace switches the travel pace. Permitted only at the start of a
// day, before any movement has been spent.
func (e *Engine) ChangePace(p Pace) error {
	if e.state != StatePlanning || e.moved {
		return ErrInvalidStateTransition
	}
	e.party.Pace = p
	e.party.Movement = e.dailyPoints()
	return nil
}

// ChangeTransport switches the transportation mode under the same rule
// as ChangePace: start of day, before movement.
func (e *Engine) ChangeTransport(t Transport) error {
	if e.state != StatePlanning || e.moved {
		return ErrInvalidStateTransition
	}
	e.party.Transport = t
	return nil
}

// AdvanceDay rolls over to the next travel day, recomputing the budget
// from pace and exhaustion. A no-op while still Planning.
func (e *Engine) AdvanceDay() {
	if e.state == StatePlanning {
		return
	}
	e.party.Day++
	e.party.Movement = e.dailyPoints()
	e.moved = false
	if e.party.Exhaustion >= e.cfg.ExhaustionCap {
		e.state = StateExhausted
	} else {
		e.state = StatePlanning
	}
}

// revealAround reveals every hex within radius and hands undescribed
// ones to the scout.
func (e *Engine) revealAround(center world.HexCoord, radius int) {
	for c := range world.Range(center, radius) {
		h, ok := e.m.Reveal(c)
		if !ok {
			continue
		}
		if e.scout != nil && h.Status != world.GenDone {
			e.scout.Submit(c, h.Terrain)
		}
	}
}
