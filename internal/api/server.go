// Package api exposes the session over HTTP: read-only map and party
// queries for rendering, and the travel command surface.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/talgya/hexcrawl/internal/gen"
	"github.com/talgya/hexcrawl/internal/persistence"
	"github.com/talgya/hexcrawl/internal/travel"
	"github.com/talgya/hexcrawl/internal/world"
)

// Server serves the session state over HTTP. Travel commands are
// serialized by a session mutex — the engine is the logical main thread
// and never blocks on generation.
type Server struct {
	Map    *world.Map
	Engine *travel.Engine
	Gen    *gen.Manager
	DB     *persistence.DB
	Seed   int64
	Radius int
	Port   int

	mu      sync.Mutex // guards Engine commands and saves
	started time.Time
}

// Router builds the HTTP routes. Split from Start for tests.
func (s *Server) Router() *mux.Router {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	limiter := NewRateLimiter(120, time.Minute)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/map", s.handleMap).Methods(http.MethodGet)
	v1.HandleFunc("/map/summary", s.handleMapSummary).Methods(http.MethodGet)
	v1.HandleFunc("/hex/{q:-?[0-9]+}/{r:-?[0-9]+}", s.handleHex).Methods(http.MethodGet)

	cmd := v1.PathPrefix("/travel").Subrouter()
	cmd.Use(limiter.Middleware)
	cmd.HandleFunc("/move", s.handleMove).Methods(http.MethodPost)
	cmd.HandleFunc("/rest", s.handleRest).Methods(http.MethodPost)
	cmd.HandleFunc("/forced-march", s.handleForcedMarch).Methods(http.MethodPost)
	cmd.HandleFunc("/pace", s.handlePace).Methods(http.MethodPost)
	cmd.HandleFunc("/transport", s.handleTransport).Methods(http.MethodPost)
	cmd.HandleFunc("/advance-day", s.handleAdvanceDay).Methods(http.MethodPost)
	cmd.HandleFunc("/resupply", s.handleResupply).Methods(http.MethodPost)

	v1.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)

	return r
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	router := s.Router()
	slog.Info("HTTP API starting", "addr", addr)
	go func() {
		if err := http.ListenAndServe(addr, router); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

type partyView struct {
	Position   world.HexCoord  `json:"position"`
	Movement   float64         `json:"movement"`
	Pace       string          `json:"pace"`
	Transport  string          `json:"transport"`
	Exhaustion int             `json:"exhaustion"`
	Day        int             `json:"day"`
	Supplies   float64         `json:"supplies"`
	Members    []travel.Member `json:"members"`
}

func (s *Server) partyView() partyView {
	p := s.Engine.Party()
	return partyView{
		Position:   p.Position,
		Movement:   p.Movement,
		Pace:       p.Pace.String(),
		Transport:  p.Transport.String(),
		Exhaustion: p.Exhaustion,
		Day:        p.Day,
		Supplies:   p.Supplies,
		Members:    p.Members,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view := s.partyView()
	state := s.Engine.State().String()
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"state":      state,
		"party":      view,
		"pending":    s.Gen.PendingCount(),
		"explored":   s.Map.ExploredCount(),
		"uptime":     humanize.Time(s.started),
		"seed":       s.Seed,
		"map_radius": s.Radius,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	hexes := make([]world.Hex, 0, 64)
	for h := range s.Map.AllExplored() {
		hexes = append(hexes, h)
	}
	s.mu.Lock()
	pos := s.Engine.Party().Position
	s.mu.Unlock()
	writeJSON(w, map[string]any{
		"position": pos,
		"hexes":    hexes,
	})
}

func (s *Server) handleMapSummary(w http.ResponseWriter, r *http.Request) {
	counts := s.Map.TerrainCounts()
	terrain := make(map[string]string, len(counts))
	for t, n := range counts {
		terrain[t.String()] = humanize.Comma(int64(n))
	}
	writeJSON(w, map[string]any{
		"hexes":   humanize.Comma(int64(s.Map.HexCount())),
		"terrain": terrain,
	})
}

func (s *Server) handleHex(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q, _ := strconv.Atoi(vars["q"])
	cr, _ := strconv.Atoi(vars["r"])
	c := world.Cube(q, cr)

	h, ok := s.Map.Get(c)
	if !ok {
		writeJSON(w, map[string]any{
			"coord":    c,
			"explored": false,
			"status":   world.GenNotRequested.String(),
		})
		return
	}

	desc := h.Description
	if desc == "" {
		// Pending or never-requested hexes render a placeholder.
		desc = "Awaiting description..."
	}
	writeJSON(w, map[string]any{
		"coord":       h.Coord,
		"terrain":     h.Terrain.String(),
		"explored":    h.Explored,
		"description": desc,
		"status":      s.Map.StatusOf(c).String(),
		"settlement":  h.Settlement,
		"port":        h.Port,
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q int `json:"q"`
		R int `json:"r"`
	}
	if !decode(w, r, &req) {
		return
	}
	target := world.Cube(req.Q, req.R)

	s.mu.Lock()
	err := s.Engine.AttemptMove(target)
	view := s.partyView()
	state := s.Engine.State().String()
	s.mu.Unlock()

	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "state": state, "party": view})
}

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	s.command(w, func() error { return s.Engine.Rest() })
}

func (s *Server) handleForcedMarch(w http.ResponseWriter, r *http.Request) {
	s.command(w, func() error { return s.Engine.ForcedMarch() })
}

func (s *Server) handlePace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pace string `json:"pace"`
	}
	if !decode(w, r, &req) {
		return
	}
	pace, ok := travel.ParsePace(req.Pace)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "unknown pace "+req.Pace)
		return
	}
	s.command(w, func() error { return s.Engine.ChangePace(pace) })
}

func (s *Server) handleTransport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transport string `json:"transport"`
	}
	if !decode(w, r, &req) {
		return
	}
	tr, ok := travel.ParseTransport(req.Transport)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "unknown transport "+req.Transport)
		return
	}
	s.command(w, func() error { return s.Engine.ChangeTransport(tr) })
}

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	s.command(w, func() error {
		s.Engine.AdvanceDay()
		return nil
	})
}

func (s *Server) handleResupply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days float64 `json:"days"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Days <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "days must be positive")
		return
	}
	s.command(w, func() error {
		s.Engine.Resupply(req.Days)
		return nil
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "persistence disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := persistence.Capture(s.Map, s.Engine, s.Seed, s.Radius)
	if err := s.DB.Save(snap); err != nil {
		slog.Error("save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "hexes": len(snap.Hexes)})
}

// command runs an engine command under the session lock and writes the
// standard response.
func (s *Server) command(w http.ResponseWriter, run func() error) {
	s.mu.Lock()
	err := run()
	view := s.partyView()
	state := s.Engine.State().String()
	s.mu.Unlock()

	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "state": state, "party": view})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

// writeCommandError maps the travel error taxonomy to named failures.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, travel.ErrUnreachable):
		writeError(w, http.StatusConflict, "unreachable", err.Error())
	case errors.Is(err, travel.ErrInsufficientMovement):
		writeError(w, http.StatusConflict, "insufficient_movement", err.Error())
	case errors.Is(err, travel.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, persistence.ErrCorrupt):
		writeError(w, http.StatusUnprocessableEntity, "persistence_corrupt", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, name, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": name, "detail": detail})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
