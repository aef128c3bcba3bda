// Command hexcrawld runs the hex exploration backend: map, travel
// rules, background description generation, and the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/hexcrawl/internal/api"
	"github.com/talgya/hexcrawl/internal/config"
	"github.com/talgya/hexcrawl/internal/gen"
	"github.com/talgya/hexcrawl/internal/persistence"
	"github.com/talgya/hexcrawl/internal/travel"
	"github.com/talgya/hexcrawl/internal/world"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("hexcrawl — hex exploration backend")

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate Session ─────────────────────────────────────
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	radius := cfg.MapRadius

	var (
		m     *world.Map
		party *travel.Party
		state travel.State
		fresh bool
	)

	if db.HasSession() {
		snap, err := db.Load()
		if err != nil {
			if errors.Is(err, persistence.ErrCorrupt) {
				slog.Error("saved session is corrupt, refusing to overwrite it", "error", err)
			} else {
				slog.Error("failed to load session", "error", err)
			}
			os.Exit(1)
		}
		seed = snap.Seed
		radius = snap.Radius
		m = world.NewMap(world.NewSeededSource(world.DefaultGenConfig(seed)), radius)
		for _, h := range snap.Hexes {
			m.Restore(h)
		}
		p := snap.Party
		party = &p
		state = snap.State
		slog.Info("session restored",
			"hexes", len(snap.Hexes),
			"day", party.Day,
			"position", party.Position,
		)
	} else {
		m = world.NewMap(world.NewSeededSource(world.DefaultGenConfig(seed)), radius)
		party = travel.NewParty("Aldric", "Mira", "Tomas", "Wren")
		fresh = true
		slog.Info("new session", "seed", seed, "radius", radius)
	}

	// ── Text Generator ───────────────────────────────────────────────
	var generator gen.TextGenerator
	client := gen.NewOllamaClient(cfg.OllamaConfig())
	if client.Available(context.Background()) {
		generator = client
		slog.Info("text generator enabled", "model", cfg.Ollama.Model)
	} else {
		slog.Warn("text generator unreachable — using fallback descriptions")
	}
	manager := gen.NewManager(cfg.GenConfig(), m, generator)

	// ── Travel Engine ────────────────────────────────────────────────
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var engine *travel.Engine
	if fresh {
		engine = travel.NewEngine(cfg.Travel, m, party, manager, rng)
	} else {
		engine = travel.NewEngineFromSave(cfg.Travel, m, party, state, manager, rng)
	}

	if fresh {
		// Reveal the starting area and queue its descriptions.
		for c := range world.Range(party.Position, cfg.Travel.RestRadius) {
			if h, ok := m.Reveal(c); ok {
				manager.Submit(c, h.Terrain)
			}
		}
		slog.Info("starting area revealed", "hexes", m.HexCount())
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	server := &api.Server{
		Map:    m,
		Engine: engine,
		Gen:    manager,
		DB:     db,
		Seed:   seed,
		Radius: radius,
		Port:   cfg.Port,
	}
	server.Start()

	fmt.Printf("\nhexcrawl is running: day %d at %s, %d hexes known.\n",
		party.Day, party.Position, m.HexCount())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	manager.CancelAll()

	if err := db.Save(persistence.Capture(m, engine, seed, radius)); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Session saved. Goodbye.")
}
