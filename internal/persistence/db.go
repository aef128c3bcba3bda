// Package persistence provides SQLite-based session storage: the
// explored hex set, per-hex generation state, and party state.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexcrawl/internal/travel"
	"github.com/talgya/hexcrawl/internal/world"
)

// ErrCorrupt marks a save document missing required structure. Fatal to
// the load operation only; session state is untouched.
var ErrCorrupt = errors.New("save data corrupt")

// Snapshot is the full persisted session state. Round-trips losslessly
// through Save and Load.
type Snapshot struct {
	Seed   int64
	Radius int
	Hexes  []world.Hex
	Party  travel.Party
	State  travel.State
}

// Capture builds a snapshot of the live session.
func Capture(m *world.Map, e *travel.Engine, seed int64, radius int) *Snapshot {
	snap := &Snapshot{
		Seed:   seed,
		Radius: radius,
		Party:  e.Party(),
		State:  e.State(),
	}
	for h := range m.AllExplored() {
		snap.Hexes = append(snap.Hexes, h)
	}
	return snap
}

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hexes (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		explored INTEGER NOT NULL,
		description TEXT NOT NULL,
		status INTEGER NOT NULL,
		settlement TEXT NOT NULL,
		port INTEGER NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS party (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		movement REAL NOT NULL,
		pace INTEGER NOT NULL,
		transport INTEGER NOT NULL,
		exhaustion INTEGER NOT NULL,
		day INTEGER NOT NULL,
		supplies REAL NOT NULL,
		state INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS members (
		idx INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		condition INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasSession reports whether a saved session exists.
func (db *DB) HasSession() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM session_meta"); err != nil {
		return false
	}
	return n > 0
}

// Save writes the full session snapshot (full replace, one transaction).
func (db *DB) Save(snap *Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"hexes", "party", "members", "session_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO hexes
		(q, r, terrain, explored, description, status, settlement, port)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range snap.Hexes {
		// An in-flight job is not a persistent fact: collapse Pending
		// back to NotRequested so a reload re-requests the text.
		status := h.Status
		if status == world.GenPending {
			status = world.GenNotRequested
		}
		_, err := stmt.Exec(
			h.Coord.Q, h.Coord.R, h.Terrain, boolInt(h.Explored),
			h.Description, status, h.Settlement, boolInt(h.Port),
		)
		if err != nil {
			return fmt.Errorf("insert hex %v: %w", h.Coord, err)
		}
	}

	p := snap.Party
	if _, err := tx.Exec(`INSERT INTO party
		(id, pos_q, pos_r, movement, pace, transport, exhaustion, day, supplies, state)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Position.Q, p.Position.R, p.Movement, p.Pace, p.Transport,
		p.Exhaustion, p.Day, p.Supplies, snap.State,
	); err != nil {
		return fmt.Errorf("insert party: %w", err)
	}

	for i, m := range p.Members {
		if _, err := tx.Exec(
			"INSERT INTO members (idx, name, condition) VALUES (?, ?, ?)",
			i, m.Name, m.Condition,
		); err != nil {
			return fmt.Errorf("insert member %q: %w", m.Name, err)
		}
	}

	meta := map[string]string{
		"schema_version": "1",
		"seed":           strconv.FormatInt(snap.Seed, 10),
		"radius":         strconv.Itoa(snap.Radius),
		"hex_count":      strconv.Itoa(len(snap.Hexes)),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			"INSERT INTO session_meta (key, value) VALUES (?, ?)", k, v,
		); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("session saved", "hexes", len(snap.Hexes), "day", p.Day)
	return nil
}

// Load reads the saved session back. A document missing required
// structure (metadata, party row, or a hex count mismatch) returns
// ErrCorrupt rather than a silently empty session.
func (db *DB) Load() (*Snapshot, error) {
	meta, err := db.loadMeta()
	if err != nil {
		return nil, err
	}
	if meta["schema_version"] == "" {
		return nil, fmt.Errorf("%w: missing schema_version", ErrCorrupt)
	}

	seed, err := strconv.ParseInt(meta["seed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad seed %q", ErrCorrupt, meta["seed"])
	}
	radius, err := strconv.Atoi(meta["radius"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad radius %q", ErrCorrupt, meta["radius"])
	}
	wantHexes, err := strconv.Atoi(meta["hex_count"])
	if err != nil {
		return nil, fmt.Errorf("%w: missing hex_count", ErrCorrupt)
	}

	snap := &Snapshot{Seed: seed, Radius: radius}

	rows, err := db.conn.Queryx(
		"SELECT q, r, terrain, explored, description, status, settlement, port FROM hexes ORDER BY q, r")
	if err != nil {
		return nil, fmt.Errorf("query hexes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q, r, terrain, status int
			explored, port        int
			description, name     string
		)
		if err := rows.Scan(&q, &r, &terrain, &explored, &description, &status, &name, &port); err != nil {
			return nil, fmt.Errorf("scan hex: %w", err)
		}
		snap.Hexes = append(snap.Hexes, world.Hex{
			Coord:       world.Cube(q, r),
			Terrain:     world.Terrain(terrain),
			Explored:    explored != 0,
			Description: description,
			Status:      world.GenStatus(status),
			Settlement:  name,
			Port:        port != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read hexes: %w", err)
	}
	if len(snap.Hexes) != wantHexes {
		return nil, fmt.Errorf("%w: expected %d hexes, found %d",
			ErrCorrupt, wantHexes, len(snap.Hexes))
	}

	var p struct {
		PosQ       int     `db:"pos_q"`
		PosR       int     `db:"pos_r"`
		Movement   float64 `db:"movement"`
		Pace       int     `db:"pace"`
		Transport  int     `db:"transport"`
		Exhaustion int     `db:"exhaustion"`
		Day        int     `db:"day"`
		Supplies   float64 `db:"supplies"`
		State      int     `db:"state"`
	}
	err = db.conn.Get(&p,
		"SELECT pos_q, pos_r, movement, pace, transport, exhaustion, day, supplies, state FROM party WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: missing party record", ErrCorrupt)
	}
	if err != nil {
		return nil, fmt.Errorf("query party: %w", err)
	}

	snap.Party = travel.Party{
		Position:   world.Cube(p.PosQ, p.PosR),
		Movement:   p.Movement,
		Pace:       travel.Pace(p.Pace),
		Transport:  travel.Transport(p.Transport),
		Exhaustion: p.Exhaustion,
		Day:        p.Day,
		Supplies:   p.Supplies,
	}
	snap.State = travel.State(p.State)

	mrows, err := db.conn.Queryx("SELECT name, condition FROM members ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var (
			name string
			cond int
		)
		if err := mrows.Scan(&name, &cond); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		snap.Party.Members = append(snap.Party.Members, travel.Member{
			Name:      name,
			Condition: travel.Condition(cond),
		})
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("read members: %w", err)
	}

	return snap, nil
}

func (db *DB) loadMeta() (map[string]string, error) {
	rows, err := db.conn.Queryx("SELECT key, value FROM session_meta")
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("%w: no session metadata", ErrCorrupt)
	}
	return meta, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
