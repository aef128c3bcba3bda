package gen

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/talgya/hexcrawl/internal/world"
)

// Config holds the generation scheduler knobs.
type Config struct {
	Workers int           // Max concurrent generator calls
	Retries uint          // Attempts before falling back
	Timeout time.Duration // Per-attempt deadline
}

// DefaultConfig returns the standard scheduler settings.
func DefaultConfig() Config {
	return Config{
		Workers: 3,
		Retries: 3,
		Timeout: 10 * time.Second,
	}
}

// Job tracks one description request. Keyed uniquely by coordinate: at
// most one job is in flight per hex.
type Job struct {
	ID        uuid.UUID
	Coord     world.HexCoord
	Terrain   world.Terrain
	Submitted time.Time
	Status    world.GenStatus
}

// result is the message a worker delivers to the single map writer.
type result struct {
	coord  world.HexCoord
	text   string
	status world.GenStatus
}

// Manager schedules description generation without ever blocking its
// callers. A fixed pool of workers caps concurrent generator calls; a
// single writer goroutine applies completions to the map, so a reader
// never observes a half-written description.
type Manager struct {
	cfg Config
	m   *world.Map
	gen TextGenerator // nil means fallback-only

	mu    sync.Mutex
	cond  *sync.Cond
	jobs  map[world.HexCoord]*Job
	queue []*Job
	done  bool

	results chan result
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	writer  sync.WaitGroup
}

// NewManager starts the worker pool and writer. generator may be nil,
// in which case every hex gets fallback text immediately.
func NewManager(cfg Config, m *world.Map, generator TextGenerator) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Manager{
		cfg:     cfg,
		m:       m,
		gen:     generator,
		jobs:    make(map[world.HexCoord]*Job),
		results: make(chan result, cfg.Workers),
		ctx:     ctx,
		cancel:  cancel,
	}
	g.cond = sync.NewCond(&g.mu)

	g.writer.Add(1)
	go g.writeLoop()

	g.workers.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go g.workLoop()
	}
	return g
}

// Submit enqueues a description request for the coordinate. Idempotent:
// a coordinate already Pending or Done is a no-op, so duplicate reveals
// never duplicate generator calls. Never blocks.
func (g *Manager) Submit(c world.HexCoord, t world.Terrain) {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return
	}
	if j, ok := g.jobs[c]; ok &&
		(j.Status == world.GenPending || j.Status == world.GenDone) {
		g.mu.Unlock()
		return
	}
	job := &Job{
		ID:        uuid.New(),
		Coord:     c,
		Terrain:   t,
		Submitted: time.Now(),
		Status:    world.GenPending,
	}
	g.jobs[c] = job
	g.queue = append(g.queue, job)
	g.cond.Signal()
	g.mu.Unlock()

	g.m.MarkPending(c)
	slog.Debug("generation queued", "job", job.ID, "coord", c, "terrain", t.String())
}

// PendingCount returns the number of jobs not yet completed.
func (g *Manager) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, j := range g.jobs {
		if j.Status == world.GenPending {
			n++
		}
	}
	return n
}

// StatusOf returns the job status for a coordinate, GenNotRequested if
// none was ever submitted.
func (g *Manager) StatusOf(c world.HexCoord) world.GenStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	if j, ok := g.jobs[c]; ok {
		return j.Status
	}
	return world.GenNotRequested
}

// CancelAll discards queued and in-flight jobs. When it returns, no
// further map writes from previously in-flight work will occur. The
// manager is finished afterwards; a new session builds a new one.
func (g *Manager) CancelAll() {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return
	}
	g.done = true
	g.queue = nil
	g.cond.Broadcast()
	g.mu.Unlock()

	g.cancel()
	g.workers.Wait()
	close(g.results)
	g.writer.Wait()
	slog.Info("generation manager stopped")
}

// next blocks until a job is available or the manager shuts down.
func (g *Manager) next() *Job {
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(g.queue) == 0 && !g.done {
		g.cond.Wait()
	}
	if g.done {
		return nil
	}
	j := g.queue[0]
	g.queue = g.queue[1:]
	return j
}

func (g *Manager) workLoop() {
	defer g.workers.Done()
	for {
		job := g.next()
		if job == nil {
			return
		}
		text, status := g.generate(job)
		select {
		case g.results <- result{coord: job.Coord, text: text, status: status}:
		case <-g.ctx.Done():
			return
		}
	}
}

// generate produces text for one job: the external generator under a
// bounded retry-with-backoff budget, then deterministic fallback. The
// per-attempt deadline reclaims the dispatch slot from a hung call.
func (g *Manager) generate(job *Job) (string, world.GenStatus) {
	if g.gen == nil {
		return Fallback(job.Terrain, job.Coord), world.GenDone
	}

	attempt := func() (string, error) {
		ctx, cancelAttempt := context.WithTimeout(g.ctx, g.cfg.Timeout)
		defer cancelAttempt()
		return g.gen.Describe(ctx, Request{
			Coord:   job.Coord,
			Terrain: job.Terrain,
			Context: "scouting",
		})
	}

	text, err := backoff.Retry(g.ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(g.cfg.Retries),
	)
	if err != nil {
		slog.Warn("generation failed, using fallback",
			"job", job.ID, "coord", job.Coord, "error", err)
		return Fallback(job.Terrain, job.Coord), world.GenFailed
	}
	return text, world.GenDone
}

// writeLoop is the sole writer of generation results into the map.
func (g *Manager) writeLoop() {
	defer g.writer.Done()
	for res := range g.results {
		select {
		case <-g.ctx.Done():
			// Cancelled: discard without writing.
			continue
		default:
		}

		g.m.SetDescription(res.coord, res.text, res.status)

		g.mu.Lock()
		if j, ok := g.jobs[res.coord]; ok {
			j.Status = res.status
		}
		g.mu.Unlock()

		slog.Debug("description written",
			"coord", res.coord, "status", res.status.String())
	}
}
