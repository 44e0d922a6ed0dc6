// Game ties the engines together and advances the store one turn at a time.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/politburo/internal/catalog"
	"github.com/talgya/politburo/internal/diplomacy"
	"github.com/talgya/politburo/internal/economy"
	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/politics"
	"github.com/talgya/politburo/internal/rules"
	"github.com/talgya/politburo/internal/state"
	"github.com/talgya/politburo/internal/telemetry"
)

// ChainWindow is how many turns of diplomatic history are kept for chain lookups.
const ChainWindow = diplomacy.ChainLookback

// Config tunes the engines a Game is built with.
type Config struct {
	DeficitPenalty   int
	ConsequenceGrace int // turns a due consequence may wait before it is dropped
	Scheduler        events.Config
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		DeficitPenalty:   economy.DefaultDeficitPenalty,
		ConsequenceGrace: 5,
		Scheduler: events.Config{
			Pacing:           events.DefaultPacing(),
			HistoryLimit:     200,
			CongressInterval: events.DefaultCongressInterval,
		},
	}
}

// Game owns the store and the engines that mutate it. Turns never overlap.
type Game struct {
	mu sync.Mutex

	cfg      Config
	store    *state.Store
	catalog  *catalog.Catalog
	rng      entropy.Source
	registry *events.Registry

	economy   *economy.Engine
	diplomacy *diplomacy.Engine
	politics  *politics.Engine
	scheduler *events.Scheduler

	metrics *telemetry.Metrics
	last    *TurnReport
}

// Option customizes a Game.
type Option func(*Game)

// WithMetrics records every turn on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(g *Game) { g.metrics = m }
}

// WithRegistry replaces the standard generator set.
func WithRegistry(reg *events.Registry) Option {
	return func(g *Game) { g.registry = reg }
}

// New builds every engine once around a single random source. A nil
// catalog selects the built-in one.
func New(cfg Config, store *state.Store, cat *catalog.Catalog, rng entropy.Source, opts ...Option) (*Game, error) {
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, fmt.Errorf("failed to load default catalog: %w", err)
		}
	}
	gate, err := rules.New(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog gates: %w", err)
	}

	cooldowns := make(map[events.Type]int)
	for t, n := range cat.Cooldowns() {
		cooldowns[events.Type(t)] = n
	}
	for t, n := range cfg.Scheduler.Cooldowns {
		cooldowns[t] = n
	}
	cfg.Scheduler.Cooldowns = cooldowns

	g := &Game{
		cfg:      cfg,
		store:    store,
		catalog:  cat,
		rng:      rng,
		registry: events.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(g)
	}

	// Construction order is fixed: diplomacy seeds its noise from rng.
	g.economy = economy.New(rng, cfg.DeficitPenalty)
	g.diplomacy = diplomacy.New(rng)
	g.politics = politics.New(rng)
	g.scheduler = events.NewScheduler(g.registry, rng, cfg.Scheduler, gate)
	return g, nil
}

// AdvanceTurn runs one full turn: economy, diplomacy, politics, then
// incident scheduling and bookkeeping.
func (g *Game) AdvanceTurn() *TurnReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	s := g.store
	s.Turn++
	turn := s.Turn

	econ := g.economy.ProcessTurn(s)
	diplo := g.diplomacy.ProcessTurn(s)
	pol := g.politics.ProcessTurn(s)

	ctx := &events.Context{
		Store:            s,
		Catalog:          g.catalog,
		PoliticalEvents:  pol.Events,
		EconomicCrisis:   s.Economy.Crisis,
		CongressInterval: g.cfg.Scheduler.CongressInterval,
	}
	for _, inc := range diplo.Incidents {
		ctx.WorldIncidents = append(ctx.WorldIncidents, events.WorldIncident{Kind: string(inc.Kind), CountryID: inc.CountryID})
	}
	out := g.scheduler.Run(ctx)

	fired := make(map[string]bool, len(out.Consequences))
	for _, id := range out.Consequences {
		fired[id] = true
	}
	retired := s.RetireConsequences(fired, turn, g.cfg.ConsequenceGrace)
	g.scheduler.Bookkeep(turn)
	s.TrimDiplomaticHistory(turn, ChainWindow)

	report := &TurnReport{
		Turn:      turn,
		Economy:   econ,
		Diplomacy: diplo,
		Politics:  pol,
		Incidents: out,
		Retired:   retired,
		Stats:     s.Stats(),
		Treasury:  s.GetStat(state.Treasury),
	}
	g.last = report

	g.metrics.RecordTurn(context.Background(), report.sample(time.Since(start)))
	slog.Info("turn advanced",
		"turn", turn,
		"net", econ.Ledger.Net,
		"treasury", report.Treasury,
		"crisis", s.Economy.Crisis,
		"incidents", len(out.Selected),
		"quiet", out.Quiet,
		"quiet_reason", out.QuietReason,
	)
	for _, c := range out.Selected {
		slog.Debug("incident selected", "turn", turn, "type", c.Type, "priority", c.Priority, "source", c.Source)
	}
	for _, f := range out.Failures {
		slog.Warn("generator failed", "turn", turn, "generator", f.Generator, "error", f.Error)
	}
	return report
}

// Turn is the number of the last completed turn.
func (g *Game) Turn() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Turn
}

// LastReport returns the most recent turn report, nil before the first turn.
func (g *Game) LastReport() *TurnReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// View runs fn with the store while no turn is in progress. fn must not
// retain the store.
func (g *Game) View(fn func(s *state.Store)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.store)
}

// Snapshot returns a deep copy of the store.
func (g *Game) Snapshot() (*state.Store, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Clone()
}

// Checkpoint is everything a save needs, taken between turns.
type Checkpoint struct {
	Store     *state.Store
	Scheduler events.State
	Report    *TurnReport // nil before the first turn
}

// Checkpoint copies the store, the scheduler's memory and the last report
// under one lock, so all three describe the same turn.
func (g *Game) Checkpoint() (Checkpoint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, err := g.store.Clone()
	if err != nil {
		return Checkpoint{}, err
	}
	return Checkpoint{Store: s, Scheduler: g.scheduler.State(), Report: g.last}, nil
}

// QueueTreaty queues a player treaty proposal for the next diplomatic phase.
func (g *Game) QueueTreaty(req state.TreatyRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return diplomacy.QueueTreaty(g.store, req)
}

// SchedulerState captures the scheduler's memory for saving.
func (g *Game) SchedulerState() events.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scheduler.State()
}

// RestoreScheduler replaces the scheduler's memory after a load.
func (g *Game) RestoreScheduler(st events.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scheduler.Restore(st)
}

// SetLastReport restores the report shown before the next turn runs.
func (g *Game) SetLastReport(r *TurnReport) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = r
}
