package economy

import (
	"fmt"
	"log/slog"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// DefaultDeficitPenalty multiplies a deficit shortfall not covered by reserves.
const DefaultDeficitPenalty = 10

// Engine runs the economic phase of a turn.
type Engine struct {
	rng            entropy.Source
	deficitPenalty int
}

// New creates an economic engine drawing from rng. A penalty below 1 uses the default.
func New(rng entropy.Source, deficitPenalty int) *Engine {
	if deficitPenalty < 1 {
		deficitPenalty = DefaultDeficitPenalty
	}
	return &Engine{rng: rng, deficitPenalty: deficitPenalty}
}

// Result is the economic section of a turn report.
type Result struct {
	Ledger     Report           `json:"ledger"`
	Deltas     Deltas           `json:"deltas"`
	Indicators state.Indicators `json:"indicators"`
	Crisis     CrisisUpdate     `json:"crisis"`
	Events     []state.Event    `json:"events,omitempty"`
}

// ProcessTurn moves the indicators, updates the crisis, then computes and
// applies the ledger.
func (e *Engine) ProcessTurn(s *state.Store) Result {
	var res Result

	res.Deltas = ComputeIndicators(s, e.rng)
	ApplyIndicators(res.Deltas, s)
	res.Indicators = s.Economy.Indicators

	res.Crisis = UpdateCrisis(s)
	if res.Crisis.Ended != state.CrisisNone {
		res.Events = append(res.Events, state.NewEvent(s.Turn, state.EventEconomy, "crisisEnded",
			fmt.Sprintf("The %s crisis has eased", res.Crisis.Ended), len(res.Events)))
	}
	if res.Crisis.Started != state.CrisisNone {
		res.Events = append(res.Events, state.NewEvent(s.Turn, state.EventEconomy, "crisisStarted",
			fmt.Sprintf("A %s crisis grips the economy", res.Crisis.Started), len(res.Events)))
		slog.Info("economic crisis", "turn", s.Turn, "kind", res.Crisis.Started)
	}

	res.Ledger = ComputeLedger(s)
	ApplyLedger(&res.Ledger, s, e.deficitPenalty)
	if res.Ledger.DeficitPenalty > 0 {
		res.Events = append(res.Events, state.NewEvent(s.Turn, state.EventEconomy, "deficit",
			fmt.Sprintf("Uncovered deficit cost the treasury an extra %d", res.Ledger.DeficitPenalty), len(res.Events)))
	}

	slog.Debug("economy processed",
		"turn", s.Turn,
		"net", res.Ledger.Net,
		"treasury", res.Ledger.TreasuryAfter,
		"growth", res.Deltas.GDPGrowth,
	)
	return res
}
