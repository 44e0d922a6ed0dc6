package diplomacy

import (
	"fmt"
	"log/slog"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// Engine runs the diplomatic phase of a turn.
type Engine struct {
	rng   entropy.Source
	noise driftNoise
}

// New creates a diplomatic engine. The drift noise field is seeded from rng.
func New(rng entropy.Source) *Engine {
	return &Engine{rng: rng, noise: newDriftNoise(rng.Int63())}
}

// Result is the diplomatic section of a turn report.
type Result struct {
	Drift     map[string]int     `json:"drift"`
	Espionage []EspionageOutcome `json:"espionage,omitempty"`
	Proposals []ProposalOutcome  `json:"proposals,omitempty"`
	Incidents []Incident         `json:"incidents,omitempty"`
	Events    []state.Event      `json:"events,omitempty"`
}

// ProcessTurn expires lapsed treaties, applies active treaty effects, drifts
// relationships, rolls espionage, resolves queued treaty proposals, and
// generates world incidents.
func (e *Engine) ProcessTurn(s *state.Store) Result {
	res := Result{Drift: make(map[string]int, len(s.Countries))}

	res.Events = append(res.Events, ExpireTreaties(s)...)
	ApplyTreatyEffects(s)

	stability := s.GetStat(state.Stability)
	for i, c := range s.Countries {
		d := DriftAmount(c, stability, e.noise.at(i, s.Turn))
		c.AdjustRelationship(d)
		res.Drift[c.ID] = d
	}

	var espEvents []state.Event
	res.Espionage, espEvents = RunEspionage(s, e.rng)
	res.Events = append(res.Events, espEvents...)

	for _, req := range s.TreatyQueue {
		out := ProposeTreaty(s, e.rng, req)
		res.Proposals = append(res.Proposals, out)
		res.Events = append(res.Events, proposalEvent(s.Turn, out, len(res.Proposals)))
	}
	s.TreatyQueue = nil

	var incEvents []state.Event
	res.Incidents, incEvents = GenerateIncidents(s, e.rng)
	res.Events = append(res.Events, incEvents...)

	slog.Debug("diplomacy processed",
		"turn", s.Turn,
		"proposals", len(res.Proposals),
		"incidents", len(res.Incidents),
	)
	return res
}

func proposalEvent(turn int, out ProposalOutcome, seq int) state.Event {
	var kind, desc string
	switch {
	case out.Failed:
		kind = "treatyProposalFailed"
		desc = fmt.Sprintf("Proposed %s with %s could not proceed: %s", out.Type, out.CountryID, out.Reason)
	case out.Accepted:
		kind = "treatySigned"
		desc = fmt.Sprintf("%s accepted a %s", out.CountryID, out.Type)
	default:
		kind = "treatyRejected"
		desc = fmt.Sprintf("%s rejected a %s", out.CountryID, out.Type)
	}
	ev := state.NewEvent(turn, state.EventDiplomacy, kind, desc, seq, out.CountryID)
	ev.Failed = out.Failed
	return ev
}

// QueueTreaty records a player treaty proposal for the next diplomatic phase.
func QueueTreaty(s *state.Store, req state.TreatyRequest) error {
	if !ValidTreatyType(req.Type) {
		return fmt.Errorf("unknown treaty type %q", req.Type)
	}
	req.QueuedAt = s.Turn
	s.TreatyQueue = append(s.TreatyQueue, req)
	return nil
}
