package events

import (
	"fmt"
	"log/slog"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// Gate is an extra eligibility check beyond the rank table.
type Gate interface {
	Allow(c Candidate, s *state.Store) (bool, error)
}

// DefaultRanks is the lowest player position that can receive each type.
// Types not listed reach every rank.
var DefaultRanks = map[Type]state.Position{
	MilitaryUnrest:          state.PositionCentralCommittee,
	ForeignCrisis:           state.PositionCentralCommittee,
	NetworkIntel:            state.PositionDepartmentHead,
	NPCAction:               state.PositionPolitburoCandidate,
	AssassinationAttempt:    state.PositionPolitburo,
	PartyCongress:           state.PositionCentralCommittee,
	CongressPreparation:     state.PositionCentralCommittee,
	TribunalSession:         state.PositionDepartmentHead,
	CorruptionInvestigation: state.PositionRegionalOfficial,
}

// Suppression reasons.
const (
	ReasonDuplicateID = "duplicate id"
	ReasonRank        = "below required rank"
	ReasonGate        = "gate closed"
	ReasonCooldown    = "cooldown"
	ReasonQuiet       = "quiet turn"
	ReasonDeferred    = "deferred to next turn"
	ReasonCap         = "turn cap reached"
	ReasonDuplicate   = "type already selected"
)

// Quiet-turn reasons.
const (
	QuietNoCandidates = "no eligible candidates"
	QuietCeiling      = "consecutive event ceiling"
	QuietDraw         = "pacing draw"
)

// Config tunes the scheduler.
type Config struct {
	Pacing           PacingConfig
	Cooldowns        map[Type]int // overrides of DefaultCooldowns
	Ranks            map[Type]state.Position
	HistoryLimit     int
	CongressInterval int
}

// Suppression is a candidate that did not fire, and why.
type Suppression struct {
	Candidate Candidate `json:"candidate"`
	Reason    string    `json:"reason"`
}

// Outcome is the scheduler section of a turn report.
type Outcome struct {
	Turn             int                `json:"turn"`
	Selected         []Candidate        `json:"selected"`
	Quiet            bool               `json:"quiet"`
	QuietReason      string             `json:"quiet_reason,omitempty"`
	QuietProbability float64            `json:"quiet_probability"`
	Cap              int                `json:"cap"`
	Consecutive      int                `json:"consecutive"`
	Suppressed       []Suppression      `json:"suppressed,omitempty"`
	Failures         []GeneratorFailure `json:"failures,omitempty"`
	Consequences     []string           `json:"consequences,omitempty"` // scheduled consequences that fired
}

// Scheduler is the Dynamic Event Trigger and Pacing Scheduler.
type Scheduler struct {
	registry *Registry
	gate     Gate
	rng      entropy.Source
	cfg      Config

	cooldowns *Cooldowns
	history   *History
	pacing    Pacing
}

// NewScheduler creates a scheduler. gate may be nil.
func NewScheduler(reg *Registry, rng entropy.Source, cfg Config, gate Gate) *Scheduler {
	if cfg.Pacing.Ceiling <= 0 {
		cfg.Pacing = DefaultPacing()
	}
	if cfg.Ranks == nil {
		cfg.Ranks = DefaultRanks
	}
	return &Scheduler{
		registry:  reg,
		gate:      gate,
		rng:       rng,
		cfg:       cfg,
		cooldowns: NewCooldowns(cfg.Cooldowns),
		history:   &History{},
	}
}

// Cooldowns exposes the cooldown table.
func (s *Scheduler) Cooldowns() *Cooldowns { return s.cooldowns }

// History exposes the fired-incident log.
func (s *Scheduler) History() *History { return s.history }

// Pacing returns a copy of the pacing state.
func (s *Scheduler) Pacing() Pacing {
	p := s.pacing
	p.Deferred = append([]Candidate(nil), s.pacing.Deferred...)
	return p
}

// Run takes one turn through gather, filter, pacing, selection and commit.
func (s *Scheduler) Run(ctx *Context) Outcome {
	store := ctx.Store
	turn := ctx.Turn()
	if ctx.CongressInterval == 0 {
		ctx.CongressInterval = s.cfg.CongressInterval
	}
	out := Outcome{Turn: turn, Cap: Cap(store)}

	cands := s.gather(ctx, &out)
	eligible := s.filter(cands, store, turn, &out)

	if quiet, reason := s.pacingCheck(eligible, turn, store, &out); quiet {
		s.quietTurn(eligible, turn, reason, &out)
		return out
	}

	s.commit(s.selectWinners(eligible, out.Cap, &out), store, turn, &out)
	return out
}

func (s *Scheduler) suppress(out *Outcome, c Candidate, reason string) {
	out.Suppressed = append(out.Suppressed, Suppression{Candidate: c, Reason: reason})
}

// gather collects held-over candidates first, then each generator's output in
// registration order.
func (s *Scheduler) gather(ctx *Context, out *Outcome) []Candidate {
	var cands []Candidate
	for _, d := range s.pacing.Deferred {
		d.Deferred = true
		cands = append(cands, d)
	}
	s.pacing.Deferred = nil

	for _, g := range s.registry.Generators() {
		got, err := run(g, ctx)
		if err != nil {
			slog.Warn("incident generator failed", "generator", g.Name(), "turn", ctx.Turn(), "error", err)
			out.Failures = append(out.Failures, GeneratorFailure{Generator: g.Name(), Error: err.Error()})
			continue
		}
		cands = append(cands, got...)
	}
	return cands
}

func (s *Scheduler) filter(cands []Candidate, store *state.Store, turn int, out *Outcome) []Candidate {
	seen := make(map[string]bool, len(cands))
	var eligible []Candidate
	for _, c := range cands {
		if seen[c.ID] {
			s.suppress(out, c, ReasonDuplicateID)
			continue
		}
		seen[c.ID] = true

		if minRank, ok := s.cfg.Ranks[c.Type]; ok && store.Player.Position < minRank {
			s.suppress(out, c, ReasonRank)
			continue
		}
		if s.gate != nil {
			ok, err := s.gate.Allow(c, store)
			if err != nil {
				s.suppress(out, c, fmt.Sprintf("%s: %v", ReasonGate, err))
				continue
			}
			if !ok {
				s.suppress(out, c, ReasonGate)
				continue
			}
		}
		if !s.cooldowns.Allowed(c.Type, c.Priority, turn) {
			s.suppress(out, c, ReasonCooldown)
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// pacingCheck decides whether this is a quiet turn. The random draw is
// skipped when held-over incidents are waiting.
func (s *Scheduler) pacingCheck(eligible []Candidate, turn int, store *state.Store, out *Outcome) (bool, string) {
	if s.pacing.Consecutive >= s.cfg.Pacing.Ceiling {
		return true, QuietCeiling
	}
	if len(eligible) == 0 {
		return true, QuietNoCandidates
	}
	for _, c := range eligible {
		if c.Deferred {
			return false, ""
		}
	}
	out.QuietProbability = s.cfg.Pacing.QuietProbability(turn, s.pacing.Consecutive, TensionConditions(store))
	if s.rng.Float64() < out.QuietProbability {
		return true, QuietDraw
	}
	return false, ""
}

// quietTurn holds pressing candidates over to the next turn and updates the
// consecutive counter: reset by the ceiling, otherwise decremented after a
// turn that fired and cleared after one that did not.
func (s *Scheduler) quietTurn(eligible []Candidate, turn int, reason string, out *Outcome) {
	out.Quiet = true
	out.QuietReason = reason
	for _, c := range eligible {
		if c.Priority.Pressing() {
			s.pacing.Deferred = append(s.pacing.Deferred, c)
			s.suppress(out, c, ReasonDeferred)
			continue
		}
		s.suppress(out, c, ReasonQuiet)
	}

	switch {
	case reason == QuietCeiling:
		s.pacing.Consecutive = 0
	case s.pacing.LastFiredTurn == turn-1 && s.pacing.Consecutive > 0:
		s.pacing.Consecutive--
	default:
		s.pacing.Consecutive = 0
	}
	s.pacing.FiredThisTurn = 0
	out.Consecutive = s.pacing.Consecutive
}

// selectWinners picks up to limit incidents of distinct types. Pressing
// incidents go first, highest tier then gathering order; otherwise the pick
// is uniform among the highest tier present. Pressing incidents left over by
// the cap are held for the next turn.
func (s *Scheduler) selectWinners(eligible []Candidate, limit int, out *Outcome) []Candidate {
	remaining := append([]Candidate(nil), eligible...)
	chosen := make(map[Type]bool)
	var selected []Candidate

	for len(selected) < limit {
		pick := -1
		for i, c := range remaining {
			if chosen[c.Type] || !c.Priority.Pressing() {
				continue
			}
			if pick < 0 || c.Priority > remaining[pick].Priority {
				pick = i
			}
		}
		if pick < 0 {
			top := Priority(-1)
			var tier []int
			for i, c := range remaining {
				if chosen[c.Type] {
					continue
				}
				switch {
				case c.Priority > top:
					top, tier = c.Priority, []int{i}
				case c.Priority == top:
					tier = append(tier, i)
				}
			}
			if len(tier) == 0 {
				break
			}
			pick = tier[0]
			if len(tier) > 1 {
				pick = tier[s.rng.Intn(len(tier))]
			}
		}
		chosen[remaining[pick].Type] = true
		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	for _, c := range remaining {
		switch {
		case chosen[c.Type]:
			s.suppress(out, c, ReasonDuplicate)
		case c.Priority.Pressing():
			s.pacing.Deferred = append(s.pacing.Deferred, c)
			s.suppress(out, c, ReasonDeferred)
		default:
			s.suppress(out, c, ReasonCap)
		}
	}
	return selected
}

func (s *Scheduler) commit(selected []Candidate, store *state.Store, turn int, out *Outcome) {
	for _, c := range selected {
		s.cooldowns.Record(c.Type, turn)
		s.history.Append(HistoryEntry{
			ID:            c.ID,
			Type:          c.Type,
			Priority:      c.Priority,
			Turn:          turn,
			TargetCountry: targetCountry(c, store),
		})
		progress(store, c)
		if c.ConsequenceID != "" {
			out.Consequences = append(out.Consequences, c.ConsequenceID)
		}
	}
	s.pacing.Consecutive++
	s.pacing.LastFiredTurn = turn
	s.pacing.FiredThisTurn = len(selected)

	out.Selected = selected
	out.Consecutive = s.pacing.Consecutive
}

func targetCountry(c Candidate, store *state.Store) string {
	for _, id := range c.Targets {
		if _, ok := store.Country(id); ok {
			return id
		}
	}
	return ""
}

// Bookkeep prunes expired cooldowns and trims the history.
func (s *Scheduler) Bookkeep(turn int) {
	s.cooldowns.Prune(turn)
	if s.cfg.HistoryLimit > 0 {
		s.history.Trim(s.cfg.HistoryLimit)
	}
}

// State is the scheduler's memory between turns, for saving and loading.
type State struct {
	Cooldowns map[Type]CooldownEntry `json:"cooldowns"`
	History   []HistoryEntry         `json:"history"`
	Pacing    Pacing                 `json:"pacing"`
}

// State captures cooldowns, history and pacing.
func (s *Scheduler) State() State {
	return State{
		Cooldowns: s.cooldowns.Entries(),
		History:   append([]HistoryEntry(nil), s.history.Entries()...),
		Pacing:    s.Pacing(),
	}
}

// Restore replaces cooldowns, history and pacing.
func (s *Scheduler) Restore(st State) {
	s.cooldowns.Restore(st.Cooldowns)
	s.history.Restore(st.History)
	s.pacing = st.Pacing
}
