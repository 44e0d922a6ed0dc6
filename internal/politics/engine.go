package politics

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// Goal progress awarded per action.
const (
	progressPolicy  = 15
	progressAction  = 10
	progressPassage = 10
)

// Engine runs the political phase of a turn.
type Engine struct {
	rng entropy.Source
}

// New creates a political engine drawing from rng.
func New(rng entropy.Source) *Engine {
	return &Engine{rng: rng}
}

// LeaderAction summarizes what the General Secretary did.
type LeaderAction struct {
	CharacterID string         `json:"character_id"`
	Goal        state.GoalType `json:"goal,omitempty"`
	Action      Action         `json:"action"`
	Power       int            `json:"power"`
	Threshold   int            `json:"threshold"`
	SlotID      string         `json:"slot_id,omitempty"`
	OptionID    string         `json:"option_id,omitempty"`
	Decreed     bool           `json:"decreed,omitempty"`
	TargetID    string         `json:"target_id,omitempty"`
}

// Result is the political section of a turn report.
type Result struct {
	Leader    *LeaderAction              `json:"leader,omitempty"`
	Proposals []state.PolicyChangeRecord `json:"proposals,omitempty"` // submitted this turn, unresolved
	Decrees   []state.PolicyChangeRecord `json:"decrees,omitempty"`
	Votes     []state.PolicyChangeRecord `json:"votes,omitempty"`
	Events    []state.Event              `json:"events,omitempty"`
}

func (r *Result) event(turn int, kind, desc string, targets ...string) *state.Event {
	r.Events = append(r.Events, state.NewEvent(turn, state.EventPolitics, kind, desc, len(r.Events), targets...))
	return &r.Events[len(r.Events)-1]
}

func (r *Result) failed(turn int, kind, desc string, targets ...string) {
	r.event(turn, kind, desc, targets...).Failed = true
}

// GeneralSecretary returns the living holder of the top office.
func GeneralSecretary(s *state.Store) (*state.Character, bool) {
	for _, c := range s.Characters {
		if c.Alive && c.Position == state.PositionGeneralSecretary {
			return c, true
		}
	}
	return nil, false
}

// ProcessTurn runs the leader's strategic action, committee proposals, then
// resolves every proposal submitted on an earlier turn. With no one in office
// nothing happens and pending proposals wait.
func (e *Engine) ProcessTurn(s *state.Store) Result {
	var res Result

	if len(s.OfficeHolders()) == 0 {
		res.event(s.Turn, "noLeadership", "No one holds office; the apparatus idles")
		return res
	}

	if gs, ok := GeneralSecretary(s); ok {
		res.Leader = e.leaderTurn(gs, s, &res)
	}
	e.committeeProposals(s, &res)
	e.resolveProposals(s, &res)

	slog.Debug("politics processed",
		"turn", s.Turn,
		"decrees", len(res.Decrees),
		"proposals", len(res.Proposals),
		"votes", len(res.Votes),
	)
	return res
}

func (e *Engine) leaderTurn(gs *state.Character, s *state.Store, res *Result) *LeaderAction {
	la := &LeaderAction{
		CharacterID: gs.ID,
		Action:      ActionNone,
		Power:       Power(gs, s),
		Threshold:   DecreeThreshold(gs.Personality.Ambition, s.GetStat(state.Stability)),
	}
	agenda := Agenda(gs, s)

	for _, g := range ActiveGoals(gs) {
		switch goalActions[g.Type] {
		case ActionPolicy:
			if g.TargetID != "" {
				if _, ok := s.Policy(g.TargetID); !ok {
					res.failed(s.Turn, "policyMissing",
						fmt.Sprintf("%s pursued reform of unknown policy %q", gs.Name, g.TargetID), gs.ID)
					continue
				}
			}
			pref, ok := e.policyFor(g, agenda, gs, la.Power, s)
			if !ok {
				continue
			}
			la.Goal = g.Type
			e.leaderPolicy(gs, la, pref, s, res)
			gs.AdvanceGoal(g.Type, progressPolicy)
			return la
		case ActionTargetRival:
			rival, ok := e.rivalFor(g, gs, s)
			if !ok {
				res.failed(s.Turn, "rivalMissing",
					fmt.Sprintf("%s found no rival to move against", gs.Name), gs.ID)
				continue
			}
			la.Goal, la.Action, la.TargetID = g.Type, ActionTargetRival, rival.ID
			s.ApplyStat(state.EliteLoyalty, -2)
			s.ApplyStat(state.Stability, -1)
			if f, ok := s.Faction(rival.Faction); ok {
				f.AdjustSupport(-3)
			}
			res.event(s.Turn, "rivalTargeted",
				fmt.Sprintf("%s moves against %s", gs.Name, rival.Name), gs.ID, rival.ID)
			gs.AdvanceGoal(g.Type, progressAction)
			return la
		case ActionAppoint:
			la.Goal, la.Action = g.Type, ActionAppoint
			s.ApplyStat(state.EliteLoyalty, 2)
			if f, ok := s.Faction(gs.Faction); ok {
				f.AdjustSupport(2)
			}
			res.event(s.Turn, "appointment", fmt.Sprintf("%s installs a loyalist", gs.Name), gs.ID)
			gs.AdvanceGoal(g.Type, progressAction)
			return la
		case ActionBuildSupport:
			la.Goal, la.Action = g.Type, ActionBuildSupport
			s.ApplyStat(state.PopularSupport, 2)
			if f, ok := s.Faction(gs.Faction); ok {
				f.AdjustSupport(1)
			}
			res.event(s.Turn, "publicCampaign", fmt.Sprintf("%s tours the provinces", gs.Name), gs.ID)
			gs.AdvanceGoal(g.Type, progressAction)
			return la
		}
	}

	// No goal produced an action: fall back to the agenda.
	if pref, ok := FirstActionable(agenda, gs, la.Power, s, ""); ok {
		e.leaderPolicy(gs, la, pref, s, res)
	}
	return la
}

// policyFor picks the preference a policy goal acts on. A goal naming a slot
// looks only at that slot.
func (e *Engine) policyFor(g state.Goal, agenda []state.PolicyPreference, gs *state.Character, power int, s *state.Store) (state.PolicyPreference, bool) {
	if g.TargetID != "" {
		var narrowed []state.PolicyPreference
		for _, p := range agenda {
			if p.SlotID == g.TargetID {
				narrowed = append(narrowed, p)
			}
		}
		return FirstActionable(narrowed, gs, power, s, "")
	}
	return FirstActionable(agenda, gs, power, s, goalCategory[g.Type])
}

// rivalFor returns the goal's named target, or else the highest-ranked
// office holder from another faction.
func (e *Engine) rivalFor(g state.Goal, gs *state.Character, s *state.Store) (*state.Character, bool) {
	if g.TargetID != "" {
		return s.LivingCharacter(g.TargetID)
	}
	for _, c := range s.OfficeHolders() {
		if c.ID != gs.ID && c.Faction != gs.Faction {
			return c, true
		}
	}
	return nil, false
}

func (e *Engine) leaderPolicy(gs *state.Character, la *LeaderAction, pref state.PolicyPreference, s *state.Store, res *Result) {
	slot, _ := s.Policy(pref.SlotID)
	la.Action, la.SlotID, la.OptionID = ActionPolicy, pref.SlotID, pref.OptionID

	if CanDecree(la.Power, la.Threshold, slot) {
		la.Decreed = true
		rec := Decree(s, slot, pref.OptionID, gs.ID)
		res.Decrees = append(res.Decrees, rec)
		res.event(s.Turn, "decree",
			fmt.Sprintf("%s decrees %s: %s", gs.Name, slot.Name, rec.ToOption), gs.ID, slot.ID)
		return
	}
	res.Proposals = append(res.Proposals, Propose(s, slot, pref.OptionID, gs.ID))
	res.event(s.Turn, "proposal",
		fmt.Sprintf("%s brings %s before the Politburo", gs.Name, slot.Name), gs.ID, slot.ID)
}

func (e *Engine) committeeProposals(s *state.Store, res *Result) {
	for _, c := range s.Characters {
		if !c.Alive || c.Position != state.PositionStandingCommittee {
			continue
		}
		if !entropy.Chance(e.rng, ProposalChance(c.Personality.Ambition)) {
			continue
		}
		f, ok := s.Faction(c.Faction)
		if !ok {
			continue
		}
		pref, ok := FirstActionable(f.Ranked(), c, Power(c, s), s, "")
		if !ok {
			continue
		}
		slot, _ := s.Policy(pref.SlotID)
		res.Proposals = append(res.Proposals, Propose(s, slot, pref.OptionID, c.ID))
		res.event(s.Turn, "proposal",
			fmt.Sprintf("%s proposes changing %s", c.Name, slot.Name), c.ID, slot.ID)
	}
}

func (e *Engine) resolveProposals(s *state.Store, res *Result) {
	for _, slot := range s.Policies {
		p := slot.Pending
		if p == nil || p.SubmittedTurn >= s.Turn {
			continue
		}
		slot.Pending = nil

		if _, ok := slot.Option(p.OptionID); !ok {
			res.failed(s.Turn, "proposalVoid",
				fmt.Sprintf("Proposal for %s named unknown option %q", slot.Name, p.OptionID), slot.ID)
			continue
		}

		t := Vote(s, e.rng, slot.ID, p)
		rec := state.PolicyChangeRecord{
			ID:           state.NewID("policy", s.Turn, slot.ID, "vote", strconv.Itoa(len(slot.History))),
			Turn:         s.Turn,
			FromOption:   slot.Current,
			ToOption:     p.OptionID,
			ProposerID:   p.ProposerID,
			Method:       state.MethodVoted,
			Passed:       t.Passed(),
			VotesFor:     t.For,
			VotesAgainst: t.Against,
			Abstentions:  t.Abstentions,
		}
		slot.History = append(slot.History, rec)
		res.Votes = append(res.Votes, rec)

		verdict := "rejected"
		if rec.Passed {
			verdict = "adopted"
			enact(s, slot, p.OptionID)
			if proposer, ok := s.LivingCharacter(p.ProposerID); ok {
				proposer.AdvanceGoal(state.GoalReformEconomy, progressPassage)
			}
		}
		res.event(s.Turn, "vote",
			fmt.Sprintf("Politburo %s change to %s (%d-%d, %d abstaining)", verdict, slot.Name, t.For, t.Against, t.Abstentions),
			slot.ID)
	}
}

// Propose submits a change for a vote on a later turn.
func Propose(s *state.Store, slot *state.PolicySlot, optionID, proposerID string) state.PolicyChangeRecord {
	slot.Pending = &state.Proposal{OptionID: optionID, ProposerID: proposerID, SubmittedTurn: s.Turn}
	return state.PolicyChangeRecord{
		Turn:       s.Turn,
		FromOption: slot.Current,
		ToOption:   optionID,
		ProposerID: proposerID,
		Method:     state.MethodVoted,
	}
}

// Decree applies a change immediately and records it.
func Decree(s *state.Store, slot *state.PolicySlot, optionID, proposerID string) state.PolicyChangeRecord {
	rec := state.PolicyChangeRecord{
		ID:         state.NewID("policy", s.Turn, slot.ID, "decree", strconv.Itoa(len(slot.History))),
		Turn:       s.Turn,
		FromOption: slot.Current,
		ToOption:   optionID,
		ProposerID: proposerID,
		Method:     state.MethodDecreed,
		Passed:     true,
	}
	slot.History = append(slot.History, rec)
	enact(s, slot, optionID)
	return rec
}

// enact switches the slot's option and applies its one-off stat effects.
func enact(s *state.Store, slot *state.PolicySlot, optionID string) {
	if slot.Current == optionID {
		return
	}
	opt, ok := slot.Option(optionID)
	if !ok {
		return
	}
	slot.Current = optionID
	for _, st := range state.CoreStats {
		if d, ok := opt.OnEnact[st]; ok {
			s.ApplyStat(st, d)
		}
	}
}
