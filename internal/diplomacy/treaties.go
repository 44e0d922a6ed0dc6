package diplomacy

import (
	"fmt"
	"strconv"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// TreatyDurations is the term of each treaty type in turns. 0 means open-ended.
var TreatyDurations = map[state.TreatyType]int{
	state.TreatyTrade:            20,
	state.TreatyMutualDefense:    0,
	state.TreatyAid:              10,
	state.TreatyNonAggression:    30,
	state.TreatyCulturalExchange: 15,
}

// Acceptance modifiers.
var (
	blocAcceptance = map[state.Bloc]float64{
		state.BlocSocialist:  15,
		state.BlocNonAligned: 0,
		state.BlocCapitalist: -15,
		state.BlocRival:      -30,
	}
	typeAcceptance = map[state.TreatyType]float64{
		state.TreatyTrade:            10,
		state.TreatyCulturalExchange: 15,
		state.TreatyNonAggression:    0,
		state.TreatyMutualDefense:    -20,
		state.TreatyAid:              20,
	}
)

const (
	baseAcceptance     = 50
	acceptRelationship = 5
	rejectRelationship = -3
)

// ValidTreatyType reports whether t names a known treaty type.
func ValidTreatyType(t state.TreatyType) bool {
	_, ok := TreatyDurations[t]
	return ok
}

// AcceptanceChance is the clamped percentage chance a country accepts a treaty.
func AcceptanceChance(c *state.ForeignCountry, t state.TreatyType) float64 {
	p := baseAcceptance + float64(c.Relationship)/2 + blocAcceptance[c.Bloc] + typeAcceptance[t]
	return state.ClampFloat(p, 0, 100)
}

// ProposalOutcome is the result of one treaty proposal.
type ProposalOutcome struct {
	CountryID string           `json:"country_id"`
	Type      state.TreatyType `json:"type"`
	Chance    float64          `json:"chance"`
	Accepted  bool             `json:"accepted"`
	Failed    bool             `json:"failed,omitempty"` // not rolled
	Reason    string           `json:"reason,omitempty"`
	TreatyID  string           `json:"treaty_id,omitempty"`
}

// ProposeTreaty rolls a treaty proposal. Acceptance creates the treaty and
// improves relations, rejection sours them slightly. A missing country or a
// duplicate treaty fails without a roll.
func ProposeTreaty(s *state.Store, rng entropy.Source, req state.TreatyRequest) ProposalOutcome {
	out := ProposalOutcome{CountryID: req.CountryID, Type: req.Type}

	c, ok := s.Country(req.CountryID)
	if !ok {
		out.Failed, out.Reason = true, "unknown country"
		return out
	}
	if !ValidTreatyType(req.Type) {
		out.Failed, out.Reason = true, "unknown treaty type"
		return out
	}
	if c.HasTreaty(req.Type) {
		out.Failed, out.Reason = true, "treaty already in force"
		return out
	}

	out.Chance = AcceptanceChance(c, req.Type)
	if !entropy.Chance(rng, out.Chance) {
		c.AdjustRelationship(rejectRelationship)
		out.Reason = "rejected"
		return out
	}

	tr := state.Treaty{
		ID:         state.NewID("treaty", s.Turn, c.ID, string(req.Type), strconv.Itoa(len(c.Treaties))),
		Type:       req.Type,
		SignedTurn: s.Turn,
		Secret:     req.Secret,
	}
	if d := TreatyDurations[req.Type]; d > 0 {
		tr.ExpiresTurn = s.Turn + d
	}
	c.Treaties = append(c.Treaties, tr)
	c.AdjustRelationship(acceptRelationship)
	out.Accepted = true
	out.TreatyID = tr.ID
	return out
}

// ExpiredFlag is the store flag raised when a treaty lapses.
func ExpiredFlag(countryID string, t state.TreatyType) string {
	return fmt.Sprintf("treaty_expired:%s:%s", countryID, t)
}

// ExpireTreaties removes treaties past their term and flags each removal.
func ExpireTreaties(s *state.Store) []state.Event {
	var events []state.Event
	for _, c := range s.Countries {
		kept := c.Treaties[:0]
		for _, t := range c.Treaties {
			if t.Expired(s.Turn) {
				s.AddFlag(ExpiredFlag(c.ID, t.Type))
				events = append(events, state.NewEvent(s.Turn, state.EventDiplomacy, "treatyExpired",
					fmt.Sprintf("The %s with %s has lapsed", t.Type, c.Name), len(events), c.ID))
				continue
			}
			kept = append(kept, t)
		}
		c.Treaties = kept
	}
	return events
}

// ApplyTreatyEffects applies the per-turn effect of every active treaty.
func ApplyTreatyEffects(s *state.Store) {
	for _, c := range s.Countries {
		for _, t := range c.Treaties {
			switch t.Type {
			case state.TreatyTrade:
				s.ApplyStat(state.Treasury, 1)
				c.AdjustTrade(1)
			case state.TreatyMutualDefense:
				for _, other := range s.Countries {
					if other != c && c.Bloc.Opposes(other.Bloc) {
						other.AdjustTension(2)
					}
				}
			case state.TreatyAid:
				s.ApplyStat(state.Treasury, -2)
				c.AdjustRelationship(2)
			case state.TreatyNonAggression:
				c.AdjustTension(-1)
			case state.TreatyCulturalExchange:
				c.AdjustRelationship(1)
			}
		}
	}
}
