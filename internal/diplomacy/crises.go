package diplomacy

import (
	"fmt"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// IncidentKind is a world incident involving a foreign country.
type IncidentKind string

const (
	BorderIncident   IncidentKind = "borderIncident"
	ArmsBuildUp      IncidentKind = "armsBuildUp"
	AmbassadorRecall IncidentKind = "ambassadorRecall"
	TreatyViolation  IncidentKind = "treatyViolation"
	TradeDispute     IncidentKind = "tradeDispute"
	Revolution       IncidentKind = "revolution"
	Purge            IncidentKind = "purge"
	Coup             IncidentKind = "coup"
	Defection        IncidentKind = "defection"
	EspionageScandal IncidentKind = "espionageScandal"
	RefugeeCrisis    IncidentKind = "refugeeCrisis"
)

// incidentOrder fixes the order kinds are rolled in.
var incidentOrder = []IncidentKind{
	BorderIncident, ArmsBuildUp, AmbassadorRecall, TreatyViolation, TradeDispute,
	Revolution, Purge, Coup, Defection, EspionageScandal, RefugeeCrisis,
}

// BaseProbability is the per-turn percentage chance of each kind.
var BaseProbability = map[IncidentKind]float64{
	BorderIncident:   8,
	ArmsBuildUp:      6,
	AmbassadorRecall: 4,
	TreatyViolation:  3,
	TradeDispute:     7,
	Revolution:       2,
	Purge:            3,
	Coup:             2,
	Defection:        4,
	EspionageScandal: 5,
	RefugeeCrisis:    3,
}

// ChainLookback is how many turns back a past incident can amplify a new one.
const ChainLookback = 3

type chainKey struct{ past, next IncidentKind }

// ChainMultipliers amplify an incident that follows a related one in the same country.
var ChainMultipliers = map[chainKey]float64{
	{Revolution, Purge}:                  2.0,
	{TreatyViolation, AmbassadorRecall}:  1.8,
	{BorderIncident, ArmsBuildUp}:        1.5,
	{EspionageScandal, AmbassadorRecall}: 1.6,
	{Coup, Purge}:                        1.7,
	{Purge, Defection}:                   1.5,
	{TradeDispute, TreatyViolation}:      1.4,
	{ArmsBuildUp, BorderIncident}:        1.3,
	{Revolution, RefugeeCrisis}:          1.8,
	{Coup, RefugeeCrisis}:                1.5,
}

// Eligible lists the incident kinds a country can produce, in roll order.
// Internal upheavals depend on the government, hostility on the bloc.
func Eligible(c *state.ForeignCountry) []IncidentKind {
	allowed := map[IncidentKind]bool{
		BorderIncident:   true,
		AmbassadorRecall: true,
		EspionageScandal: true,
		RefugeeCrisis:    true,
	}
	if c.TradeVolume > 0 {
		allowed[TradeDispute] = true
	}
	if len(c.Treaties) > 0 {
		allowed[TreatyViolation] = true
	}

	switch c.Government {
	case state.GovCommunist:
		allowed[Purge] = true
		allowed[Defection] = true
	case state.GovSocialistRepublic:
		allowed[Purge] = true
		allowed[Revolution] = true
		allowed[Defection] = true
	case state.GovMilitaryJunta:
		allowed[Coup] = true
		allowed[Purge] = true
		allowed[Revolution] = true
		allowed[ArmsBuildUp] = true
	case state.GovMonarchy:
		allowed[Coup] = true
		allowed[Revolution] = true
	}

	switch c.Bloc {
	case state.BlocCapitalist, state.BlocRival:
		allowed[ArmsBuildUp] = true
		allowed[Defection] = true
	}

	var out []IncidentKind
	for _, k := range incidentOrder {
		if allowed[k] {
			out = append(out, k)
		}
	}
	return out
}

// ContextMultiplier scales a kind's chance by the country's situation.
func ContextMultiplier(kind IncidentKind, c *state.ForeignCountry, stability int) float64 {
	switch {
	case kind == BorderIncident && c.Tension > 30:
		return 2.0
	case kind == TradeDispute && c.TradeVolume > 50:
		return 1.5
	case kind == AmbassadorRecall && c.Relationship < -50:
		return 1.5
	case kind == Coup && stability < 30:
		return 1.5
	}
	return 1.0
}

// ChainMultiplier returns the largest multiplier from incidents recorded for
// the same country on the previous ChainLookback turns, or 1. Records from
// the current turn never count.
func ChainMultiplier(history []state.DiplomaticRecord, countryID string, kind IncidentKind, turn int) float64 {
	best := 1.0
	for _, r := range history {
		if r.CountryID != countryID || turn-r.Turn > ChainLookback || r.Turn >= turn {
			continue
		}
		if m, ok := ChainMultipliers[chainKey{IncidentKind(r.Kind), kind}]; ok && m > best {
			best = m
		}
	}
	return best
}

// Probability is the final clamped percentage chance of an incident.
func Probability(s *state.Store, c *state.ForeignCountry, kind IncidentKind) float64 {
	p := BaseProbability[kind] *
		ContextMultiplier(kind, c, s.GetStat(state.Stability)) *
		ChainMultiplier(s.DiplomaticHistory, c.ID, kind, s.Turn)
	return state.ClampFloat(p, 0, 100)
}

// Incident is a world incident that occurred this turn.
type Incident struct {
	Kind        IncidentKind `json:"kind"`
	CountryID   string       `json:"country_id"`
	Probability float64      `json:"probability"`
}

// GenerateIncidents rolls every eligible kind for every country. Occurring
// incidents apply their effects and are added to the chaining history after
// all countries are rolled, so one turn's incidents do not chain into each other.
func GenerateIncidents(s *state.Store, rng entropy.Source) ([]Incident, []state.Event) {
	var incidents []Incident
	for _, c := range s.Countries {
		for _, kind := range Eligible(c) {
			p := Probability(s, c, kind)
			if !entropy.Chance(rng, p) {
				continue
			}
			incidents = append(incidents, Incident{Kind: kind, CountryID: c.ID, Probability: p})
		}
	}

	var events []state.Event
	for _, inc := range incidents {
		c, _ := s.Country(inc.CountryID)
		applyIncident(s, c, inc.Kind)
		s.RecordDiplomatic(string(inc.Kind), s.Turn, c.ID)
		events = append(events, state.NewEvent(s.Turn, state.EventDiplomacy, string(inc.Kind),
			fmt.Sprintf("%s: %s", c.Name, inc.Kind), len(events), c.ID))
	}
	return incidents, events
}

func applyIncident(s *state.Store, c *state.ForeignCountry, kind IncidentKind) {
	switch kind {
	case BorderIncident:
		c.AdjustTension(10)
		c.AdjustRelationship(-5)
	case ArmsBuildUp:
		c.AdjustTension(5)
	case AmbassadorRecall:
		c.AdjustRelationship(-10)
	case TreatyViolation:
		c.AdjustRelationship(-8)
		c.AdjustTension(5)
	case TradeDispute:
		c.AdjustTrade(-5)
		c.AdjustRelationship(-3)
	case Revolution:
		c.AdjustTension(5)
		c.AdjustRelationship(-5)
	case Purge:
		c.AdjustRelationship(-2)
	case Coup:
		c.Government = state.GovMilitaryJunta
		c.AdjustRelationship(-5)
	case Defection:
		s.ApplyStat(state.InternationalStanding, -2)
	case EspionageScandal:
		c.AdjustRelationship(-10)
		c.AdjustTension(10)
	case RefugeeCrisis:
		s.ApplyStat(state.Stability, -2)
		s.ApplyStat(state.Treasury, -2)
	}
}
