package politics

import (
	"sort"

	"github.com/talgya/politburo/internal/state"
)

// Action is what the General Secretary does with a turn.
type Action string

const (
	ActionPolicy       Action = "policy"       // propose or decree
	ActionTargetRival  Action = "targetRival"  // move against a rival
	ActionAppoint      Action = "appoint"      // place a loyalist
	ActionBuildSupport Action = "buildSupport" // court the public
	ActionNone         Action = "none"
)

// goalActions maps a goal to the action that advances it.
var goalActions = map[state.GoalType]Action{
	state.GoalReformEconomy:      ActionPolicy,
	state.GoalStrengthenSecurity: ActionPolicy,
	state.GoalEliminateRival:     ActionTargetRival,
	state.GoalConsolidatePower:   ActionAppoint,
	state.GoalExpandInfluence:    ActionBuildSupport,
	state.GoalPreserveStatus:     ActionBuildSupport,
}

// goalCategory restricts which slots a policy goal looks at.
var goalCategory = map[state.GoalType]state.PolicyCategory{
	state.GoalReformEconomy:      state.CategoryEconomic,
	state.GoalStrengthenSecurity: state.CategorySecurity,
}

// Personality-driven wishes a leader holds regardless of faction line.
const personalityPriority = 100

type trait struct {
	value  func(state.Personality) int
	wishes []state.PolicyPreference
}

var personalityAgenda = []trait{
	{
		value: func(p state.Personality) int { return p.Ambition },
		wishes: []state.PolicyPreference{
			{SlotID: "succession", OptionID: "designatedHeir", Priority: personalityPriority},
			{SlotID: "termLimits", OptionID: "abolished", Priority: personalityPriority},
		},
	},
	{
		value:  func(p state.Personality) int { return p.Paranoia },
		wishes: []state.PolicyPreference{{SlotID: "surveillance", OptionID: "pervasive", Priority: personalityPriority}},
	},
	{
		value:  func(p state.Personality) int { return p.Ruthlessness },
		wishes: []state.PolicyPreference{{SlotID: "arrestAuthority", OptionID: "unrestricted", Priority: personalityPriority}},
	},
}

const personalityCutoff = 70

// Agenda returns a character's policy wishes: strong personality traits
// first, then the faction line by priority.
func Agenda(c *state.Character, s *state.Store) []state.PolicyPreference {
	var out []state.PolicyPreference
	for _, t := range personalityAgenda {
		if t.value(c.Personality) > personalityCutoff {
			out = append(out, t.wishes...)
		}
	}
	if f, ok := s.Faction(c.Faction); ok {
		out = append(out, f.Ranked()...)
	}
	return out
}

// Actionable reports whether pref can be put forward by c with the given power.
// The slot must exist with no pending proposal, the option must exist and
// differ from the current one, and the proposer must meet the preference's bars.
func Actionable(pref state.PolicyPreference, c *state.Character, power int, s *state.Store) bool {
	slot, ok := s.Policy(pref.SlotID)
	if !ok || slot.Pending != nil || slot.Current == pref.OptionID {
		return false
	}
	if _, ok := slot.Option(pref.OptionID); !ok {
		return false
	}
	if power < pref.MinPower || c.Position < pref.MinPosition {
		return false
	}
	support := 0
	if f, ok := s.Faction(c.Faction); ok {
		support = f.Support
	}
	return support >= pref.MinSupport
}

// FirstActionable returns the first preference c can act on, optionally
// restricted to one slot category.
func FirstActionable(prefs []state.PolicyPreference, c *state.Character, power int, s *state.Store, category state.PolicyCategory) (state.PolicyPreference, bool) {
	for _, p := range prefs {
		if category != "" {
			slot, ok := s.Policy(p.SlotID)
			if !ok || slot.Category != category {
				continue
			}
		}
		if Actionable(p, c, power, s) {
			return p, true
		}
	}
	return state.PolicyPreference{}, false
}

// ActiveGoals returns active goals by descending priority.
func ActiveGoals(c *state.Character) []state.Goal {
	var out []state.Goal
	for _, g := range c.Goals {
		if g.Active {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}
