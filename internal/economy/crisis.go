package economy

import (
	"github.com/talgya/politburo/internal/state"
)

// crisisRule pairs a trigger with the penalties applied every turn it holds.
type crisisRule struct {
	kind      state.CrisisKind
	trigger   func(s *state.Store) bool
	penalties map[state.Stat]int
}

func embargoCount(s *state.Store) int {
	n := 0
	for _, c := range s.Countries {
		if c.Embargo {
			n++
		}
	}
	return n
}

// crisisRules are checked in order; the first whose trigger holds starts.
var crisisRules = []crisisRule{
	{
		kind:    state.CrisisHyperinflation,
		trigger: func(s *state.Store) bool { return s.Economy.Indicators.Inflation > 25 },
		penalties: map[state.Stat]int{
			state.Treasury: -3, state.PopularSupport: -4, state.Stability: -3,
		},
	},
	{
		kind:    state.CrisisBankRun,
		trigger: func(s *state.Store) bool { return s.GetStat(state.Treasury) < -50 },
		penalties: map[state.Stat]int{
			state.Treasury: -6, state.Stability: -3, state.EliteLoyalty: -2,
		},
	},
	{
		kind:    state.CrisisHarvestFailure,
		trigger: func(s *state.Store) bool { return s.GetStat(state.FoodSupply) < 20 },
		penalties: map[state.Stat]int{
			state.FoodSupply: -8, state.PopularSupport: -2,
		},
	},
	{
		kind: state.CrisisIndustrialCollapse,
		trigger: func(s *state.Store) bool {
			return s.GetStat(state.IndustrialOutput) < 20 || s.Economy.Indicators.GDPGrowth <= -8
		},
		penalties: map[state.Stat]int{
			state.IndustrialOutput: -6, state.Stability: -2,
		},
	},
	{
		kind:    state.CrisisTradeBlockade,
		trigger: func(s *state.Store) bool { return embargoCount(s) >= 2 },
		penalties: map[state.Stat]int{
			state.Treasury: -4, state.InternationalStanding: -3,
		},
	},
	{
		kind:    state.CrisisLaborUnrest,
		trigger: func(s *state.Store) bool { return s.Economy.Indicators.Unemployment > 20 },
		penalties: map[state.Stat]int{
			state.IndustrialOutput: -3, state.Stability: -4, state.PopularSupport: -2,
		},
	},
	{
		kind: state.CrisisShortage,
		trigger: func(s *state.Store) bool {
			return s.GetStat(state.FoodSupply) < 35 || s.GetStat(state.IndustrialOutput) < 30
		},
		penalties: map[state.Stat]int{
			state.FoodSupply: -5, state.PopularSupport: -3, state.Stability: -2,
		},
	},
	{
		kind:    state.CrisisBlackMarket,
		trigger: func(s *state.Store) bool { return s.GetStat(state.Corruption) > 75 },
		penalties: map[state.Stat]int{
			state.Corruption: 4, state.Treasury: -2,
		},
	},
}

func ruleFor(kind state.CrisisKind) (crisisRule, bool) {
	for _, r := range crisisRules {
		if r.kind == kind {
			return r, true
		}
	}
	return crisisRule{}, false
}

// Penalties returns the per-turn stat penalties of a crisis kind.
func Penalties(kind state.CrisisKind) map[state.Stat]int {
	r, ok := ruleFor(kind)
	if !ok {
		return nil
	}
	out := make(map[state.Stat]int, len(r.penalties))
	for k, v := range r.penalties {
		out[k] = v
	}
	return out
}

// CrisisUpdate describes what happened to the crisis state this turn.
type CrisisUpdate struct {
	Active    state.CrisisKind   `json:"active,omitempty"`
	Started   state.CrisisKind   `json:"started,omitempty"`
	Ended     state.CrisisKind   `json:"ended,omitempty"`
	Penalties map[state.Stat]int `json:"penalties,omitempty"`
}

// UpdateCrisis ends the active crisis once its trigger clears, starts a new
// one when none is active, and applies the active crisis's penalties.
func UpdateCrisis(s *state.Store) CrisisUpdate {
	var u CrisisUpdate
	econ := &s.Economy

	if econ.Crisis != state.CrisisNone {
		r, ok := ruleFor(econ.Crisis)
		if !ok || !r.trigger(s) {
			u.Ended = econ.Crisis
			econ.Crisis = state.CrisisNone
			econ.CrisisSince = 0
		}
	}

	if econ.Crisis == state.CrisisNone {
		for _, r := range crisisRules {
			if r.kind == u.Ended {
				continue
			}
			if r.trigger(s) {
				econ.Crisis = r.kind
				econ.CrisisSince = s.Turn
				u.Started = r.kind
				break
			}
		}
	}

	if econ.Crisis == state.CrisisNone {
		return u
	}
	u.Active = econ.Crisis
	u.Penalties = Penalties(econ.Crisis)
	for _, st := range state.CoreStats {
		if d, ok := u.Penalties[st]; ok {
			s.ApplyStat(st, d)
		}
	}
	return u
}
