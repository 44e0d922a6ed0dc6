// Package politics runs the leadership's internal maneuvering each turn:
// the General Secretary's strategy, decrees, committee proposals, and votes.
package politics

import (
	"github.com/talgya/politburo/internal/state"
)

// positionPower is the bonus an office adds to a character's power.
var positionPower = map[state.Position]int{
	state.PositionGeneralSecretary:  20,
	state.PositionStandingCommittee: 10,
	state.PositionPolitburo:         5,
}

// Power is a character's leverage: base 50 plus office, faction support,
// and stability terms, clamped to [30, 100].
func Power(c *state.Character, s *state.Store) int {
	support := 0
	if f, ok := s.Faction(c.Faction); ok {
		support = f.Support
	}
	p := 50 + positionPower[c.Position] + support/5 + (s.GetStat(state.Stability)-50)/5
	return state.ClampInt(p, 30, 100)
}

// DecreeThreshold is the power a leader needs to bypass a vote.
// Ambitious leaders and stable regimes shift it in opposite directions.
func DecreeThreshold(ambition, stability int) int {
	t := 60
	switch {
	case ambition > 70:
		t -= 15
	case ambition < 30:
		t += 10
	}
	switch {
	case stability > 70:
		t += 10
	case stability < 30:
		t -= 10
	}
	return state.ClampInt(t, 40, 80)
}

// CanDecree reports whether a change to slot may bypass the vote.
func CanDecree(power, threshold int, slot *state.PolicySlot) bool {
	return power > threshold && slot.Decreeable()
}

// ProposalChance is the percentage chance a committee member puts forward a proposal.
func ProposalChance(ambition int) float64 {
	return 5 + float64(ambition)/10
}
