package politics

import (
	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// generatedVoters is the size of the simulated body when no voters hold office.
const generatedVoters = 7

// Tally is the outcome of a vote.
type Tally struct {
	For         int  `json:"for"`
	Against     int  `json:"against"`
	Abstentions int  `json:"abstentions"`
	Generated   bool `json:"generated,omitempty"` // no real voters, tallies simulated
}

// Passed reports whether the ayes carried it.
func (t Tally) Passed() bool { return t.For > t.Against }

// VoterSupport is the percentage chance a voter backs a proposal.
func VoterSupport(voter *state.Character, proposer *state.Character, slotID, optionID string, s *state.Store) float64 {
	p := 50.0
	if proposer != nil && voter.Faction == proposer.Faction {
		p += 30
	}
	if f, ok := s.Faction(voter.Faction); ok {
		if want, ok := f.Prefers(slotID); ok {
			if want == optionID {
				p += 20
			} else {
				p -= 20
			}
		}
	}
	p += float64(voter.Personality.Loyalty-50) / 5
	return state.ClampFloat(p, 5, 95)
}

// cast turns one draw into a vote. Draws above the support band split
// between abstention and opposition, one in five abstaining.
func cast(t *Tally, support float64, rng entropy.Source) {
	r := rng.Float64() * 100
	switch {
	case r < support:
		t.For++
	case r < support+(100-support)/5:
		t.Abstentions++
	default:
		t.Against++
	}
}

// Voters are the living members of the Politburo and above.
func Voters(s *state.Store) []*state.Character {
	var out []*state.Character
	for _, c := range s.Characters {
		if c.Alive && c.Position >= state.PositionPolitburo {
			out = append(out, c)
		}
	}
	return out
}

// Vote simulates the Politburo voting on a proposal. One draw per voter.
func Vote(s *state.Store, rng entropy.Source, slotID string, p *state.Proposal) Tally {
	var t Tally
	proposer, _ := s.LivingCharacter(p.ProposerID)

	voters := Voters(s)
	if len(voters) == 0 {
		t.Generated = true
		support := state.ClampFloat(50+float64(s.GetStat(state.Stability)-50)/5, 5, 95)
		for i := 0; i < generatedVoters; i++ {
			cast(&t, support, rng)
		}
		return t
	}
	for _, v := range voters {
		cast(&t, VoterSupport(v, proposer, slotID, p.OptionID, s), rng)
	}
	return t
}
