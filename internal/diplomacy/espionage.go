package diplomacy

import (
	"fmt"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// NetworkExposed is the event kind for a blown network. It chains like an
// espionageScandal on later turns.
const NetworkExposed = "networkExposed"

// EspionageOutcome is the result of one country's intelligence roll.
type EspionageOutcome struct {
	CountryID string  `json:"country_id"`
	Chance    float64 `json:"chance"`
	Success   bool    `json:"success"`
	Exposed   bool    `json:"exposed,omitempty"`
}

// SuccessChance is the percentage chance an operation yields intelligence.
func SuccessChance(c *state.ForeignCountry, network int) float64 {
	p := 40 + float64(c.Espionage.Assets*5) + float64(network)/5 - float64(c.Tension)/5
	return state.ClampFloat(p, 5, 95)
}

// RunEspionage rolls every country where the player has assets in place.
// Failure raises exposure, and a second roll against exposure decides
// whether the network is blown.
func RunEspionage(s *state.Store, rng entropy.Source) ([]EspionageOutcome, []state.Event) {
	var outcomes []EspionageOutcome
	var events []state.Event
	network := s.GetStat(state.NetworkStrength)

	for _, c := range s.Countries {
		esp := &c.Espionage
		if esp.Assets <= 0 {
			continue
		}
		out := EspionageOutcome{CountryID: c.ID, Chance: SuccessChance(c, network)}

		if entropy.Chance(rng, out.Chance) {
			out.Success = true
			esp.Intel = state.ClampInt(esp.Intel+5+esp.Assets, 0, 100)
			esp.Exposure = state.ClampInt(esp.Exposure+2, 0, 100)
			outcomes = append(outcomes, out)
			continue
		}

		esp.Exposure = state.ClampInt(esp.Exposure+5, 0, 100)
		if entropy.Chance(rng, float64(esp.Exposure)) {
			out.Exposed = true
			c.AdjustRelationship(-10)
			c.AdjustTension(10)
			esp.Assets--
			esp.Exposure /= 2
			s.RecordDiplomatic(string(EspionageScandal), s.Turn, c.ID)
			events = append(events, state.NewEvent(s.Turn, state.EventDiplomacy, NetworkExposed,
				fmt.Sprintf("An intelligence network in %s has been exposed", c.Name), len(events), c.ID))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, events
}
