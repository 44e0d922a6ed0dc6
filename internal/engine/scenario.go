// Scenario files: the starting position a game is built from.
package engine

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/politburo/internal/economy"
	"github.com/talgya/politburo/internal/state"
)

//go:embed scenarios/default.yaml
var defaultScenario []byte

// Scenario is the YAML form of a starting store.
type Scenario struct {
	Turn       int                    `yaml:"turn"`
	Player     state.Player           `yaml:"player"`
	Stats      map[state.Stat]int     `yaml:"stats"`
	Economy    state.EconomyState     `yaml:"economy"`
	Flags      []string               `yaml:"flags"`
	Vars       map[string]string      `yaml:"vars"`
	Policies   []state.PolicySlot     `yaml:"policies"`
	Factions   []state.Faction        `yaml:"factions"`
	Characters []state.Character      `yaml:"characters"`
	Countries  []state.ForeignCountry `yaml:"countries"`
}

// ParseScenario decodes scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// DefaultScenario returns the built-in starting position.
func DefaultScenario() (*Scenario, error) {
	return ParseScenario(defaultScenario)
}

var knownSystems = map[state.EconomicSystem]bool{
	state.SystemPlanned:         true,
	state.SystemMarketSocialism: true,
	state.SystemMixed:           true,
	state.SystemStateCapitalism: true,
}

// Validate checks cross references inside the scenario.
func (sc *Scenario) Validate() error {
	if sc.Economy.System != "" && !knownSystems[sc.Economy.System] {
		return fmt.Errorf("scenario: unknown economic system %q", sc.Economy.System)
	}
	slots := make(map[string]bool, len(sc.Policies))
	for _, p := range sc.Policies {
		if p.ID == "" {
			return fmt.Errorf("scenario: policy slot without id")
		}
		if slots[p.ID] {
			return fmt.Errorf("scenario: duplicate policy slot %s", p.ID)
		}
		slots[p.ID] = true
		if _, ok := p.Active(); !ok {
			return fmt.Errorf("scenario: slot %s has unknown current option %q", p.ID, p.Current)
		}
	}
	factions := make(map[state.FactionID]bool, len(sc.Factions))
	for _, f := range sc.Factions {
		factions[f.ID] = true
		for _, pref := range f.Preferences {
			if !slots[pref.SlotID] {
				return fmt.Errorf("scenario: faction %s prefers unknown slot %s", f.ID, pref.SlotID)
			}
		}
	}
	chars := make(map[string]bool, len(sc.Characters))
	for _, c := range sc.Characters {
		if c.ID == "" {
			return fmt.Errorf("scenario: character without id")
		}
		if c.Faction != "" && !factions[c.Faction] {
			return fmt.Errorf("scenario: character %s in unknown faction %s", c.ID, c.Faction)
		}
		chars[c.ID] = true
	}
	for _, id := range append([]string{sc.Player.PatronID, sc.Player.RivalID}, sc.Player.AllyIDs...) {
		if id != "" && !chars[id] {
			return fmt.Errorf("scenario: player references unknown character %s", id)
		}
	}
	countries := make(map[string]bool, len(sc.Countries))
	for _, c := range sc.Countries {
		if c.ID == "" || countries[c.ID] {
			return fmt.Errorf("scenario: missing or duplicate country id %q", c.ID)
		}
		countries[c.ID] = true
	}
	return nil
}

// Store builds a fresh store from the scenario. Stats are clamped and sector
// shares normalized so the store starts inside its invariants.
func (sc *Scenario) Store() (*state.Store, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	s := state.NewStore()
	s.Turn = sc.Turn
	s.Player = sc.Player
	for name, v := range sc.Stats {
		s.SetStat(name, v)
	}
	for _, f := range sc.Flags {
		s.AddFlag(f)
	}
	for k, v := range sc.Vars {
		s.SetVar(k, v)
	}

	s.Economy = sc.Economy
	if s.Economy.System == "" {
		s.Economy.System = state.SystemPlanned
	}
	sec := s.Economy.Sectors
	s.Economy.Sectors = economy.NormalizeSectors(sec.Agriculture, sec.Industry, sec.Services)

	for _, p := range sc.Policies {
		p.Options = append([]state.PolicyOption(nil), p.Options...)
		s.AddPolicy(&p)
	}
	for _, f := range sc.Factions {
		f.Support = state.ClampInt(f.Support, 0, 100)
		s.AddFaction(&f)
	}
	for _, c := range sc.Characters {
		c.Goals = append([]state.Goal(nil), c.Goals...)
		s.AddCharacter(&c)
	}
	for _, c := range sc.Countries {
		c.Relationship = state.RelationshipRange.Clamp(c.Relationship)
		c.Tension = state.TensionRange.Clamp(c.Tension)
		c.TradeVolume = state.TradeRange.Clamp(c.TradeVolume)
		c.Treaties = append([]state.Treaty(nil), c.Treaties...)
		s.AddCountry(&c)
	}
	return s, nil
}
