// Package state holds the authoritative game state every engine reads and writes.
// Collections are ordered slices with id indexes so iteration order is stable
// and a fixed seed reproduces a turn exactly.
package state

import (
	"sort"
)

// Consequence is a follow-up incident scheduled by an earlier choice.
// It is surfaced by the consequence-callback generator once DueTurn arrives.
type Consequence struct {
	ID       string `json:"id" yaml:"id"`
	Key      string `json:"key" yaml:"key"` // catalog context key
	DueTurn  int    `json:"due_turn" yaml:"dueTurn"`
	Priority int    `json:"priority" yaml:"priority"` // events.Priority value
	Title    string `json:"title,omitempty" yaml:"title"`
}

// Store is the State Store.
type Store struct {
	Turn int

	stats     map[Stat]int
	flags     map[string]struct{}
	variables map[string]string

	Player  Player
	Economy EconomyState

	Countries    []*ForeignCountry
	countryIndex map[string]*ForeignCountry

	Policies    []*PolicySlot
	policyIndex map[string]*PolicySlot

	Characters     []*Character
	characterIndex map[string]*Character

	Factions     []*Faction
	factionIndex map[FactionID]*Faction

	// Player-queued treaty proposals, resolved in the next diplomatic phase.
	TreatyQueue []TreatyRequest

	// World incidents used for diplomatic event chaining.
	DiplomaticHistory []DiplomaticRecord

	// Scheduled follow-ups surfaced by the consequence-callback generator.
	Consequences []Consequence
}

// NewStore creates an empty store with every core stat at 50 (treasury at 0).
func NewStore() *Store {
	s := &Store{
		stats:          make(map[Stat]int),
		flags:          make(map[string]struct{}),
		variables:      make(map[string]string),
		countryIndex:   make(map[string]*ForeignCountry),
		policyIndex:    make(map[string]*PolicySlot),
		characterIndex: make(map[string]*Character),
		factionIndex:   make(map[FactionID]*Faction),
	}
	for _, st := range CoreStats {
		s.stats[st] = 50
	}
	s.stats[Treasury] = 0
	return s
}

// GetStat returns a stat's value, 0 if never set.
func (s *Store) GetStat(name Stat) int {
	return s.stats[name]
}

// ApplyStat adds delta to a stat and clamps the result to the stat's range.
// It returns the value after clamping.
func (s *Store) ApplyStat(name Stat, delta int) int {
	v := RangeOf(name).Clamp(s.stats[name] + delta)
	s.stats[name] = v
	return v
}

// SetStat overwrites a stat, clamped. Used by setup and persistence.
func (s *Store) SetStat(name Stat, value int) {
	s.stats[name] = RangeOf(name).Clamp(value)
}

// StatNames returns every stat present, sorted.
func (s *Store) StatNames() []Stat {
	names := make([]Stat, 0, len(s.stats))
	for k := range s.stats {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Stats returns a copy of all stats.
func (s *Store) Stats() map[Stat]int {
	out := make(map[Stat]int, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// ── Flags ────────────────────────────────────────────────────────────

// AddFlag sets a flag.
func (s *Store) AddFlag(flag string) { s.flags[flag] = struct{}{} }

// HasFlag reports whether a flag is set.
func (s *Store) HasFlag(flag string) bool {
	_, ok := s.flags[flag]
	return ok
}

// RemoveFlag clears a flag.
func (s *Store) RemoveFlag(flag string) { delete(s.flags, flag) }

// Flags returns all set flags, sorted.
func (s *Store) Flags() []string {
	out := make([]string, 0, len(s.flags))
	for f := range s.flags {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ── Variables ────────────────────────────────────────────────────────

// SetVar stores an ad-hoc marker.
func (s *Store) SetVar(key, value string) { s.variables[key] = value }

// Var returns a marker and whether it was set.
func (s *Store) Var(key string) (string, bool) {
	v, ok := s.variables[key]
	return v, ok
}

// DeleteVar removes a marker.
func (s *Store) DeleteVar(key string) { delete(s.variables, key) }

// Variables returns a copy of all markers.
func (s *Store) Variables() map[string]string {
	out := make(map[string]string, len(s.variables))
	for k, v := range s.variables {
		out[k] = v
	}
	return out
}

// ── Collections ──────────────────────────────────────────────────────

// AddCountry registers a country. A duplicate id replaces the earlier entry.
func (s *Store) AddCountry(c *ForeignCountry) {
	if old, ok := s.countryIndex[c.ID]; ok {
		for i, existing := range s.Countries {
			if existing == old {
				s.Countries[i] = c
			}
		}
	} else {
		s.Countries = append(s.Countries, c)
	}
	s.countryIndex[c.ID] = c
}

// Country looks up a country by id.
func (s *Store) Country(id string) (*ForeignCountry, bool) {
	c, ok := s.countryIndex[id]
	return c, ok
}

// AddPolicy registers a policy slot.
func (s *Store) AddPolicy(p *PolicySlot) {
	if old, ok := s.policyIndex[p.ID]; ok {
		for i, existing := range s.Policies {
			if existing == old {
				s.Policies[i] = p
			}
		}
	} else {
		s.Policies = append(s.Policies, p)
	}
	s.policyIndex[p.ID] = p
}

// Policy looks up a policy slot by id.
func (s *Store) Policy(id string) (*PolicySlot, bool) {
	p, ok := s.policyIndex[id]
	return p, ok
}

// AddCharacter registers a character.
func (s *Store) AddCharacter(c *Character) {
	if old, ok := s.characterIndex[c.ID]; ok {
		for i, existing := range s.Characters {
			if existing == old {
				s.Characters[i] = c
			}
		}
	} else {
		s.Characters = append(s.Characters, c)
	}
	s.characterIndex[c.ID] = c
}

// Character looks up a character by id.
func (s *Store) Character(id string) (*Character, bool) {
	c, ok := s.characterIndex[id]
	return c, ok
}

// LivingCharacter returns the character only if it exists and is alive.
func (s *Store) LivingCharacter(id string) (*Character, bool) {
	c, ok := s.characterIndex[id]
	if !ok || !c.Alive {
		return nil, false
	}
	return c, true
}

// OfficeHolders returns living characters who hold office, highest position first.
// Ties keep registration order.
func (s *Store) OfficeHolders() []*Character {
	var out []*Character
	for _, c := range s.Characters {
		if c.HoldsOffice() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position > out[j].Position })
	return out
}

// AddFaction registers a faction.
func (s *Store) AddFaction(f *Faction) {
	if old, ok := s.factionIndex[f.ID]; ok {
		for i, existing := range s.Factions {
			if existing == old {
				s.Factions[i] = f
			}
		}
	} else {
		s.Factions = append(s.Factions, f)
	}
	s.factionIndex[f.ID] = f
}

// Faction looks up a faction by id.
func (s *Store) Faction(id FactionID) (*Faction, bool) {
	f, ok := s.factionIndex[id]
	return f, ok
}

// ── Histories ────────────────────────────────────────────────────────

// RecordDiplomatic appends a world incident to the chaining history.
func (s *Store) RecordDiplomatic(kind string, turn int, countryID string) {
	s.DiplomaticHistory = append(s.DiplomaticHistory, DiplomaticRecord{
		Kind:      kind,
		Turn:      turn,
		CountryID: countryID,
	})
}

// TrimDiplomaticHistory drops records older than keepTurns before turn.
func (s *Store) TrimDiplomaticHistory(turn, keepTurns int) {
	n := 0
	for _, r := range s.DiplomaticHistory {
		if r.Turn >= turn-keepTurns {
			s.DiplomaticHistory[n] = r
			n++
		}
	}
	s.DiplomaticHistory = s.DiplomaticHistory[:n]
}

// ScheduleConsequence queues a follow-up incident.
func (s *Store) ScheduleConsequence(c Consequence) {
	s.Consequences = append(s.Consequences, c)
}

// RetireConsequences drops consequences by id and any overdue by more than grace turns.
// It returns how many were removed.
func (s *Store) RetireConsequences(fired map[string]bool, turn, grace int) int {
	n := 0
	for _, c := range s.Consequences {
		if fired[c.ID] || turn-c.DueTurn > grace {
			continue
		}
		s.Consequences[n] = c
		n++
	}
	removed := len(s.Consequences) - n
	s.Consequences = s.Consequences[:n]
	return removed
}
