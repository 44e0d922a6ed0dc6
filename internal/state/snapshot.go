package state

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serializable form of a Store.
type Snapshot struct {
	Turn              int                `json:"turn"`
	Stats             map[Stat]int       `json:"stats"`
	Flags             []string           `json:"flags"`
	Variables         map[string]string  `json:"variables"`
	Player            Player             `json:"player"`
	Economy           EconomyState       `json:"economy"`
	Countries         []*ForeignCountry  `json:"countries"`
	Policies          []*PolicySlot      `json:"policies"`
	Characters        []*Character       `json:"characters"`
	Factions          []*Faction         `json:"factions"`
	TreatyQueue       []TreatyRequest    `json:"treaty_queue"`
	DiplomaticHistory []DiplomaticRecord `json:"diplomatic_history"`
	Consequences      []Consequence      `json:"consequences"`
}

// Snapshot captures the store. Collections are shared, not copied.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Turn:              s.Turn,
		Stats:             s.Stats(),
		Flags:             s.Flags(),
		Variables:         s.Variables(),
		Player:            s.Player,
		Economy:           s.Economy,
		Countries:         s.Countries,
		Policies:          s.Policies,
		Characters:        s.Characters,
		Factions:          s.Factions,
		TreatyQueue:       s.TreatyQueue,
		DiplomaticHistory: s.DiplomaticHistory,
		Consequences:      s.Consequences,
	}
}

// FromSnapshot rebuilds a store, restoring indexes and clamping stats.
func FromSnapshot(snap Snapshot) *Store {
	s := NewStore()
	s.Turn = snap.Turn
	for k, v := range snap.Stats {
		s.SetStat(k, v)
	}
	for _, f := range snap.Flags {
		s.AddFlag(f)
	}
	for k, v := range snap.Variables {
		s.SetVar(k, v)
	}
	s.Player = snap.Player
	s.Economy = snap.Economy
	for _, c := range snap.Countries {
		s.AddCountry(c)
	}
	for _, p := range snap.Policies {
		s.AddPolicy(p)
	}
	for _, c := range snap.Characters {
		s.AddCharacter(c)
	}
	for _, f := range snap.Factions {
		s.AddFaction(f)
	}
	s.TreatyQueue = snap.TreatyQueue
	s.DiplomaticHistory = snap.DiplomaticHistory
	s.Consequences = snap.Consequences
	return s
}

// MarshalJSON encodes the store through its snapshot.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Clone returns a deep copy via a JSON round trip.
func (s *Store) Clone() (*Store, error) {
	b, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode store: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	return FromSnapshot(snap), nil
}
