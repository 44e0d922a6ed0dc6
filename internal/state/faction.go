// Factions and the policy positions they push for.
package state

import "sort"

// PolicyPreference is a faction's wish to move a slot to an option, with
// the standing a proposer needs before it can be put forward.
type PolicyPreference struct {
	SlotID      string   `json:"slot_id" yaml:"slot"`
	OptionID    string   `json:"option_id" yaml:"option"`
	Priority    int      `json:"priority" yaml:"priority"`
	MinPower    int      `json:"min_power,omitempty" yaml:"minPower"`
	MinPosition Position `json:"min_position,omitempty" yaml:"minPosition"`
	MinSupport  int      `json:"min_support,omitempty" yaml:"minSupport"`
}

// Faction is an ideological bloc inside the party.
type Faction struct {
	ID          FactionID          `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Support     int                `json:"support" yaml:"support"` // 0–100
	Preferences []PolicyPreference `json:"preferences" yaml:"preferences"`
}

// Ranked returns the preferences by descending priority, ties in declared order.
func (f *Faction) Ranked() []PolicyPreference {
	out := make([]PolicyPreference, len(f.Preferences))
	copy(out, f.Preferences)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Prefers returns the option the faction wants for a slot, if any.
func (f *Faction) Prefers(slotID string) (string, bool) {
	best, found := -1, ""
	for _, p := range f.Preferences {
		if p.SlotID == slotID && p.Priority > best {
			best, found = p.Priority, p.OptionID
		}
	}
	return found, best >= 0
}

// AdjustSupport shifts faction support, clamped to [0, 100].
func (f *Faction) AdjustSupport(delta int) {
	f.Support = ClampInt(f.Support+delta, 0, 100)
}
