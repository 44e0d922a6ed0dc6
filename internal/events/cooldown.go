package events

// DefaultCooldowns is the full re-fire window of each incident type, in turns.
// The keys double as the incident taxonomy.
var DefaultCooldowns = map[Type]int{
	PatronSummons:           5,
	PatronDemand:            6,
	PatronWarning:           4,
	RivalScheme:             5,
	RivalAccusation:         6,
	AllyRequest:             5,
	AllyWarning:             4,
	ConsequenceCallback:     0,
	StabilityCrisis:         4,
	TreasuryCrisis:          4,
	FoodCrisis:              4,
	MilitaryUnrest:          5,
	AmbientTension:          2,
	ForeignCrisis:           3,
	NetworkIntel:            3,
	NPCAction:               2,
	AssassinationAttempt:    10,
	PartyCongress:           10,
	CongressPreparation:     10,
	TribunalSession:         2,
	CorruptionInvestigation: 8,
}

// CooldownEntry records when a type last fired and when its full window ends.
type CooldownEntry struct {
	FiredTurn   int `json:"fired_turn"`
	ExpiresTurn int `json:"expires_turn"`
}

// Cooldowns tracks re-fire windows per incident type.
type Cooldowns struct {
	windows map[Type]int
	entries map[Type]CooldownEntry
}

// NewCooldowns creates a table using DefaultCooldowns with overrides applied.
func NewCooldowns(overrides map[Type]int) *Cooldowns {
	w := make(map[Type]int, len(DefaultCooldowns))
	for t, n := range DefaultCooldowns {
		w[t] = n
	}
	for t, n := range overrides {
		if n >= 0 {
			w[t] = n
		}
	}
	return &Cooldowns{windows: w, entries: make(map[Type]CooldownEntry)}
}

// Window returns the full cooldown for a type.
func (c *Cooldowns) Window(t Type) int { return c.windows[t] }

// ReducedWindow is the window applied to urgent and critical candidates: half
// the full window, rounded down.
func (c *Cooldowns) ReducedWindow(t Type) int { return c.windows[t] / 2 }

// Allowed reports whether a candidate of type t and priority p may fire at
// turn. A type that has never fired is always allowed.
func (c *Cooldowns) Allowed(t Type, p Priority, turn int) bool {
	e, ok := c.entries[t]
	if !ok {
		return true
	}
	window := c.Window(t)
	if p.Pressing() {
		window = c.ReducedWindow(t)
	}
	return turn >= e.FiredTurn+window
}

// Record starts a type's window at turn.
func (c *Cooldowns) Record(t Type, turn int) {
	c.entries[t] = CooldownEntry{FiredTurn: turn, ExpiresTurn: turn + c.Window(t)}
}

// Entry returns a type's cooldown entry.
func (c *Cooldowns) Entry(t Type) (CooldownEntry, bool) {
	e, ok := c.entries[t]
	return e, ok
}

// Prune drops entries whose full window has passed. It returns how many were dropped.
func (c *Cooldowns) Prune(turn int) int {
	n := 0
	for t, e := range c.entries {
		if turn >= e.ExpiresTurn {
			delete(c.entries, t)
			n++
		}
	}
	return n
}

// Entries returns a copy of the table.
func (c *Cooldowns) Entries() map[Type]CooldownEntry {
	out := make(map[Type]CooldownEntry, len(c.entries))
	for t, e := range c.entries {
		out[t] = e
	}
	return out
}

// Restore replaces the table, used when loading a saved game.
func (c *Cooldowns) Restore(entries map[Type]CooldownEntry) {
	c.entries = make(map[Type]CooldownEntry, len(entries))
	for t, e := range entries {
		c.entries[t] = e
	}
}
