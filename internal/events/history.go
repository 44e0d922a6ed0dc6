package events

// HistoryEntry records one fired incident.
type HistoryEntry struct {
	ID            string   `json:"id"`
	Type          Type     `json:"type"`
	Priority      Priority `json:"priority"`
	Turn          int      `json:"turn"`
	TargetCountry string   `json:"target_country,omitempty"`
}

// History is the append-only log of fired incidents.
type History struct {
	entries []HistoryEntry
}

// Append records an entry.
func (h *History) Append(e HistoryEntry) {
	h.entries = append(h.entries, e)
}

// Entries returns the log, oldest first.
func (h *History) Entries() []HistoryEntry {
	return h.entries
}

// Since returns entries fired at or after turn.
func (h *History) Since(turn int) []HistoryEntry {
	var out []HistoryEntry
	for _, e := range h.entries {
		if e.Turn >= turn {
			out = append(out, e)
		}
	}
	return out
}

// LastFired returns the most recent turn a type fired, or -1.
func (h *History) LastFired(t Type) int {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Type == t {
			return h.entries[i].Turn
		}
	}
	return -1
}

// Trim keeps only the newest keep entries.
func (h *History) Trim(keep int) {
	if keep < 0 || len(h.entries) <= keep {
		return
	}
	h.entries = append([]HistoryEntry(nil), h.entries[len(h.entries)-keep:]...)
}

// Restore replaces the log, used when loading a saved game.
func (h *History) Restore(entries []HistoryEntry) {
	h.entries = append([]HistoryEntry(nil), entries...)
}
