// World events recorded by the engines during a turn.
package state

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Event categories.
const (
	EventEconomy   = "economy"
	EventDiplomacy = "diplomacy"
	EventPolitics  = "politics"
)

// Event is something notable that happened during a turn.
type Event struct {
	ID          string   `json:"id"`
	Turn        int      `json:"turn"`
	Category    string   `json:"category"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Targets     []string `json:"targets,omitempty"`
	Failed      bool     `json:"failed,omitempty"` // missing reference, no effect
}

// idSpace scopes every generated id to this game.
var idSpace = uuid.MustParse("6f1c2a34-8d0e-5b7a-9c41-2e35f08b7d11")

// NewID derives a stable id from its parts. Ids never consume randomness,
// so seeded replays produce identical ids.
func NewID(kind string, turn int, parts ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(turn))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return uuid.NewSHA1(idSpace, []byte(b.String())).String()
}

// NewEvent builds an event with a derived id. seq disambiguates events of one kind in a turn.
func NewEvent(turn int, category, kind, description string, seq int, targets ...string) Event {
	parts := append([]string{category, strconv.Itoa(seq)}, targets...)
	return Event{
		ID:          NewID(kind, turn, parts...),
		Turn:        turn,
		Category:    category,
		Kind:        kind,
		Description: description,
		Targets:     targets,
	}
}
