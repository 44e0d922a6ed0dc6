// Package events decides which incidents interrupt the player each turn.
// Generators propose candidates, the scheduler filters them by rank, gate
// and cooldown, applies pacing, and commits the winners.
package events

import (
	"errors"
	"fmt"
)

// Priority is an incident's urgency tier.
type Priority int

const (
	Background Priority = iota
	Normal
	Elevated
	Urgent
	Critical
)

var priorityNames = [...]string{"background", "normal", "elevated", "urgent", "critical"}

func (p Priority) String() string {
	if p.Valid() {
		return priorityNames[p]
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Valid reports whether p is a known tier.
func (p Priority) Valid() bool { return p >= Background && p <= Critical }

// Pressing reports whether the tier overrides pacing (urgent or critical).
func (p Priority) Pressing() bool { return p >= Urgent && p.Valid() }

// MarshalText encodes the tier by name.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(priorityNames[p]), nil
}

// UnmarshalText decodes a tier name.
func (p *Priority) UnmarshalText(b []byte) error {
	for i, n := range priorityNames {
		if n == string(b) {
			*p = Priority(i)
			return nil
		}
	}
	return fmt.Errorf("unknown priority %q", b)
}

// Type is an incident kind.
type Type string

const (
	PatronSummons           Type = "patronSummons"
	PatronDemand            Type = "patronDemand"
	PatronWarning           Type = "patronWarning"
	RivalScheme             Type = "rivalScheme"
	RivalAccusation         Type = "rivalAccusation"
	AllyRequest             Type = "allyRequest"
	AllyWarning             Type = "allyWarning"
	ConsequenceCallback     Type = "consequenceCallback"
	StabilityCrisis         Type = "stabilityCrisis"
	TreasuryCrisis          Type = "treasuryCrisis"
	FoodCrisis              Type = "foodCrisis"
	MilitaryUnrest          Type = "militaryUnrest"
	AmbientTension          Type = "ambientTension"
	ForeignCrisis           Type = "foreignCrisis"
	NetworkIntel            Type = "networkIntel"
	NPCAction               Type = "npcAction"
	AssassinationAttempt    Type = "assassinationAttempt"
	PartyCongress           Type = "partyCongress"
	CongressPreparation     Type = "congressPreparation"
	TribunalSession         Type = "tribunalSession"
	CorruptionInvestigation Type = "corruptionInvestigation"
)

// Candidate is a proposed incident.
type Candidate struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Priority Priority       `json:"priority"`
	Payload  map[string]any `json:"payload,omitempty"`
	Targets  []string       `json:"targets,omitempty"`
	Source   string         `json:"source"`

	// Set when the candidate resolves a scheduled consequence.
	ConsequenceID string `json:"consequence_id,omitempty"`

	// Set when the candidate was held over from a quiet turn.
	Deferred bool `json:"deferred,omitempty"`
}

var (
	errNoID       = errors.New("candidate has no id")
	errNoType     = errors.New("candidate has no type")
	errBadTier    = errors.New("candidate has an invalid priority")
	errUnknownTyp = errors.New("candidate has an unknown type")
)

// Validate reports why a candidate is malformed, if it is.
func (c Candidate) Validate() error {
	switch {
	case c.ID == "":
		return errNoID
	case c.Type == "":
		return errNoType
	case !c.Priority.Valid():
		return errBadTier
	}
	if _, ok := DefaultCooldowns[c.Type]; !ok {
		return fmt.Errorf("%w: %s", errUnknownTyp, c.Type)
	}
	return nil
}
