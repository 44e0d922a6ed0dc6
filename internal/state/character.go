// Characters: the NPC agents the political AI reasons about, and the player's standing.
package state

// Position is a rank in the party hierarchy, lowest first.
type Position uint8

const (
	PositionMember             Position = iota // Party member without office
	PositionRegionalOfficial                   // Provincial apparatus
	PositionDepartmentHead                     // Central department
	PositionCentralCommittee                   // Full Central Committee member
	PositionPolitburoCandidate                 // Candidate (non-voting) Politburo member
	PositionPolitburo                          // Full Politburo member
	PositionStandingCommittee                  // Standing Committee of the Politburo
	PositionGeneralSecretary                   // Top office
)

var positionNames = [...]string{
	"member", "regionalOfficial", "departmentHead", "centralCommittee",
	"politburoCandidate", "politburo", "standingCommittee", "generalSecretary",
}

func (p Position) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return "unknown"
}

// ParsePosition maps a name back to a Position.
func ParsePosition(name string) (Position, bool) {
	for i, n := range positionNames {
		if n == name {
			return Position(i), true
		}
	}
	return PositionMember, false
}

// MarshalText encodes positions by name in JSON and YAML.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a position name. Unknown names decode to PositionMember.
func (p *Position) UnmarshalText(b []byte) error {
	pos, _ := ParsePosition(string(b))
	*p = pos
	return nil
}

// FactionID identifies an ideological faction.
type FactionID string

// Personality scalars are 0–100.
type Personality struct {
	Ambition     int `json:"ambition" yaml:"ambition"`
	Paranoia     int `json:"paranoia" yaml:"paranoia"`
	Ruthlessness int `json:"ruthlessness" yaml:"ruthlessness"`
	Competence   int `json:"competence" yaml:"competence"`
	Loyalty      int `json:"loyalty" yaml:"loyalty"`
}

// GoalType is what an agent is working toward.
type GoalType string

const (
	GoalConsolidatePower   GoalType = "consolidatePower"
	GoalEliminateRival     GoalType = "eliminateRival"
	GoalReformEconomy      GoalType = "reformEconomy"
	GoalStrengthenSecurity GoalType = "strengthenSecurity"
	GoalExpandInfluence    GoalType = "expandInfluence"
	GoalPreserveStatus     GoalType = "preserveStatus"
)

// Goal is one entry of an agent's agenda. Progress is the only field the AI mutates.
type Goal struct {
	Type     GoalType `json:"type" yaml:"type"`
	Priority int      `json:"priority" yaml:"priority"`
	Active   bool     `json:"active" yaml:"active"`
	Progress int      `json:"progress" yaml:"progress"` // 0–100
	TargetID string   `json:"target_id,omitempty" yaml:"targetId"`
}

// Character is an NPC agent.
type Character struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Position      Position    `json:"position" yaml:"position"`
	Faction       FactionID   `json:"faction" yaml:"faction"`
	FactionLeader bool        `json:"faction_leader,omitempty" yaml:"factionLeader"`
	Personality   Personality `json:"personality" yaml:"personality"`
	Goals         []Goal      `json:"goals" yaml:"goals"`
	Alive         bool        `json:"alive" yaml:"alive"`
}

// HoldsOffice reports whether the character can act in the political AI.
func (c *Character) HoldsOffice() bool {
	if !c.Alive {
		return false
	}
	return c.Position >= PositionPolitburo || c.FactionLeader
}

// AdvanceGoal adds progress to the first active goal of type t, clamped to 100.
func (c *Character) AdvanceGoal(t GoalType, amount int) bool {
	for i := range c.Goals {
		if c.Goals[i].Type == t && c.Goals[i].Active {
			c.Goals[i].Progress = ClampInt(c.Goals[i].Progress+amount, 0, 100)
			return true
		}
	}
	return false
}

// Player is the human-controlled official.
type Player struct {
	Name     string   `json:"name" yaml:"name"`
	Position Position `json:"position" yaml:"position"`
	PatronID string   `json:"patron_id,omitempty" yaml:"patronId"`
	RivalID  string   `json:"rival_id,omitempty" yaml:"rivalId"`
	AllyIDs  []string `json:"ally_ids,omitempty" yaml:"allyIds"`
}
