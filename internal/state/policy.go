// Policy slots: governance dimensions with an active option and competing alternatives.
package state

// PolicyCategory groups slots. Institutional slots can never be decreed.
type PolicyCategory string

const (
	CategoryEconomic      PolicyCategory = "economic"
	CategorySecurity      PolicyCategory = "security"
	CategorySocial        PolicyCategory = "social"
	CategoryInstitutional PolicyCategory = "institutional"
	CategoryForeign       PolicyCategory = "foreign"
)

// SectorShift nudges raw sector weights while an option is active.
type SectorShift struct {
	Agriculture int `json:"agriculture,omitempty" yaml:"agriculture"`
	Industry    int `json:"industry,omitempty" yaml:"industry"`
	Services    int `json:"services,omitempty" yaml:"services"`
}

// EconomicEffect is an option's contribution to the economic model each turn.
type EconomicEffect struct {
	GrowthMod       float64     `json:"growth_mod,omitempty" yaml:"growthMod"`
	InflationMod    float64     `json:"inflation_mod,omitempty" yaml:"inflationMod"`
	UnemploymentMod float64     `json:"unemployment_mod,omitempty" yaml:"unemploymentMod"`
	TradeOpenness   float64     `json:"trade_openness,omitempty" yaml:"tradeOpenness"`
	Expense         int         `json:"expense,omitempty" yaml:"expense"`
	Income          int         `json:"income,omitempty" yaml:"income"`
	Sectors         SectorShift `json:"sectors,omitempty" yaml:"sectors"`
}

// PolicyOption is one selectable setting of a slot.
type PolicyOption struct {
	ID      string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Economy EconomicEffect `json:"economy" yaml:"economy"`
	OnEnact map[Stat]int   `json:"on_enact,omitempty" yaml:"onEnact"`
}

// Proposal is a submitted but unresolved policy change.
type Proposal struct {
	OptionID      string `json:"option_id"`
	ProposerID    string `json:"proposer_id"`
	SubmittedTurn int    `json:"submitted_turn"`
}

// ChangeMethod records how a policy change was resolved.
type ChangeMethod string

const (
	MethodDecreed ChangeMethod = "decreed"
	MethodVoted   ChangeMethod = "voted"
)

// PolicyChangeRecord is one append-only history entry.
type PolicyChangeRecord struct {
	ID           string       `json:"id"`
	Turn         int          `json:"turn"`
	FromOption   string       `json:"from_option"`
	ToOption     string       `json:"to_option"`
	ProposerID   string       `json:"proposer_id"`
	Method       ChangeMethod `json:"method"`
	Passed       bool         `json:"passed"`
	VotesFor     int          `json:"votes_for"`
	VotesAgainst int          `json:"votes_against"`
	Abstentions  int          `json:"abstentions"`
}

// PolicySlot is a governance dimension. At most one proposal is pending at a time.
type PolicySlot struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Category PolicyCategory `json:"category" yaml:"category"`
	Options  []PolicyOption `json:"options" yaml:"options"`
	Current  string         `json:"current" yaml:"current"`

	Pending *Proposal            `json:"pending,omitempty" yaml:"-"`
	History []PolicyChangeRecord `json:"history" yaml:"-"`
}

// Option returns the option with the given id.
func (p *PolicySlot) Option(id string) (*PolicyOption, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// Active returns the currently selected option, if it exists.
func (p *PolicySlot) Active() (*PolicyOption, bool) {
	return p.Option(p.Current)
}

// Decreeable reports whether the slot's category permits decrees.
func (p *PolicySlot) Decreeable() bool {
	return p.Category != CategoryInstitutional
}
