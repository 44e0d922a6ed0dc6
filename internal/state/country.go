// Foreign countries and the treaties they hold with the player's state.
package state

// Bloc is a foreign country's political alignment.
type Bloc string

const (
	BlocSocialist  Bloc = "socialist"
	BlocCapitalist Bloc = "capitalist"
	BlocNonAligned Bloc = "nonAligned"
	BlocRival      Bloc = "rival"
)

// Opposes reports whether two blocs stand on opposite sides.
func (b Bloc) Opposes(other Bloc) bool {
	switch b {
	case BlocSocialist:
		return other == BlocCapitalist || other == BlocRival
	case BlocCapitalist, BlocRival:
		return other == BlocSocialist
	default:
		return false
	}
}

// Government is a foreign country's regime type.
type Government string

const (
	GovCommunist         Government = "communist"
	GovSocialistRepublic Government = "socialistRepublic"
	GovLiberalDemocracy  Government = "liberalDemocracy"
	GovMilitaryJunta     Government = "militaryJunta"
	GovMonarchy          Government = "monarchy"
)

// TreatyType enumerates treaty kinds.
type TreatyType string

const (
	TreatyTrade            TreatyType = "tradeAgreement"
	TreatyMutualDefense    TreatyType = "mutualDefense"
	TreatyAid              TreatyType = "aidPackage"
	TreatyNonAggression    TreatyType = "nonAggression"
	TreatyCulturalExchange TreatyType = "culturalExchange"
)

// Treaty is an agreement owned by exactly one ForeignCountry.
type Treaty struct {
	ID          string     `json:"id" yaml:"id"`
	Type        TreatyType `json:"type" yaml:"type"`
	SignedTurn  int        `json:"signed_turn" yaml:"signedTurn"`
	ExpiresTurn int        `json:"expires_turn,omitempty" yaml:"expiresTurn"` // 0 = open-ended
	Secret      bool       `json:"secret,omitempty" yaml:"secret"`
}

// Expired reports whether the treaty has run past its expiration turn.
func (t Treaty) Expired(turn int) bool {
	return t.ExpiresTurn > 0 && turn > t.ExpiresTurn
}

// Espionage tracks the player's intelligence operation inside a country.
type Espionage struct {
	Assets   int `json:"assets" yaml:"assets"`     // agents in place
	Exposure int `json:"exposure" yaml:"exposure"` // 0–100, risk of the network being rolled up
	Intel    int `json:"intel" yaml:"intel"`       // 0–100, accumulated intelligence
}

// ForeignCountry is created at setup, mutated every turn, never deleted.
type ForeignCountry struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Bloc       Bloc       `json:"bloc" yaml:"bloc"`
	Government Government `json:"government" yaml:"government"`

	Relationship int `json:"relationship" yaml:"relationship"` // -100 to +100
	Tension      int `json:"tension" yaml:"tension"`           // 0–100
	TradeVolume  int `json:"trade_volume" yaml:"tradeVolume"`  // 0–100

	Treaties  []Treaty  `json:"treaties" yaml:"treaties"`
	Espionage Espionage `json:"espionage" yaml:"espionage"`

	Embargo bool `json:"embargo,omitempty" yaml:"embargo"`
	AtWar   bool `json:"at_war,omitempty" yaml:"atWar"`
}

// Country score bands.
var (
	RelationshipRange = Range{Min: -100, Max: 100}
	TensionRange      = Range{Min: 0, Max: 100}
	TradeRange        = Range{Min: 0, Max: 100}
)

// AdjustRelationship shifts the relationship score, clamped.
func (c *ForeignCountry) AdjustRelationship(delta int) {
	c.Relationship = RelationshipRange.Clamp(c.Relationship + delta)
}

// AdjustTension shifts diplomatic tension, clamped.
func (c *ForeignCountry) AdjustTension(delta int) {
	c.Tension = TensionRange.Clamp(c.Tension + delta)
}

// AdjustTrade shifts trade volume, clamped.
func (c *ForeignCountry) AdjustTrade(delta int) {
	c.TradeVolume = TradeRange.Clamp(c.TradeVolume + delta)
}

// HasTreaty reports whether an active treaty of the given type exists.
func (c *ForeignCountry) HasTreaty(t TreatyType) bool {
	for _, tr := range c.Treaties {
		if tr.Type == t {
			return true
		}
	}
	return false
}

// CountTreaties returns how many treaties of type t the country holds.
func (c *ForeignCountry) CountTreaties(t TreatyType) int {
	n := 0
	for _, tr := range c.Treaties {
		if tr.Type == t {
			n++
		}
	}
	return n
}

// TreatyRequest is a player-initiated treaty proposal awaiting the diplomatic phase.
type TreatyRequest struct {
	CountryID string     `json:"country_id" yaml:"countryId"`
	Type      TreatyType `json:"type" yaml:"type"`
	Secret    bool       `json:"secret,omitempty" yaml:"secret"`
	QueuedAt  int        `json:"queued_at" yaml:"queuedAt"`
}

// DiplomaticRecord is one past world incident, kept for event-chain lookups.
type DiplomaticRecord struct {
	Kind      string `json:"kind"`
	Turn      int    `json:"turn"`
	CountryID string `json:"country_id"`
}
