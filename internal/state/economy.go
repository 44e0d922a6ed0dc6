// Economic state carried between turns.
package state

// EconomicSystem selects the baseline constants of the economic model.
type EconomicSystem string

const (
	SystemPlanned         EconomicSystem = "planned"
	SystemMarketSocialism EconomicSystem = "marketSocialism"
	SystemMixed           EconomicSystem = "mixed"
	SystemStateCapitalism EconomicSystem = "stateCapitalism"
)

// CrisisKind names an active economic crisis. Empty means none.
type CrisisKind string

const (
	CrisisNone               CrisisKind = ""
	CrisisShortage           CrisisKind = "shortage"
	CrisisHyperinflation     CrisisKind = "hyperinflation"
	CrisisBankRun            CrisisKind = "bankRun"
	CrisisHarvestFailure     CrisisKind = "harvestFailure"
	CrisisIndustrialCollapse CrisisKind = "industrialCollapse"
	CrisisTradeBlockade      CrisisKind = "tradeBlockade"
	CrisisLaborUnrest        CrisisKind = "laborUnrest"
	CrisisBlackMarket        CrisisKind = "blackMarket"
)

// SectorShares are whole percentages summing to exactly 100.
type SectorShares struct {
	Agriculture int `json:"agriculture" yaml:"agriculture"`
	Industry    int `json:"industry" yaml:"industry"`
	Services    int `json:"services" yaml:"services"`
}

// Total returns the sum of the three shares.
func (s SectorShares) Total() int {
	return s.Agriculture + s.Industry + s.Services
}

// Indicators are the macro levels maintained by the economic engine.
type Indicators struct {
	GDPGrowth    float64 `json:"gdp_growth" yaml:"gdpGrowth"`       // % this turn
	Inflation    float64 `json:"inflation" yaml:"inflation"`        // % level
	Unemployment float64 `json:"unemployment" yaml:"unemployment"`  // % level
	TradeBalance float64 `json:"trade_balance" yaml:"tradeBalance"` // net exports index
}

// EconomyState is the store's economic section.
type EconomyState struct {
	System      EconomicSystem `json:"system" yaml:"system"`
	Crisis      CrisisKind     `json:"crisis,omitempty" yaml:"crisis"`
	CrisisSince int            `json:"crisis_since,omitempty" yaml:"crisisSince"`
	Indicators  Indicators     `json:"indicators" yaml:"indicators"`
	Sectors     SectorShares   `json:"sectors" yaml:"sectors"`
}
