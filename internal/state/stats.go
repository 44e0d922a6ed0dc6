// Named numeric stats and their clamping ranges.
package state

// Stat names a numeric scalar held by the store.
type Stat string

const (
	Stability             Stat = "stability"
	Treasury              Stat = "treasury"
	PopularSupport        Stat = "popularSupport"
	MilitaryLoyalty       Stat = "militaryLoyalty"
	EliteLoyalty          Stat = "eliteLoyalty"
	IndustrialOutput      Stat = "industrialOutput"
	FoodSupply            Stat = "foodSupply"
	InternationalStanding Stat = "internationalStanding"
	Corruption            Stat = "corruption"
	RivalThreat           Stat = "rivalThreat"
	PatronFavor           Stat = "patronFavor"
	NetworkStrength       Stat = "networkStrength"
)

// TreasuryFloor is the lowest value the treasury can reach.
const TreasuryFloor = -100

// Range is an inclusive clamp band.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Clamp bounds v to the range.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// DefaultRange applies to stats without a registered range.
var DefaultRange = Range{Min: 0, Max: 100}

// statRanges holds the per-stat bands. Unlisted stats use DefaultRange.
var statRanges = map[Stat]Range{
	Treasury: {Min: TreasuryFloor, Max: 100},
}

// RangeOf returns the clamp band for a stat.
func RangeOf(s Stat) Range {
	if r, ok := statRanges[s]; ok {
		return r
	}
	return DefaultRange
}

// CoreStats lists the stats every scenario initializes, in a fixed order.
var CoreStats = []Stat{
	Stability, Treasury, PopularSupport, MilitaryLoyalty, EliteLoyalty,
	IndustrialOutput, FoodSupply, InternationalStanding, Corruption,
	RivalThreat, PatronFavor, NetworkStrength,
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat bounds v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
