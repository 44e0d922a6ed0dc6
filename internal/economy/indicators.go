package economy

import (
	"math"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

// Profile holds the baseline constants of an economic system.
type Profile struct {
	Growth        float64 // baseline GDP growth per turn
	Inflation     float64 // inflation level the system settles toward
	Inequality    float64 // 0–1, feeds structural unemployment
	Volatility    float64 // amplitude of the random growth term
	TradeOpenness float64 // 0–1, scales the trade balance
	Sectors       state.SectorShares
}

var profiles = map[state.EconomicSystem]Profile{
	state.SystemPlanned: {
		Growth: 2.0, Inflation: 2.0, Inequality: 0.2, Volatility: 1.0, TradeOpenness: 0.2,
		Sectors: state.SectorShares{Agriculture: 30, Industry: 50, Services: 20},
	},
	state.SystemMarketSocialism: {
		Growth: 3.0, Inflation: 4.0, Inequality: 0.35, Volatility: 1.5, TradeOpenness: 0.4,
		Sectors: state.SectorShares{Agriculture: 25, Industry: 45, Services: 30},
	},
	state.SystemMixed: {
		Growth: 2.5, Inflation: 5.0, Inequality: 0.45, Volatility: 2.0, TradeOpenness: 0.6,
		Sectors: state.SectorShares{Agriculture: 15, Industry: 40, Services: 45},
	},
	state.SystemStateCapitalism: {
		Growth: 3.5, Inflation: 6.0, Inequality: 0.55, Volatility: 2.5, TradeOpenness: 0.7,
		Sectors: state.SectorShares{Agriculture: 15, Industry: 50, Services: 35},
	},
}

// ProfileOf returns the constants for a system. Unknown systems are treated as planned.
func ProfileOf(sys state.EconomicSystem) Profile {
	if p, ok := profiles[sys]; ok {
		return p
	}
	return profiles[state.SystemPlanned]
}

// Per-turn change bands.
var (
	GrowthBand       = band{-10, 10}
	InflationBand    = band{-5, 5}
	UnemploymentBand = band{-3, 3}
	TradeBalanceBand = band{-50, 50}
)

// Level bounds for the persistent indicators.
var (
	inflationLevel    = band{-10, 100}
	unemploymentLevel = band{0, 60}
)

type band struct{ lo, hi float64 }

func (b band) clamp(v float64) float64 { return state.ClampFloat(v, b.lo, b.hi) }

// FallbackSectors is used when raw sector weights sum to zero.
var FallbackSectors = state.SectorShares{Agriculture: 20, Industry: 45, Services: 35}

// Deltas are this turn's indicator movements, each already clamped to its band.
type Deltas struct {
	GDPGrowth    float64            `json:"gdp_growth"`
	Inflation    float64            `json:"inflation"`
	Unemployment float64            `json:"unemployment"`
	TradeBalance float64            `json:"trade_balance"`
	Sectors      state.SectorShares `json:"sectors"`
}

// policyTotals sums the economic effects of every active option.
func policyTotals(s *state.Store) (state.EconomicEffect, state.SectorShift) {
	var e state.EconomicEffect
	var shift state.SectorShift
	for _, slot := range s.Policies {
		opt, ok := slot.Active()
		if !ok {
			continue
		}
		e.GrowthMod += opt.Economy.GrowthMod
		e.InflationMod += opt.Economy.InflationMod
		e.UnemploymentMod += opt.Economy.UnemploymentMod
		e.TradeOpenness += opt.Economy.TradeOpenness
		shift.Agriculture += opt.Economy.Sectors.Agriculture
		shift.Industry += opt.Economy.Sectors.Industry
		shift.Services += opt.Economy.Sectors.Services
	}
	return e, shift
}

// ComputeIndicators derives this turn's indicator deltas. It draws exactly
// three values from rng and does not modify s.
func ComputeIndicators(s *state.Store, rng entropy.Source) Deltas {
	prof := ProfileOf(s.Economy.System)
	mods, shift := policyTotals(s)
	cur := s.Economy.Indicators

	stability := float64(s.GetStat(state.Stability))
	support := float64(s.GetStat(state.PopularSupport))

	noise := func() float64 { return rng.Float64()*2 - 1 }

	var d Deltas

	d.GDPGrowth = GrowthBand.clamp(prof.Growth + mods.GrowthMod +
		(stability-50)/20 + (support-50)/25 -
		math.Max(cur.Inflation-prof.Inflation, 0)/10 +
		prof.Volatility*noise())

	inflTarget := prof.Inflation + mods.InflationMod
	if t := s.GetStat(state.Treasury); t < 0 {
		inflTarget += float64(-t) / 10
	}
	d.Inflation = InflationBand.clamp((inflTarget-cur.Inflation)/4 + prof.Volatility/2*noise())

	unempTarget := 4 + prof.Inequality*10 + mods.UnemploymentMod - d.GDPGrowth/2
	d.Unemployment = UnemploymentBand.clamp((unempTarget-cur.Unemployment)/4 + prof.Volatility/3*noise())

	var volume float64
	var partners int
	for _, c := range s.Countries {
		if c.Embargo {
			continue
		}
		volume += float64(c.TradeVolume)
		partners++
	}
	avgTrade := 0.0
	if partners > 0 {
		avgTrade = volume / float64(partners)
	}
	openness := state.ClampFloat(prof.TradeOpenness+mods.TradeOpenness, 0, 1)
	d.TradeBalance = TradeBalanceBand.clamp(openness*(avgTrade-40) +
		float64(s.GetStat(state.IndustrialOutput)-50)/2)

	d.Sectors = NormalizeSectors(
		prof.Sectors.Agriculture+shift.Agriculture+s.GetStat(state.FoodSupply)/10,
		prof.Sectors.Industry+shift.Industry+s.GetStat(state.IndustrialOutput)/10,
		prof.Sectors.Services+shift.Services+int(openness*10),
	)
	return d
}

// ApplyIndicators folds the deltas into the store's economic state.
func ApplyIndicators(d Deltas, s *state.Store) {
	ind := &s.Economy.Indicators
	ind.GDPGrowth = d.GDPGrowth
	ind.Inflation = inflationLevel.clamp(ind.Inflation + d.Inflation)
	ind.Unemployment = unemploymentLevel.clamp(ind.Unemployment + d.Unemployment)
	ind.TradeBalance = d.TradeBalance
	s.Economy.Sectors = d.Sectors
}

// NormalizeSectors scales raw weights to whole percentages summing to
// exactly 100 using largest-remainder rounding. Negative weights count as zero.
func NormalizeSectors(agriculture, industry, services int) state.SectorShares {
	raw := [3]int{max(agriculture, 0), max(industry, 0), max(services, 0)}
	total := raw[0] + raw[1] + raw[2]
	if total == 0 {
		return FallbackSectors
	}

	var shares [3]int
	var rem [3]int
	assigned := 0
	for i, w := range raw {
		shares[i] = w * 100 / total
		rem[i] = w * 100 % total
		assigned += shares[i]
	}
	for left := 100 - assigned; left > 0; left-- {
		best := 0
		for i := 1; i < 3; i++ {
			if rem[i] > rem[best] {
				best = i
			}
		}
		shares[best]++
		rem[best] = -1
	}
	return state.SectorShares{Agriculture: shares[0], Industry: shares[1], Services: shares[2]}
}
