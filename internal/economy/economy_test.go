package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

func testStore() *state.Store {
	s := state.NewStore()
	s.Turn = 1
	s.Economy.System = state.SystemPlanned
	s.SetStat(state.IndustrialOutput, 50)
	s.SetStat(state.FoodSupply, 50)
	s.SetStat(state.Corruption, 20)
	return s
}

func TestComputeLedgerTerms(t *testing.T) {
	s := testStore()
	s.AddCountry(&state.ForeignCountry{
		ID: "ally", Bloc: state.BlocSocialist, Relationship: 70, TradeVolume: 60,
		Treaties: []state.Treaty{{Type: state.TreatyTrade}},
	})
	s.AddCountry(&state.ForeignCountry{ID: "foe", Bloc: state.BlocCapitalist, TradeVolume: 40, Embargo: true, AtWar: true})
	s.AddPolicy(&state.PolicySlot{
		ID: "army", Category: state.CategorySecurity, Current: "big",
		Options: []state.PolicyOption{{ID: "big", Economy: state.EconomicEffect{Expense: 7, Income: 1}}},
	})
	s.SetStat(state.Treasury, -30)

	r := ComputeLedger(s)

	assert.Equal(t, 15, r.Line(IncomeDomestic))
	assert.Equal(t, 3, r.Line(IncomeForeignTrade))
	assert.Equal(t, 2, r.Line(IncomeForeignAid))
	assert.Equal(t, 4, r.Line(IncomeResources))
	assert.Equal(t, 2, r.Line(IncomeTradeAgreement))

	assert.Equal(t, 7, r.Line(ExpenseMilitary))
	assert.Equal(t, 3, r.Line(ExpenseDebt))
	assert.Equal(t, 0, r.Line(ExpenseCrisis))
	assert.Equal(t, 2, r.Line(ExpenseCorruption))
	assert.Equal(t, 3, r.Line(ExpenseEmbargo))
	assert.Equal(t, 10, r.Line(ExpenseWar))

	assert.Equal(t, 26, r.TotalIncome)
	assert.Equal(t, 25, r.TotalExpenses)
	assert.Equal(t, 1, r.Net)
	assert.Equal(t, -30, s.GetStat(state.Treasury), "computing must not mutate the store")
}

func TestAgreementBonusMinimum(t *testing.T) {
	s := testStore()
	s.AddCountry(&state.ForeignCountry{
		ID: "small", Bloc: state.BlocNonAligned, TradeVolume: 10,
		Treaties: []state.Treaty{{Type: state.TreatyTrade}, {Type: state.TreatyTrade}},
	})
	r := ComputeLedger(s)
	assert.Equal(t, 2, r.Line(IncomeTradeAgreement))
}

func TestApplyLedgerDeficitScenario(t *testing.T) {
	s := testStore()
	s.SetStat(state.Treasury, 50)
	r := Report{Net: -60}

	ApplyLedger(&r, s, DefaultDeficitPenalty)

	assert.Equal(t, -100, s.GetStat(state.Treasury))
	assert.Equal(t, 50, r.TreasuryBefore)
	assert.Equal(t, -100, r.TreasuryAfter)
	assert.True(t, r.Applied)
}

func TestApplyLedgerCoveredDeficit(t *testing.T) {
	s := testStore()
	s.SetStat(state.Treasury, 50)
	r := Report{Net: -20}

	ApplyLedger(&r, s, DefaultDeficitPenalty)

	assert.Equal(t, 30, s.GetStat(state.Treasury))
	assert.Zero(t, r.DeficitPenalty)
}

func TestTreasuryNeverBelowFloor(t *testing.T) {
	s := testStore()
	for _, net := range []int{-1, -50, -500, 20, -1000} {
		r := Report{Net: net}
		ApplyLedger(&r, s, DefaultDeficitPenalty)
		assert.GreaterOrEqual(t, s.GetStat(state.Treasury), state.TreasuryFloor)
	}
}

func TestNormalizeSectors(t *testing.T) {
	tests := []struct {
		name    string
		a, i, s int
		want    state.SectorShares
	}{
		{"exact", 20, 50, 30, state.SectorShares{Agriculture: 20, Industry: 50, Services: 30}},
		{"thirds", 1, 1, 1, state.SectorShares{Agriculture: 34, Industry: 33, Services: 33}},
		{"zero", 0, 0, 0, FallbackSectors},
		{"negative", -5, -2, 0, FallbackSectors},
		{"scaled", 7, 11, 13, state.SectorShares{Agriculture: 23, Industry: 35, Services: 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSectors(tt.a, tt.i, tt.s)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 100, got.Total())
		})
	}
}

func TestSectorSharesAlwaysSumTo100(t *testing.T) {
	rng := entropy.NewSeeded(42)
	for i := 0; i < 200; i++ {
		got := NormalizeSectors(rng.Intn(300)-50, rng.Intn(300)-50, rng.Intn(300)-50)
		require.Equal(t, 100, got.Total())
	}
}

func TestComputeIndicatorsStayInBands(t *testing.T) {
	s := testStore()
	s.SetStat(state.Treasury, -100)
	s.SetStat(state.Stability, 0)
	s.Economy.Indicators.Inflation = 90
	s.AddPolicy(&state.PolicySlot{
		ID: "wild", Category: state.CategoryEconomic, Current: "x",
		Options: []state.PolicyOption{{ID: "x", Economy: state.EconomicEffect{
			GrowthMod: 40, InflationMod: 60, UnemploymentMod: -30, TradeOpenness: 5,
		}}},
	})

	for _, f := range []float64{0, 0.5, 0.999} {
		d := ComputeIndicators(s, &entropy.Script{Floats: []float64{f}})
		assert.GreaterOrEqual(t, d.GDPGrowth, -10.0)
		assert.LessOrEqual(t, d.GDPGrowth, 10.0)
		assert.GreaterOrEqual(t, d.Inflation, -5.0)
		assert.LessOrEqual(t, d.Inflation, 5.0)
		assert.GreaterOrEqual(t, d.Unemployment, -3.0)
		assert.LessOrEqual(t, d.Unemployment, 3.0)
		assert.GreaterOrEqual(t, d.TradeBalance, -50.0)
		assert.LessOrEqual(t, d.TradeBalance, 50.0)
		assert.Equal(t, 100, d.Sectors.Total())
	}
}

func TestComputeIndicatorsDeterministic(t *testing.T) {
	s := testStore()
	a := ComputeIndicators(s, entropy.NewSeeded(9))
	b := ComputeIndicators(s, entropy.NewSeeded(9))
	assert.Equal(t, a, b)
}

func TestCrisisLifecycle(t *testing.T) {
	s := testStore()
	s.SetStat(state.FoodSupply, 15)

	u := UpdateCrisis(s)
	assert.Equal(t, state.CrisisHarvestFailure, u.Started)
	assert.Equal(t, state.CrisisHarvestFailure, s.Economy.Crisis)
	assert.Equal(t, 7, s.GetStat(state.FoodSupply))
	assert.Equal(t, 48, s.GetStat(state.PopularSupport))

	// Penalties repeat while the trigger holds.
	u = UpdateCrisis(s)
	assert.Equal(t, state.CrisisNone, u.Started)
	assert.Equal(t, state.CrisisHarvestFailure, u.Active)
	assert.Equal(t, 0, s.GetStat(state.FoodSupply))

	s.SetStat(state.FoodSupply, 80)
	u = UpdateCrisis(s)
	assert.Equal(t, state.CrisisHarvestFailure, u.Ended)
	assert.Equal(t, state.CrisisNone, s.Economy.Crisis)
	assert.Nil(t, u.Penalties)
}

func TestCrisisResponseExpense(t *testing.T) {
	s := testStore()
	s.Economy.Crisis = state.CrisisBlackMarket
	r := ComputeLedger(s)
	assert.Equal(t, 5, r.Line(ExpenseCrisis))
}

func TestProcessTurnAppliesLedger(t *testing.T) {
	s := testStore()
	s.SetStat(state.Treasury, 10)
	e := New(entropy.NewSeeded(3), 0)

	res := e.ProcessTurn(s)

	require.True(t, res.Ledger.Applied)
	assert.Equal(t, res.Ledger.TreasuryAfter, s.GetStat(state.Treasury))
	assert.Equal(t, 100, s.Economy.Sectors.Total())
}
