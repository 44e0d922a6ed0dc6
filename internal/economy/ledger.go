// Package economy is the per-turn economic model: the treasury ledger,
// macro indicators, sector shares, and economic crises.
package economy

import (
	"github.com/talgya/politburo/internal/state"
)

// Ledger line names.
const (
	IncomeDomestic       = "domesticProduction"
	IncomeForeignTrade   = "foreignTrade"
	IncomeForeignAid     = "foreignAid"
	IncomeResources      = "resourceExtraction"
	IncomeTradeAgreement = "tradeAgreementBonus"

	ExpenseMilitary       = "military"
	ExpenseSocial         = "social"
	ExpenseInfrastructure = "infrastructure"
	ExpenseDebt           = "debtService"
	ExpenseCrisis         = "crisisResponse"
	ExpenseCorruption     = "corruption"
	ExpenseEmbargo        = "embargoLosses"
	ExpenseWar            = "warCosts"
)

// Ledger constants.
const (
	baseResourceIncome  = 3
	aidPerAlly          = 2
	aidRelationship     = 60 // socialist partners above this send aid
	crisisResponseCost  = 5
	embargoLossPerCtry  = 3
	warCostPerCountry   = 10
	minAgreementBonus   = 1
	tradeIncomeDivisor  = 20
	agreementBonusDivis = 25
)

// LineItem is one named term of the ledger.
type LineItem struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// Report is the per-turn economic ledger.
type Report struct {
	Turn     int        `json:"turn"`
	Income   []LineItem `json:"income"`
	Expenses []LineItem `json:"expenses"`

	TotalIncome   int `json:"total_income"`
	TotalExpenses int `json:"total_expenses"`
	Net           int `json:"net"`

	// Filled in by ApplyLedger.
	TreasuryBefore int  `json:"treasury_before"`
	TreasuryAfter  int  `json:"treasury_after"`
	DeficitPenalty int  `json:"deficit_penalty,omitempty"` // extra loss from uncovered shortfall
	Applied        bool `json:"applied"`
}

// Line returns the amount of a named income or expense term.
func (r *Report) Line(name string) int {
	for _, li := range r.Income {
		if li.Name == name {
			return li.Amount
		}
	}
	for _, li := range r.Expenses {
		if li.Name == name {
			return li.Amount
		}
	}
	return 0
}

// ComputeLedger aggregates income and expense terms. It does not modify s.
func ComputeLedger(s *state.Store) Report {
	r := Report{Turn: s.Turn}

	var trade, aid, agreements, embargoed, atWar int
	for _, c := range s.Countries {
		if c.Embargo {
			embargoed++
		} else {
			trade += c.TradeVolume
			for _, t := range c.Treaties {
				if t.Type == state.TreatyTrade {
					agreements += max(minAgreementBonus, c.TradeVolume/agreementBonusDivis)
				}
			}
		}
		if c.AtWar {
			atWar++
		}
		if c.Bloc == state.BlocSocialist && c.Relationship > aidRelationship {
			aid += aidPerAlly
		}
	}

	var policyIncome, military, social, infrastructure int
	for _, slot := range s.Policies {
		opt, ok := slot.Active()
		if !ok {
			continue
		}
		policyIncome += opt.Economy.Income
		switch slot.Category {
		case state.CategorySecurity:
			military += opt.Economy.Expense
		case state.CategorySocial:
			social += opt.Economy.Expense
		default:
			infrastructure += opt.Economy.Expense
		}
	}

	r.Income = []LineItem{
		{IncomeDomestic, s.GetStat(state.IndustrialOutput)/5 + s.GetStat(state.FoodSupply)/10},
		{IncomeForeignTrade, trade / tradeIncomeDivisor},
		{IncomeForeignAid, aid},
		{IncomeResources, baseResourceIncome + policyIncome},
		{IncomeTradeAgreement, agreements},
	}

	debt := 0
	if t := s.GetStat(state.Treasury); t < 0 {
		debt = -t / 10
	}
	crisis := 0
	if s.Economy.Crisis != state.CrisisNone {
		crisis = crisisResponseCost
	}
	r.Expenses = []LineItem{
		{ExpenseMilitary, military},
		{ExpenseSocial, social},
		{ExpenseInfrastructure, infrastructure},
		{ExpenseDebt, debt},
		{ExpenseCrisis, crisis},
		{ExpenseCorruption, s.GetStat(state.Corruption) / 10},
		{ExpenseEmbargo, embargoed * embargoLossPerCtry},
		{ExpenseWar, atWar * warCostPerCountry},
	}

	for _, li := range r.Income {
		r.TotalIncome += li.Amount
	}
	for _, li := range r.Expenses {
		r.TotalExpenses += li.Amount
	}
	r.Net = r.TotalIncome - r.TotalExpenses
	return r
}

// ApplyLedger adds the net to the treasury. A deficit larger than the
// non-negative reserves has its uncovered shortfall multiplied by
// penalty before being applied. The result is clamped to the treasury range.
func ApplyLedger(r *Report, s *state.Store, penalty int) {
	before := s.GetStat(state.Treasury)
	delta := r.Net
	if r.Net < 0 {
		reserves := max(before, 0)
		if shortfall := -r.Net - reserves; shortfall > 0 && penalty > 1 {
			extra := shortfall * (penalty - 1)
			r.DeficitPenalty = extra
			delta -= extra
		}
	}
	r.TreasuryBefore = before
	r.TreasuryAfter = s.ApplyStat(state.Treasury, delta)
	r.Applied = true
}
