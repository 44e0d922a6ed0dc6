package events

import (
	"github.com/talgya/politburo/internal/state"
)

// PacingConfig tunes how often the player is left in peace.
type PacingConfig struct {
	Ceiling         int     `mapstructure:"ceiling"`          // consecutive event turns before a forced quiet turn
	BaseQuiet       float64 `mapstructure:"base_quiet"`       // quiet-turn probability before modifiers
	EarlyBoost      float64 `mapstructure:"early_boost"`      // added during the opening turns
	EarlyTurns      int     `mapstructure:"early_turns"`      // turns counted as the opening
	ConsecutiveStep float64 `mapstructure:"consecutive_step"` // added per consecutive event turn
	TensionRelief   float64 `mapstructure:"tension_relief"`   // subtracted per tension condition
	MaxQuiet        float64 `mapstructure:"max_quiet"`
}

// DefaultPacing returns the standard pacing constants.
func DefaultPacing() PacingConfig {
	return PacingConfig{
		Ceiling:         3,
		BaseQuiet:       0.25,
		EarlyBoost:      0.2,
		EarlyTurns:      3,
		ConsecutiveStep: 0.15,
		TensionRelief:   0.1,
		MaxQuiet:        0.9,
	}
}

// Pacing is the scheduler's memory between turns.
type Pacing struct {
	Consecutive   int         `json:"consecutive"`
	FiredThisTurn int         `json:"fired_this_turn"`
	LastFiredTurn int         `json:"last_fired_turn"`
	Deferred      []Candidate `json:"deferred,omitempty"`
}

// TensionConditions counts the conditions that make a quiet turn less likely.
func TensionConditions(s *state.Store) int {
	n := 0
	if s.GetStat(state.Stability) < 30 {
		n++
	}
	if s.GetStat(state.RivalThreat) > 70 {
		n++
	}
	if s.GetStat(state.PatronFavor) < 30 {
		n++
	}
	return n
}

// QuietProbability is the chance the coming turn is quiet.
func (cfg PacingConfig) QuietProbability(turn, consecutive, tension int) float64 {
	p := cfg.BaseQuiet
	if turn <= cfg.EarlyTurns {
		p += cfg.EarlyBoost
	}
	p += cfg.ConsecutiveStep * float64(consecutive)
	p -= cfg.TensionRelief * float64(tension)
	return state.ClampFloat(p, 0, cfg.MaxQuiet)
}

// Cap is how many incidents may fire this turn: two in a crisis, else one.
func Cap(s *state.Store) int {
	if s.GetStat(state.Stability) < 25 || s.GetStat(state.RivalThreat) > 85 || s.GetStat(state.PatronFavor) < 20 {
		return 2
	}
	return 1
}
