package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/talgya/politburo/internal/diplomacy"
	"github.com/talgya/politburo/internal/economy"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/politics"
	"github.com/talgya/politburo/internal/state"
	"github.com/talgya/politburo/internal/telemetry"
)

// TurnReport is everything one turn produced, in phase order.
type TurnReport struct {
	Turn      int              `json:"turn"`
	Economy   economy.Result   `json:"economy"`
	Diplomacy diplomacy.Result `json:"diplomacy"`
	Politics  politics.Result  `json:"politics"`
	Incidents events.Outcome   `json:"incidents"`

	Retired  int                `json:"retired_consequences"`
	Stats    map[state.Stat]int `json:"stats"`
	Treasury int                `json:"treasury"`
}

// Events returns the turn's economic, diplomatic and political events in order.
func (r *TurnReport) Events() []state.Event {
	out := make([]state.Event, 0, len(r.Economy.Events)+len(r.Diplomacy.Events)+len(r.Politics.Events))
	out = append(out, r.Economy.Events...)
	out = append(out, r.Diplomacy.Events...)
	out = append(out, r.Politics.Events...)
	return out
}

// Summary renders a short multi-line digest for the command line.
func (r *TurnReport) Summary() string {
	var b strings.Builder
	l := r.Economy.Ledger
	fmt.Fprintf(&b, "Turn %d\n", r.Turn)
	fmt.Fprintf(&b, "  ledger: income %d, expenses %d, net %+d, treasury %d -> %d\n",
		l.TotalIncome, l.TotalExpenses, l.Net, l.TreasuryBefore, l.TreasuryAfter)
	ind := r.Economy.Indicators
	fmt.Fprintf(&b, "  economy: growth %.1f%%, inflation %.1f%%, unemployment %.1f%%",
		ind.GDPGrowth, ind.Inflation, ind.Unemployment)
	if r.Economy.Crisis.Active != state.CrisisNone {
		fmt.Fprintf(&b, ", crisis %s", r.Economy.Crisis.Active)
	}
	b.WriteByte('\n')
	for _, ev := range r.Events() {
		mark := ""
		if ev.Failed {
			mark = " (failed)"
		}
		fmt.Fprintf(&b, "  [%s] %s%s\n", ev.Category, ev.Description, mark)
	}
	switch {
	case r.Incidents.Quiet:
		fmt.Fprintf(&b, "  quiet turn (%s)\n", r.Incidents.QuietReason)
	default:
		for _, c := range r.Incidents.Selected {
			title, _ := c.Payload["title"].(string)
			fmt.Fprintf(&b, "  incident: %s [%s] %s\n", c.Type, c.Priority, title)
		}
	}
	return b.String()
}

func (r *TurnReport) sample(d time.Duration) telemetry.TurnSample {
	ts := telemetry.TurnSample{
		Turn:        r.Turn,
		Quiet:       r.Incidents.Quiet,
		QuietReason: r.Incidents.QuietReason,
		Suppressed:  len(r.Incidents.Suppressed),
		Failures:    len(r.Incidents.Failures),
		CrisisStart: string(r.Economy.Crisis.Started),
		Duration:    d,
	}
	for _, c := range r.Incidents.Selected {
		ts.Selected = append(ts.Selected, string(c.Type))
	}
	return ts
}
