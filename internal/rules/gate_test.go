package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/politburo/internal/catalog"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/state"
)

func defaultGate(t *testing.T) *Gate {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	g, err := New(cat)
	require.NoError(t, err)
	return g
}

func TestDefaultCatalogGatesCompile(t *testing.T) {
	g := defaultGate(t)
	assert.Equal(t, 3, g.Len())
	expr, ok := g.Expression(events.MilitaryUnrest)
	assert.True(t, ok)
	assert.Equal(t, "rank >= 3", expr)
}

func TestRankGate(t *testing.T) {
	g := defaultGate(t)
	s := state.NewStore()
	c := events.Candidate{ID: "x", Type: events.MilitaryUnrest, Priority: events.Urgent}

	ok, err := g.Allow(c, s)
	require.NoError(t, err)
	assert.False(t, ok)

	s.Player.Position = state.PositionCentralCommittee
	ok, err = g.Allow(c, s)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPriorityGate(t *testing.T) {
	g := defaultGate(t)
	s := state.NewStore()

	t.Run("urgent foreign crisis reaches a junior", func(t *testing.T) {
		ok, err := g.Allow(events.Candidate{Type: events.ForeignCrisis, Priority: events.Urgent}, s)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("routine foreign crisis does not", func(t *testing.T) {
		ok, err := g.Allow(events.Candidate{Type: events.ForeignCrisis, Priority: events.Normal}, s)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFlagGate(t *testing.T) {
	g := defaultGate(t)
	s := state.NewStore()
	c := events.Candidate{Type: events.CorruptionInvestigation, Priority: events.Elevated}

	ok, _ := g.Allow(c, s)
	assert.True(t, ok)

	s.AddFlag(events.FlagTribunal)
	ok, _ = g.Allow(c, s)
	assert.False(t, ok)
}

func TestUngatedTypePasses(t *testing.T) {
	g := defaultGate(t)
	ok, err := g.Allow(events.Candidate{Type: events.PatronDemand}, state.NewStore())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStatsVarsAndTargets(t *testing.T) {
	g, err := New(&catalog.Catalog{})
	require.NoError(t, err)
	require.NoError(t, g.Add(events.NPCAction, `stats.stability < 40 && vars.mood == "grim" && "gs" in targets && turn > 2`))

	s := state.NewStore()
	s.Turn = 3
	s.SetStat(state.Stability, 30)
	s.SetVar("mood", "grim")

	ok, err := g.Allow(events.Candidate{Type: events.NPCAction, Targets: []string{"gs"}}, s)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Allow(events.Candidate{Type: events.NPCAction}, s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadExpressions(t *testing.T) {
	g, err := New(&catalog.Catalog{})
	require.NoError(t, err)

	assert.Error(t, g.Add(events.NPCAction, "rank >="), "syntax error")
	assert.Error(t, g.Add(events.NPCAction, "rank + 1"), "non-bool result")
	assert.Error(t, g.Add(events.NPCAction, "unknown > 1"), "undeclared variable")
}

func TestMissingKeyIsEvalError(t *testing.T) {
	g, err := New(&catalog.Catalog{})
	require.NoError(t, err)
	require.NoError(t, g.Add(events.NPCAction, `vars.absent == "x"`))

	_, err = g.Allow(events.Candidate{Type: events.NPCAction}, state.NewStore())
	assert.Error(t, err)
}

func TestCatalogWithBrokenGate(t *testing.T) {
	cat, err := catalog.Parse([]byte("incidents:\n  - type: npcAction\n    title: x\n    gate: \"rank >\"\n"))
	require.NoError(t, err)
	_, err = New(cat)
	assert.Error(t, err)
}
