package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/politburo/internal/catalog"
	"github.com/talgya/politburo/internal/state"
)

func genCtx(t *testing.T, turn int) *Context {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	s := state.NewStore()
	s.Turn = turn
	return &Context{Store: s, Catalog: cat}
}

func types(cands []Candidate) []Type {
	var out []Type
	for _, c := range cands {
		out = append(out, c.Type)
	}
	return out
}

func TestDefaultRegistryOrder(t *testing.T) {
	var names []string
	for _, g := range DefaultRegistry().Generators() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{
		GenPatron, GenRival, GenAlly, GenConsequence, GenStatCrisis, GenAmbientTension,
		GenNetworkIntel, GenNPCAutonomous, GenAssassination, GenCongress, GenTribunal, GenCorruptionProbe,
	}, names)
}

func TestStatCrisisGenerator(t *testing.T) {
	ctx := genCtx(t, 4)
	s := ctx.Store
	s.SetStat(state.Stability, 15)
	s.SetStat(state.Treasury, -60)
	s.SetStat(state.FoodSupply, 10)
	s.SetStat(state.MilitaryLoyalty, 20)

	cands, err := statCrisisGenerator(ctx)
	require.NoError(t, err)
	require.Len(t, cands, 4)
	assert.Equal(t, Critical, cands[0].Priority)
	assert.Equal(t, Urgent, cands[1].Priority)
	assert.Equal(t, []Type{StabilityCrisis, TreasuryCrisis, FoodCrisis, MilitaryUnrest}, types(cands))
	assert.Equal(t, "Unrest in the Cities", cands[0].Payload["title"])

	s.SetStat(state.Stability, 30)
	s.SetStat(state.Treasury, 0)
	s.SetStat(state.FoodSupply, 50)
	s.SetStat(state.MilitaryLoyalty, 50)
	cands, _ = statCrisisGenerator(ctx)
	require.Len(t, cands, 1)
	assert.Equal(t, Urgent, cands[0].Priority)
}

func TestPatronAndRivalGenerators(t *testing.T) {
	ctx := genCtx(t, 7)
	s := ctx.Store
	s.AddCharacter(&state.Character{ID: "patron", Alive: true})
	s.AddCharacter(&state.Character{ID: "rival", Alive: true})
	s.Player.PatronID = "patron"
	s.Player.RivalID = "rival"

	s.SetStat(state.PatronFavor, 20)
	cands, _ := patronGenerator(ctx)
	assert.Equal(t, []Type{PatronWarning}, types(cands))
	assert.Equal(t, []string{"patron"}, cands[0].Targets)

	s.SetStat(state.RivalThreat, 90)
	cands, _ = rivalGenerator(ctx)
	require.Len(t, cands, 1)
	assert.Equal(t, RivalAccusation, cands[0].Type)
	assert.Equal(t, Urgent, cands[0].Priority)

	s.SetStat(state.RivalThreat, 30)
	cands, _ = rivalGenerator(ctx)
	assert.Empty(t, cands)

	s.Player.PatronID = "ghost"
	cands, err := patronGenerator(ctx)
	assert.NoError(t, err)
	assert.Empty(t, cands)
}

func TestConsequenceGenerator(t *testing.T) {
	ctx := genCtx(t, 6)
	s := ctx.Store
	s.ScheduleConsequence(state.Consequence{ID: "c1", Key: "purgeTrial", DueTurn: 5, Priority: int(Urgent)})
	s.ScheduleConsequence(state.Consequence{ID: "c2", Key: "grainRequisition", DueTurn: 9, Priority: int(Normal)})

	cands, err := consequenceGenerator(ctx)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "c1", cands[0].ID)
	assert.Equal(t, "c1", cands[0].ConsequenceID)
	assert.Equal(t, "Verdicts Are Demanded", cands[0].Payload["title"])
}

func TestMalformedConsequenceDropsGeneratorOutput(t *testing.T) {
	ctx := genCtx(t, 6)
	ctx.Store.ScheduleConsequence(state.Consequence{ID: "ok", DueTurn: 1, Priority: int(Normal)})
	ctx.Store.ScheduleConsequence(state.Consequence{ID: "bad", DueTurn: 1, Priority: 42})

	cands, err := run(GeneratorFunc{ID: GenConsequence, Fn: consequenceGenerator}, ctx)
	assert.Error(t, err)
	assert.Nil(t, cands)
}

func TestAmbientTensionGenerator(t *testing.T) {
	ctx := genCtx(t, 3)
	ctx.WorldIncidents = []WorldIncident{{Kind: "tradeDispute", CountryID: "a"}, {Kind: "coup", CountryID: "b"}}
	ctx.EconomicCrisis = state.CrisisShortage

	cands, _ := ambientTensionGenerator(ctx)
	require.Len(t, cands, 2)
	assert.Equal(t, ForeignCrisis, cands[0].Type)
	assert.Equal(t, Elevated, cands[0].Priority)
	assert.Equal(t, []string{"b"}, cands[0].Targets)
	assert.Equal(t, AmbientTension, cands[1].Type)
	assert.Equal(t, Normal, cands[1].Priority)
}

func TestNPCGeneratorPicksMostSignificant(t *testing.T) {
	ctx := genCtx(t, 3)
	ctx.PoliticalEvents = []state.Event{
		{Kind: "appointment"},
		{Kind: "decree", Targets: []string{"gs", "wages"}},
		{Kind: "vote"},
		{Kind: "decree", Failed: true},
	}
	cands, _ := npcGenerator(ctx)
	require.Len(t, cands, 1)
	assert.Equal(t, Elevated, cands[0].Priority)
	assert.Equal(t, []string{"gs", "wages"}, cands[0].Targets)
}

func TestAssassinationRequiresRank(t *testing.T) {
	ctx := genCtx(t, 3)
	ctx.Store.SetStat(state.RivalThreat, 80)

	cands, _ := assassinationGenerator(ctx)
	assert.Empty(t, cands)

	ctx.Store.Player.Position = state.PositionPolitburo
	cands, _ = assassinationGenerator(ctx)
	assert.Equal(t, []Type{AssassinationAttempt}, types(cands))
}

func TestCongressGenerator(t *testing.T) {
	ctx := genCtx(t, 20)
	cands, _ := congressGenerator(ctx)
	assert.Equal(t, []Type{PartyCongress}, types(cands))

	ctx.Store.Turn = 18
	cands, _ = congressGenerator(ctx)
	assert.Equal(t, []Type{CongressPreparation}, types(cands))

	ctx.Store.Turn = 10
	ctx.CongressInterval = 10
	cands, _ = congressGenerator(ctx)
	assert.Equal(t, []Type{PartyCongress}, types(cands))
}

func TestTribunalStoryline(t *testing.T) {
	ctx := genCtx(t, 5)
	s := ctx.Store
	s.SetStat(state.Corruption, 90)

	cands, _ := corruptionGenerator(ctx)
	require.Len(t, cands, 1)
	require.Equal(t, Urgent, cands[0].Priority)
	progress(s, cands[0])
	require.True(t, s.HasFlag(FlagTribunal))

	cands, _ = corruptionGenerator(ctx)
	assert.Empty(t, cands, "no new probe while a tribunal sits")

	for stage := 1; stage <= tribunalStages; stage++ {
		s.Turn += tribunalInterval
		cands, err := tribunalGenerator(ctx)
		require.NoError(t, err)
		require.Len(t, cands, 1, "stage %d", stage)
		if stage == tribunalStages {
			assert.Equal(t, Urgent, cands[0].Priority)
		} else {
			assert.Equal(t, Elevated, cands[0].Priority)
		}
		progress(s, cands[0])
	}
	assert.False(t, s.HasFlag(FlagTribunal))
	_, ok := s.Var(VarTribunalStep)
	assert.False(t, ok)
}

func TestTribunalCorruptMarkerErrors(t *testing.T) {
	ctx := genCtx(t, 5)
	ctx.Store.AddFlag(FlagTribunal)
	ctx.Store.SetVar(VarTribunalNext, "soon")

	_, err := tribunalGenerator(ctx)
	assert.Error(t, err)
}

func TestNetworkIntelGenerator(t *testing.T) {
	ctx := genCtx(t, 5)
	ctx.Store.AddCountry(&state.ForeignCountry{ID: "x", Espionage: state.Espionage{Intel: 60}})
	cands, _ := networkIntelGenerator(ctx)
	require.Len(t, cands, 1)
	assert.Equal(t, Elevated, cands[0].Priority)
	assert.Equal(t, []string{"x"}, cands[0].Targets)
}

func TestCandidateIDsStable(t *testing.T) {
	a := genCtx(t, 9).Candidate(RivalScheme, Normal, "", "r")
	b := genCtx(t, 9).Candidate(RivalScheme, Normal, "", "r")
	c := genCtx(t, 10).Candidate(RivalScheme, Normal, "", "r")
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestFiredIncidentSchedulesFollowUp(t *testing.T) {
	ctx := genCtx(t, 12)
	c := ctx.Candidate(RivalAccusation, Urgent, "", "rival")
	progress(ctx.Store, c)

	require.Len(t, ctx.Store.Consequences, 1)
	due := ctx.Store.Consequences[0]
	assert.Equal(t, "purgeTrial", due.Key)
	assert.Equal(t, 14, due.DueTurn)
	assert.Equal(t, int(Elevated), due.Priority)

	ctx.Store.Turn = 14
	cands, err := run(GeneratorFunc{ID: GenConsequence, Fn: consequenceGenerator}, ctx)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, due.ID, cands[0].ConsequenceID)
}
