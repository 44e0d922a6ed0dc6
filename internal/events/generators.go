package events

import (
	"strconv"

	"github.com/talgya/politburo/internal/state"
)

// Generator names, in registration order.
const (
	GenPatron          = "patron"
	GenRival           = "rival"
	GenAlly            = "ally"
	GenConsequence     = "consequence-callback"
	GenStatCrisis      = "urgent-stat-crisis"
	GenAmbientTension  = "ambient-tension"
	GenNetworkIntel    = "network-intel"
	GenNPCAutonomous   = "npc-autonomous"
	GenAssassination   = "assassination-risk"
	GenCongress        = "congress-progression"
	GenTribunal        = "tribunal-progression"
	GenCorruptionProbe = "corruption-investigation"
)

// Store markers used by the progression generators.
const (
	FlagTribunal    = "tribunal_underway"
	VarTribunalNext = "tribunal_next_session"
	VarTribunalStep = "tribunal_stage"
	VarLastCongress = "last_congress"

	tribunalStages   = 3
	tribunalInterval = 3
)

// DefaultCongressInterval is the number of turns between party congresses.
const DefaultCongressInterval = 20

// DefaultRegistry returns the twelve standard generators in order.
func DefaultRegistry() *Registry {
	r := &Registry{}
	for _, g := range []GeneratorFunc{
		{GenPatron, patronGenerator},
		{GenRival, rivalGenerator},
		{GenAlly, allyGenerator},
		{GenConsequence, consequenceGenerator},
		{GenStatCrisis, statCrisisGenerator},
		{GenAmbientTension, ambientTensionGenerator},
		{GenNetworkIntel, networkIntelGenerator},
		{GenNPCAutonomous, npcGenerator},
		{GenAssassination, assassinationGenerator},
		{GenCongress, congressGenerator},
		{GenTribunal, tribunalGenerator},
		{GenCorruptionProbe, corruptionGenerator},
	} {
		r.Register(g)
	}
	return r
}

func patronGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	patron, ok := s.LivingCharacter(s.Player.PatronID)
	if !ok {
		return nil, nil
	}
	favor := s.GetStat(state.PatronFavor)
	switch {
	case favor < 30:
		return []Candidate{ctx.Candidate(PatronWarning, Elevated, "", patron.ID)}, nil
	case ctx.Turn()%5 == 0:
		return []Candidate{ctx.Candidate(PatronDemand, Normal, "", patron.ID)}, nil
	case favor > 60 && ctx.Turn()%3 == 0:
		return []Candidate{ctx.Candidate(PatronSummons, Background, "", patron.ID)}, nil
	}
	return nil, nil
}

func rivalGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	rival, ok := s.LivingCharacter(s.Player.RivalID)
	if !ok {
		return nil, nil
	}
	threat := s.GetStat(state.RivalThreat)
	switch {
	case threat > 85:
		return []Candidate{ctx.Candidate(RivalAccusation, Urgent, "", rival.ID)}, nil
	case threat > 60:
		return []Candidate{ctx.Candidate(RivalScheme, Elevated, "", rival.ID)}, nil
	case threat > 40:
		return []Candidate{ctx.Candidate(RivalScheme, Normal, "", rival.ID)}, nil
	}
	return nil, nil
}

func allyGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	for _, id := range s.Player.AllyIDs {
		ally, ok := s.LivingCharacter(id)
		if !ok {
			continue
		}
		if s.GetStat(state.NetworkStrength) < 30 {
			return []Candidate{ctx.Candidate(AllyWarning, Elevated, "", ally.ID)}, nil
		}
		if ctx.Turn()%4 == 1 {
			return []Candidate{ctx.Candidate(AllyRequest, Normal, "", ally.ID)}, nil
		}
		return nil, nil
	}
	return nil, nil
}

func consequenceGenerator(ctx *Context) ([]Candidate, error) {
	var out []Candidate
	for _, c := range ctx.Store.Consequences {
		if c.DueTurn > ctx.Turn() {
			continue
		}
		cand := ctx.Candidate(ConsequenceCallback, Priority(c.Priority), c.Key)
		cand.ID = c.ID
		cand.ConsequenceID = c.ID
		if c.Title != "" {
			cand.Payload["title"] = c.Title
		}
		out = append(out, cand)
	}
	return out, nil
}

func statCrisisGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	var out []Candidate

	switch stab := s.GetStat(state.Stability); {
	case stab < 20:
		out = append(out, ctx.Candidate(StabilityCrisis, Critical, ""))
	case stab < 35:
		out = append(out, ctx.Candidate(StabilityCrisis, Urgent, ""))
	}
	switch t := s.GetStat(state.Treasury); {
	case t < -80:
		out = append(out, ctx.Candidate(TreasuryCrisis, Critical, ""))
	case t < -50:
		out = append(out, ctx.Candidate(TreasuryCrisis, Urgent, ""))
	}
	if s.GetStat(state.FoodSupply) < 20 {
		out = append(out, ctx.Candidate(FoodCrisis, Urgent, ""))
	}
	if s.GetStat(state.MilitaryLoyalty) < 25 {
		out = append(out, ctx.Candidate(MilitaryUnrest, Urgent, ""))
	}
	return out, nil
}

// severeIncidents raise a foreign crisis to elevated.
var severeIncidents = map[string]bool{
	"coup": true, "revolution": true, "borderIncident": true, "espionageScandal": true,
}

func ambientTensionGenerator(ctx *Context) ([]Candidate, error) {
	var out []Candidate
	if len(ctx.WorldIncidents) > 0 {
		worst := ctx.WorldIncidents[0]
		p := Normal
		for _, inc := range ctx.WorldIncidents {
			if severeIncidents[inc.Kind] {
				worst, p = inc, Elevated
				break
			}
		}
		out = append(out, ctx.Candidate(ForeignCrisis, p, worst.Kind, worst.CountryID))
	}
	switch {
	case ctx.EconomicCrisis != state.CrisisNone:
		out = append(out, ctx.Candidate(AmbientTension, Normal, string(ctx.EconomicCrisis)))
	case ctx.Store.GetStat(state.Stability) < 60:
		out = append(out, ctx.Candidate(AmbientTension, Background, ""))
	}
	return out, nil
}

func networkIntelGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	for _, c := range s.Countries {
		if c.Espionage.Intel >= 50 {
			return []Candidate{ctx.Candidate(NetworkIntel, Elevated, "foreign", c.ID)}, nil
		}
	}
	if s.GetStat(state.NetworkStrength) > 60 {
		return []Candidate{ctx.Candidate(NetworkIntel, Normal, "domestic")}, nil
	}
	return nil, nil
}

// npcKinds ranks the political events that reach the player.
var npcKinds = map[string]Priority{
	"decree":        Elevated,
	"rivalTargeted": Elevated,
	"vote":          Normal,
	"proposal":      Normal,
	"appointment":   Background,
}

func npcGenerator(ctx *Context) ([]Candidate, error) {
	best, found := Background, false
	var pick state.Event
	for _, ev := range ctx.PoliticalEvents {
		p, ok := npcKinds[ev.Kind]
		if !ok || ev.Failed {
			continue
		}
		if !found || p > best {
			best, pick, found = p, ev, true
		}
	}
	if !found {
		return nil, nil
	}
	return []Candidate{ctx.Candidate(NPCAction, best, pick.Kind, pick.Targets...)}, nil
}

func assassinationGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	if s.Player.Position < state.PositionPolitburo {
		return nil, nil
	}
	if s.GetStat(state.RivalThreat) > 75 || s.GetStat(state.MilitaryLoyalty) < 30 {
		return []Candidate{ctx.Candidate(AssassinationAttempt, Urgent, "")}, nil
	}
	return nil, nil
}

func congressGenerator(ctx *Context) ([]Candidate, error) {
	interval := ctx.CongressInterval
	if interval <= 2 {
		interval = DefaultCongressInterval
	}
	switch ctx.Turn() % interval {
	case 0:
		return []Candidate{ctx.Candidate(PartyCongress, Urgent, "")}, nil
	case interval - 2:
		return []Candidate{ctx.Candidate(CongressPreparation, Normal, "")}, nil
	}
	return nil, nil
}

func tribunalGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	if !s.HasFlag(FlagTribunal) {
		return nil, nil
	}
	next, err := intVar(s, VarTribunalNext)
	if err != nil {
		return nil, err
	}
	if ctx.Turn() < next {
		return nil, nil
	}
	stage, err := intVar(s, VarTribunalStep)
	if err != nil {
		return nil, err
	}
	p := Elevated
	if stage+1 >= tribunalStages {
		p = Urgent
	}
	return []Candidate{ctx.Candidate(TribunalSession, p, "stage"+strconv.Itoa(stage+1))}, nil
}

func corruptionGenerator(ctx *Context) ([]Candidate, error) {
	s := ctx.Store
	if s.HasFlag(FlagTribunal) {
		return nil, nil
	}
	switch c := s.GetStat(state.Corruption); {
	case c > 85:
		return []Candidate{ctx.Candidate(CorruptionInvestigation, Urgent, "")}, nil
	case c > 60:
		return []Candidate{ctx.Candidate(CorruptionInvestigation, Elevated, "")}, nil
	}
	return nil, nil
}

// intVar reads an integer marker. An unset marker reads as 0.
func intVar(s *state.Store, key string) (int, error) {
	v, ok := s.Var(key)
	if !ok {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// followUp is a consequence scheduled when an incident of a type fires.
type followUp struct {
	Key      string
	Delay    int
	Priority Priority
}

var followUps = map[Type]followUp{
	RivalAccusation: {Key: "purgeTrial", Delay: 2, Priority: Elevated},
	FoodCrisis:      {Key: "grainRequisition", Delay: 3, Priority: Normal},
}

// progress advances the multi-turn storylines after an incident fires.
func progress(s *state.Store, c Candidate) {
	if f, ok := followUps[c.Type]; ok {
		s.ScheduleConsequence(state.Consequence{
			ID:       state.NewID("consequence/"+f.Key, s.Turn, c.ID),
			Key:      f.Key,
			DueTurn:  s.Turn + f.Delay,
			Priority: int(f.Priority),
		})
	}
	switch c.Type {
	case CorruptionInvestigation:
		if c.Priority.Pressing() && !s.HasFlag(FlagTribunal) {
			s.AddFlag(FlagTribunal)
			s.SetVar(VarTribunalStep, "0")
			s.SetVar(VarTribunalNext, strconv.Itoa(s.Turn+tribunalInterval))
		}
	case TribunalSession:
		stage, _ := intVar(s, VarTribunalStep)
		stage++
		if stage >= tribunalStages {
			s.RemoveFlag(FlagTribunal)
			s.DeleteVar(VarTribunalStep)
			s.DeleteVar(VarTribunalNext)
			return
		}
		s.SetVar(VarTribunalStep, strconv.Itoa(stage))
		s.SetVar(VarTribunalNext, strconv.Itoa(s.Turn+tribunalInterval))
	case PartyCongress:
		s.SetVar(VarLastCongress, strconv.Itoa(s.Turn))
	}
}
