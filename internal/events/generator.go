package events

import (
	"fmt"

	"github.com/talgya/politburo/internal/catalog"
	"github.com/talgya/politburo/internal/state"
)

// WorldIncident is a foreign incident that occurred this turn.
type WorldIncident struct {
	Kind      string
	CountryID string
}

// Context is what generators see when proposing candidates.
type Context struct {
	Store   *state.Store
	Catalog *catalog.Catalog

	// This turn's output of the earlier phases.
	WorldIncidents  []WorldIncident
	PoliticalEvents []state.Event
	EconomicCrisis  state.CrisisKind

	CongressInterval int
}

// Turn is the turn being generated for.
func (c *Context) Turn() int { return c.Store.Turn }

// Candidate builds a candidate of type t with catalog content looked up by key.
// The id is stable for a given turn, type, key and first target.
func (c *Context) Candidate(t Type, p Priority, key string, targets ...string) Candidate {
	parts := []string{key}
	if len(targets) > 0 {
		parts = append(parts, targets[0])
	}
	return Candidate{
		ID:       state.NewID("incident/"+string(t), c.Turn(), parts...),
		Type:     t,
		Priority: p,
		Payload:  c.Catalog.Payload(string(t), key),
		Targets:  targets,
	}
}

// Generator proposes incident candidates.
type Generator interface {
	Name() string
	Generate(ctx *Context) ([]Candidate, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc struct {
	ID string
	Fn func(ctx *Context) ([]Candidate, error)
}

func (g GeneratorFunc) Name() string { return g.ID }

func (g GeneratorFunc) Generate(ctx *Context) ([]Candidate, error) { return g.Fn(ctx) }

// Registry is the ordered set of generators. Order is the tie-break for
// pressing incidents.
type Registry struct {
	gens []Generator
}

// Register appends a generator.
func (r *Registry) Register(g Generator) {
	r.gens = append(r.gens, g)
}

// Generators returns the registered generators in order.
func (r *Registry) Generators() []Generator {
	return r.gens
}

// GeneratorFailure records a generator whose output was discarded.
type GeneratorFailure struct {
	Generator string `json:"generator"`
	Error     string `json:"error"`
}

// run invokes one generator in isolation. Errors, panics and any malformed
// candidate discard the generator's whole output.
func run(g Generator, ctx *Context) (out []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	cands, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cands {
		cands[i].Source = g.Name()
		if verr := cands[i].Validate(); verr != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, verr)
		}
	}
	return cands, nil
}
