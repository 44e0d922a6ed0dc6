// Package rules evaluates the CEL gate expressions attached to catalog
// entries. A gate decides whether an incident type may fire given the
// current store.
package rules

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"github.com/talgya/politburo/internal/catalog"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/state"
)

// Gate holds one compiled program per gated incident type.
type Gate struct {
	env   *cel.Env
	progs map[events.Type]cel.Program
	src   map[events.Type]string
}

// NewEnv declares the variables a gate expression can read.
func NewEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("stats", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("flags", cel.ListType(cel.StringType)),
		cel.Variable("vars", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("turn", cel.IntType),
		cel.Variable("rank", cel.IntType),
		cel.Variable("priority", cel.IntType),
		cel.Variable("targets", cel.ListType(cel.StringType)),
	)
}

// New compiles every gate in the catalog. Any expression that fails to
// compile, or that cannot yield a bool, fails the whole set.
func New(cat *catalog.Catalog) (*Gate, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to build gate env: %w", err)
	}
	g := &Gate{
		env:   env,
		progs: make(map[events.Type]cel.Program),
		src:   make(map[events.Type]string),
	}
	gates := cat.Gates()
	types := make([]string, 0, len(gates))
	for t := range gates {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if err := g.Add(events.Type(t), gates[t]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add compiles expr as the gate for t, replacing any earlier one.
func (g *Gate) Add(t events.Type, expr string) error {
	ast, iss := g.env.Compile(expr)
	if iss.Err() != nil {
		return fmt.Errorf("gate %s: %w", t, iss.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return fmt.Errorf("gate %s: expression yields %s, want bool", t, out)
	}
	prog, err := g.env.Program(ast)
	if err != nil {
		return fmt.Errorf("gate %s: %w", t, err)
	}
	g.progs[t] = prog
	g.src[t] = expr
	return nil
}

// Expression returns the source of the gate for t.
func (g *Gate) Expression(t events.Type) (string, bool) {
	e, ok := g.src[t]
	return e, ok
}

// Len is the number of gated types.
func (g *Gate) Len() int { return len(g.progs) }

// Allow evaluates the gate for the candidate's type. Ungated types pass.
func (g *Gate) Allow(c events.Candidate, s *state.Store) (bool, error) {
	prog, ok := g.progs[c.Type]
	if !ok {
		return true, nil
	}
	out, _, err := prog.Eval(Activation(c, s))
	if err != nil {
		return false, fmt.Errorf("gate %s: %w", c.Type, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("gate %s: result %v is not a bool", c.Type, out.Value())
	}
	return b, nil
}

// Activation builds the variable bindings for one evaluation.
func Activation(c events.Candidate, s *state.Store) map[string]any {
	stats := make(map[string]int64)
	for name, v := range s.Stats() {
		stats[string(name)] = int64(v)
	}
	targets := c.Targets
	if targets == nil {
		targets = []string{}
	}
	return map[string]any{
		"stats":    stats,
		"flags":    s.Flags(),
		"vars":     s.Variables(),
		"turn":     int64(s.Turn),
		"rank":     int64(s.Player.Position),
		"priority": int64(c.Priority),
		"targets":  targets,
	}
}
