// Package typegraph relates the records of a program by the named types
// their fields reference.
package typegraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

var (
	// ErrCycle is returned by Order when records reference each other.
	ErrCycle = errors.New("type references form a cycle")

	// ErrUnknownStruct is returned when a name is not a record of the program.
	ErrUnknownStruct = errors.New("unknown struct")
)

// Edge says that a field of From is typed with the record To.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Field string `json:"field" yaml:"field"`
}

// Graph is the reference graph of one program. Internally edges point from
// the referenced record to its user so a topological sort yields
// dependencies first.
type Graph struct {
	g         graph.Graph[string, *ast.StructDefn]
	position  map[string]int
	names     []string
	selfLoops map[string]bool
	fields    map[[2]string]string
}

// Build creates the graph. The sentinel record is left out; references to
// names that are not records (primitives, external types) are dropped.
// When two records share a name the first one wins.
func Build(prog *ast.Program) (*Graph, error) {
	tg := &Graph{
		g:         graph.New(func(s *ast.StructDefn) string { return s.Name.Name() }, graph.Directed()),
		position:  make(map[string]int),
		selfLoops: make(map[string]bool),
		fields:    make(map[[2]string]string),
	}
	if prog == nil {
		return tg, nil
	}

	var structs []*ast.StructDefn
	for _, item := range prog.Items {
		s, ok := item.(*ast.StructDefn)
		if !ok || ast.IsSentinel(s) {
			continue
		}
		name := s.Name.Name()
		if err := tg.g.AddVertex(s); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				continue
			}
			return nil, fmt.Errorf("failed to add struct %s: %w", name, err)
		}
		tg.position[name] = len(tg.names)
		tg.names = append(tg.names, name)
		structs = append(structs, s)
	}

	for _, s := range structs {
		user := s.Name.Name()
		for _, f := range s.Fields {
			id, ok := f.Ty.(ast.TyID)
			if !ok {
				continue
			}
			dep := id.Name.Name()
			if _, known := tg.position[dep]; !known {
				continue
			}
			if dep == user {
				tg.selfLoops[user] = true
			}
			key := [2]string{user, dep}
			if _, seen := tg.fields[key]; seen {
				continue
			}
			tg.fields[key] = f.Name.Name()
			if err := tg.g.AddEdge(dep, user); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", user, dep, err)
			}
		}
	}

	return tg, nil
}

// Structs returns the record names in program order.
func (tg *Graph) Structs() []string {
	return append([]string(nil), tg.names...)
}

// Edges returns every reference, ordered by user then dependency position.
func (tg *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(tg.fields))
	for key, field := range tg.fields {
		edges = append(edges, Edge{From: key[0], To: key[1], Field: field})
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.From != b.From {
			return tg.position[a.From] < tg.position[b.From]
		}
		return tg.position[a.To] < tg.position[b.To]
	})
	return edges
}

// Order returns the records with every dependency before its users. Ties
// keep program order. Fails with ErrCycle when no such order exists.
func (tg *Graph) Order() ([]string, error) {
	if len(tg.selfLoops) > 0 {
		return nil, fmt.Errorf("%w: %s references itself", ErrCycle, tg.firstSelfLoop())
	}
	order, err := graph.StableTopologicalSort(tg.g, tg.less)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCycle, err)
	}
	return order, nil
}

// Cycles returns each group of mutually referencing records, including
// records that reference themselves. Groups and their members are in
// program order.
func (tg *Graph) Cycles() ([][]string, error) {
	sccs, err := graph.StronglyConnectedComponents(tg.g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute components: %w", err)
	}

	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) == 1 && !tg.selfLoops[scc[0]] {
			continue
		}
		sort.Slice(scc, func(i, j int) bool { return tg.less(scc[i], scc[j]) })
		cycles = append(cycles, scc)
	}
	sort.Slice(cycles, func(i, j int) bool { return tg.less(cycles[i][0], cycles[j][0]) })
	return cycles, nil
}

// Dependencies returns the records whose types appear in name's fields.
func (tg *Graph) Dependencies(name string) ([]string, error) {
	preds, err := tg.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	return tg.neighbours(name, preds)
}

// Dependents returns the records with a field typed name.
func (tg *Graph) Dependents(name string) ([]string, error) {
	adj, err := tg.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	return tg.neighbours(name, adj)
}

func (tg *Graph) neighbours(name string, m map[string]map[string]graph.Edge[string]) ([]string, error) {
	if _, ok := tg.position[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStruct, name)
	}
	out := make([]string, 0, len(m[name]))
	for n := range m[name] {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return tg.less(out[i], out[j]) })
	return out, nil
}

func (tg *Graph) less(a, b string) bool {
	return tg.position[a] < tg.position[b]
}

func (tg *Graph) firstSelfLoop() string {
	for _, name := range tg.names {
		if tg.selfLoops[name] {
			return name
		}
	}
	return ""
}

// Report is a serializable summary of the graph.
type Report struct {
	Structs []string   `json:"structs" yaml:"structs"`
	Edges   []Edge     `json:"edges" yaml:"edges"`
	Order   []string   `json:"order,omitempty" yaml:"order,omitempty"` // absent when the records form a cycle
	Cycles  [][]string `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// Report summarizes the graph. A cycle is not an error here; it leaves
// Order empty and shows up in Cycles.
func (tg *Graph) Report() (*Report, error) {
	r := &Report{Structs: tg.Structs(), Edges: tg.Edges()}

	order, err := tg.Order()
	switch {
	case err == nil:
		r.Order = order
	case !errors.Is(err, ErrCycle):
		return nil, err
	}

	if r.Cycles, err = tg.Cycles(); err != nil {
		return nil, err
	}
	return r, nil
}
