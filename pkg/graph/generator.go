package graph

import (
	"context"
	"fmt"
	"math/rand"
)

// Params bounds the random structure of a generated graph.
type Params struct {
	// MinNodes and MaxNodes bound the total node count, START and END
	// included. The node count is a soft target: the repair pass may
	// insert extra nodes when connectivity demands it.
	MinNodes int
	MaxNodes int

	// MinOutDegree and MaxOutDegree bound the outgoing edges sampled per
	// node during the edge pass, capped by the number of later nodes.
	MinOutDegree int
	MaxOutDegree int
}

// DefaultParams mirrors the generation bounds of the reference datasets.
func DefaultParams() Params {
	return Params{
		MinNodes:     5,
		MaxNodes:     10,
		MinOutDegree: 1,
		MaxOutDegree: 3,
	}
}

// normalized applies the parameter clamps: at least 3 nodes (START, one
// activity, END), out-degree at least 1, and max bounds raised to their
// min counterparts when inverted.
func (p Params) normalized() Params {
	if p.MinNodes < 3 {
		p.MinNodes = 3
	}
	if p.MaxNodes < p.MinNodes {
		p.MaxNodes = p.MinNodes
	}
	if p.MinOutDegree < 1 {
		p.MinOutDegree = 1
	}
	if p.MaxOutDegree < p.MinOutDegree {
		p.MaxOutDegree = p.MinOutDegree
	}
	return p
}

// Generator builds structurally valid process graphs. Each Generator owns
// its random stream and its used-names set; neither is shared across
// concurrent generations.
type Generator struct {
	processName string
	params      Params
	rng         *rand.Rand
	labeler     Labeler
	usedNames   map[string]struct{}
}

// NewGenerator creates a generator for one named process. The random
// stream is owned by the caller and must not be shared with another
// generator running concurrently.
func NewGenerator(processName string, params Params, rng *rand.Rand) *Generator {
	return &Generator{
		processName: processName,
		params:      params.normalized(),
		rng:         rng,
	}
}

// WithLabeler attaches an external labeling service used to give
// activities descriptive names once the structure is frozen. Without a
// labeler, nodes keep their generic Activity_<n> identifiers.
func (g *Generator) WithLabeler(l Labeler) *Generator {
	g.labeler = l
	return g
}

// ProcessName returns the process name the generator labels for.
func (g *Generator) ProcessName() string {
	return g.processName
}

// Params returns the normalized generation bounds.
func (g *Generator) Params() Params {
	return g.params
}

// Generate builds a random process graph: node creation, random forward
// edge sampling, the mandatory repair pass, and (with a labeler attached)
// the relabel pass. The returned graph satisfies every invariant checked
// by Validate. Labeling failures never abort generation; they degrade to
// synthesized names.
func (g *Generator) Generate(ctx context.Context) *Graph {
	g.usedNames = map[string]struct{}{Start: {}, End: {}}

	n := g.params.MinNodes + g.rng.Intn(g.params.MaxNodes-g.params.MinNodes+1)
	activities := make([]string, n-2)
	for i := range activities {
		activities[i] = fmt.Sprintf("Activity_%d", i+1)
	}

	gr := New(activities)
	g.generateEdges(gr)
	repair(gr, g.rng)

	if g.labeler != nil {
		g.relabel(ctx, gr)
	}
	return gr
}

// generateEdges samples a random out-degree worth of distinct targets for
// every node except END, drawing only from strictly later nodes so edges
// always point forward in creation order.
func (g *Generator) generateEdges(gr *Graph) {
	nodes := gr.Nodes()
	for i, node := range nodes {
		if node == End {
			continue
		}

		remaining := nodes[i+1:]
		if len(remaining) == 0 {
			continue
		}

		maxOut := g.params.MaxOutDegree
		if maxOut > len(remaining) {
			maxOut = len(remaining)
		}
		minOut := g.params.MinOutDegree
		if minOut > len(remaining) {
			minOut = len(remaining)
		}
		if minOut > maxOut {
			minOut = maxOut
		}

		count := minOut + g.rng.Intn(maxOut-minOut+1)
		for _, target := range sample(g.rng, remaining, count) {
			gr.AddEdge(node, target)
		}
	}
}

// sample returns k distinct elements drawn without replacement.
func sample(rng *rand.Rand, pool []string, k int) []string {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k]
}

// repair enforces the process modeling rules on an arbitrarily sampled
// graph. It is idempotent: on an already valid graph it changes nothing
// and draws nothing from the random stream.
func repair(gr *Graph, rng *rand.Rand) {
	// Strip edges into START and any direct START -> END edge.
	for _, node := range gr.Nodes() {
		gr.RemoveEdge(node, Start)
	}
	gr.RemoveEdge(Start, End)

	// END never has outgoing edges.
	gr.SetSuccessors(End, nil)

	// START must lead somewhere.
	if len(gr.Successors(Start)) == 0 {
		acts := gr.Activities()
		if len(acts) > 0 {
			gr.AddEdge(Start, acts[rng.Intn(len(acts))])
		} else {
			name := gr.nextActivityName()
			gr.InsertActivity(name)
			gr.AddEdge(name, End)
			gr.AddEdge(Start, name)
		}
	}

	// Every activity needs at least one outgoing and one incoming edge.
	for _, node := range gr.Activities() {
		if len(gr.Successors(node)) == 0 {
			targets := gr.laterThan(node)
			if len(targets) > 1 {
				targets = withoutEnd(targets)
			}
			if len(targets) > 0 {
				gr.AddEdge(node, targets[rng.Intn(len(targets))])
			} else {
				gr.AddEdge(node, End)
			}
		}

		if len(gr.Predecessors(node)) == 0 {
			sources := gr.earlierThan(node)
			if len(sources) > 0 {
				gr.AddEdge(sources[rng.Intn(len(sources))], node)
			} else {
				gr.AddEdge(Start, node)
			}
		}
	}

	// Some activity must flow into END.
	if !hasEdgeToEnd(gr) {
		acts := gr.Activities()
		var dangling []string
		for _, a := range acts {
			if len(gr.Successors(a)) == 0 {
				dangling = append(dangling, a)
			}
		}

		switch {
		case len(dangling) > 0:
			gr.AddEdge(dangling[len(dangling)-1], End)
		case len(acts) > 0:
			gr.AddEdge(acts[len(acts)-1], End)
		default:
			name := gr.nextActivityName()
			gr.InsertActivity(name)
			gr.AddEdge(name, End)
			gr.SetSuccessors(Start, []string{name})
		}
	}
}

func withoutEnd(nodes []string) []string {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != End {
			out = append(out, n)
		}
	}
	return out
}

func hasEdgeToEnd(gr *Graph) bool {
	for _, node := range gr.Nodes() {
		if node == Start {
			continue
		}
		if gr.HasEdge(node, End) {
			return true
		}
	}
	return false
}
