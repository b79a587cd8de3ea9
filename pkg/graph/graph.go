// Package graph implements random process-graph generation with
// structural-validity repair. A process graph is a finite DAG of activity
// nodes between a single START and a single END.
package graph

import (
	"fmt"
	"strings"
)

// Terminal node identifiers. They are fixed and never relabeled.
const (
	Start = "START"
	End   = "END"
)

// Graph is an ordered adjacency-list process graph. Nodes carry an implicit
// creation order: START first, activities in insertion order, END last.
// Edges only ever point from earlier to later nodes, which keeps the graph
// acyclic by construction.
//
// The mutation API (AddEdge, RemoveEdge, SetSuccessors, InsertActivity) is
// meant for construction and repair only. Once a graph is handed to a
// consumer it is treated as read-only.
type Graph struct {
	nodes []string
	succ  map[string][]string
	order map[string]int
}

// New creates a graph with START, the given activities in order, and END.
// All adjacency lists start empty.
func New(activities []string) *Graph {
	g := &Graph{
		succ:  make(map[string][]string, len(activities)+2),
		order: make(map[string]int, len(activities)+2),
	}
	g.appendNode(Start)
	for _, a := range activities {
		g.appendNode(a)
	}
	g.appendNode(End)
	return g
}

func (g *Graph) appendNode(name string) {
	g.order[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
	g.succ[name] = nil
}

// InsertActivity inserts a new activity node just before END in creation
// order. Used by the repair pass when connectivity demands an extra node.
func (g *Graph) InsertActivity(name string) {
	if _, exists := g.order[name]; exists {
		return
	}
	last := len(g.nodes) - 1
	end := g.nodes[last]
	g.nodes[last] = name
	g.nodes = append(g.nodes, end)
	g.succ[name] = nil
	g.order[name] = last
	g.order[end] = last + 1
}

// Contains reports whether the node exists in the graph.
func (g *Graph) Contains(node string) bool {
	_, ok := g.order[node]
	return ok
}

// Nodes returns all nodes in creation order. The returned slice is shared;
// callers must not modify it.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// Activities returns the non-terminal nodes in creation order.
func (g *Graph) Activities() []string {
	acts := make([]string, 0, len(g.nodes)-2)
	for _, n := range g.nodes {
		if n != Start && n != End {
			acts = append(acts, n)
		}
	}
	return acts
}

// Len returns the total node count including START and END.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Successors returns the outgoing adjacency of node in insertion order.
// The returned slice is shared; callers must not modify it.
func (g *Graph) Successors(node string) []string {
	return g.succ[node]
}

// Predecessors returns every node with an edge into the given node, in
// creation order of the sources.
func (g *Graph) Predecessors(node string) []string {
	var preds []string
	for _, n := range g.nodes {
		if g.HasEdge(n, node) {
			preds = append(preds, n)
		}
	}
	return preds
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	for _, t := range g.succ[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AddEdge adds the edge from -> to unless it already exists.
func (g *Graph) AddEdge(from, to string) {
	if g.HasEdge(from, to) {
		return
	}
	g.succ[from] = append(g.succ[from], to)
}

// RemoveEdge removes the edge from -> to if present.
func (g *Graph) RemoveEdge(from, to string) {
	targets := g.succ[from]
	for i, t := range targets {
		if t == to {
			g.succ[from] = append(targets[:i], targets[i+1:]...)
			return
		}
	}
}

// SetSuccessors replaces the outgoing adjacency of node.
func (g *Graph) SetSuccessors(node string, targets []string) {
	g.succ[node] = targets
}

// earlierThan returns nodes strictly earlier in creation order, excluding
// END and the node itself.
func (g *Graph) earlierThan(node string) []string {
	idx := g.order[node]
	var out []string
	for _, n := range g.nodes {
		if n == End || n == node {
			continue
		}
		if g.order[n] < idx {
			out = append(out, n)
		}
	}
	return out
}

// laterThan returns nodes strictly later in creation order, excluding
// START and the node itself.
func (g *Graph) laterThan(node string) []string {
	idx := g.order[node]
	var out []string
	for _, n := range g.nodes {
		if n == Start || n == node {
			continue
		}
		if g.order[n] > idx {
			out = append(out, n)
		}
	}
	return out
}

// nextActivityName returns the first Activity_<n> identifier not yet
// present as a node.
func (g *Graph) nextActivityName() string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("Activity_%d", i)
		if !g.Contains(name) {
			return name
		}
	}
}

// rename rebuilds the graph with every node replaced by mapping[node],
// preserving creation order and edge order.
func (g *Graph) rename(mapping map[string]string) {
	mapped := func(n string) string {
		if m, ok := mapping[n]; ok {
			return m
		}
		return n
	}

	newNodes := make([]string, len(g.nodes))
	newSucc := make(map[string][]string, len(g.succ))
	newOrder := make(map[string]int, len(g.order))

	for i, n := range g.nodes {
		nn := mapped(n)
		newNodes[i] = nn
		newOrder[nn] = i

		targets := g.succ[n]
		nt := make([]string, len(targets))
		for j, t := range targets {
			nt[j] = mapped(t)
		}
		newSucc[nn] = nt
	}

	g.nodes = newNodes
	g.succ = newSucc
	g.order = newOrder
}

// Validate checks every structural invariant of a process graph:
// START has no incoming edges and no direct edge to END; END has no
// outgoing edges; every activity has at least one incoming and one
// outgoing edge; every node is reachable from START; END is reachable
// from every node; the graph is acyclic.
func (g *Graph) Validate() error {
	if !g.Contains(Start) || !g.Contains(End) {
		return fmt.Errorf("graph missing %s or %s node", Start, End)
	}
	if len(g.Predecessors(Start)) > 0 {
		return fmt.Errorf("%s has incoming edges from %v", Start, g.Predecessors(Start))
	}
	if g.HasEdge(Start, End) {
		return fmt.Errorf("direct %s -> %s edge", Start, End)
	}
	if len(g.Successors(End)) > 0 {
		return fmt.Errorf("%s has outgoing edges %v", End, g.Successors(End))
	}

	for _, node := range g.Activities() {
		if len(g.Successors(node)) == 0 {
			return fmt.Errorf("activity %q has no outgoing edges", node)
		}
		if len(g.Predecessors(node)) == 0 {
			return fmt.Errorf("activity %q has no incoming edges", node)
		}
	}

	for _, node := range g.nodes {
		for _, t := range g.succ[node] {
			if !g.Contains(t) {
				return fmt.Errorf("edge %q -> %q points outside the graph", node, t)
			}
		}
	}

	reachable := g.reachableFrom(Start)
	for _, node := range g.nodes {
		if _, ok := reachable[node]; !ok {
			return fmt.Errorf("node %q not reachable from %s", node, Start)
		}
	}

	for _, node := range g.nodes {
		if node == End {
			continue
		}
		if !g.reaches(node, End) {
			return fmt.Errorf("%s not reachable from node %q", End, node)
		}
	}

	if cycle := g.findCycle(); cycle != "" {
		return fmt.Errorf("cycle detected through %q", cycle)
	}
	return nil
}

func (g *Graph) reachableFrom(start string) map[string]struct{} {
	seen := map[string]struct{}{start: {}}
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range g.succ[n] {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				stack = append(stack, t)
			}
		}
	}
	return seen
}

func (g *Graph) reaches(from, target string) bool {
	_, ok := g.reachableFrom(from)[target]
	return ok
}

// findCycle returns a node on a cycle, or "" if the graph is acyclic.
func (g *Graph) findCycle() string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(g.nodes))

	var visit func(n string) string
	visit = func(n string) string {
		state[n] = inStack
		for _, t := range g.succ[n] {
			switch state[t] {
			case inStack:
				return t
			case unvisited:
				if c := visit(t); c != "" {
					return c
				}
			}
		}
		state[n] = done
		return ""
	}

	for _, n := range g.nodes {
		if state[n] == unvisited {
			if c := visit(n); c != "" {
				return c
			}
		}
	}
	return ""
}

// String renders the adjacency list in creation order, one node per line.
func (g *Graph) String() string {
	var sb strings.Builder
	for _, n := range g.nodes {
		targets := g.succ[n]
		if len(targets) == 0 {
			fmt.Fprintf(&sb, "%s -> (none)\n", n)
			continue
		}
		fmt.Fprintf(&sb, "%s -> %s\n", n, strings.Join(targets, ", "))
	}
	return sb.String()
}

// Edges returns every edge as [from, to] pairs, ordered by source creation
// order then target insertion order.
func (g *Graph) Edges() [][2]string {
	var edges [][2]string
	for _, n := range g.nodes {
		for _, t := range g.succ[n] {
			edges = append(edges, [2]string{n, t})
		}
	}
	return edges
}
