package graph

import (
	"strings"
	"testing"
)

func TestNewGraphOrdering(t *testing.T) {
	g := New([]string{"Activity_1", "Activity_2"})

	nodes := g.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("Expected 4 nodes, got %d", len(nodes))
	}
	if nodes[0] != Start || nodes[len(nodes)-1] != End {
		t.Errorf("Expected START first and END last, got %v", nodes)
	}
	if got := g.Activities(); len(got) != 2 || got[0] != "Activity_1" {
		t.Errorf("Activities() = %v", got)
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := New([]string{"Activity_1"})
	g.AddEdge(Start, "Activity_1")
	g.AddEdge(Start, "Activity_1")

	if got := len(g.Successors(Start)); got != 1 {
		t.Errorf("Expected 1 successor after duplicate add, got %d", got)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New([]string{"Activity_1", "Activity_2"})
	g.AddEdge("Activity_1", "Activity_2")
	g.AddEdge("Activity_1", End)

	g.RemoveEdge("Activity_1", "Activity_2")
	if g.HasEdge("Activity_1", "Activity_2") {
		t.Error("Edge still present after removal")
	}
	if !g.HasEdge("Activity_1", End) {
		t.Error("Unrelated edge removed")
	}

	// Removing a missing edge is a no-op.
	g.RemoveEdge("Activity_1", "Activity_2")
}

func TestPredecessors(t *testing.T) {
	g := New([]string{"Activity_1", "Activity_2"})
	g.AddEdge(Start, "Activity_2")
	g.AddEdge("Activity_1", "Activity_2")

	preds := g.Predecessors("Activity_2")
	if len(preds) != 2 || preds[0] != Start || preds[1] != "Activity_1" {
		t.Errorf("Predecessors = %v, want [START Activity_1]", preds)
	}
}

func TestInsertActivityKeepsEndLast(t *testing.T) {
	g := New(nil)
	g.InsertActivity("Activity_1")

	nodes := g.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %v", nodes)
	}
	if nodes[1] != "Activity_1" || nodes[2] != End {
		t.Errorf("Insert order wrong: %v", nodes)
	}
	if later := g.laterThan("Activity_1"); len(later) != 1 || later[0] != End {
		t.Errorf("laterThan(Activity_1) = %v, want [END]", later)
	}
}

func TestValidateAcceptsValidGraph(t *testing.T) {
	g := New([]string{"A", "B"})
	g.AddEdge(Start, "A")
	g.AddEdge("A", "B")
	g.AddEdge("B", End)

	if err := g.Validate(); err != nil {
		t.Errorf("Valid graph rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Graph
		want  string
	}{
		{
			name: "start to end edge",
			build: func() *Graph {
				g := New([]string{"A"})
				g.AddEdge(Start, "A")
				g.AddEdge(Start, End)
				g.AddEdge("A", End)
				return g
			},
			want: "direct START -> END",
		},
		{
			name: "dead end activity",
			build: func() *Graph {
				g := New([]string{"A", "B"})
				g.AddEdge(Start, "A")
				g.AddEdge(Start, "B")
				g.AddEdge("A", End)
				return g
			},
			want: "no outgoing",
		},
		{
			name: "orphan activity",
			build: func() *Graph {
				g := New([]string{"A", "B"})
				g.AddEdge(Start, "A")
				g.AddEdge("A", End)
				g.AddEdge("B", End)
				return g
			},
			want: "no incoming",
		},
		{
			name: "edge into start",
			build: func() *Graph {
				g := New([]string{"A"})
				g.AddEdge(Start, "A")
				g.AddEdge("A", End)
				g.AddEdge("A", Start)
				return g
			},
			want: "incoming edges",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	g := New([]string{"A", "B"})
	g.AddEdge(Start, "A")
	g.AddEdge("A", "B")
	g.AddEdge("B", "A")
	g.AddEdge("B", End)

	if err := g.Validate(); err == nil {
		t.Error("Expected cycle rejection, got nil")
	}
}

func TestRenamePreservesShape(t *testing.T) {
	g := New([]string{"Activity_1", "Activity_2"})
	g.AddEdge(Start, "Activity_1")
	g.AddEdge("Activity_1", "Activity_2")
	g.AddEdge("Activity_1", End)
	g.AddEdge("Activity_2", End)

	edgesBefore := len(g.Edges())
	g.rename(map[string]string{
		Start:        Start,
		End:          End,
		"Activity_1": "Receive Request",
		"Activity_2": "Approve Request",
	})

	if g.Contains("Activity_1") {
		t.Error("Old node name survived rename")
	}
	if !g.HasEdge("Receive Request", "Approve Request") {
		t.Error("Edge not carried through rename")
	}
	if len(g.Edges()) != edgesBefore {
		t.Errorf("Edge count changed by rename: %d != %d", len(g.Edges()), edgesBefore)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Renamed graph invalid: %v", err)
	}
}

func TestStringListsEveryNode(t *testing.T) {
	g := New([]string{"A"})
	g.AddEdge(Start, "A")
	g.AddEdge("A", End)

	s := g.String()
	for _, want := range []string{"START -> A", "A -> END", "END -> (none)"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
