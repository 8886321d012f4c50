package graph

import (
	"errors"
	"testing"
)

// buildGraph creates a graph from node IDs and weighted edges.
func buildGraph(t *testing.T, ids []string, edges []Edge) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		if err := g.AddNode(id, "", 0); err != nil {
			t.Fatalf("AddNode(%q): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddWeight(e.Source, e.Target, e.Weight); err != nil {
			t.Fatalf("AddWeight(%q, %q): %v", e.Source, e.Target, err)
		}
	}
	return g
}

func TestNew(t *testing.T) {
	t.Parallel()
	g := New()
	if g.Len() != 0 || g.EdgeCount() != 0 {
		t.Errorf("new graph has %d nodes, %d edges", g.Len(), g.EdgeCount())
	}
	if g.Density() != 0 {
		t.Errorf("Density() = %v, want 0", g.Density())
	}
}

func TestAddNode_Duplicate(t *testing.T) {
	t.Parallel()
	g := New()
	if err := g.AddNode("a", "x", 1); err != nil {
		t.Fatal(err)
	}
	err := g.AddNode("a", "y", 2)
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
	if g.Node("a").Category != "x" {
		t.Errorf("duplicate AddNode overwrote node")
	}
}

func TestAddWeight(t *testing.T) {
	t.Parallel()

	t.Run("creates and increments", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"a", "b"}, nil)
		for i := 0; i < 3; i++ {
			if err := g.AddWeight("a", "b", 1); err != nil {
				t.Fatal(err)
			}
		}
		if g.Weight("a", "b") != 3 || g.Weight("b", "a") != 3 {
			t.Errorf("weight = %d/%d, want 3", g.Weight("a", "b"), g.Weight("b", "a"))
		}
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
		}
	})

	t.Run("rejects self edge", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"a"}, nil)
		if err := g.AddWeight("a", "a", 1); !errors.Is(err, ErrSelfEdge) {
			t.Errorf("expected ErrSelfEdge, got %v", err)
		}
	})

	t.Run("rejects unknown node", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"a"}, nil)
		if err := g.AddWeight("a", "z", 1); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	t.Run("rejects non-positive delta", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"a", "b"}, []Edge{{"a", "b", 2}})
		for _, d := range []int{0, -1} {
			if err := g.AddWeight("a", "b", d); !errors.Is(err, ErrNonPositiveWeight) {
				t.Errorf("delta %d: expected ErrNonPositiveWeight, got %v", d, err)
			}
		}
		if g.Weight("a", "b") != 2 {
			t.Errorf("weight changed to %d", g.Weight("a", "b"))
		}
	})
}

func TestEdges_SortedAndUnique(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"c", "a", "b"}, []Edge{
		{"c", "a", 1}, {"b", "c", 2}, {"b", "a", 1},
	})
	edges := g.Edges()
	want := []Edge{{"a", "b", 1}, {"a", "c", 1}, {"b", "c", 2}}
	if len(edges) != len(want) {
		t.Fatalf("Edges() = %v, want %v", edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("Edges()[%d] = %v, want %v", i, edges[i], want[i])
		}
	}
	if g.TotalWeight() != 4 {
		t.Errorf("TotalWeight() = %d, want 4", g.TotalWeight())
	}
}

func TestDegreeStrengthDensity(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "c", "d"}, []Edge{
		{"a", "b", 2}, {"a", "c", 1},
	})
	if g.Degree("a") != 2 || g.Strength("a") != 3 {
		t.Errorf("a: degree %d strength %d, want 2 and 3", g.Degree("a"), g.Strength("a"))
	}
	if g.Degree("d") != 0 || g.Neighbors("d") != nil {
		t.Errorf("isolated node d has neighbors %v", g.Neighbors("d"))
	}
	if got := g.Density(); got != 2.0/6.0 {
		t.Errorf("Density() = %v, want %v", got, 2.0/6.0)
	}
}

func TestComponents(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "c", "d", "e", "f"}, []Edge{
		{"a", "b", 1}, {"b", "c", 1}, {"d", "e", 1},
	})
	comps := g.Components()
	if len(comps) != 3 {
		t.Fatalf("Components() = %v, want 3", comps)
	}
	if len(comps[0]) != 3 || comps[0][0] != "a" {
		t.Errorf("largest component = %v, want [a b c]", comps[0])
	}
	if len(comps[1]) != 2 || comps[1][0] != "d" {
		t.Errorf("second component = %v, want [d e]", comps[1])
	}
	if len(comps[2]) != 1 || comps[2][0] != "f" {
		t.Errorf("third component = %v, want [f]", comps[2])
	}
}

func TestUnionFind(t *testing.T) {
	t.Parallel()
	uf := NewUnionFind()
	uf.Union("a", "b")
	uf.Union("c", "d")
	if !uf.Connected("a", "b") || uf.Connected("a", "c") {
		t.Error("unexpected connectivity before merge")
	}
	uf.Union("b", "d")
	if !uf.Connected("a", "c") {
		t.Error("a and c should be connected after merge")
	}
	if uf.Find("zzz") != "zzz" {
		t.Error("Find on unknown element should auto-add a singleton")
	}
}

func TestBetweenness(t *testing.T) {
	t.Parallel()

	t.Run("path", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"a", "b", "c"}, []Edge{{"a", "b", 1}, {"b", "c", 1}})
		bc := g.Betweenness()
		if !approxEqual(bc["b"], 1) || bc["a"] != 0 || bc["c"] != 0 {
			t.Errorf("Betweenness() = %v, want b=1 others 0", bc)
		}
	})

	t.Run("star", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"hub", "l1", "l2", "l3", "l4"}, []Edge{
			{"hub", "l1", 1}, {"hub", "l2", 1}, {"hub", "l3", 1}, {"hub", "l4", 1},
		})
		bc := g.Betweenness()
		if !approxEqual(bc["hub"], 1) {
			t.Errorf("hub betweenness = %v, want 1", bc["hub"])
		}
		if bc["l1"] != 0 {
			t.Errorf("leaf betweenness = %v, want 0", bc["l1"])
		}
	})

	t.Run("small graph", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, []string{"a", "b"}, []Edge{{"a", "b", 1}})
		bc := g.Betweenness()
		if len(bc) != 2 || bc["a"] != 0 {
			t.Errorf("Betweenness() = %v, want zeros", bc)
		}
	})
}
