package graph

import (
	"errors"
	"math"
	"testing"
)

const floatTol = 1e-4

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTol
}

func sumScores(scores map[string]float64) float64 {
	var total float64
	for _, v := range scores {
		total += v
	}
	return total
}

func TestPageRank_Empty(t *testing.T) {
	t.Parallel()
	res, err := New().PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Scores) != 0 {
		t.Errorf("expected empty map, got %d entries", len(res.Scores))
	}
}

func TestPageRank_SingleNode(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"X"}, nil)
	res, err := g.PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(res.Scores["X"], 1.0) {
		t.Errorf("single node PageRank = %f, want ~1.0", res.Scores["X"])
	}
}

func TestPageRank_NoEdgesIsUniform(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "c", "d"}, nil)
	res, err := g.PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatalf("PageRank: %v", err)
	}
	for id, s := range res.Scores {
		if !approxEqual(s, 0.25) {
			t.Errorf("PR[%s] = %f, want 0.25", id, s)
		}
	}
}

func TestPageRank_Triangle(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "c"}, []Edge{
		{"a", "b", 1}, {"b", "c", 1}, {"a", "c", 1},
	})
	res, err := g.PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	for id, s := range res.Scores {
		if !approxEqual(s, 1.0/3.0) {
			t.Errorf("PR[%s] = %f, want 1/3", id, s)
		}
	}
}

func TestPageRank_StarCenterHighest(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"hub", "l1", "l2", "l3"}, []Edge{
		{"hub", "l1", 1}, {"hub", "l2", 1}, {"hub", "l3", 1},
	})
	res, err := g.PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	pr := res.Scores
	if pr["hub"] <= pr["l1"] {
		t.Errorf("expected PR[hub] > PR[l1], got %f <= %f", pr["hub"], pr["l1"])
	}
	if !approxEqual(pr["l1"], pr["l2"]) || !approxEqual(pr["l2"], pr["l3"]) {
		t.Errorf("leaves should be equal, got %v", pr)
	}
}

func TestPageRank_WeightMatters(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"x", "heavy", "light"}, []Edge{
		{"x", "heavy", 5}, {"x", "light", 1},
	})
	res, err := g.PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Scores["heavy"] <= res.Scores["light"] {
		t.Errorf("expected heavier neighbor to score higher, got heavy=%f light=%f",
			res.Scores["heavy"], res.Scores["light"])
	}
}

func TestPageRank_SumsToOne(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "c", "d", "e", "iso"}, []Edge{
		{"a", "b", 2}, {"b", "c", 1}, {"c", "d", 3}, {"a", "d", 1}, {"d", "e", 1},
	})
	res, err := g.PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	if total := sumScores(res.Scores); !approxEqual(total, 1.0) {
		t.Errorf("PageRank sum = %f, want ~1.0", total)
	}
	for id, s := range res.Scores {
		if s < 0 || s > 1 {
			t.Errorf("PR[%s] = %f out of [0,1]", id, s)
		}
	}
}

func TestPageRank_Deterministic(t *testing.T) {
	t.Parallel()
	edges := []Edge{{"a", "b", 2}, {"b", "c", 1}, {"c", "d", 3}, {"a", "d", 1}, {"d", "e", 1}, {"e", "f", 4}}
	ids := []string{"a", "b", "c", "d", "e", "f"}
	first, err := buildGraph(t, ids, edges).PageRank(DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := buildGraph(t, ids, edges).PageRank(DefaultPageRankOptions())
		if err != nil {
			t.Fatal(err)
		}
		for id, s := range first.Scores {
			if again.Scores[id] != s {
				t.Fatalf("run %d: PR[%s] = %v, want bit-identical %v", i, id, again.Scores[id], s)
			}
		}
		if again.Iterations != first.Iterations {
			t.Errorf("iterations differ: %d vs %d", again.Iterations, first.Iterations)
		}
	}
}

func TestPageRank_NotConverged(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "c"}, []Edge{{"a", "b", 1}, {"b", "c", 1}})
	opts := DefaultPageRankOptions()
	opts.MaxIterations = 1
	res, err := g.PageRank(opts)
	if !errors.Is(err, ErrNotConverged) {
		t.Fatalf("expected ErrNotConverged, got %v", err)
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}
	if len(res.Scores) != 3 {
		t.Errorf("partial scores missing: %v", res.Scores)
	}
}

func TestPageRank_InvalidOptions(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a"}, nil)
	tests := []struct {
		name string
		opts PageRankOptions
	}{
		{"damping one", PageRankOptions{Damping: 1, Epsilon: 1e-6, MaxIterations: 10}},
		{"negative damping", PageRankOptions{Damping: -0.1, Epsilon: 1e-6, MaxIterations: 10}},
		{"zero iterations", PageRankOptions{Damping: 0.85, Epsilon: 1e-6, MaxIterations: 0}},
		{"zero epsilon", PageRankOptions{Damping: 0.85, Epsilon: 0, MaxIterations: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := g.PageRank(tt.opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}
