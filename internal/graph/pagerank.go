package graph

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotConverged is returned when PageRank exhausts MaxIterations without
// the per-node change dropping below Epsilon.
var ErrNotConverged = errors.New("pagerank did not converge")

// ErrNumerical is returned when the iteration produces NaN, Inf or a
// non-positive total mass.
var ErrNumerical = errors.New("pagerank numerical failure")

// ErrInvalidOptions is returned for out-of-range PageRank options.
var ErrInvalidOptions = errors.New("invalid pagerank options")

// PageRankOptions configures the iterative PageRank algorithm.
type PageRankOptions struct {
	Damping       float64 // damping factor; typically 0.85
	Epsilon       float64 // convergence threshold
	MaxIterations int     // upper bound on iterations
}

// DefaultPageRankOptions returns production-ready defaults:
// damping 0.85, epsilon 1e-6, max 100 iterations.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		Damping:       0.85,
		Epsilon:       1e-6,
		MaxIterations: 100,
	}
}

// PageRankResult holds the scores of one PageRank pass.
type PageRankResult struct {
	Scores     map[string]float64
	Iterations int
	MaxDelta   float64 // largest per-node change in the final iteration
}

// PageRank computes weighted PageRank over the undirected graph. Each
// node distributes its rank to neighbors in proportion to edge weight,
// so an actor's score grows with the weighted scores of its neighbors.
//
// Isolated nodes redistribute their rank uniformly across all nodes,
// following the standard dangling-node treatment. A graph without edges
// therefore converges to the uniform distribution.
//
// Nodes and neighbors are visited in sorted order so repeated runs on the
// same graph produce bit-identical scores. Scores are renormalized to sum
// to 1. On ErrNotConverged the partial result is returned alongside the
// error; on other errors the result is empty.
func (g *Graph) PageRank(opts PageRankOptions) (PageRankResult, error) {
	if opts.Damping < 0 || opts.Damping >= 1 || opts.MaxIterations < 1 || opts.Epsilon <= 0 {
		return PageRankResult{}, fmt.Errorf("%w: damping=%v epsilon=%v max_iterations=%d",
			ErrInvalidOptions, opts.Damping, opts.Epsilon, opts.MaxIterations)
	}

	n := len(g.nodes)
	if n == 0 {
		return PageRankResult{Scores: make(map[string]float64)}, nil
	}

	ids := g.Nodes()
	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	// Dense per-node neighbor lists in sorted order.
	type link struct {
		to     int
		weight float64
	}
	links := make([][]link, n)
	strength := make([]float64, n)
	for i, id := range ids {
		for _, nb := range g.Neighbors(id) {
			w := float64(g.adjacency[id][nb])
			links[i] = append(links[i], link{to: index[nb], weight: w})
			strength[i] += w
		}
	}

	nf := float64(n)
	base := (1.0 - opts.Damping) / nf
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / nf
	}

	res := PageRankResult{}
	converged := false
	for iter := 0; iter < opts.MaxIterations; iter++ {
		res.Iterations = iter + 1

		var danglingSum float64
		for i := range rank {
			if strength[i] == 0 {
				danglingSum += rank[i]
			}
		}
		danglingShare := opts.Damping * danglingSum / nf

		next := make([]float64, n)
		for v := range next {
			// Undirected: v's in-links are its neighbors.
			var sum float64
			for _, l := range links[v] {
				sum += rank[l.to] * l.weight / strength[l.to]
			}
			next[v] = base + opts.Damping*sum + danglingShare
		}

		maxDelta := 0.0
		for i := range next {
			delta := math.Abs(next[i] - rank[i])
			if delta > maxDelta {
				maxDelta = delta
			}
		}
		rank = next
		res.MaxDelta = maxDelta
		if math.IsNaN(maxDelta) || math.IsInf(maxDelta, 0) {
			return PageRankResult{}, fmt.Errorf("%w: delta %v at iteration %d", ErrNumerical, maxDelta, res.Iterations)
		}
		if maxDelta < opts.Epsilon {
			converged = true
			break
		}
	}

	var total float64
	for _, r := range rank {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return PageRankResult{}, fmt.Errorf("%w: score %v", ErrNumerical, r)
		}
		total += r
	}
	if total <= 0 {
		return PageRankResult{}, fmt.Errorf("%w: total mass %v", ErrNumerical, total)
	}

	res.Scores = make(map[string]float64, n)
	for i, id := range ids {
		res.Scores[id] = rank[i] / total
	}

	if !converged {
		return res, fmt.Errorf("%w: delta %.3g after %d iterations", ErrNotConverged, res.MaxDelta, res.Iterations)
	}
	return res, nil
}
