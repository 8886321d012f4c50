// Package graph provides the weighted undirected co-membership graph used
// by powermap. It builds the graph from a normalized roster and runs the
// link-analysis passes (PageRank, betweenness, connected components) that
// feed the centrality scorer.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrSelfEdge is returned when an edge would create a self-loop.
var ErrSelfEdge = errors.New("self-referencing edge")

// ErrNonPositiveWeight is returned when a weight increment is < 1.
// Edge weights only ever grow.
var ErrNonPositiveWeight = errors.New("non-positive weight increment")

// Node is an actor vertex.
type Node struct {
	ID       string
	Category string
	Weight   float64
}

// Edge is an unordered pair with its co-membership count. Source sorts
// before Target.
type Edge struct {
	Source string
	Target string
	Weight int
}

// Graph is a weighted undirected graph keyed by actor name.
type Graph struct {
	nodes map[string]*Node
	// adjacency maps nodeID → neighbor → weight. Every edge is stored in
	// both directions.
	adjacency map[string]map[string]int
	edges     int
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		adjacency: make(map[string]map[string]int),
	}
}

// AddNode adds a vertex. Returns ErrDuplicateNode if the ID is taken.
func (g *Graph) AddNode(id, category string, weight float64) error {
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.nodes[id] = &Node{ID: id, Category: category, Weight: weight}
	g.adjacency[id] = make(map[string]int)
	return nil
}

// AddWeight increments the weight of the edge between a and b by delta,
// creating the edge if absent. Both nodes must exist.
func (g *Graph) AddWeight(a, b string, delta int) error {
	if a == b {
		return fmt.Errorf("%w: %s", ErrSelfEdge, a)
	}
	if delta < 1 {
		return fmt.Errorf("%w: %d", ErrNonPositiveWeight, delta)
	}
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, b)
	}
	if g.adjacency[a][b] == 0 {
		g.edges++
	}
	g.adjacency[a][b] += delta
	g.adjacency[b][a] += delta
	return nil
}

// Node returns the node with the given ID, or nil if not found.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Weight returns the edge weight between a and b, or 0 if no edge exists.
func (g *Graph) Weight(a, b string) int {
	return g.adjacency[a][b]
}

// Nodes returns all node IDs, sorted alphabetically.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Neighbors returns the neighbors of id, sorted alphabetically.
func (g *Graph) Neighbors(id string) []string {
	adj := g.adjacency[id]
	if len(adj) == 0 {
		return nil
	}
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns every edge once, sorted by source then target.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, a := range g.Nodes() {
		for b, w := range g.adjacency[a] {
			if a < b {
				out = append(out, Edge{Source: a, Target: b, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Degree returns the number of distinct neighbors of id.
func (g *Graph) Degree(id string) int {
	return len(g.adjacency[id])
}

// Strength returns the sum of edge weights incident to id.
func (g *Graph) Strength(id string) int {
	total := 0
	for _, w := range g.adjacency[id] {
		total += w
	}
	return total
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// TotalWeight returns the sum of all edge weights, i.e. the total number
// of weight increments applied.
func (g *Graph) TotalWeight() int {
	total := 0
	for _, e := range g.Edges() {
		total += e.Weight
	}
	return total
}

// Density returns 2E / (n(n-1)), or 0 for graphs with fewer than two nodes.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	return 2 * float64(g.edges) / float64(n*(n-1))
}
