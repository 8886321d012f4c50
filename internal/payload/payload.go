// Package payload defines the renderer-ready visualization payload that
// powermap emits (nodes, links, categories and run statistics) and the
// formats it can be rendered to.
package payload

import (
	"sort"

	"github.com/papapumpkin/powermap/internal/graph"
)

// Node is one actor in the rendered graph.
type Node struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	SymbolSize   float64 `json:"symbolSize"`
	LabelVisible bool    `json:"labelVisible"`
	Value        float64 `json:"value,omitempty"`

	// Score is the centrality score behind SymbolSize. Not serialized by
	// the json format; the summary format prints it.
	Score float64 `json:"-"`
}

// Link is one co-membership edge.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Category is one entry of the distinct category set.
type Category struct {
	Name string `json:"name"`
}

// Stats describes the run that produced a payload.
type Stats struct {
	NodeCount      int            `json:"node_count"`
	EdgeCount      int            `json:"edge_count"`
	CategoryCount  int            `json:"category_count"`
	ComponentCount int            `json:"component_count"`
	Density        float64        `json:"density"`
	DroppedRecords int            `json:"dropped_records"`
	ScoreState     string         `json:"score_state"`
	Iterations     int            `json:"iterations"`
	CategorySizes  map[string]int `json:"category_sizes"`
}

// Payload is the complete output handed to a renderer.
type Payload struct {
	Nodes      []Node     `json:"nodes"`
	Links      []Link     `json:"links"`
	Categories []Category `json:"categories"`
	Stats      Stats      `json:"stats"`

	// Brokers holds per-actor betweenness, filled only when requested.
	Brokers map[string]float64 `json:"-"`
}

// Links converts graph edges into payload links, preserving the graph's
// sorted order and dropping anything below weight 1.
func Links(edges []graph.Edge) []Link {
	out := make([]Link, 0, len(edges))
	for _, e := range edges {
		if e.Weight < 1 {
			continue
		}
		out = append(out, Link{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}
	return out
}

// Categories returns the distinct categories of nodes as sorted entries.
func Categories(nodes []Node) []Category {
	seen := make(map[string]bool)
	var names []string
	for _, n := range nodes {
		if !seen[n.Category] {
			seen[n.Category] = true
			names = append(names, n.Category)
		}
	}
	sort.Strings(names)
	out := make([]Category, len(names))
	for i, name := range names {
		out[i] = Category{Name: name}
	}
	return out
}

// PlaceholderCategory is the single category of a placeholder payload.
const PlaceholderCategory = "エラー"

// Placeholder returns the payload written when acquisition fails, so the
// front end shows an explanatory node instead of a blank canvas.
func Placeholder(message string) *Payload {
	return &Payload{
		Nodes: []Node{{
			ID:           "Error",
			Name:         message,
			Category:     PlaceholderCategory,
			SymbolSize:   50,
			LabelVisible: true,
		}},
		Links:      []Link{},
		Categories: []Category{{Name: PlaceholderCategory}},
		Stats: Stats{
			NodeCount:     1,
			CategoryCount: 1,
			ScoreState:    "placeholder",
			CategorySizes: map[string]int{PlaceholderCategory: 1},
		},
	}
}
