package centrality

import (
	"github.com/papapumpkin/powermap/internal/payload"
	"github.com/papapumpkin/powermap/internal/roster"
)

// InitialSymbolSize is the size of an actor that has not been scored yet.
// Its weight is added on top.
const InitialSymbolSize = 10

// EncodeOptions maps scores onto visual attributes.
type EncodeOptions struct {
	BaseSize       float64 // symbol size at score 0
	ScaleFactor    float64 // size added per unit of score
	LabelThreshold float64 // labels show only above this score
}

// DefaultEncodeOptions returns the production mapping. With a few hundred
// actors the mean score is around 0.002, giving sizes near 15; hubs reach
// 40–50 and only they clear the 0.003 label threshold.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		BaseSize:       5,
		ScaleFactor:    5000,
		LabelThreshold: 0.003,
	}
}

// SymbolSize returns BaseSize + score*ScaleFactor.
func (o EncodeOptions) SymbolSize(score float64) float64 {
	return o.BaseSize + score*o.ScaleFactor
}

// LabelVisible reports whether score is strictly above LabelThreshold.
func (o EncodeOptions) LabelVisible(score float64) bool {
	return score > o.LabelThreshold
}

// Encode writes the scores of res onto the roster's actors and returns
// one payload node per actor in first-seen order. Actors without a score
// in a Pending result keep their initial score and a weight-based size.
func Encode(r *roster.Roster, res Result, opts EncodeOptions) []payload.Node {
	if r == nil {
		return []payload.Node{}
	}
	nodes := make([]payload.Node, 0, len(r.Order))
	for _, name := range r.Order {
		a := r.Actors[name]
		if a == nil {
			continue
		}

		size := InitialSymbolSize + a.Weight
		if score, ok := res.Scores[name]; ok && res.State != Pending {
			a.Score = score
			a.LabelVisible = opts.LabelVisible(score)
			size = opts.SymbolSize(score)
		}

		nodes = append(nodes, payload.Node{
			ID:           a.Name,
			Name:         a.Name,
			Category:     a.Category,
			SymbolSize:   size,
			LabelVisible: a.LabelVisible,
			Value:        a.Weight,
			Score:        a.Score,
		})
	}
	return nodes
}
