// Package centrality scores actor importance on the co-membership graph
// and maps scores onto visual attributes. Scoring never fails: when the
// link analysis cannot complete, every actor receives the same score.
package centrality

import (
	"github.com/charmbracelet/log"

	"github.com/papapumpkin/powermap/internal/graph"
)

// State is the scorer's lifecycle state. Scored and Degraded are terminal.
type State int

const (
	Pending  State = iota // not yet scored
	Scored                // PageRank converged
	Degraded              // uniform fallback applied
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Scored:
		return "scored"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Result is the outcome of a scoring pass.
type Result struct {
	State      State
	Scores     map[string]float64 // actor name → score in [0, 1]; sums to 1
	Iterations int
	Reason     error // why the scorer degraded; nil when Scored
}

// Score returns the score for id, or 0 if absent.
func (r Result) Score(id string) float64 {
	return r.Scores[id]
}

// Scorer runs PageRank over a graph and applies the uniform fallback.
type Scorer struct {
	PageRank graph.PageRankOptions
	Logger   *log.Logger
}

// NewScorer creates a Scorer. A nil logger uses the charmbracelet default.
func NewScorer(opts graph.PageRankOptions, logger *log.Logger) *Scorer {
	if logger == nil {
		logger = log.Default()
	}
	return &Scorer{PageRank: opts, Logger: logger}
}

// Score computes per-actor importance. It transitions Pending → Scored
// when PageRank converges and Pending → Degraded on any failure
// (non-convergence, numerical error, invalid options). An empty graph is
// Scored with no scores.
func (s *Scorer) Score(g *graph.Graph) Result {
	if g == nil || g.Len() == 0 {
		return Result{State: Scored, Scores: map[string]float64{}}
	}

	pr, err := g.PageRank(s.PageRank)
	if err != nil {
		s.logger().Warn("centrality failed, using uniform scores",
			"err", err, "actors", g.Len(), "edges", g.EdgeCount(), "iterations", pr.Iterations)
		return Uniform(g.Nodes(), pr.Iterations, err)
	}
	return Result{State: Scored, Scores: pr.Scores, Iterations: pr.Iterations}
}

func (s *Scorer) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// Uniform builds a Degraded result assigning 1/n to each id.
func Uniform(ids []string, iterations int, reason error) Result {
	scores := make(map[string]float64, len(ids))
	if len(ids) > 0 {
		share := 1.0 / float64(len(ids))
		for _, id := range ids {
			scores[id] = share
		}
	}
	return Result{State: Degraded, Scores: scores, Iterations: iterations, Reason: reason}
}
