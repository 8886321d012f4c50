package graph

// Betweenness computes normalized betweenness centrality for all nodes
// using Brandes' algorithm over the unweighted topology. An actor that
// sits on many shortest paths between otherwise distant actors (a broker
// between committees or parties) receives a high score.
//
// Each unordered pair is visited from both ends, so dividing by
// (n-1)*(n-2) yields the undirected normalization into [0, 1].
func (g *Graph) Betweenness() map[string]float64 {
	cb := make(map[string]float64, len(g.nodes))
	for id := range g.nodes {
		cb[id] = 0
	}

	n := len(g.nodes)
	if n < 3 {
		return cb
	}

	for _, s := range g.Nodes() {
		stack, sigma, pred := g.brandesBFS(s)
		g.brandesAccumulate(s, stack, sigma, pred, cb)
	}

	normFactor := float64((n - 1) * (n - 2))
	for id := range cb {
		cb[id] /= normFactor
	}
	return cb
}

// brandesBFS performs the BFS phase of Brandes' algorithm from source s.
// It returns the visit stack (reverse BFS order for back-propagation),
// shortest-path counts (sigma), and predecessor lists (pred).
func (g *Graph) brandesBFS(s string) ([]string, map[string]float64, map[string][]string) {
	n := len(g.nodes)
	stack := make([]string, 0, n)
	pred := make(map[string][]string, n)
	sigma := make(map[string]float64, n)
	dist := make(map[string]int, n)

	for id := range g.nodes {
		dist[id] = -1
	}
	sigma[s] = 1
	dist[s] = 0

	queue := []string{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for _, w := range g.Neighbors(v) {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	return stack, sigma, pred
}

// brandesAccumulate performs the back-propagation phase of Brandes'
// algorithm, accumulating pair-dependency values into the centrality map.
func (g *Graph) brandesAccumulate(s string, stack []string, sigma map[string]float64, pred map[string][]string, cb map[string]float64) {
	delta := make(map[string]float64, len(g.nodes))

	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
		}
		if w != s {
			cb[w] += delta[w]
		}
	}
}
