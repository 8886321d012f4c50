package graph

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/powermap/internal/roster"
)

// BuildOptions configures co-membership graph construction.
type BuildOptions struct {
	// MaxCliqueSize is the largest group expanded into a full clique.
	// Larger groups use the hub-and-ring proxy, which keeps the edge count
	// linear in group size instead of quadratic. Zero disables the proxy.
	MaxCliqueSize int
	// HubCount is the number of hubs per proxied group, chosen by actor
	// weight descending with name as tiebreaker.
	HubCount int
	// Workers bounds parallel per-group accumulation. Values <= 1 run
	// sequentially. The result does not depend on this setting.
	Workers int
}

// DefaultBuildOptions returns the production defaults: full cliques for
// every group, three hubs if the proxy is enabled, sequential build.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MaxCliqueSize: 0,
		HubCount:      3,
		Workers:       1,
	}
}

// Report summarizes a Build call.
type Report struct {
	Groups        int // groups considered
	SkippedGroups int // groups with fewer than two known members
	ProxiedGroups int // groups wired with hub-and-ring instead of a clique
	Increments    int // total weight increments applied
}

// pair is an unordered actor pair with a < b.
type pair struct {
	a, b string
}

func newPair(x, y string) pair {
	if x > y {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

// Build constructs the co-membership graph for a roster. Every actor
// becomes a vertex, including actors with no memberships. For every group,
// each unordered pair of distinct known members gains one unit of edge
// weight, so an edge's weight equals the number of groups both endpoints
// share.
//
// The only error Build returns is context cancellation.
func Build(ctx context.Context, r *roster.Roster, opts BuildOptions) (*Graph, Report, error) {
	g := New()
	var rep Report
	if r == nil {
		return g, rep, nil
	}

	names := make([]string, 0, len(r.Actors))
	for name := range r.Actors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := r.Actors[name]
		if err := g.AddNode(name, a.Category, a.Weight); err != nil {
			return nil, rep, fmt.Errorf("graph: build: %w", err)
		}
	}

	groups := r.GroupNames()
	rep.Groups = len(groups)
	partials := make([]groupResult, len(groups))

	if opts.Workers <= 1 {
		for i, name := range groups {
			if err := ctx.Err(); err != nil {
				return nil, rep, fmt.Errorf("graph: build: %w", err)
			}
			partials[i] = groupPairs(r.Groups[name], r, opts)
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(opts.Workers)
		for i, name := range groups {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				partials[i] = groupPairs(r.Groups[name], r, opts)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, rep, fmt.Errorf("graph: build: %w", err)
		}
	}

	// Single merge in group order.
	for _, res := range partials {
		switch {
		case res.skipped:
			rep.SkippedGroups++
			continue
		case res.proxied:
			rep.ProxiedGroups++
		}
		for _, p := range res.pairs {
			if err := g.AddWeight(p.a, p.b, 1); err != nil {
				return nil, rep, fmt.Errorf("graph: build: %w", err)
			}
			rep.Increments++
		}
	}

	return g, rep, nil
}

// groupResult holds the pairs contributed by one affiliation group.
type groupResult struct {
	pairs   []pair
	skipped bool
	proxied bool
}

// groupPairs restricts members to known actors (deduplicated) and returns
// the pairs to increment.
func groupPairs(members []string, r *roster.Roster, opts BuildOptions) groupResult {
	seen := make(map[string]bool, len(members))
	known := make([]string, 0, len(members))
	for _, m := range members {
		if r.Actors[m] == nil || seen[m] {
			continue
		}
		seen[m] = true
		known = append(known, m)
	}
	if len(known) < 2 {
		return groupResult{skipped: true}
	}
	if opts.MaxCliqueSize > 0 && len(known) > opts.MaxCliqueSize {
		return groupResult{pairs: hubAndRing(known, r, opts.HubCount), proxied: true}
	}
	return groupResult{pairs: clique(known)}
}

// clique returns every unordered pair of members: k(k-1)/2 pairs.
func clique(members []string) []pair {
	pairs := make([]pair, 0, len(members)*(len(members)-1)/2)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			pairs = append(pairs, newPair(members[i], members[j]))
		}
	}
	return pairs
}

// hubAndRing is the sparse proxy for very large groups. The top hubCount
// members by weight form a clique and connect to every other member; the
// remaining members form a ring in name order.
func hubAndRing(members []string, r *roster.Roster, hubCount int) []pair {
	ranked := make([]string, len(members))
	copy(ranked, members)
	sort.Slice(ranked, func(i, j int) bool {
		wi, wj := r.Actors[ranked[i]].Weight, r.Actors[ranked[j]].Weight
		if wi != wj {
			return wi > wj
		}
		return ranked[i] < ranked[j]
	})

	if hubCount < 1 {
		hubCount = 1
	}
	if hubCount > len(ranked) {
		hubCount = len(ranked)
	}
	hubs, rest := ranked[:hubCount], ranked[hubCount:]

	pairs := clique(hubs)
	for _, h := range hubs {
		for _, m := range rest {
			pairs = append(pairs, newPair(h, m))
		}
	}

	ring := make([]string, len(rest))
	copy(ring, rest)
	sort.Strings(ring)
	switch {
	case len(ring) == 2:
		pairs = append(pairs, newPair(ring[0], ring[1]))
	case len(ring) > 2:
		for i := range ring {
			pairs = append(pairs, newPair(ring[i], ring[(i+1)%len(ring)]))
		}
	}
	return pairs
}
