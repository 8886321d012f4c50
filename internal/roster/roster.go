// Package roster normalizes raw actor records into a canonical actor
// registry and an affiliation-group membership index. It is the leaf of
// the powermap pipeline: the graph builder consumes its output and never
// sees raw records.
package roster

import "sort"

// DefaultCategory is assigned to actors whose records carry no usable
// party label. It reads "unaffiliated".
const DefaultCategory = "無所属"

// InitialScore is the importance score every actor starts with before
// the centrality scorer runs.
const InitialScore = 0.001

// Record is one raw row from the acquisition layer. A single actor may
// appear in many records, one per affiliation group.
type Record struct {
	Name     string  `json:"name" toml:"name"`
	Category string  `json:"category,omitempty" toml:"category,omitempty"`
	Group    string  `json:"group,omitempty" toml:"group,omitempty"`
	Weight   float64 `json:"weight,omitempty" toml:"weight,omitempty"`
}

// Actor is a canonical, deduplicated political actor.
type Actor struct {
	Name     string
	Category string
	Weight   float64 // optional secondary attribute, e.g. term count

	// Populated by the centrality encoder.
	Score        float64
	LabelVisible bool
}

// Roster is the registry produced by Normalize. It is owned by a single
// pipeline run and passed forward to the graph builder.
type Roster struct {
	// Actors maps canonical name to actor.
	Actors map[string]*Actor
	// Groups maps affiliation-group name to member names in first-seen
	// order. Every member is a key of Actors.
	Groups map[string][]string
	// Order lists actor names in first-seen order.
	Order []string
	// Dropped counts records rejected by the name-quality filter.
	Dropped int
}

func newRoster() *Roster {
	return &Roster{
		Actors: make(map[string]*Actor),
		Groups: make(map[string][]string),
	}
}

// Len returns the number of distinct actors.
func (r *Roster) Len() int {
	return len(r.Actors)
}

// Actor returns the actor with the given name, or nil if unknown.
func (r *Roster) Actor(name string) *Actor {
	return r.Actors[name]
}

// GroupNames returns all affiliation-group names, sorted.
func (r *Roster) GroupNames() []string {
	names := make([]string, 0, len(r.Groups))
	for name := range r.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns the distinct actor categories, sorted.
func (r *Roster) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, a := range r.Actors {
		if !seen[a.Category] {
			seen[a.Category] = true
			cats = append(cats, a.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// CategorySizes returns the number of actors per category.
func (r *Roster) CategorySizes() map[string]int {
	sizes := make(map[string]int)
	for _, a := range r.Actors {
		sizes[a.Category]++
	}
	return sizes
}
