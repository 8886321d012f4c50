package roster

import (
	"regexp"
	"strings"
)

// DefaultPlaceholderPattern matches internal entity identifiers (Wikidata
// Q/P/L ids) that leak through when a label lookup fails.
const DefaultPlaceholderPattern = `^[QPL][0-9]+$`

// DefaultAliases maps party short forms to their canonical names so that
// shorthand and full labels collapse into one category.
func DefaultAliases() map[string]string {
	return map[string]string{
		"自民":    "自由民主党",
		"自民党":   "自由民主党",
		"立憲":    "立憲民主党",
		"立民":    "立憲民主党",
		"公明":    "公明党",
		"維新":    "日本維新の会",
		"国民":    "国民民主党",
		"共産":    "日本共産党",
		"共産党":   "日本共産党",
		"れ新":    "れいわ新選組",
		"れいわ":   "れいわ新選組",
		"社民":    "社会民主党",
		"社民党":   "社会民主党",
		"参政":    "参政党",
		"保守":    "日本保守党",
		"無":     DefaultCategory,
		"無所属の会": DefaultCategory,
	}
}

// Options configures Normalize.
type Options struct {
	// Aliases maps a cleaned category label to its canonical form.
	Aliases map[string]string
	// DefaultCategory replaces missing or unusable categories.
	DefaultCategory string
	// Placeholder rejects names that are internal identifiers. Nil
	// disables the check.
	Placeholder *regexp.Regexp
}

// DefaultOptions returns the production normalizer settings.
func DefaultOptions() Options {
	return Options{
		Aliases:         DefaultAliases(),
		DefaultCategory: DefaultCategory,
		Placeholder:     regexp.MustCompile(DefaultPlaceholderPattern),
	}
}

// Normalize cleans and deduplicates raw records into a Roster.
//
// Records whose name is empty, a placeholder identifier, or a raw URI are
// dropped and counted in Roster.Dropped. The first record seen for an
// actor fixes its category; later records only contribute memberships
// and may raise Weight.
func Normalize(records []Record, opts Options) *Roster {
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = DefaultCategory
	}

	r := newRoster()
	inGroup := make(map[string]map[string]bool)

	for _, rec := range records {
		name := cleanLabel(rec.Name)
		if !opts.acceptable(name) {
			r.Dropped++
			continue
		}

		actor, ok := r.Actors[name]
		if !ok {
			actor = &Actor{
				Name:     name,
				Category: opts.category(rec.Category),
				Weight:   rec.Weight,
				Score:    InitialScore,
			}
			r.Actors[name] = actor
			r.Order = append(r.Order, name)
		} else if rec.Weight > actor.Weight {
			actor.Weight = rec.Weight
		}

		group := cleanLabel(rec.Group)
		if group == "" {
			continue
		}
		members, ok := inGroup[group]
		if !ok {
			members = make(map[string]bool)
			inGroup[group] = members
		}
		if members[name] {
			continue
		}
		members[name] = true
		r.Groups[group] = append(r.Groups[group], name)
	}

	return r
}

// acceptable reports whether a cleaned name is a human-readable label.
func (o Options) acceptable(name string) bool {
	if name == "" || isURI(name) {
		return false
	}
	if o.Placeholder != nil && o.Placeholder.MatchString(name) {
		return false
	}
	return true
}

// category resolves a raw category label to its canonical form.
func (o Options) category(raw string) string {
	c := cleanLabel(raw)
	if alias, ok := o.Aliases[c]; ok {
		c = alias
	}
	if c == "" || isURI(c) || (o.Placeholder != nil && o.Placeholder.MatchString(c)) {
		return o.DefaultCategory
	}
	return c
}

// cleanLabel removes embedded line breaks and surrounding whitespace.
func cleanLabel(s string) string {
	s = strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
	return strings.TrimSpace(s)
}

// isURI reports whether s is an unresolved reference rather than a label.
func isURI(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(strings.ToLower(s), "http")
}
