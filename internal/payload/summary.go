package payload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultSummaryTop is the number of actors listed by the summary format.
const DefaultSummaryTop = 20

var (
	colorPrimary    = lipgloss.Color("#00BFFF")
	colorAccent     = lipgloss.Color("#FFD700")
	colorMuted      = lipgloss.Color("#636363")
	colorMutedLight = lipgloss.Color("#8C8C8C")
	colorDanger     = lipgloss.Color("#FF5252")
)

var (
	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleHeader  = lipgloss.NewStyle().Foreground(colorMutedLight).Bold(true)
	styleLabel   = lipgloss.NewStyle().Foreground(colorAccent)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleWarning = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
)

// Column widths of the summary table.
const (
	colRank     = 5
	colName     = 20
	colCategory = 18
	colScore    = 9
	colSize     = 7
	colBroker   = 8
)

// SummaryFormat renders a terminal table of the top actors by score.
type SummaryFormat struct {
	// Top limits the number of listed actors. Zero lists all.
	Top int
}

// Render produces the summary table.
func (f *SummaryFormat) Render(p *Payload) (string, error) {
	if p == nil {
		return "", ErrNilPayload
	}

	var b strings.Builder
	s := p.Stats
	b.WriteString(styleTitle.Render("powermap summary"))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render(fmt.Sprintf(
		"%d actors · %d links · %d categories · %d components · density %.4f · %d dropped records",
		s.NodeCount, s.EdgeCount, s.CategoryCount, s.ComponentCount, s.Density, s.DroppedRecords)))
	b.WriteString("\n")
	if s.ScoreState == "degraded" {
		b.WriteString(styleWarning.Render("⚠ centrality degraded: uniform sizes"))
	} else {
		b.WriteString(styleMuted.Render(fmt.Sprintf("scores %s after %d iteration(s)", s.ScoreState, s.Iterations)))
	}
	b.WriteString("\n\n")

	if len(p.Nodes) == 0 {
		b.WriteString("No actors.\n")
		return b.String(), nil
	}

	ranked := make([]Node, len(p.Nodes))
	copy(ranked, p.Nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	if f.Top > 0 && len(ranked) > f.Top {
		ranked = ranked[:f.Top]
	}

	b.WriteString(styleHeader.Render(row("#", "name", "category", "score", "size", "broker")))
	b.WriteString("\n")
	for i, n := range ranked {
		broker := "-"
		if p.Brokers != nil {
			broker = fmt.Sprintf("%.3f", p.Brokers[n.ID])
		}
		line := row(
			fmt.Sprintf("%d", i+1),
			n.Name,
			n.Category,
			fmt.Sprintf("%.5f", n.Score),
			fmt.Sprintf("%.1f", n.SymbolSize),
			broker,
		)
		if n.LabelVisible {
			line = styleLabel.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	cats := make([]string, 0, len(s.CategorySizes))
	for c := range s.CategorySizes {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if s.CategorySizes[cats[i]] != s.CategorySizes[cats[j]] {
			return s.CategorySizes[cats[i]] > s.CategorySizes[cats[j]]
		}
		return cats[i] < cats[j]
	})
	if len(cats) > 0 {
		b.WriteString("\n")
		b.WriteString(styleHeader.Render("categories"))
		b.WriteString("\n")
		for _, c := range cats {
			b.WriteString(fmt.Sprintf("  %s %d\n", cell(c, colCategory), s.CategorySizes[c]))
		}
	}

	return b.String(), nil
}

func row(rank, name, category, score, size, broker string) string {
	return cell(rank, colRank) + cell(name, colName) + cell(category, colCategory) +
		cell(score, colScore) + cell(size, colSize) + cell(broker, colBroker)
}

// cell pads or truncates s to the display width w.
func cell(s string, w int) string {
	if lipgloss.Width(s) > w-1 {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > w-1 {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return lipgloss.NewStyle().Width(w).Render(s)
}
