package payload

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNilPayload is returned when a renderer is handed a nil payload.
var ErrNilPayload = errors.New("payload is nil")

// Format renders a payload into a human- or machine-readable string.
type Format interface {
	// Render produces the full output for the payload.
	Render(p *Payload) (string, error)
}

// FormatByName returns the Format implementation for the given name.
// Supported names: json, echarts, summary.
func FormatByName(name string) (Format, error) {
	switch name {
	case "json", "":
		return &JSONFormat{}, nil
	case "echarts":
		return &EChartsFormat{}, nil
	case "summary":
		return &SummaryFormat{Top: DefaultSummaryTop}, nil
	default:
		return nil, fmt.Errorf("unknown payload format: %q", name)
	}
}

// FormatNames returns the list of all supported format names.
func FormatNames() []string {
	return []string{"json", "echarts", "summary"}
}

// JSONFormat renders the payload with the canonical field names.
type JSONFormat struct {
	// Indent pretty-prints the output when set.
	Indent bool
}

// Render produces the JSON document.
func (f *JSONFormat) Render(p *Payload) (string, error) {
	if p == nil {
		return "", ErrNilPayload
	}
	out := *p
	out.Nodes = emptyIfNil(out.Nodes)
	out.Links = emptyIfNil(out.Links)
	out.Categories = emptyIfNil(out.Categories)
	return marshal(out, f.Indent)
}

// EChartsFormat renders the payload in the shape the ECharts graph series
// consumes: labels as {show} objects and link weights as value.
type EChartsFormat struct {
	Indent bool
}

type echartsLabel struct {
	Show bool `json:"show"`
}

type echartsNode struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Category   string       `json:"category"`
	SymbolSize float64      `json:"symbolSize"`
	Value      float64      `json:"value,omitempty"`
	Label      echartsLabel `json:"label"`
}

type echartsLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

type echartsOutput struct {
	Nodes      []echartsNode `json:"nodes"`
	Links      []echartsLink `json:"links"`
	Categories []Category    `json:"categories"`
	Stats      Stats         `json:"stats"`
}

// Render produces the ECharts JSON document.
func (f *EChartsFormat) Render(p *Payload) (string, error) {
	if p == nil {
		return "", ErrNilPayload
	}
	out := echartsOutput{
		Nodes:      make([]echartsNode, len(p.Nodes)),
		Links:      make([]echartsLink, len(p.Links)),
		Categories: emptyIfNil(p.Categories),
		Stats:      p.Stats,
	}
	for i, n := range p.Nodes {
		out.Nodes[i] = echartsNode{
			ID:         n.ID,
			Name:       n.Name,
			Category:   n.Category,
			SymbolSize: n.SymbolSize,
			Value:      n.Value,
			Label:      echartsLabel{Show: n.LabelVisible},
		}
	}
	for i, l := range p.Links {
		out.Links[i] = echartsLink{Source: l.Source, Target: l.Target, Value: l.Weight}
	}
	return marshal(out, f.Indent)
}

func marshal(v any, indent bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}
	return string(data) + "\n", nil
}

// emptyIfNil returns an empty slice if the input is nil, ensuring JSON
// arrays are rendered as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
