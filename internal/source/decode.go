package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/powermap/internal/roster"
)

// ErrMissingColumn is returned when a CSV header lacks the name column.
var ErrMissingColumn = errors.New("missing column")

// tomlRoster is the on-disk TOML layout: an array of [[record]] tables.
type tomlRoster struct {
	Records []roster.Record `toml:"record"`
}

// DecodeTOML reads records from a TOML document of [[record]] tables.
func DecodeTOML(r io.Reader) ([]roster.Record, error) {
	var doc tomlRoster
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing toml: %w", err)
	}
	return doc.Records, nil
}

// EncodeTOML writes records as [[record]] tables.
func EncodeTOML(w io.Writer, recs []roster.Record) error {
	if err := toml.NewEncoder(w).Encode(tomlRoster{Records: recs}); err != nil {
		return fmt.Errorf("encoding toml: %w", err)
	}
	return nil
}

// binding is one SPARQL result term.
type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// sparqlResults is the W3C SPARQL 1.1 JSON results envelope.
type sparqlResults struct {
	Results *struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

// Binding variables mapped onto Record fields.
const (
	varName   = "humanLabel"
	varParty  = "partyLabel"
	varGroup  = "committeeLabel"
	varWeight = "weight"
)

// DecodeJSON reads records from either a bare array of records, an object
// with a "records" array, or a SPARQL JSON results document.
func DecodeJSON(r io.Reader) ([]roster.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []roster.Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
		return recs, nil
	}

	var doc struct {
		Records []roster.Record `json:"records"`
		sparqlResults
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	if doc.Results != nil {
		return fromBindings(doc.Results.Bindings)
	}
	return doc.Records, nil
}

// DecodeSPARQLJSON reads a SPARQL JSON results document whose bindings use
// the humanLabel, partyLabel and committeeLabel variables.
func DecodeSPARQLJSON(r io.Reader) ([]roster.Record, error) {
	var doc sparqlResults
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing sparql json: %w", err)
	}
	if doc.Results == nil {
		return nil, errors.New("parsing sparql json: no results")
	}
	return fromBindings(doc.Results.Bindings)
}

func fromBindings(rows []map[string]binding) ([]roster.Record, error) {
	recs := make([]roster.Record, 0, len(rows))
	for i, row := range rows {
		rec := roster.Record{
			Name:     row[varName].Value,
			Category: row[varParty].Value,
			Group:    row[varGroup].Value,
		}
		if w, ok := row[varWeight]; ok && w.Value != "" {
			f, err := strconv.ParseFloat(w.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("binding %d: weight %q: %w", i, w.Value, err)
			}
			rec.Weight = f
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// DecodeCSV reads records from CSV with a header row. Recognized columns
// are name (required), category, group and weight, in any order.
func DecodeCSV(r io.Reader) ([]roster.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("csv header: name: %w", ErrMissingColumn)
	}
	field := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var recs []roster.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if nameCol >= len(row) {
			continue
		}
		rec := roster.Record{
			Name:     row[nameCol],
			Category: field(row, "category"),
			Group:    field(row, "group"),
		}
		if w := strings.TrimSpace(field(row, "weight")); w != "" {
			f, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: weight %q: %w", line, w, err)
			}
			rec.Weight = f
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
