// Package source acquires raw roster records from files, a local SQLite
// store, or a live SPARQL endpoint. It is the only package that performs
// I/O on the input side of the pipeline.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/powermap/internal/roster"
)

// Kind names a record source.
type Kind string

// Supported source kinds.
const (
	KindAuto       Kind = "auto"
	KindTOML       Kind = "toml"
	KindJSON       Kind = "json"
	KindSPARQLJSON Kind = "sparql-json"
	KindCSV        Kind = "csv"
	KindSQLite     Kind = "sqlite"
	KindSPARQL     Kind = "sparql"
)

// ErrUnknownKind is returned when a source kind cannot be resolved.
var ErrUnknownKind = errors.New("unknown source kind")

// Options selects and configures a source for Load.
type Options struct {
	Kind Kind
	// Path is the input file or database. Ignored for KindSPARQL.
	Path string
	// SPARQL configures the live endpoint client.
	SPARQL *Client
}

// Detect resolves KindAuto from the input path. An empty path means the
// live endpoint.
func Detect(path string) (Kind, error) {
	if path == "" {
		return KindSPARQL, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return KindTOML, nil
	case ".json":
		return KindJSON, nil
	case ".csv":
		return KindCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	}
	return "", fmt.Errorf("source: detect %q: %w", path, ErrUnknownKind)
}

// Load reads records from the source described by opts.
func Load(ctx context.Context, opts Options) ([]roster.Record, error) {
	kind := opts.Kind
	if kind == "" || kind == KindAuto {
		k, err := Detect(opts.Path)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	switch kind {
	case KindSPARQL:
		if opts.SPARQL == nil {
			return nil, errors.New("source: sparql client not configured")
		}
		return opts.SPARQL.Fetch(ctx)
	case KindSQLite:
		if _, err := os.Stat(opts.Path); err != nil {
			return nil, fmt.Errorf("source: open %s: %w", opts.Path, err)
		}
		store, err := OpenStore(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Records(ctx)
	case KindTOML, KindJSON, KindSPARQLJSON, KindCSV:
		return readFile(opts.Path, kind)
	}
	return nil, fmt.Errorf("source: %q: %w", kind, ErrUnknownKind)
}

func readFile(path string, kind Kind) ([]roster.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	var recs []roster.Record
	switch kind {
	case KindTOML:
		recs, err = DecodeTOML(f)
	case KindJSON:
		recs, err = DecodeJSON(f)
	case KindSPARQLJSON:
		recs, err = DecodeSPARQLJSON(f)
	case KindCSV:
		recs, err = DecodeCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return recs, nil
}
