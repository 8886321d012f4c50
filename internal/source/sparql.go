package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/papapumpkin/powermap/internal/roster"
)

// DefaultQuery selects sitting members of the House of Representatives of
// Japan with their party and committee labels.
const DefaultQuery = `SELECT DISTINCT ?human ?humanLabel ?partyLabel ?committeeLabel WHERE {
  ?human p:P39 ?statement .
  ?statement ps:P39 wd:Q17505613 .
  FILTER NOT EXISTS { ?statement pq:P582 ?endTime } .
  OPTIONAL { ?human wdt:P102 ?party . }
  OPTIONAL { ?human wdt:P39 ?role . ?role wdt:P279 wd:Q17554522 . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "ja,en". }
}
LIMIT 1000`

// ErrFetchFailed is returned when every attempt against the endpoint fails.
var ErrFetchFailed = errors.New("sparql fetch failed")

// maxBody bounds how much of a response body is read.
const maxBody = 64 << 20

// Client queries a SPARQL endpoint and converts its JSON results into
// records.
type Client struct {
	Endpoint  string
	UserAgent string
	Query     string
	Attempts  int
	Backoff   time.Duration
	HTTP      *http.Client
	Logger    *log.Logger
}

// NewClient creates a client with the given endpoint and identification
// header. Remaining fields take their defaults and may be overridden.
func NewClient(endpoint, userAgent string, logger *log.Logger) *Client {
	return &Client{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Query:     DefaultQuery,
		Attempts:  5,
		Backoff:   5 * time.Second,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
		Logger:    logger,
	}
}

// Fetch runs the query, retrying up to Attempts times with a fixed Backoff
// between attempts. It stops early when ctx is cancelled.
func (c *Client) Fetch(ctx context.Context) ([]roster.Record, error) {
	logger := c.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		recs, err := c.fetchOnce(ctx)
		if err == nil {
			logger.Info("sparql fetch succeeded", "records", len(recs), "attempt", i)
			return recs, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("source: sparql: %w", ctx.Err())
		}
		lastErr = err
		logger.Warn("sparql fetch failed", "attempt", i, "of", attempts, "err", err)

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("source: sparql: %w", ctx.Err())
		case <-time.After(c.Backoff):
		}
	}
	return nil, fmt.Errorf("source: %w after %d attempts: %w", ErrFetchFailed, attempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) ([]roster.Record, error) {
	query := c.Query
	if query == "" {
		query = DefaultQuery
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody)) //nolint:errcheck
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return DecodeSPARQLJSON(io.LimitReader(resp.Body, maxBody))
}
