// Package lookup resolves bibliographic identifiers against public metadata
// services: DOIs through the Crossref REST API and ISBNs through the Open
// Library books API. Results come back as unsaved library items.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"recognizer/internal/library"
	"recognizer/internal/logging"
	"recognizer/internal/services"
)

// Lookup is the identifier resolution contract used by identification.
type Lookup interface {
	LookupDOI(ctx context.Context, doi string) (*library.Item, error)
	LookupISBN(ctx context.Context, isbn string) ([]*library.Item, error)
}

// Client queries Crossref and Open Library.
type Client struct {
	crossrefURL    string
	openLibraryURL string
	mailto         string
	libraryID      int64
	httpClient     *http.Client
	logger         *slog.Logger
}

var _ Lookup = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMailto identifies the caller to Crossref's polite pool.
func WithMailto(mailto string) Option {
	return func(c *Client) {
		c.mailto = strings.TrimSpace(mailto)
	}
}

// WithLibraryID sets the library new items are created for.
func WithLibraryID(id int64) Option {
	return func(c *Client) {
		c.libraryID = id
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a lookup client. A zero timeout uses 15s.
func New(crossrefURL, openLibraryURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	crossrefURL = strings.TrimRight(strings.TrimSpace(crossrefURL), "/")
	if crossrefURL == "" {
		return nil, errors.New("crossref base url required")
	}
	openLibraryURL = strings.TrimRight(strings.TrimSpace(openLibraryURL), "/")
	if openLibraryURL == "" {
		return nil, errors.New("open library base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		crossrefURL:    crossrefURL,
		openLibraryURL: openLibraryURL,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// getJSON fetches endpoint and decodes a 200 response into target. A 404 is
// reported as ErrNotFound.
func (c *Client) getJSON(ctx context.Context, operation, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "lookup", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.mailto != "" {
		req.Header.Set("User-Agent", "recognizer (mailto:"+c.mailto+")")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return services.Wrap(services.ErrTransient, "lookup", operation, fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("lookup response",
		logging.String("request_url", endpoint),
		logging.Int("http_status", resp.StatusCode),
		logging.Duration("request_latency", latency),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return services.Wrap(services.ErrNotFound, "lookup", operation, "no record", nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrTransient, "lookup", operation, fmt.Sprintf("returned %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return services.Wrap(services.ErrTransient, "lookup", operation, "decode response", err)
	}
	return nil
}
