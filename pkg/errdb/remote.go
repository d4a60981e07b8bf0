package errdb

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRemoteURL is the community database endpoint. The same URL
// serves the full document and, with ?errorCode=, a single entry.
const DefaultRemoteURL = "http://uartcodes.com/xml.php"

// ErrNotFound means the remote answered but has no entry for the code.
var ErrNotFound = errors.New("error code not known to remote database")

// responses are small XML documents; cap reads defensively anyway.
const maxResponseBytes = 4 << 20

// Client fetches descriptions from the remote code database.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// WithClientLogger attaches a logger; the default discards everything.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient builds a client for the remote database at baseURL. An
// empty baseURL selects DefaultRemoteURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultRemoteURL
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the description for a single code.
func (c *Client) Lookup(ctx context.Context, code string) (string, error) {
	doc, err := c.fetch(ctx, url.Values{"errorCode": {code}})
	if err != nil {
		return "", err
	}
	for _, e := range doc.Codes {
		if e.Code == code {
			return e.Description, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, code)
}

// FetchAll downloads the whole remote database, e.g. for first-run
// initialization or an explicit refresh.
func (c *Client) FetchAll(ctx context.Context) ([]Entry, error) {
	doc, err := c.fetch(ctx, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(doc.Codes))
	for _, e := range doc.Codes {
		if e.Code == "" {
			continue
		}
		entries = append(entries, Entry{Code: e.Code, Description: e.Description, Source: SourceOnline})
	}
	c.log.Debug().Int("entries", len(entries)).Msg("fetched remote error code database")
	return entries, nil
}

func (c *Client) fetch(ctx context.Context, query url.Values) (*xmlDocument, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote database URL %q: %w", c.baseURL, err)
	}
	if query != nil {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build remote database request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching remote database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote database returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading remote database response: %w", err)
	}
	var doc xmlDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse remote database response: %w", err)
	}
	return &doc, nil
}
