package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Role is the caller's credential class. It decides which API key is
// presented to the remote data service.
type Role int

const (
	// RoleUser presents the publishable key and is limited to reads.
	RoleUser Role = iota
	// RoleAdmin presents the secret key and may mutate the collection.
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// KeySource resolves the API key presented for a role. New credential
// sources (vaults, rotating keys) implement this instead of adding
// branching inside the client.
type KeySource interface {
	Key(role Role) string
}

// StaticKeys is the configuration-backed KeySource.
type StaticKeys struct {
	Secret      string
	Publishable string
}

func (k StaticKeys) Key(role Role) string {
	if role == RoleAdmin {
		return k.Secret
	}
	return k.Publishable
}

// A key shorter than this cannot be a real project key; treat it as unset.
const minKeyLength = 20

const defaultTimeout = 10 * time.Second

// Client talks to a hosted PostgREST-style endpoint. Every request carries
// the role-appropriate key as both an apikey header and a bearer token.
type Client struct {
	baseURL    string
	keys       KeySource
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a remote client. httpClient may be nil, in which case a
// default client with a request timeout is used.
func NewClient(baseURL string, keys KeySource, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keys:       keys,
		httpClient: httpClient,
		log:        log,
	}
}

// Ready reports whether the remote is configured for the given role: a base
// URL that is not a placeholder and a plausible key for that role. Callers
// must treat a not-ready remote exactly like a reachable-but-empty one.
func (c *Client) Ready(role Role) bool {
	if c.baseURL == "" || strings.Contains(c.baseURL, "YOUR_PROJECT_REF") {
		return false
	}
	key := c.keys.Key(role)
	if len(key) < minKeyLength || strings.HasPrefix(key, "YOUR_") {
		return false
	}
	return true
}

// Select issues a GET against the table and decodes the JSON array response
// into out. An empty query defaults to select=*.
func (c *Client) Select(ctx context.Context, table string, role Role, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, table, role, query, nil, out)
}

// Insert POSTs a new record using the admin credential. The created
// representation is decoded into out when out is non-nil.
func (c *Client) Insert(ctx context.Context, table string, body, out any) error {
	return c.do(ctx, http.MethodPost, table, RoleAdmin, nil, body, out)
}

// Update PATCHes the records matched by filter using the admin credential.
func (c *Client) Update(ctx context.Context, table string, filter url.Values, body any) error {
	return c.do(ctx, http.MethodPatch, table, RoleAdmin, filter, body, nil)
}

// Delete removes the records matched by filter using the admin credential.
func (c *Client) Delete(ctx context.Context, table string, filter url.Values) error {
	return c.do(ctx, http.MethodDelete, table, RoleAdmin, filter, nil, nil)
}

// Eq builds a single-column PostgREST equality filter.
func Eq(column, value string) url.Values {
	return url.Values{column: []string{"eq." + value}}
}

func (c *Client) do(ctx context.Context, method, table string, role Role, query url.Values, body, out any) error {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	} else if method == http.MethodGet {
		u += "?select=*"
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote.%s %s: encode body: %w", method, table, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("remote.%s %s: %w", method, table, err)
	}

	key := c.keys.Key(role)
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote.%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a bounded slice of the body so the failure is diagnosable.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("remote request failed",
			zap.String("method", method),
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return fmt.Errorf("remote.%s %s: unexpected status %d", method, table, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote.%s %s: decode response: %w", method, table, err)
	}
	return nil
}
