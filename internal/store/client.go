// Package store is a thin HTTP client for the hosted record store backing
// the shop (collections for inventory, campaigns, orders, and users).
//
// Clients are cheap value-like objects: WithToken derives a new client bound
// to a token, so authentication state is always scoped to a request or a
// single privileged operation and never shared process-wide.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ErFjeldheim/haugalandsved/pkg/httpclient"
)

// User is the subset of a user record the storefront cares about.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResult is the response of the auth-with-password and auth-refresh
// endpoints: a fresh bearer token plus the authenticated record.
type AuthResult struct {
	Token  string `json:"token"`
	Record User   `json:"record"`
}

// Client talks to the record store. The zero token means unauthenticated
// (public collection rules apply).
type Client struct {
	baseURL string
	http    httpclient.Doer
	token   string
}

// New creates an unauthenticated client for the store at baseURL.
func New(baseURL string, doer httpclient.Doer) *Client {
	return &Client{baseURL: baseURL, http: doer}
}

// WithToken returns a copy of the client bound to the given bearer token.
func (c *Client) WithToken(token string) *Client {
	derived := *c
	derived.token = token
	return &derived
}

// Token returns the bearer token the client is bound to, if any.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the store base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the store answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Code int `json:"code"`
	}
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out)
}

// AuthWithPassword authenticates against the given auth collection and
// returns a client bound to the resulting token.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) (*Client, *AuthResult, error) {
	body := map[string]string{"identity": identity, "password": password}
	var res AuthResult
	path := fmt.Sprintf("/api/collections/%s/auth-with-password", url.PathEscape(collection))
	if err := c.do(ctx, http.MethodPost, path, nil, body, &res); err != nil {
		return nil, nil, fmt.Errorf("auth with password (%s): %w", collection, err)
	}
	return c.WithToken(res.Token), &res, nil
}

// AuthAsSuperuser authenticates with the privileged service identity used
// for inventory and order writes.
func (c *Client) AuthAsSuperuser(ctx context.Context, identity, password string) (*Client, error) {
	client, _, err := c.AuthWithPassword(ctx, "_superusers", identity, password)
	return client, err
}

// AuthRefresh exchanges the client's current token for a fresh one. The
// store rejects expired or revoked tokens with a 401/404.
func (c *Client) AuthRefresh(ctx context.Context) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/collections/users/auth-refresh", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("auth refresh: %w", err)
	}
	return &res, nil
}

// ListParams are the query options for listing collection records.
type ListParams struct {
	Filter  string
	Sort    string
	PerPage int
}

// GetRecord fetches a single record by ID into out.
func (c *Client) GetRecord(ctx context.Context, collection, id string, out any) error {
	path := recordPath(collection, id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, out); err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return nil
}

// ListRecords fetches records matching the params into out (a slice pointer).
func (c *Client) ListRecords(ctx context.Context, collection string, p ListParams, out any) error {
	q := url.Values{}
	if p.Filter != "" {
		q.Set("filter", p.Filter)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(p.PerPage))
	}

	envelope := struct {
		Items json.RawMessage `json:"items"`
	}{}
	path := fmt.Sprintf("/api/collections/%s/records", url.PathEscape(collection))
	if err := c.do(ctx, http.MethodGet, path, q, nil, &envelope); err != nil {
		return fmt.Errorf("list %s: %w", collection, err)
	}
	if err := json.Unmarshal(envelope.Items, out); err != nil {
		return fmt.Errorf("decode %s items: %w", collection, err)
	}
	return nil
}

// CreateRecord creates a record and decodes the stored result into out.
func (c *Client) CreateRecord(ctx context.Context, collection string, body, out any) error {
	path := fmt.Sprintf("/api/collections/%s/records", url.PathEscape(collection))
	if err := c.do(ctx, http.MethodPost, path, nil, body, out); err != nil {
		return fmt.Errorf("create %s record: %w", collection, err)
	}
	return nil
}

// UpdateRecord unconditionally patches a record.
func (c *Client) UpdateRecord(ctx context.Context, collection, id string, body, out any) error {
	if err := c.do(ctx, http.MethodPatch, recordPath(collection, id), nil, body, out); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// UpdateRecordIf patches a record only if every expected field still holds
// its expected value. The expectations are sent as expect.<field> query
// parameters; a mismatch makes the store answer 409, surfaced as ErrConflict.
// This is the optimistic-concurrency primitive behind inventory adjustments.
func (c *Client) UpdateRecordIf(ctx context.Context, collection, id string, expect map[string]any, body, out any) error {
	q := url.Values{}
	for field, value := range expect {
		q.Set("expect."+field, fmt.Sprint(value))
	}
	if err := c.do(ctx, http.MethodPatch, recordPath(collection, id), q, body, out); err != nil {
		return fmt.Errorf("conditional update %s/%s: %w", collection, id, err)
	}
	return nil
}

func recordPath(collection, id string) string {
	return fmt.Sprintf("/api/collections/%s/records/%s", url.PathEscape(collection), url.PathEscape(id))
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("store request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
