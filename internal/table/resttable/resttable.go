// Package resttable talks to the certificates table of a remote portfolio
// deployment over its REST API.
package resttable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/table"
)

// Path is where the table is mounted on a deployment.
const Path = "/rest/v1/" + table.Name

// Client implements table.Table against a remote deployment.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

var _ table.Table = (*Client)(nil)

// New returns a client for the deployment at baseURL. A nil httpClient
// uses http.DefaultClient; no timeout is imposed beyond the caller's
// context.
func New(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid table url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/") + Path,
		apiKey: apiKey,
		http:   httpClient,
	}, nil
}

func (c *Client) Select(ctx context.Context) ([]certificate.Record, error) {
	var records []certificate.Record
	q := url.Values{"order": {"date_issued.desc"}}
	if err := c.do(ctx, http.MethodGet, q, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []certificate.Record{}
	}
	return records, nil
}

func (c *Client) Insert(ctx context.Context, fields certificate.Fields) (certificate.Record, error) {
	var created []certificate.Record
	if err := c.do(ctx, http.MethodPost, nil, fields, &created); err != nil {
		return certificate.Record{}, err
	}
	if len(created) != 1 {
		return certificate.Record{}, fmt.Errorf("insert returned %d rows", len(created))
	}
	return created[0], nil
}

func (c *Client) Update(ctx context.Context, id string, fields certificate.Fields) error {
	return c.do(ctx, http.MethodPatch, byID(id), fields, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, byID(id), nil, nil)
}

func byID(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method string, query url.Values, body, out interface{}) error {
	target := c.base
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table.Name, err)
	}
	defer resp.Body.Close()

	// a 404 only means a missing row when a single row was addressed
	if resp.StatusCode == http.StatusNotFound && (method == http.MethodPatch || method == http.MethodDelete) {
		return table.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s (status %d)", method, table.Name, eb.Error, resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table.Name, err)
	}
	return nil
}
