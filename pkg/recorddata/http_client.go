package recorddata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

// HTTPConfig configures the HTTP record-data client.
type HTTPConfig struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// HTTPClient resolves record field values from a UI-API-shaped REST endpoint.
// Authentication is assumed pre-established via the host session token.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting the live record endpoint.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("recorddata: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		token:   cfg.AccessToken,
		client:  httpClient,
	}, nil
}

type recordResponse struct {
	Fields map[string]fieldValue `json:"fields"`
}

type fieldValue struct {
	Value *string `json:"value"`
}

// ResolveField fetches a single field for the record. A field missing from
// the response, or present with a null value, resolves as undefined; the
// caller decides whether that is an error for its surface.
func (c *HTTPClient) ResolveField(ctx context.Context, objectAPIName, recordID, field string) (vizembed.FilterValue, error) {
	if recordID == "" {
		return vizembed.FilterValue{}, fmt.Errorf("recorddata: record id is required")
	}
	if field == "" {
		return vizembed.FilterValue{}, fmt.Errorf("recorddata: field name is required")
	}
	path := fmt.Sprintf("/ui-api/records/%s?fields=%s", url.PathEscape(recordID),
		url.QueryEscape(objectAPIName+"."+field))
	var resp recordResponse
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return vizembed.FilterValue{}, err
	}
	fv, ok := resp.Fields[field]
	if !ok || fv.Value == nil {
		return vizembed.FilterValue{}, nil
	}
	return vizembed.FilterValue{Value: *fv.Value, Defined: true}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("recorddata: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("recorddata: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("recorddata: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("recorddata: decode response: %w", err)
	}
	return nil
}
