package gamma

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://gamma-api.polymarket.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if query != nil && len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// ListOpenEvents fetches open events ordered by volume, highest first.
func (c *Client) ListOpenEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := url.Values{}
	query.Set("closed", "false")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("order", "volume")
	query.Set("ascending", "false")
	body, err := c.doRequest(ctx, "/events", query)
	if err != nil {
		return nil, err
	}
	return parseEvents(body)
}

// SearchMarkets runs a keyword search over open markets.
func (c *Client) SearchMarkets(ctx context.Context, terms string, limit int) ([]Market, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	query := url.Values{}
	query.Set("_s", terms)
	query.Set("closed", "false")
	query.Set("limit", strconv.Itoa(limit))
	body, err := c.doRequest(ctx, "/markets", query)
	if err != nil {
		return nil, err
	}
	return parseMarkets(body)
}
