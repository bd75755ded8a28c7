package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
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
		host = "https://data-api.polymarket.com"
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

// Activity is one on-chain action on a market. Numeric fields are tolerant
// of string encoding.
type Activity struct {
	ProxyWallet     string  `json:"proxyWallet"`
	Type            string  `json:"type"`
	Side            string  `json:"side"`
	Asset           string  `json:"asset"`
	ConditionID     string  `json:"conditionId"`
	Size            jsonNum `json:"size"`
	USDCSize        jsonNum `json:"usdcSize"`
	Price           jsonNum `json:"price"`
	Timestamp       jsonNum `json:"timestamp"`
	TransactionHash string  `json:"transactionHash"`
	Title           string  `json:"title"`
}

func (a Activity) Time() time.Time {
	return time.Unix(int64(a.Timestamp), 0).UTC()
}

type jsonNum float64

func (n *jsonNum) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = jsonNum(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return err
		}
		*n = jsonNum(f)
		return nil
	}
	return fmt.Errorf("invalid number: %s", s)
}

// MarketActivity returns recent activity for one market (by condition id).
func (c *Client) MarketActivity(ctx context.Context, conditionID string, limit int) ([]Activity, error) {
	conditionID = strings.TrimSpace(conditionID)
	if conditionID == "" {
		return nil, fmt.Errorf("condition id is required")
	}
	if limit <= 0 {
		limit = 200
	}
	query := url.Values{}
	query.Set("market", conditionID)
	query.Set("limit", strconv.Itoa(limit))
	body, err := c.doRequest(ctx, "/activity", query)
	if err != nil {
		return nil, err
	}
	return parseActivity(body)
}

// UserTrades returns a wallet's trade activity at or after start.
func (c *Client) UserTrades(ctx context.Context, wallet string, start time.Time, limit int) ([]Activity, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("wallet is required")
	}
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("user", wallet)
	query.Set("type", "TRADE")
	query.Set("limit", strconv.Itoa(limit))
	if !start.IsZero() {
		query.Set("start", strconv.FormatInt(start.Unix(), 10))
	}
	body, err := c.doRequest(ctx, "/activity", query)
	if err != nil {
		return nil, err
	}
	return parseActivity(body)
}

func parseActivity(body []byte) ([]Activity, error) {
	var items []Activity
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Data []Activity `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}
