package quoteapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bullionwatch/collector/internal/domain"
)

// ErrAPIError marks a response whose HTTP status was fine but whose body
// signals an upstream application-level failure.
var ErrAPIError = errors.New("quote API returned error body")

// ErrBadStatus marks a non-2xx transport-level response.
var ErrBadStatus = errors.New("quote API returned non-success status")

// Client fetches instrument quotes from a Twelve-Data-style quote
// endpoint: GET <base>?symbol=<PAIR>&apikey=<key>. The response body is
// untrusted; every field is parsed defensively.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// quoteResponse mirrors the upstream JSON shape. Prices arrive as strings;
// status/message/code are only present on application-level errors.
type quoteResponse struct {
	Symbol  string `json:"symbol"`
	Price   string `json:"price"`
	Bid     string `json:"bid"`
	Ask     string `json:"ask"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Quote fetches one instrument quote and validates it. The returned
// reading always carries bid and ask: fields the upstream omits fall back
// to the last-trade price.
func (c *Client) Quote(ctx context.Context, symbol string) (domain.QuoteReading, error) {
	var reading domain.QuoteReading

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return reading, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return reading, fmt.Errorf("build request for %s: %w", symbol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reading, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return reading, fmt.Errorf("fetch %s: %w: %s", symbol, ErrBadStatus, resp.Status)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return reading, fmt.Errorf("decode %s response: %w", symbol, err)
	}

	if body.Status == "error" {
		return reading, fmt.Errorf("fetch %s: %w: code=%d message=%q",
			symbol, ErrAPIError, body.Code, body.Message)
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil || price.IsZero() || price.IsNegative() {
		return reading, fmt.Errorf("fetch %s: %w (price=%q)",
			symbol, domain.ErrZeroPrice, body.Price)
	}

	reading = domain.QuoteReading{
		Symbol:    symbol,
		Price:     price,
		Bid:       parseOr(body.Bid, price),
		Ask:       parseOr(body.Ask, price),
		FetchedAt: time.Now().UTC(),
	}
	return reading, nil
}

// parseOr parses a price string, substituting fallback when the field is
// absent or unparseable. The record must never carry a missing bid/ask,
// only a possibly-stale equal-to-last-trade value.
func parseOr(s string, fallback decimal.Decimal) decimal.Decimal {
	if s == "" {
		return fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return fallback
	}
	return d
}
