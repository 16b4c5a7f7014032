// Package client is the presentation-side library: a gateway API client,
// the polling loops that keep dashboard view state fresh, and the chat
// exchange machinery that consumes streamed assistant replies.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/SamayGala/StockGPT/internal/models"
)

// Client talks to the query gateway.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the gateway at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Indexes fetches the dashboard index snapshots.
func (c *Client) Indexes(ctx context.Context) ([]models.IndexSnapshot, error) {
	var resp struct {
		Indexes []models.IndexSnapshot `json:"indexes"`
	}
	if err := c.getJSON(ctx, "/api/indexes", &resp); err != nil {
		return nil, err
	}
	return resp.Indexes, nil
}

// Ticker fetches the ticker-tape stock summaries.
func (c *Client) Ticker(ctx context.Context) ([]models.StockSummary, error) {
	var resp struct {
		Stocks []models.StockSummary `json:"stocks"`
	}
	if err := c.getJSON(ctx, "/api/stocks/ticker", &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// Stock fetches the full detail object for one symbol.
func (c *Client) Stock(ctx context.Context, symbol string) (models.StockDetail, error) {
	var detail models.StockDetail
	if err := c.getJSON(ctx, "/api/stocks/"+symbol, &detail); err != nil {
		return models.StockDetail{}, err
	}
	return detail, nil
}

// Holdings fetches brokerage holdings with totals.
func (c *Client) Holdings(ctx context.Context) (models.HoldingsResponse, error) {
	var resp models.HoldingsResponse
	if err := c.getJSON(ctx, "/api/zerodha/holdings", &resp); err != nil {
		return models.HoldingsResponse{}, err
	}
	return resp, nil
}

// Watchlist fetches the read-only server-side watchlist.
func (c *Client) Watchlist(ctx context.Context) ([]models.StockSummary, error) {
	var resp models.WatchlistResponse
	if err := c.getJSON(ctx, "/api/zerodha/watchlist", &resp); err != nil {
		return nil, err
	}
	return resp.Watchlist, nil
}

// Portfolio fetches the portfolio summary.
func (c *Client) Portfolio(ctx context.Context) (models.PortfolioSummary, error) {
	var resp models.PortfolioSummary
	if err := c.getJSON(ctx, "/api/zerodha/portfolio", &resp); err != nil {
		return models.PortfolioSummary{}, err
	}
	return resp, nil
}

// OpenChatStream issues the chat POST and hands back the raw event stream.
// The caller owns the body and must close it; closing it early is the
// cancellation signal to the gateway.
func (c *Client) OpenChatStream(ctx context.Context, chatReq models.ChatRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("chat request failed: %s", readErrorDetail(resp))
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s failed: %s", path, readErrorDetail(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readErrorDetail extracts the gateway's error body, preferring the
// "detail" field it uses for failures.
func readErrorDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return resp.Status
}
