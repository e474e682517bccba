package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayClient speaks to a Bloomberg HTTP gateway (a sidecar wrapping the
// desktop API). Requests block until response or the http.Client timeout;
// no cancellation beyond the context is attempted.
type GatewayClient struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.Status, e.Body)
}

func NewGatewayClient(httpClient *http.Client, host string) *GatewayClient {
	if host == "" {
		host = "http://localhost:8194"
	}
	host = strings.TrimRight(host, "/")
	return &GatewayClient{host: host, httpClient: httpClient}
}

type historyResponse struct {
	Data []struct {
		Date  string          `json:"date"`
		Price decimal.Decimal `json:"price"`
	} `json:"data"`
}

type priceResponse struct {
	Price *decimal.Decimal `json:"price"`
}

func (c *GatewayClient) HistoricalPrices(ctx context.Context, ticker string, fields []string, start, end time.Time) ([]PricePoint, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if len(fields) == 0 {
		fields = []string{FieldLastPrice}
	}
	query := url.Values{}
	query.Set("ticker", ticker)
	query.Set("fields", strings.Join(fields, ","))
	query.Set("start", start.Format("2006-01-02"))
	query.Set("end", end.Format("2006-01-02"))

	body, err := c.doRequest(ctx, "/history", query)
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	points := make([]PricePoint, 0, len(resp.Data))
	for _, d := range resp.Data {
		ts, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		points = append(points, PricePoint{Date: ts, Ticker: ticker, Price: d.Price})
	}
	return points, nil
}

func (c *GatewayClient) CurrentPrice(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	query := url.Values{}
	query.Set("ticker", ticker)
	body, err := c.doRequest(ctx, "/price", query)
	if err != nil {
		return nil, err
	}
	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}
	return resp.Price, nil
}

func (c *GatewayClient) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
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
