// Package upstream wraps the Unusual Whales market-data API. It is the only
// component that performs outbound network calls; every failure mode other
// than context cancellation collapses into ErrUnavailable so the caller can
// degrade to synthetic data.
package upstream

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/market"
)

// Source identifies Client implementations for testability. The service
// layer depends on this interface, never on the concrete HTTP client.
type Source interface {
	CongressTrades(ctx context.Context, spec filter.Spec) ([]market.CongressTrade, error)
	GreekFlow(ctx context.Context, spec filter.Spec) ([]market.GreekFlow, error)
	Earnings(ctx context.Context, spec filter.Spec) ([]market.EarningsEvent, error)
	InsiderTrades(ctx context.Context, spec filter.Spec) ([]market.InsiderTrade, error)
	PremiumFlow(ctx context.Context, spec filter.Spec) ([]market.PremiumFlow, error)
	MarketTide(ctx context.Context, spec filter.Spec) ([]market.TidePoint, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	retryCount int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, ratePerSec int, timeout, retryDelay time.Duration, retryCount int, logger *zap.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:       100,
		MaxConnsPerHost:    10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2),
		retryCount: retryCount,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// envelope is the upstream response wrapper: {"data": [...]}.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) CongressTrades(ctx context.Context, spec filter.Spec) ([]market.CongressTrade, error) {
	params := url.Values{}
	if spec.Ticker != "" {
		params.Set("ticker", spec.Ticker)
	}
	if spec.Member != "" {
		params.Set("congress_member", spec.Member)
	}
	params.Set("start_date", spec.StartDate.Format(market.DateLayout))
	params.Set("end_date", spec.EndDate.Format(market.DateLayout))

	var wire []congressTradeWire
	if err := c.getJSON(ctx, "congress/recent-trades", params, &wire); err != nil {
		return nil, err
	}

	trades := make([]market.CongressTrade, 0, len(wire))
	for _, w := range wire {
		trades = append(trades, market.CongressTrade{
			Ticker:         w.Ticker,
			Member:         w.Reporter,
			TradeType:      normalizeTxnType(w.TxnType),
			Amount:         ParseAmountRange(w.Amounts),
			TradeDate:      w.TransactionDate,
			DisclosureDate: w.DisclosureDate,
		})
	}
	return trades, nil
}

func (c *Client) GreekFlow(ctx context.Context, spec filter.Spec) ([]market.GreekFlow, error) {
	params := url.Values{}
	params.Set("date", spec.StartDate.Format(market.DateLayout))

	var flows []market.GreekFlow
	path := fmt.Sprintf("stock/%s/greek-flow", url.PathEscape(spec.Ticker))
	if err := c.getJSON(ctx, path, params, &flows); err != nil {
		return nil, err
	}

	// The upstream endpoint only takes a start date; the tail of the window
	// is trimmed locally.
	end := spec.EndDate.Format(market.DateLayout)
	filtered := flows[:0]
	for _, f := range flows {
		if f.Date <= end {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

func (c *Client) Earnings(ctx context.Context, spec filter.Spec) ([]market.EarningsEvent, error) {
	params := url.Values{}
	if spec.Sector != "" {
		params.Set("sector", spec.Sector)
	}
	params.Set("start_date", spec.StartDate.Format(market.DateLayout))
	params.Set("end_date", spec.EndDate.Format(market.DateLayout))

	var events []market.EarningsEvent
	if err := c.getJSON(ctx, "earnings/recent", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) InsiderTrades(ctx context.Context, spec filter.Spec) ([]market.InsiderTrade, error) {
	params := url.Values{}
	if spec.Role != "" {
		params.Set("insider_role", spec.Role)
	}
	if spec.TradeType != "" {
		params.Set("trade_type", spec.TradeType)
	}
	params.Set("start_date", spec.StartDate.Format(market.DateLayout))
	params.Set("end_date", spec.EndDate.Format(market.DateLayout))

	var trades []market.InsiderTrade
	if err := c.getJSON(ctx, "insider/transactions", params, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (c *Client) PremiumFlow(ctx context.Context, spec filter.Spec) ([]market.PremiumFlow, error) {
	params := url.Values{}
	if spec.Sector != "" {
		params.Set("sector", spec.Sector)
	}
	if spec.OptionType != market.OptionAll {
		params.Set("option_type", string(spec.OptionType))
	}
	params.Set("start_date", spec.StartDate.Format(market.DateLayout))
	params.Set("end_date", spec.EndDate.Format(market.DateLayout))
	params.Set("intraday", strconv.FormatBool(spec.Intraday()))

	var flows []market.PremiumFlow
	if err := c.getJSON(ctx, "market/premium-flow", params, &flows); err != nil {
		return nil, err
	}
	return flows, nil
}

func (c *Client) MarketTide(ctx context.Context, spec filter.Spec) ([]market.TidePoint, error) {
	params := url.Values{}
	params.Set("date", spec.StartDate.Format(market.DateLayout))
	params.Set("interval_5m", strconv.FormatBool(spec.Interval5m))

	var points []market.TidePoint
	if err := c.getJSON(ctx, "market/market-tide", params, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// getJSON performs a GET against the upstream API and decodes the data
// envelope into out. Retries are bounded; cancellation is returned as-is.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + "/" + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	c.logger.Debug("upstream request", zap.String("url", reqURL))

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // Exponential backoff
			c.logger.Debug("retrying upstream request", zap.Int("attempt", attempt), zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json, text/plain")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = ErrRateLimited
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: unexpected status %d: %s", ErrUnavailable, resp.StatusCode, truncate(body, 200))
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
		}
		if env.Data == nil {
			// Some endpoints return a bare array instead of the envelope.
			env.Data = body
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: decoding payload: %v", ErrUnavailable, err)
		}
		return nil
	}

	if lastErr == ErrRateLimited {
		return fmt.Errorf("%w: %v", ErrUnavailable, ErrRateLimited)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// congressTradeWire is the upstream shape of a congress trade. The API
// reports dollar ranges ("$1,001 - $15,000") rather than exact amounts.
type congressTradeWire struct {
	Ticker          string `json:"ticker"`
	Reporter        string `json:"reporter"`
	TxnType         string `json:"txn_type"`
	Amounts         string `json:"amounts"`
	TransactionDate string `json:"transaction_date"`
	DisclosureDate  string `json:"disclosure_date"`
}

// ParseAmountRange converts a disclosed dollar range to its midpoint.
// Unparseable input yields 0.
func ParseAmountRange(s string) float64 {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	parts := strings.Split(clean, " - ")

	parse := func(v string) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}

	if len(parts) == 2 {
		low, okLow := parse(parts[0])
		high, okHigh := parse(parts[1])
		if okLow && okHigh {
			return (low + high) / 2
		}
		return 0
	}
	if f, ok := parse(clean); ok {
		return f
	}
	return 0
}

func normalizeTxnType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "buy":
		return "Buy"
	case "sell":
		return "Sell"
	case "exchange":
		return "Exchange"
	default:
		return strings.TrimSpace(t)
	}
}

// Compile-time interface verification
var _ Source = (*Client)(nil)
