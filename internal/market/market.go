// Package market supplies the index quotes for the ticker stripe. Live
// values come from the Yahoo Finance chart API; when a fetch fails the
// value is synthesized and flagged so it is never presented as real data.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/cache"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// Index identifies one tracked index.
type Index struct {
	Name        string
	Symbol      string
	YahooSymbol string // URL-escaped form for quote page links
}

// EuropeanIndices is the fixed set shown in the ticker.
var EuropeanIndices = []Index{
	{Name: "STOXX 600", Symbol: "^STOXX", YahooSymbol: "%5ESTOXX"},
	{Name: "DAX", Symbol: "^GDAXI", YahooSymbol: "%5EGDAXI"},
	{Name: "CAC 40", Symbol: "^FCHI", YahooSymbol: "%5EFCHI"},
	{Name: "FTSE 100", Symbol: "^FTSE", YahooSymbol: "%5EFTSE"},
	{Name: "FTSE MIB", Symbol: "FTSEMIB.MI", YahooSymbol: "FTSEMIB.MI"},
	{Name: "IBEX 35", Symbol: "^IBEX", YahooSymbol: "%5EIBEX"},
	{Name: "AEX", Symbol: "^AEX", YahooSymbol: "%5EAEX"},
	{Name: "BEL 20", Symbol: "^BFX", YahooSymbol: "%5EBFX"},
}

const cacheKey = "market:indices"

// Service fetches, caches, and serves index quotes.
type Service struct {
	client  *http.Client
	baseURL string
	cache   cache.Cache
	ttl     time.Duration
	indices []Index
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL overrides the upstream chart API base URL, for tests.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithIndices overrides the tracked index set, for tests.
func WithIndices(indices []Index) Option {
	return func(s *Service) { s.indices = indices }
}

// NewService creates a market data service.
func NewService(c cache.Cache, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://query1.finance.yahoo.com",
		cache:   c,
		ttl:     ttl,
		indices: EuropeanIndices,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Indices returns the current quote set, serving from cache when fresh.
func (s *Service) Indices(ctx context.Context) []model.MarketIndex {
	if data, err := s.cache.Get(ctx, cacheKey); err == nil {
		var cached []model.MarketIndex
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached
		}
	}
	return s.Refresh(ctx)
}

// Refresh fetches every index and replaces the cached set. Per-symbol
// failures degrade to synthetic placeholders rather than failing the whole
// ticker.
func (s *Service) Refresh(ctx context.Context) []model.MarketIndex {
	// UTC, so fresh and cache-decoded timestamps compare equal.
	now := time.Now().UTC()
	out := make([]model.MarketIndex, 0, len(s.indices))

	for _, idx := range s.indices {
		quote := model.MarketIndex{
			Name:      idx.Name,
			Symbol:    idx.Symbol,
			QuoteURL:  "https://finance.yahoo.com/quote/" + idx.YahooSymbol,
			FetchedAt: now,
		}

		value, change, err := s.fetchQuote(ctx, idx.Symbol)
		if err != nil {
			slog.Warn("market quote fetch failed, using synthetic placeholder",
				"symbol", idx.Symbol, "error", err)
			quote.Value = fmt.Sprintf("%.2f", rand.Float64()*10000+5000)
			quote.ChangePercent = fmt.Sprintf("%.2f", rand.Float64()*2-1)
			quote.Synthetic = true
		} else {
			quote.Value = fmt.Sprintf("%.2f", value)
			quote.ChangePercent = fmt.Sprintf("%.2f", change)
		}

		out = append(out, quote)
	}

	if data, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
			slog.Warn("caching market quotes failed", "error", err)
		}
	}

	return out
}

// chartResponse mirrors the fields we use from the Yahoo v8 chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// fetchQuote returns the current value and day-over-day percent change for
// a symbol.
func (s *Service) fetchQuote(ctx context.Context, symbol string) (value, changePct float64, err error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d",
		s.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("fetching %s: status %d", symbol, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", symbol, err)
	}

	if len(payload.Chart.Result) == 0 {
		return 0, 0, fmt.Errorf("no chart result for %s", symbol)
	}
	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return 0, 0, fmt.Errorf("no market price for %s", symbol)
	}

	prev := meta.ChartPreviousClose
	if prev == nil {
		prev = meta.PreviousClose
	}
	if prev == nil || *prev == 0 {
		return 0, 0, fmt.Errorf("no previous close for %s", symbol)
	}

	price := *meta.RegularMarketPrice
	return price, (price - *prev) / *prev * 100, nil
}
