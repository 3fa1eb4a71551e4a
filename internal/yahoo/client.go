// Package yahoo wraps the Yahoo Finance query API: quoteSummary lookups,
// single quotes, historical charts, and the RSS headline feed.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/stockgate/pkg/models"
)

const (
	// DefaultQueryBaseURL is the Yahoo Finance query API host.
	DefaultQueryBaseURL = "https://query1.finance.yahoo.com"

	// DefaultFeedBaseURL is the Yahoo Finance RSS feed host.
	DefaultFeedBaseURL = "https://feeds.finance.yahoo.com"

	// defaultUserAgent avoids the bot blocking Yahoo applies to default Go UAs.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// DefaultModules are the quoteSummary modules requested for a stock detail lookup.
var DefaultModules = []string{
	"assetProfile",
	"price",
	"summaryDetail",
	"defaultKeyStatistics",
	"financialData",
}

// ErrSymbolNotFound is returned when a symbol cannot be resolved upstream.
var ErrSymbolNotFound = fmt.Errorf("symbol not found")

// HTTPError wraps a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Config holds client settings. Zero values fall back to production defaults.
type Config struct {
	QueryBaseURL string
	FeedBaseURL  string
	Timeout      time.Duration
}

// Client talks to the Yahoo Finance query API. Safe for concurrent use.
type Client struct {
	http     *resty.Client
	feedBase string
	parser   *gofeed.Parser
	group    singleflight.Group
}

// NewClient creates a Yahoo Finance client.
func NewClient(cfg Config) *Client {
	base := cfg.QueryBaseURL
	if base == "" {
		base = DefaultQueryBaseURL
	}
	feedBase := cfg.FeedBaseURL
	if feedBase == "" {
		feedBase = DefaultFeedBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": defaultUserAgent,
		})

	return &Client{
		http:     httpClient,
		feedBase: feedBase,
		parser:   gofeed.NewParser(),
	}
}

// FetchQuoteSummary returns the multi-section bundle for one symbol.
// Concurrent lookups for the same symbol+modules collapse into a single
// upstream call; nothing is retained once the call completes.
func (c *Client) FetchQuoteSummary(ctx context.Context, symbol string, modules []string) (*Bundle, error) {
	sorted := append([]string(nil), modules...)
	sort.Strings(sorted)
	key := symbol + "|" + strings.Join(sorted, ",")

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetchQuoteSummary(ctx, symbol, modules)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bundle), nil
}

func (c *Client) fetchQuoteSummary(ctx context.Context, symbol string, modules []string) (*Bundle, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("modules", strings.Join(modules, ",")).
		Get("/v10/finance/quoteSummary/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, err)
	}

	var out quoteSummaryResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		if resp.IsError() {
			return nil, c.httpError(resp)
		}
		return nil, fmt.Errorf("parse quoteSummary %s: %w", symbol, err)
	}
	if out.QuoteSummary.Error != nil {
		return nil, out.QuoteSummary.Error
	}
	if resp.IsError() {
		return nil, c.httpError(resp)
	}
	if len(out.QuoteSummary.Result) == 0 || out.QuoteSummary.Result[0] == nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return out.QuoteSummary.Result[0], nil
}

// FetchQuote returns the single-quote record for one symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*QuoteResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbols", symbol).
		Get("/v7/finance/quote")
	if err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}

	var out quoteResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		if resp.IsError() {
			return nil, c.httpError(resp)
		}
		return nil, fmt.Errorf("parse quote %s: %w", symbol, err)
	}
	if out.QuoteResponse.Error != nil {
		return nil, out.QuoteResponse.Error
	}
	if resp.IsError() {
		return nil, c.httpError(resp)
	}
	if len(out.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return &out.QuoteResponse.Result[0], nil
}

// FetchChart returns OHLCV candles from the chart endpoint.
// Bars with a null open or close slot are skipped, matching how the
// chart API pads non-trading periods.
func (c *Client) FetchChart(ctx context.Context, symbol, rng, interval string) ([]models.OHLCV, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    rng,
			"interval": interval,
		}).
		Get("/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	var out chartResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		if resp.IsError() {
			return nil, c.httpError(resp)
		}
		return nil, fmt.Errorf("parse chart %s: %w", symbol, err)
	}
	if out.Chart.Error != nil {
		return nil, out.Chart.Error
	}
	if resp.IsError() {
		return nil, c.httpError(resp)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	return parseCandles(out.Chart.Result[0]), nil
}

// FetchNews returns recent headlines for a symbol from the RSS feed.
func (c *Client) FetchNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	feedURL := fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=US&lang=en-US",
		c.feedBase, url.QueryEscape(symbol))

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo news %s: %w", symbol, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			Link:    item.Link,
			Summary: item.Description,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
		if limit > 0 && len(articles) >= limit {
			break
		}
	}
	return articles, nil
}

func (c *Client) httpError(resp *resty.Response) error {
	body := resp.String()
	if len(body) > 1024 {
		body = body[:1024]
	}
	return &HTTPError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
	}
}

func parseCandles(result chartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Open) || q.Open[i] == nil || i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *q.Open[i],
			Close:     *q.Close[i],
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
