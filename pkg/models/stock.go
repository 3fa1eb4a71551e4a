// Package models defines the core data structures used throughout Stockgate.
package models

import "time"

// StockDetail is the flat stock record served to the frontend.
//
// Every field key is always present in the JSON output. Numeric fields are
// pointers so that a missing upstream value serializes as null; descriptive
// text fields fall back to "N/A".
type StockDetail struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
	Country  string `json:"country"`
	Currency string `json:"currency"`

	// Market price
	Price         *float64 `json:"price"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"changePercent"`
	PreviousClose *float64 `json:"previousClose"`
	Volume        *float64 `json:"volume"`
	AverageVolume *float64 `json:"averageVolume"`
	MarketCap     *float64 `json:"marketCap"`

	// Valuation
	TrailingPE       *float64 `json:"trailingPE"`
	ForwardPE        *float64 `json:"forwardPE"`
	PegRatio         *float64 `json:"pegRatio"`
	PriceToBook      *float64 `json:"priceToBook"`
	PriceToSales     *float64 `json:"priceToSales"`
	EPS              *float64 `json:"eps"`
	Beta             *float64 `json:"beta"`
	FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow"`

	// Dividends
	DividendYield *float64 `json:"dividendYield"`
	PayoutRatio   *float64 `json:"payoutRatio"`

	// Margins & returns
	ProfitMargin    *float64 `json:"profitMargin"`
	GrossMargin     *float64 `json:"grossMargin"`
	OperatingMargin *float64 `json:"operatingMargin"`
	EbitdaMargin    *float64 `json:"ebitdaMargin"`
	ReturnOnEquity  *float64 `json:"returnOnEquity"`
	ReturnOnAssets  *float64 `json:"returnOnAssets"`

	// Income & growth
	Revenue        *float64 `json:"revenue"`
	RevenueGrowth  *float64 `json:"revenueGrowth"`
	EarningsGrowth *float64 `json:"earningsGrowth"`

	// Balance sheet & cash flow
	TotalCash         *float64 `json:"totalCash"`
	TotalDebt         *float64 `json:"totalDebt"`
	DebtToEquity      *float64 `json:"debtToEquity"`
	CurrentRatio      *float64 `json:"currentRatio"`
	QuickRatio        *float64 `json:"quickRatio"`
	FreeCashflow      *float64 `json:"freeCashflow"`
	OperatingCashflow *float64 `json:"operatingCashflow"`

	// Analyst view
	TargetMeanPrice   *float64 `json:"targetMeanPrice"`
	RecommendationKey string   `json:"recommendationKey"`
}

// MarketIndexQuote is one market index entry in the overview response.
// Error marks a failed per-symbol fetch; the metric fields stay null.
type MarketIndexQuote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"changePercent"`
	Error         bool     `json:"error,omitempty"`
}

// MarketIndices lists the index symbols served by the market overview,
// in response order.
var MarketIndices = []string{"^GSPC", "^IXIC", "^DJI"}

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// NewsArticle represents a single headline from the news feed.
type NewsArticle struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
