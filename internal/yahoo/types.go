package yahoo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Num is an optional numeric value from a quoteSummary payload.
//
// Yahoo serializes most numeric leaves either as a bare number or as a
// {"raw": 1.23, "fmt": "1.23"} object depending on the module; both forms
// decode into the same Num. A missing or null field leaves Raw nil.
type Num struct {
	Raw *float64
	Fmt string
}

func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Raw *float64 `json:"raw"`
			Fmt string   `json:"fmt"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		n.Raw = obj.Raw
		n.Fmt = obj.Fmt
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	n.Raw = &f
	return nil
}

// Value returns the raw number, or nil when the field was absent upstream.
func (n Num) Value() *float64 { return n.Raw }

// Bundle is the multi-section payload of a quoteSummary lookup.
// Any sub-section may be nil when the upstream response omits its module.
type Bundle struct {
	AssetProfile  *AssetProfile  `json:"assetProfile"`
	Price         *Price         `json:"price"`
	SummaryDetail *SummaryDetail `json:"summaryDetail"`
	KeyStatistics *KeyStatistics `json:"defaultKeyStatistics"`
	FinancialData *FinancialData `json:"financialData"`
}

// AssetProfile holds company profile fields from the assetProfile module.
type AssetProfile struct {
	Sector              string `json:"sector"`
	Industry            string `json:"industry"`
	Website             string `json:"website"`
	Country             string `json:"country"`
	LongBusinessSummary string `json:"longBusinessSummary"`
	FullTimeEmployees   int    `json:"fullTimeEmployees"`
}

// Price holds the current market price fields from the price module.
type Price struct {
	Symbol                     string `json:"symbol"`
	ShortName                  string `json:"shortName"`
	LongName                   string `json:"longName"`
	Currency                   string `json:"currency"`
	ExchangeName               string `json:"exchangeName"`
	RegularMarketPrice         Num    `json:"regularMarketPrice"`
	RegularMarketChange        Num    `json:"regularMarketChange"`
	RegularMarketChangePercent Num    `json:"regularMarketChangePercent"`
	RegularMarketPreviousClose Num    `json:"regularMarketPreviousClose"`
	RegularMarketVolume        Num    `json:"regularMarketVolume"`
	MarketCap                  Num    `json:"marketCap"`
}

// SummaryDetail holds valuation and trading fields from the summaryDetail module.
type SummaryDetail struct {
	PreviousClose                Num `json:"previousClose"`
	Open                         Num `json:"open"`
	DayLow                       Num `json:"dayLow"`
	DayHigh                      Num `json:"dayHigh"`
	Volume                       Num `json:"volume"`
	AverageVolume                Num `json:"averageVolume"`
	MarketCap                    Num `json:"marketCap"`
	TrailingPE                   Num `json:"trailingPE"`
	ForwardPE                    Num `json:"forwardPE"`
	PriceToSalesTrailing12Months Num `json:"priceToSalesTrailing12Months"`
	Beta                         Num `json:"beta"`
	DividendYield                Num `json:"dividendYield"`
	PayoutRatio                  Num `json:"payoutRatio"`
	FiftyTwoWeekHigh             Num `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow              Num `json:"fiftyTwoWeekLow"`
}

// KeyStatistics holds fields from the defaultKeyStatistics module.
type KeyStatistics struct {
	ForwardPE       Num `json:"forwardPE"`
	PegRatio        Num `json:"pegRatio"`
	PriceToBook     Num `json:"priceToBook"`
	TrailingEps     Num `json:"trailingEps"`
	Beta            Num `json:"beta"`
	ProfitMargins   Num `json:"profitMargins"`
	EnterpriseValue Num `json:"enterpriseValue"`
}

// FinancialData holds fields from the financialData module.
type FinancialData struct {
	CurrentPrice      Num    `json:"currentPrice"`
	TotalRevenue      Num    `json:"totalRevenue"`
	RevenueGrowth     Num    `json:"revenueGrowth"`
	EarningsGrowth    Num    `json:"earningsGrowth"`
	GrossMargins      Num    `json:"grossMargins"`
	OperatingMargins  Num    `json:"operatingMargins"`
	ProfitMargins     Num    `json:"profitMargins"`
	EbitdaMargins     Num    `json:"ebitdaMargins"`
	ReturnOnEquity    Num    `json:"returnOnEquity"`
	ReturnOnAssets    Num    `json:"returnOnAssets"`
	TotalCash         Num    `json:"totalCash"`
	TotalDebt         Num    `json:"totalDebt"`
	DebtToEquity      Num    `json:"debtToEquity"`
	CurrentRatio      Num    `json:"currentRatio"`
	QuickRatio        Num    `json:"quickRatio"`
	FreeCashflow      Num    `json:"freeCashflow"`
	OperatingCashflow Num    `json:"operatingCashflow"`
	TargetMeanPrice   Num    `json:"targetMeanPrice"`
	RecommendationKey string `json:"recommendationKey"`
}

// QuoteResult is a single entry of a v7 quote lookup.
type QuoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
}

// APIError is the error object Yahoo embeds in its response envelopes.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s: %s", e.Code, e.Description)
}

// --- Response envelopes ---

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []*Bundle `json:"result"`
		Error  *APIError `json:"error"`
	} `json:"quoteSummary"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []QuoteResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"quoteResponse"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartOHLCV `json:"quote"`
	} `json:"indicators"`
}

type chartOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
