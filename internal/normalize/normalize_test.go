package normalize

import (
	"encoding/json"
	"testing"

	"github.com/seenimoa/stockgate/internal/yahoo"
)

func f(v float64) *float64 { return &v }

func nv(v float64) yahoo.Num { return yahoo.Num{Raw: f(v)} }

// ── Defaults ──

func TestStockDetailNilBundle(t *testing.T) {
	d := StockDetail("MSFT", nil)

	if d.Symbol != "MSFT" {
		t.Errorf("Symbol: got %q, want %q", d.Symbol, "MSFT")
	}
	if d.Name != "MSFT" {
		t.Errorf("Name: got %q, want symbol fallback %q", d.Name, "MSFT")
	}
	if d.Sector != NotAvailable {
		t.Errorf("Sector: got %q, want %q", d.Sector, NotAvailable)
	}
	if d.RecommendationKey != NotAvailable {
		t.Errorf("RecommendationKey: got %q, want %q", d.RecommendationKey, NotAvailable)
	}
	if d.Price != nil {
		t.Errorf("Price: got %v, want nil", *d.Price)
	}
	if d.ForwardPE != nil {
		t.Errorf("ForwardPE: got %v, want nil", *d.ForwardPE)
	}
}

// Every declared field key must be present in the JSON output even when
// the bundle is empty: numbers as null, text as "N/A".
func TestStockDetailEmptyBundleJSONKeys(t *testing.T) {
	d := StockDetail("TSLA", &yahoo.Bundle{})

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	numericKeys := []string{
		"price", "change", "changePercent", "previousClose", "volume",
		"averageVolume", "marketCap", "trailingPE", "forwardPE", "pegRatio",
		"priceToBook", "priceToSales", "eps", "beta", "fiftyTwoWeekHigh",
		"fiftyTwoWeekLow", "dividendYield", "payoutRatio", "profitMargin",
		"grossMargin", "operatingMargin", "ebitdaMargin", "returnOnEquity",
		"returnOnAssets", "revenue", "revenueGrowth", "earningsGrowth",
		"totalCash", "totalDebt", "debtToEquity", "currentRatio",
		"quickRatio", "freeCashflow", "operatingCashflow", "targetMeanPrice",
	}
	for _, k := range numericKeys {
		v, ok := out[k]
		if !ok {
			t.Errorf("key %q missing from output", k)
			continue
		}
		if v != nil {
			t.Errorf("key %q: got %v, want null", k, v)
		}
	}

	textKeys := []string{"sector", "industry", "website", "country", "currency", "recommendationKey"}
	for _, k := range textKeys {
		if out[k] != NotAvailable {
			t.Errorf("key %q: got %v, want %q", k, out[k], NotAvailable)
		}
	}

	if out["symbol"] != "TSLA" || out["name"] != "TSLA" {
		t.Errorf("symbol/name: got %v/%v, want TSLA/TSLA", out["symbol"], out["name"])
	}
}

// ── Fallback chains ──

func TestStockDetailForwardPEPriority(t *testing.T) {
	b := &yahoo.Bundle{
		KeyStatistics: &yahoo.KeyStatistics{ForwardPE: nv(26.4)},
		SummaryDetail: &yahoo.SummaryDetail{ForwardPE: nv(27.1)},
	}
	d := StockDetail("AAPL", b)

	if d.ForwardPE == nil || *d.ForwardPE != 26.4 {
		t.Fatalf("ForwardPE: got %v, want key-statistics value 26.4", d.ForwardPE)
	}
}

func TestStockDetailForwardPEFallsBackToSummaryDetail(t *testing.T) {
	b := &yahoo.Bundle{
		KeyStatistics: &yahoo.KeyStatistics{},
		SummaryDetail: &yahoo.SummaryDetail{ForwardPE: nv(27.1)},
	}
	d := StockDetail("AAPL", b)

	if d.ForwardPE == nil || *d.ForwardPE != 27.1 {
		t.Fatalf("ForwardPE: got %v, want summary-detail fallback 27.1", d.ForwardPE)
	}
}

func TestStockDetailNameFallback(t *testing.T) {
	tests := []struct {
		name  string
		price *yahoo.Price
		want  string
	}{
		{"long name wins", &yahoo.Price{LongName: "Apple Inc.", ShortName: "Apple"}, "Apple Inc."},
		{"short name next", &yahoo.Price{ShortName: "Apple"}, "Apple"},
		{"symbol last resort", &yahoo.Price{}, "AAPL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := StockDetail("AAPL", &yahoo.Bundle{Price: tt.price})
			if d.Name != tt.want {
				t.Errorf("Name: got %q, want %q", d.Name, tt.want)
			}
		})
	}
}

func TestStockDetailPriceFallsBackToFinancialData(t *testing.T) {
	b := &yahoo.Bundle{
		FinancialData: &yahoo.FinancialData{CurrentPrice: nv(189.84)},
	}
	d := StockDetail("AAPL", b)

	if d.Price == nil || *d.Price != 189.84 {
		t.Fatalf("Price: got %v, want financialData fallback 189.84", d.Price)
	}
}

func TestStockDetailMarketCapFallback(t *testing.T) {
	tests := []struct {
		name   string
		bundle *yahoo.Bundle
		want   float64
	}{
		{
			"price module wins",
			&yahoo.Bundle{
				Price:         &yahoo.Price{MarketCap: nv(100)},
				SummaryDetail: &yahoo.SummaryDetail{MarketCap: nv(200)},
			},
			100,
		},
		{
			"summary detail fallback",
			&yahoo.Bundle{
				SummaryDetail: &yahoo.SummaryDetail{MarketCap: nv(200)},
			},
			200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := StockDetail("AAPL", tt.bundle)
			if d.MarketCap == nil || *d.MarketCap != tt.want {
				t.Errorf("MarketCap: got %v, want %v", d.MarketCap, tt.want)
			}
		})
	}
}

func TestStockDetailProfitMarginFallback(t *testing.T) {
	b := &yahoo.Bundle{
		KeyStatistics: &yahoo.KeyStatistics{ProfitMargins: nv(0.25)},
	}
	d := StockDetail("AAPL", b)

	if d.ProfitMargin == nil || *d.ProfitMargin != 0.25 {
		t.Fatalf("ProfitMargin: got %v, want key-statistics fallback 0.25", d.ProfitMargin)
	}
}

// ── Full bundle decoded from a realistic quoteSummary fragment ──

func TestStockDetailFromDecodedBundle(t *testing.T) {
	raw := `{
		"assetProfile": {"sector": "Technology", "industry": "Consumer Electronics", "website": "https://www.apple.com", "country": "United States"},
		"price": {
			"symbol": "AAPL", "shortName": "Apple Inc.", "longName": "Apple Inc.", "currency": "USD",
			"regularMarketPrice": {"raw": 189.84, "fmt": "189.84"},
			"regularMarketChange": {"raw": 1.35, "fmt": "1.35"},
			"regularMarketChangePercent": {"raw": 0.0072, "fmt": "0.72%"},
			"marketCap": {"raw": 2950000000000, "fmt": "2.95T"}
		},
		"summaryDetail": {"trailingPE": {"raw": 29.5, "fmt": "29.50"}, "dividendYield": {"raw": 0.0055, "fmt": "0.55%"}},
		"defaultKeyStatistics": {"forwardPE": 26.4, "pegRatio": {"raw": 2.1, "fmt": "2.10"}},
		"financialData": {"recommendationKey": "buy", "targetMeanPrice": {"raw": 205.5, "fmt": "205.50"}}
	}`

	var b yahoo.Bundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal bundle: %v", err)
	}

	d := StockDetail("AAPL", &b)

	if d.Name != "Apple Inc." {
		t.Errorf("Name: got %q", d.Name)
	}
	if d.Sector != "Technology" {
		t.Errorf("Sector: got %q", d.Sector)
	}
	if d.Price == nil || *d.Price != 189.84 {
		t.Errorf("Price: got %v", d.Price)
	}
	if d.ChangePercent == nil || *d.ChangePercent != 0.0072 {
		t.Errorf("ChangePercent: got %v", d.ChangePercent)
	}
	// Bare-number and {raw,fmt} leaves decode identically.
	if d.ForwardPE == nil || *d.ForwardPE != 26.4 {
		t.Errorf("ForwardPE: got %v", d.ForwardPE)
	}
	if d.TrailingPE == nil || *d.TrailingPE != 29.5 {
		t.Errorf("TrailingPE: got %v", d.TrailingPE)
	}
	if d.RecommendationKey != "buy" {
		t.Errorf("RecommendationKey: got %q", d.RecommendationKey)
	}
	// Absent in every section: stays null.
	if d.TotalDebt != nil {
		t.Errorf("TotalDebt: got %v, want nil", *d.TotalDebt)
	}
}
