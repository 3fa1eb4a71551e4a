// Package normalize flattens Yahoo quoteSummary bundles into the stable
// StockDetail schema served to the frontend.
package normalize

import (
	"github.com/seenimoa/stockgate/internal/yahoo"
	"github.com/seenimoa/stockgate/pkg/models"
)

// NotAvailable is the default for descriptive text fields with no source value.
const NotAvailable = "N/A"

// StockDetail maps a quoteSummary bundle onto the flat output record.
//
// Each output field consults its sources in priority order and takes the
// first present value; when every source is absent the field keeps its
// declared default (nil for numbers, "N/A" for text, the requested symbol
// for the symbol/name fields). The function is total: a nil bundle or
// missing sub-sections only produce defaults, never a failure.
func StockDetail(symbol string, b *yahoo.Bundle) models.StockDetail {
	if b == nil {
		b = &yahoo.Bundle{}
	}
	ap := b.AssetProfile
	if ap == nil {
		ap = &yahoo.AssetProfile{}
	}
	pr := b.Price
	if pr == nil {
		pr = &yahoo.Price{}
	}
	sd := b.SummaryDetail
	if sd == nil {
		sd = &yahoo.SummaryDetail{}
	}
	ks := b.KeyStatistics
	if ks == nil {
		ks = &yahoo.KeyStatistics{}
	}
	fd := b.FinancialData
	if fd == nil {
		fd = &yahoo.FinancialData{}
	}

	return models.StockDetail{
		Symbol:   text(symbol, pr.Symbol),
		Name:     text(symbol, pr.LongName, pr.ShortName),
		Sector:   text(NotAvailable, ap.Sector),
		Industry: text(NotAvailable, ap.Industry),
		Website:  text(NotAvailable, ap.Website),
		Country:  text(NotAvailable, ap.Country),
		Currency: text(NotAvailable, pr.Currency),

		Price:         num(pr.RegularMarketPrice, fd.CurrentPrice),
		Change:        num(pr.RegularMarketChange),
		ChangePercent: num(pr.RegularMarketChangePercent),
		PreviousClose: num(sd.PreviousClose, pr.RegularMarketPreviousClose),
		Volume:        num(sd.Volume, pr.RegularMarketVolume),
		AverageVolume: num(sd.AverageVolume),
		MarketCap:     num(pr.MarketCap, sd.MarketCap),

		TrailingPE: num(sd.TrailingPE),
		// Key statistics take priority over summary detail for forward P/E.
		ForwardPE:        num(ks.ForwardPE, sd.ForwardPE),
		PegRatio:         num(ks.PegRatio),
		PriceToBook:      num(ks.PriceToBook),
		PriceToSales:     num(sd.PriceToSalesTrailing12Months),
		EPS:              num(ks.TrailingEps),
		Beta:             num(ks.Beta, sd.Beta),
		FiftyTwoWeekHigh: num(sd.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  num(sd.FiftyTwoWeekLow),

		DividendYield: num(sd.DividendYield),
		PayoutRatio:   num(sd.PayoutRatio),

		ProfitMargin:    num(fd.ProfitMargins, ks.ProfitMargins),
		GrossMargin:     num(fd.GrossMargins),
		OperatingMargin: num(fd.OperatingMargins),
		EbitdaMargin:    num(fd.EbitdaMargins),
		ReturnOnEquity:  num(fd.ReturnOnEquity),
		ReturnOnAssets:  num(fd.ReturnOnAssets),

		Revenue:        num(fd.TotalRevenue),
		RevenueGrowth:  num(fd.RevenueGrowth),
		EarningsGrowth: num(fd.EarningsGrowth),

		TotalCash:         num(fd.TotalCash),
		TotalDebt:         num(fd.TotalDebt),
		DebtToEquity:      num(fd.DebtToEquity),
		CurrentRatio:      num(fd.CurrentRatio),
		QuickRatio:        num(fd.QuickRatio),
		FreeCashflow:      num(fd.FreeCashflow),
		OperatingCashflow: num(fd.OperatingCashflow),

		TargetMeanPrice:   num(fd.TargetMeanPrice),
		RecommendationKey: text(NotAvailable, fd.RecommendationKey),
	}
}

// num returns the first source with a present raw value, or nil.
func num(sources ...yahoo.Num) *float64 {
	for _, s := range sources {
		if v := s.Value(); v != nil {
			return v
		}
	}
	return nil
}

// text returns the first non-empty candidate, or the default.
func text(def string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return def
}
