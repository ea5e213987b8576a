package quotes

import (
	"fmt"
	"net/url"
	"time"
)

// Default endpoints, overridable through the api settings table.
const (
	DefaultYahooBase = "https://query1.finance.yahoo.com/v7/finance/download/"
	DefaultStockURL  = "https://finnhub.io/api/v1/quote?symbol="
	DefaultNasdaqURL = "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt"
	DefaultNYSEURL   = "https://www.nasdaqtrader.com/dynamic/SymDir/otherlisted.txt"

	// IntradayPeriod is enough daily history to find the previous close
	// across weekends and holidays.
	IntradayPeriod = 7 * 24 * time.Hour
	// RSIHistoryPeriod covers a year of trading days.
	RSIHistoryPeriod = 366 * 24 * time.Hour

	tokenParam = "token"
)

// HistoryURL returns the Yahoo daily history download URL for symbol
// covering [now-period, now]. Times are truncated to whole seconds.
func HistoryURL(base, symbol string, period time.Duration, now time.Time) string {
	if base == "" {
		base = DefaultYahooBase
	}
	end := now.Unix()
	start := end - int64(period/time.Second)
	return fmt.Sprintf("%s%s?period1=%d&period2=%d&interval=1d&events=history&includeAdjustedClose=true",
		base, url.PathEscape(symbol), start, end)
}

// EquityURL returns the quote URL for symbol: the stock URL, the symbol,
// then the API key as the token parameter.
func EquityURL(stockURL, key, symbol string) string {
	if stockURL == "" {
		stockURL = DefaultStockURL
	}
	return stockURL + url.QueryEscape(symbol) + "&" + tokenParam + "=" + url.QueryEscape(key)
}

// redact hides the API key in URLs that end up in errors and logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get(tokenParam) == "" {
		return raw
	}
	q.Set(tokenParam, "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
