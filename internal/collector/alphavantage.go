package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

const (
	alphaVantageBaseURL = "https://www.alphavantage.co/query"
	// Alpha Vantage outputsize options
	outputSizeCompact = "compact" // Returns the latest 100 data points
	outputSizeFull    = "full"    // Returns up to 20+ years of historical data
	// Threshold for when to use full output size
	compactOutputSizeLimit = 100
)

// AlphaVantageFetcher implements Fetcher using the TIME_SERIES_DAILY endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
}

// NewAlphaVantageFetcher creates a new Alpha Vantage fetcher.
func NewAlphaVantageFetcher(apiKey, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
		Now:     time.Now,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// alphaVantageResponse represents the response from the Alpha Vantage API.
// Errors and rate limits come back as 200 with a note instead of a series.
type alphaVantageResponse struct {
	TimeSeries   map[string]alphaVantageDaily `json:"Time Series (Daily)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

type alphaVantageDaily struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, period Period) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Add("apikey", f.APIKey)
	params.Add("function", "TIME_SERIES_DAILY")
	params.Add("symbol", symbol)
	if period.TradingDays() > compactOutputSizeLimit {
		params.Add("outputsize", outputSizeFull)
	} else {
		params.Add("outputsize", outputSizeCompact)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if result.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage %s: %s: %w", symbol, result.ErrorMessage, ErrNoData)
	}
	if result.Note != "" || result.Information != "" {
		return nil, fmt.Errorf("alphavantage api error: %s%s", result.Note, result.Information)
	}
	if len(result.TimeSeries) == 0 {
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(result.TimeSeries))
	for date, daily := range result.TimeSeries {
		bar, err := parseAlphaVantageBar(date, daily)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	bars = trimToPeriod(bars, period, f.Now())
	if len(bars) == 0 {
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

func parseAlphaVantageBar(date string, daily alphaVantageDaily) (model.OHLCV, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("error parsing date %q: %w", date, err)
	}
	fields := []struct {
		name string
		raw  string
	}{
		{"open", daily.Open}, {"high", daily.High}, {"low", daily.Low},
		{"close", daily.Close}, {"volume", daily.Volume},
	}
	vals := make([]float64, len(fields))
	for i, fld := range fields {
		d, err := decimal.NewFromString(fld.raw)
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("error parsing %s price for date %s: %w", fld.name, date, err)
		}
		vals[i] = d.InexactFloat64()
	}
	return model.OHLCV{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
