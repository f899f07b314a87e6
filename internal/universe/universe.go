// Package universe supplies the tickers a user can pick from.
package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	sp500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

	// DefaultMaxTickers caps how many tickers one analysis request may carry.
	DefaultMaxTickers = 10
	defaultListTTL    = 24 * time.Hour
)

// Fallback is served when the constituents table cannot be loaded.
var Fallback = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA"}

// Provider loads the S&P 500 constituents and caches them.
type Provider struct {
	URL    string
	Client *http.Client
	TTL    time.Duration
	Now    func() time.Time

	logger *zap.Logger

	mu        sync.Mutex
	tickers   []string
	fetchedAt time.Time
}

// NewProvider creates a Provider reading from Wikipedia.
func NewProvider(client *http.Client, logger *zap.Logger) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		URL:    sp500URL,
		Client: client,
		TTL:    defaultListTTL,
		Now:    time.Now,
		logger: logger,
	}
}

// SP500 returns the constituent symbols. On failure it returns a copy of
// Fallback and a non-empty warning; failures are not cached.
func (p *Provider) SP500(ctx context.Context) ([]string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tickers != nil && p.Now().Sub(p.fetchedAt) < p.TTL {
		return append([]string(nil), p.tickers...), ""
	}

	tickers, err := p.scrape(ctx)
	if err != nil {
		warning := fmt.Sprintf("could not fetch S&P 500 list (using fallback): %v", err)
		p.logger.Warn("sp500 list unavailable", zap.Error(err))
		return append([]string(nil), Fallback...), warning
	}

	p.tickers = tickers
	p.fetchedAt = p.Now()
	p.logger.Info("sp500 list loaded", zap.Int("count", len(tickers)))
	return append([]string(nil), tickers...), ""
}

func (p *Provider) scrape(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return parseSymbols(doc)
}

// parseSymbols reads the Symbol column of the first table in doc.
func parseSymbols(doc *goquery.Document) ([]string, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found")
	}

	col := -1
	table.Find("tr").First().Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.TrimSpace(th.Text()) == "Symbol" {
			col = i
			return false
		}
		return true
	})
	if col < 0 {
		return nil, fmt.Errorf("no Symbol column")
	}

	var tickers []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cell := tr.Find("td").Eq(col)
		if cell.Length() == 0 {
			return
		}
		if sym := strings.TrimSpace(cell.Text()); sym != "" {
			tickers = append(tickers, sym)
		}
	})
	if len(tickers) == 0 {
		return nil, fmt.Errorf("empty Symbol column")
	}
	return tickers, nil
}

// Merge combines custom and selected tickers into one request list. Entries
// are trimmed and upper-cased, empties dropped and duplicates removed keeping
// the first occurrence, custom tickers first. More than max entries are
// truncated and reported in the warning.
func Merge(custom, selected []string, max int) ([]string, string) {
	if max <= 0 {
		max = DefaultMaxTickers
	}
	seen := make(map[string]struct{}, len(custom)+len(selected))
	out := make([]string, 0, len(custom)+len(selected))
	for _, group := range [][]string{custom, selected} {
		for _, t := range group {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	if len(out) > max {
		return out[:max], fmt.Sprintf("maximum %d tickers allowed", max)
	}
	return out, ""
}

// SplitList splits a comma-separated ticker input.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
