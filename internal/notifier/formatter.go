package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockLens/internal/model"
)

var signalIcons = map[model.Signal]string{
	model.SignalBuy:  "🟢",
	model.SignalSell: "🔴",
	model.SignalHold: "🔵",
}

// FormatScanReport formats a watchlist scan: recommendations grouped BUY,
// SELL then HOLD, failed tickers, and the summary counts.
func FormatScanReport(ts time.Time, analyses []*model.Analysis, failed []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockLens scan</b> | %s\n\n", ts.Format("2006-01-02 15:04")))

	var summary model.Summary
	for _, sig := range []model.Signal{model.SignalBuy, model.SignalSell, model.SignalHold} {
		for _, a := range analyses {
			if a.Recommendation != sig {
				continue
			}
			summary.Add(sig)
			b.WriteString(fmt.Sprintf("%s %s\n", signalIcons[sig], html.EscapeString(a.Line())))
		}
	}
	if len(analyses) == 0 {
		b.WriteString("No tickers analyzed.\n")
	}

	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Failed: %s\n", html.EscapeString(strings.Join(failed, ", "))))
	}

	b.WriteString(fmt.Sprintf("\n<b>Summary:</b> BUY %d | SELL %d | HOLD %d", summary.Buy, summary.Sell, summary.Hold))
	return b.String()
}

// FormatAnalysis formats one ticker's indicators for a /signal reply.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> %s (%s)\n\n",
		signalIcons[a.Recommendation], html.EscapeString(a.Symbol), a.Recommendation, a.Period))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", a.LatestClose))
	b.WriteString(fmt.Sprintf("%s: %s (%s)\n", a.SMA.Name, model.FormatValue(a.LatestSMA), a.SMASignal))
	b.WriteString(fmt.Sprintf("%s: %s (%s)\n", a.RSI.Name, model.FormatValue(a.LatestRSI), a.RSISignal))
	b.WriteString(fmt.Sprintf("BB: %s / %s\n",
		model.FormatValue(a.BBLower.Latest()), model.FormatValue(a.BBUpper.Latest())))
	if a.PeriodHigh > 0 {
		b.WriteString(fmt.Sprintf("Range: %.2f - %.2f (position %.0f%%)\n",
			a.PeriodLow, a.PeriodHigh, a.RangePosition*100))
	}
	return b.String()
}
