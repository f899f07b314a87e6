package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"StockLens/internal/analyzer"
	"StockLens/internal/collector"
	"StockLens/internal/export"
	"StockLens/internal/model"
	"StockLens/internal/universe"
)

var (
	// TitleStyle is used for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// ErrorStyle is used for failures.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	signalStyles = map[model.Signal]lipgloss.Style{
		model.SignalBuy:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		model.SignalSell: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		model.SignalHold: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

// resolveTickers merges --tickers with the configured watchlist fallback.
func resolveTickers(flagTickers, watchlist []string, max int) ([]string, string, error) {
	src := flagTickers
	if len(universe.SplitList(strings.Join(src, ","))) == 0 {
		src = watchlist
	}
	tickers, warning := universe.Merge(universe.SplitList(strings.Join(src, ",")), nil, max)
	if len(tickers) == 0 {
		return nil, "", fmt.Errorf("select or enter at least one ticker")
	}
	return tickers, warning, nil
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()

	period, err := collector.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}
	tickers, warning, err := resolveTickers(cmd.StringSlice("tickers"), a.cfg.Scan.Watchlist, a.cfg.Scan.MaxTickers)
	if err != nil {
		return err
	}
	if warning != "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(warning))
	}

	printReport(os.Stdout, a.analyzer.AnalyzeAll(ctx, tickers, period))
	return nil
}

// printReport writes one colored line per ticker followed by the summary.
func printReport(w io.Writer, r *analyzer.Report) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Recommendations (%s)", r.Period)))
	for _, an := range r.Analyses {
		fmt.Fprintln(w, signalStyles[an.Recommendation].Render(an.Line()))
	}
	for _, f := range r.Failures {
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%s: %s", f.Symbol, f.Error)))
	}
	fmt.Fprintf(w, "\n%s BUY %d | SELL %d | HOLD %d\n",
		TitleStyle.Render("Summary:"), r.Summary.Buy, r.Summary.Sell, r.Summary.Hold)
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()

	period, err := collector.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}
	tickers, _, err := resolveTickers(cmd.StringSlice("tickers"), a.cfg.Scan.Watchlist, a.cfg.Scan.MaxTickers)
	if err != nil {
		return err
	}
	out := cmd.String("out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	bar := progressbar.NewOptions(len(tickers),
		progressbar.OptionSetDescription(fmt.Sprintf("Exporting %s", period)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr))

	analyses := make([]*model.Analysis, 0, len(tickers))
	var failed int
	for _, sym := range tickers {
		an, err := a.analyzer.AnalyzeOne(ctx, sym, period)
		_ = bar.Add(1)
		if err != nil {
			failed++
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(fmt.Sprintf("\n%s: %v", sym, err)))
			continue
		}
		analyses = append(analyses, an)
	}
	_ = bar.Finish()

	paths, err := export.WriteDir(out, analyses)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, p := range paths {
		fmt.Println(p)
	}
	if failed == len(tickers) {
		return fmt.Errorf("no tickers exported")
	}
	return nil
}
