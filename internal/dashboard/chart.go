package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"StockLens/internal/model"
)

// gap is how echarts marks a missing line value.
const gap = "-"

func lineItems(s model.IndicatorSeries) []opts.LineData {
	items := make([]opts.LineData, len(s.Points))
	for i, p := range s.Points {
		if p.Value.IsNone() {
			items[i] = opts.LineData{Value: gap}
			continue
		}
		items[i] = opts.LineData{Value: p.Value.Unwrap()}
	}
	return items
}

func closeItems(bars []model.OHLCV) []opts.LineData {
	items := make([]opts.LineData, len(bars))
	for i, b := range bars {
		items[i] = opts.LineData{Value: b.Close}
	}
	return items
}

func dates(bars []model.OHLCV) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Time.Format("2006-01-02")
	}
	return out
}

func baseOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	}
}

// priceChart draws Close, the SMA and both Bollinger bands.
func priceChart(a *model.Analysis) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions(fmt.Sprintf("%s Price, SMA & Bollinger Bands", a.Symbol)),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}))...)

	line.SetXAxis(dates(a.Prices.Bars)).
		AddSeries("Close", closeItems(a.Prices.Bars),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "blue"})).
		AddSeries(strings.TrimPrefix(a.SMA.Name, "SMA")+"-SMA", lineItems(a.SMA),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "orange"})).
		AddSeries("BB Upper", lineItems(a.BBUpper),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "red", Type: "dotted"})).
		AddSeries("BB Lower", lineItems(a.BBLower),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "green", Type: "dotted"}))
	return line
}

// rsiChart draws the RSI with oversold and overbought reference lines.
func rsiChart(a *model.Analysis, oversold, overbought float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions(fmt.Sprintf("%s RSI (%s)", a.Symbol, strings.TrimPrefix(a.RSI.Name, "RSI"))),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}))...)

	line.SetXAxis(dates(a.Prices.Bars)).
		AddSeries("RSI", lineItems(a.RSI),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "purple"}),
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: fmt.Sprintf("Overbought (%g)", overbought), YAxis: overbought},
				opts.MarkLineNameYAxisItem{Name: fmt.Sprintf("Oversold (%g)", oversold), YAxis: oversold},
			),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Label: &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
			}))
	return line
}

// rsiHeatmap colors each ticker's latest RSI from red (oversold) to green (overbought).
func rsiHeatmap(analyses []*model.Analysis, period string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Market Heatmap (Last Close)", Subtitle: "RSI by ticker, " + period}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			InRange:    &opts.VisualMapInRange{Color: []string{"#d73027", "#fee08b", "#1a9850"}},
		}),
	)

	names := make([]string, len(analyses))
	items := make([]opts.BarData, len(analyses))
	for i, a := range analyses {
		names[i] = a.Symbol
		items[i] = opts.BarData{Name: a.Line(), Value: gap}
		if a.LatestRSI.IsSome() {
			items[i].Value = a.LatestRSI.Unwrap()
		}
	}
	bar.SetXAxis(names).AddSeries("RSI", items)
	return bar
}

// renderOverviewPage writes the heatmap page for a batch of analyses.
func renderOverviewPage(w io.Writer, analyses []*model.Analysis, period string) error {
	page := components.NewPage()
	page.SetPageTitle("Market Overview")
	page.AddCharts(rsiHeatmap(analyses, period))
	return page.Render(w)
}

// renderChartPage writes an HTML page with the price and RSI charts.
func renderChartPage(w io.Writer, a *model.Analysis, oversold, overbought float64) error {
	page := components.NewPage()
	page.SetPageTitle(fmt.Sprintf("%s Detailed Analysis", a.Symbol))
	page.AddCharts(priceChart(a), rsiChart(a, oversold, overbought))
	return page.Render(w)
}
