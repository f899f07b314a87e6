package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"StockLens/internal/collector"
	"StockLens/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	tickerFlags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "tickers",
			Aliases: []string{"t"},
			Usage:   "Ticker symbols, comma separated (defaults to the configured watchlist)",
		},
		&cli.StringFlag{
			Name:    "period",
			Aliases: []string{"p"},
			Usage:   "Lookback period (1mo, 3mo, 6mo, 1y)",
			Value:   string(collector.DefaultPeriod),
		},
	}

	return &cli.Command{
		Name:  "stocklens",
		Usage: "Stock indicator dashboard with SMA/RSI signals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Value:   config.DefaultPath,
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the dashboard, the scheduled scan and the Telegram bot",
				Action: serveAction,
			},
			{
				Name:   "analyze",
				Usage:  "Print recommendations for a ticker list",
				Flags:  tickerFlags,
				Action: analyzeAction,
			},
			{
				Name:  "export",
				Usage: "Write one CSV per ticker with Date, Close, SMA20 and RSI",
				Flags: append(tickerFlags, &cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "Output `DIR`",
					Value:   ".",
				}),
				Action: exportAction,
			},
		},
	}
}
