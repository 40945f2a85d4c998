package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"traider/internal/config"
	"traider/internal/engine"
	"traider/internal/feed"
	"traider/internal/indicator"
	"traider/internal/journal"
	"traider/internal/market"
	"traider/internal/metrics"
	"traider/internal/notifier"
	"traider/internal/portfolio"
	"traider/internal/scorer"
	"traider/internal/window"
)

func main() {
	cfg := config.MustLoad()
	log.Println("Starting Traider in mode:", cfg.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	symbols := market.FilterTradable(cfg.Symbols)
	if len(symbols) == 0 {
		log.Fatalf("No tradable symbols after filtering. Check your configuration.")
	}
	log.Printf("Monitoring %d trading pairs (stablecoins excluded)", len(symbols))

	mode := portfolio.SingleCoin
	if cfg.Mode == "multi" {
		mode = portfolio.MultiCoin
	}
	pf, err := portfolio.New(decimal.NewFromFloat(cfg.InitialBalance), mode, portfolio.DefaultParams())
	if err != nil {
		log.Fatalf("Failed to create portfolio: %v", err)
	}

	var nt notifier.Notifier = notifier.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		nt = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID,
			cfg.NotificationRetries, cfg.NotificationDelay)
	}

	var mt *metrics.Metrics
	var health *metrics.HealthStatus
	var srv *metrics.Server
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		mt = metrics.New(registry)
		health = metrics.NewHealthStatus()
		srv = metrics.NewServer(cfg.MetricsAddr, registry, health)
		srv.Start()
	}

	f, err := buildFeed(cfg, mt, health)
	if err != nil {
		log.Fatalf("Failed to create feed: %v", err)
	}

	eng := engine.New(
		engine.Config{
			Symbols:          symbols,
			AnalysisInterval: cfg.AnalysisInterval,
			TradingInterval:  cfg.TradingInterval,
			SwitchMargin:     cfg.SwitchMargin,
			StaleAfter:       cfg.StaleAfter,
		},
		indicator.DefaultParams(),
		f,
		window.NewStore(cfg.WindowSize),
		scorer.New(scorer.DefaultParams()),
		pf,
		journal.NewMemory(),
		nt,
		mt,
		health,
	)

	if err := eng.Run(ctx); err != nil {
		log.Fatalf("Engine stopped with error: %v", err)
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		srv.Stop(shutdownCtx)
		shutdownCancel()
	}

	summary := eng.Summary()
	printSummary(summary)
	if err := nt.Send(fmt.Sprintf("Session over: %d trades, net pnl %s, ending value %s",
		summary.TotalTrades, summary.NetPnL.StringFixed(2), summary.EndingValue.StringFixed(2))); err != nil {
		log.Printf("Failed to send session summary: %v", err)
	}
}

// buildFeed wires the configured market data source.
func buildFeed(cfg config.Config, mt *metrics.Metrics, health *metrics.HealthStatus) (feed.Feed, error) {
	switch cfg.Feed {
	case "replay":
		// An empty replay feed: windows fill only from seeded history.
		// Useful for dry runs of the decision loops.
		return &feed.Replay{Interval: cfg.TradingInterval}, nil
	default:
		ws, err := feed.NewWS(feed.WSConfig{URL: cfg.FeedURL, HistoryURL: cfg.HistoryURL})
		if err != nil {
			return nil, err
		}
		if health != nil {
			ws.OnConnect = func() { health.SetFeedConnected(true) }
			ws.OnReconnect = func() {
				health.SetFeedConnected(false)
				if mt != nil {
					mt.FeedReconnects.Inc()
				}
			}
		}
		if mt != nil {
			ws.OnDrop = func() { mt.DroppedTicks.Inc() }
		}
		return ws, nil
	}
}

func printSummary(s portfolio.Summary) {
	log.Println("==================================================")
	log.Println("               TRADING SESSION SUMMARY")
	log.Println("==================================================")
	log.Printf("Session Duration: %s", s.Duration.Round(time.Second))
	log.Printf("Total Trades: %d", s.TotalTrades)
	if s.TotalTrades > 0 {
		log.Printf("Profitable Sells: %d (win rate %.2f%%)", s.WinningSells, s.WinRate)
	}
	log.Printf("Net Realized PnL: %s", s.NetPnL.StringFixed(2))
	log.Printf("Ending Portfolio Value: %s", s.EndingValue.StringFixed(2))
}
