// Package metrics exposes Prometheus metrics and a health endpoint for
// the trading session.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading engine.
type Metrics struct {
	TicksTotal     prometheus.Counter
	DroppedTicks   prometheus.Counter
	FeedReconnects prometheus.Counter

	AnalysisCycles   prometheus.Counter
	ScoresComputed   prometheus.Counter
	OpportunityGauge *prometheus.GaugeVec // labels: symbol

	TradesTotal    *prometheus.CounterVec // labels: action
	TradesRejected *prometheus.CounterVec // labels: reason
	CoinSwitches   prometheus.Counter

	PortfolioValue prometheus.Gauge
	CashBalance    prometheus.Gauge
}

// New registers and returns all metrics on a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traider_ticks_total",
			Help: "Total ticks received from the market data feed",
		}),
		DroppedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traider_dropped_ticks_total",
			Help: "Ticks dropped because the ingest channel was full",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traider_feed_reconnects_total",
			Help: "Feed reconnection attempts",
		}),
		AnalysisCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traider_analysis_cycles_total",
			Help: "Completed analysis cycles",
		}),
		ScoresComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traider_scores_computed_total",
			Help: "Opportunity scores computed",
		}),
		OpportunityGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "traider_opportunity_score",
			Help: "Latest opportunity score per pair",
		}, []string{"symbol"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traider_trades_total",
			Help: "Executed trades by action",
		}, []string{"action"}),
		TradesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traider_trades_rejected_total",
			Help: "Trades rejected by risk rules, by reason",
		}, []string{"reason"}),
		CoinSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traider_coin_switches_total",
			Help: "Active pair switches in multi-coin mode",
		}),
		PortfolioValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traider_portfolio_value",
			Help: "Total portfolio value (cash + positions)",
		}),
		CashBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traider_cash_balance",
			Help: "Available cash balance",
		}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.DroppedTicks,
		m.FeedReconnects,
		m.AnalysisCycles,
		m.ScoresComputed,
		m.OpportunityGauge,
		m.TradesTotal,
		m.TradesRejected,
		m.CoinSwitches,
		m.PortfolioValue,
		m.CashBalance,
	)
	return m
}

// HealthStatus represents the session health.
type HealthStatus struct {
	mu sync.RWMutex

	FeedConnected bool      `json:"feed_connected"`
	LastTickTime  time.Time `json:"last_tick_time"`
	StartedAt     time.Time `json:"started_at"`
}

func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetFeedConnected(v bool) {
	h.mu.Lock()
	h.FeedConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.FeedConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	body := struct {
		Status        string `json:"status"`
		Uptime        string `json:"uptime"`
		FeedConnected bool   `json:"feed_connected"`
		TickAge       string `json:"tick_age"`
	}{
		Status:        status,
		Uptime:        time.Since(h.StartedAt).Round(time.Second).String(),
		FeedConnected: h.FeedConnected,
		TickAge:       tickAge,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(body)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, gatherer prometheus.Gatherer, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", health.ServeHTTP)
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("metrics | server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("metrics | server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
