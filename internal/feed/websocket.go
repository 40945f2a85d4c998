package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"traider/internal/market"
	"traider/internal/utils"
)

// WSConfig holds configuration for the WebSocket feed.
type WSConfig struct {
	// URL of the tick WebSocket server, e.g. "ws://localhost:9001/ws"
	URL string

	// HistoryURL is the REST endpoint serving OHLCV history as JSON,
	// queried as HistoryURL?symbol=BTC%2FUSDT.
	HistoryURL string

	// ReconnectDelay is the initial delay before reconnection attempts.
	// Defaults to 2 seconds if zero.
	ReconnectDelay time.Duration

	// MaxReconnectDelay caps the exponential backoff. Defaults to 30s.
	MaxReconnectDelay time.Duration
}

func (c *WSConfig) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// WS streams JSON ticks from a WebSocket server. The wire format matches
// market.Tick. Reconnects automatically with exponential backoff.
type WS struct {
	cfg    WSConfig
	client *http.Client

	// Optional hooks for connection state and backpressure, used by the
	// metrics layer.
	OnConnect   func()
	OnReconnect func()
	OnDrop      func()
}

// NewWS creates a WebSocket feed. Returns an error if the URL is
// unparseable.
func NewWS(cfg WSConfig) (*WS, error) {
	cfg.defaults()
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, err
	}
	return &WS{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}}, nil
}

// Start connects and streams ticks into tickCh. Blocks until ctx is
// cancelled. A full channel drops the tick rather than stalling the read
// loop.
func (f *WS) Start(ctx context.Context, tickCh chan<- market.Tick) error {
	delay := f.cfg.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := f.runOnce(ctx, tickCh)
		if err == nil {
			return nil
		}

		utils.GetLogger().Printf("Feed | disconnected (%v), reconnecting in %s...", err, delay)
		if f.OnReconnect != nil {
			f.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > f.cfg.MaxReconnectDelay {
			delay = f.cfg.MaxReconnectDelay
		}
	}
}

// runOnce makes a single connection attempt and reads until disconnect
// or ctx cancel.
func (f *WS) runOnce(ctx context.Context, tickCh chan<- market.Tick) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	utils.GetLogger().Printf("Feed | connected to %s", f.cfg.URL)
	if f.OnConnect != nil {
		f.OnConnect()
	}

	// The watcher must not outlive this connection; a drop on the read
	// side releases it through done.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			conn.Close()
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		var tick market.Tick
		if err := json.Unmarshal(raw, &tick); err != nil {
			utils.GetLogger().Printf("Feed | parse error: %v (raw: %s)", err, raw)
			continue
		}
		if err := tick.Validate(); err != nil {
			utils.GetLogger().Printf("Feed | skipping invalid tick: %v", err)
			continue
		}

		select {
		case tickCh <- tick:
		default:
			utils.GetLogger().Println("Feed | tick channel full, dropping tick")
			if f.OnDrop != nil {
				f.OnDrop()
			}
		}
	}
}

// History fetches OHLCV bars from the REST endpoint.
func (f *WS) History(ctx context.Context, symbol string) ([]market.Candle, error) {
	u := fmt.Sprintf("%s?symbol=%s", f.cfg.HistoryURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch history for %s: %s", symbol, resp.Status)
	}

	var candles []market.Candle
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, fmt.Errorf("decode history for %s: %w", symbol, err)
	}
	return candles, nil
}
