// Package ratestream maintains live per-lane air freight spot rates from a
// WebSocket feed. The latest rate per lane is kept in memory; consumers fall
// back to static tariffs when a lane has no rate yet.
package ratestream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	drepo "ShipQuote/internal/domain/repository"
	applogger "ShipQuote/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a RateSource backed by a WebSocket rate feed.
type Client struct {
	apiKey         string
	websocketURL   string
	lanes          []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *applogger.Logger

	connMu    sync.Mutex
	conn      *websocket.Conn
	connected bool

	mu    sync.RWMutex
	rates map[string]float64
}

var _ drepo.RateSource = (*Client)(nil)

// New creates a rate stream client for the configured lanes.
func New(apiKey, websocketURL string, lanes []string, reconnectDelay, pingInterval time.Duration, logger *applogger.Logger) *Client {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		lanes:          lanes,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         logger,
		rates:          make(map[string]float64),
	}
}

// LatestRate returns the last seen per-kg spot rate for a lane.
func (c *Client) LatestRate(lane string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[lane]
	return rate, ok
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("ratestream connect: %w", err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connected = true
	c.connMu.Unlock()
	c.logger.Info("rate stream connected")
	return nil
}

// currentConn snapshots the active connection, if any.
func (c *Client) currentConn() *websocket.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if !c.connected {
		return nil
	}
	return c.conn
}

// Subscribe subscribes to the configured lanes.
func (c *Client) Subscribe(ctx context.Context) error {
	conn := c.currentConn()
	if conn == nil {
		return fmt.Errorf("ratestream not connected")
	}
	for _, lane := range c.lanes {
		msg := map[string]string{"type": "subscribe", "lane": lane}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", lane, err)
		}
		c.logger.Debug("rate stream subscribed", applogger.String("lane", lane))
	}
	return nil
}

type rateUpdate struct {
	Lane  string  `json:"lane"`
	PerKg float64 `json:"perKg"`
	TS    int64   `json:"ts"` // ms
}

type rateMessage struct {
	Type string       `json:"type"`
	Data []rateUpdate `json:"data"`
}

// Run drives the connect/subscribe/read loop until the context is cancelled,
// reconnecting after read failures.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.Connect(ctx); err != nil {
			c.logger.Warn("rate stream connect failed", applogger.Error(err))
		} else if err := c.Subscribe(ctx); err != nil {
			c.logger.Warn("rate stream subscribe failed", applogger.Error(err))
			_ = c.Close()
		} else {
			c.readLoop(ctx)
		}

		select {
		case <-ctx.Done():
			_ = c.Close()
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) readLoop(ctx context.Context) {
	conn := c.currentConn()
	if conn == nil {
		return
	}

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go c.pingLoop(pingCtx, conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("rate stream read failed", applogger.Error(err))
			}
			_ = c.Close()
			return
		}
		c.apply(b)
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

// apply folds one frame into the rate table. Non-rate frames are ignored.
func (c *Client) apply(b []byte) {
	var m rateMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	if m.Type != "rate" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range m.Data {
		if u.Lane == "" || u.PerKg <= 0 {
			continue
		}
		c.rates[u.Lane] = u.PerKg
	}
}

// Close closes the WebSocket connection.
func (c *Client) Close() error {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.connMu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connected
}
