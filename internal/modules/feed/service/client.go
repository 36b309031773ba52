package service

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"hedge_bot/internal/modules/config"

	"github.com/gorilla/websocket"
)

// Client streams closed candles over a websocket. Reconnects are retried
// with exponential backoff up to MaxRetries; exhaustion is fatal for the
// process (OnFatal fires, stream channel closes).
type Client struct {
	cfg      *config.Config
	wsDialer *websocket.Dialer

	wsURL      string
	maxRetries int

	connected atomic.Bool
	lastTick  atomic.Int64 // unix seconds

	// OnFatal is invoked once when reconnect attempts are exhausted.
	OnFatal func(err error)
}

func NewClient(cfg *config.Config) *Client {
	retries := cfg.WSMaxRetries
	if retries <= 0 {
		retries = 10
	}
	return &Client{
		cfg:        cfg,
		wsDialer:   &websocket.Dialer{},
		wsURL:      cfg.Exchange.WSURL,
		maxRetries: retries,
	}
}

func (c *Client) Connected() bool { return c.connected.Load() }

func (c *Client) LastTick() time.Time {
	u := c.lastTick.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (c *Client) streamURL(symbol, interval string) string {
	return fmt.Sprintf("%s/%s@kline_%s", c.wsURL, strings.ToLower(symbol), interval)
}
