package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// StreamCandles opens one websocket for a symbol/interval pair and returns a
// stream of closed candles. The goroutine owns the reconnect loop; the
// channel closes on ctx cancellation or when the retry budget runs out.
func (c *Client) StreamCandles(ctx context.Context, symbol, interval string) <-chan models.Candle {
	ch := make(chan models.Candle)

	go func() {
		defer close(ch)

		url := c.streamURL(symbol, interval)
		backoffWait := time.Second
		failures := 0

		for {
			logger.Info("[WS] connect %s", url)
			conn, _, err := c.wsDialer.DialContext(ctx, url, nil)
			if err != nil {
				failures++
				if failures >= c.maxRetries {
					logger.Error("[WS] giving up after %d failed connects: %v", failures, err)
					if c.OnFatal != nil {
						c.OnFatal(fmt.Errorf("feed reconnect exhausted: %w", err))
					}
					return
				}
				logger.Error("[WS] dial error (%d/%d), retry in %s: %v", failures, c.maxRetries, backoffWait, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoffWait):
				}
				backoffWait *= 2
				if backoffWait > time.Minute {
					backoffWait = time.Minute
				}
				continue
			}

			// successful connect resets the budget
			failures = 0
			backoffWait = time.Second
			c.connected.Store(true)

			// keepalive ping so the exchange doesn't drop idle connections
			stopPing := make(chan struct{})
			go func() {
				defer close(stopPing)
				t := time.NewTicker(20 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-stopPing:
						return
					case <-t.C:
						_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					logger.Error("[WS] read error: %v", err)
					_ = conn.Close()
					c.connected.Store(false)
					break
				}

				candle, ok := parseKlineFrame(symbol, interval, msg)
				if !ok {
					continue
				}
				c.lastTick.Store(time.Now().Unix())

				select {
				case ch <- candle:
				case <-ctx.Done():
					_ = conn.Close()
					c.connected.Store(false)
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(time.Second)
			}
		}
	}()

	return ch
}

// parseKlineFrame keeps only closed candles ("x": true).
func parseKlineFrame(symbol, interval string, msg []byte) (models.Candle, bool) {
	var frame struct {
		EventType string `json:"e"`
		Kline     struct {
			StartMs int64  `json:"t"`
			EndMs   int64  `json:"T"`
			Open    string `json:"o"`
			High    string `json:"h"`
			Low     string `json:"l"`
			Close   string `json:"c"`
			Volume  string `json:"v"`
			Closed  bool   `json:"x"`
		} `json:"k"`
	}
	if err := sonic.Unmarshal(msg, &frame); err != nil {
		return models.Candle{}, false
	}
	if frame.EventType != "kline" || !frame.Kline.Closed {
		return models.Candle{}, false
	}

	open, err1 := strconv.ParseFloat(frame.Kline.Open, 64)
	high, err2 := strconv.ParseFloat(frame.Kline.High, 64)
	low, err3 := strconv.ParseFloat(frame.Kline.Low, 64)
	closep, err4 := strconv.ParseFloat(frame.Kline.Close, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.Candle{}, false
	}
	if closep <= 0 {
		return models.Candle{}, false
	}
	vol, _ := strconv.ParseFloat(frame.Kline.Volume, 64)

	return models.Candle{
		Symbol:   symbol,
		Interval: interval,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closep,
		Volume:   vol,
		Start:    time.UnixMilli(frame.Kline.StartMs),
		End:      time.UnixMilli(frame.Kline.EndMs),
	}, true
}
