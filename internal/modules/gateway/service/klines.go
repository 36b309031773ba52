package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hedge_bot/internal/models"

	"github.com/bytedance/sonic"
)

// Klines fetches historical candles, oldest first. Rows come back as the
// usual string-array format: [ts, open, high, low, close, volume].
func (c *Client) Klines(
	ctx context.Context,
	symbol, interval string,
	start, end time.Time,
	limit int,
) ([]models.Candle, error) {
	var out []models.Candle

	requestPath := fmt.Sprintf(
		"/api/v1/market/klines?symbol=%s&interval=%s&start=%d&end=%d&limit=%d",
		url.QueryEscape(symbol), url.QueryEscape(interval),
		start.UnixMilli(), end.UnixMilli(), limit,
	)

	err := c.withRetry(ctx, "klines", func() error {
		resp, err := c.http.Do(c.generateRequest(ctx, http.MethodGet, requestPath, ""))
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
		}

		var r struct {
			Code string     `json:"code"`
			Msg  string     `json:"msg"`
			Data [][]string `json:"data"`
		}
		if err := sonic.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode: %w; body=%s", err, string(data))
		}
		if r.Code != "0" {
			return fmt.Errorf("exchange error: code=%s msg=%s", r.Code, r.Msg)
		}

		tfDur := IntervalDuration(interval)
		candles := make([]models.Candle, 0, len(r.Data))
		for _, row := range r.Data {
			if len(row) < 6 {
				continue
			}
			tsMs, err := strconv.ParseInt(row[0], 10, 64)
			if err != nil {
				continue
			}
			open, err1 := strconv.ParseFloat(row[1], 64)
			high, err2 := strconv.ParseFloat(row[2], 64)
			low, err3 := strconv.ParseFloat(row[3], 64)
			closep, err4 := strconv.ParseFloat(row[4], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				continue
			}
			vol, _ := strconv.ParseFloat(row[5], 64)

			startAt := time.UnixMilli(tsMs)
			candles = append(candles, models.Candle{
				Symbol:   symbol,
				Interval: interval,
				Open:     open,
				High:     high,
				Low:      low,
				Close:    closep,
				Volume:   vol,
				Start:    startAt,
				End:      startAt.Add(tfDur),
			})
		}
		out = candles
		return nil
	})

	return out, err
}

// IntervalDuration maps "1m"/"5m"/"15m"/"1h" style intervals to a duration.
// Unknown intervals return 0; callers must tolerate that.
func IntervalDuration(interval string) time.Duration {
	if interval == "" {
		return 0
	}
	unit := interval[len(interval)-1]
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0
	}
	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	default:
		return 0
	}
}
