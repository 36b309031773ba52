package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

// LatestPrice returns the last traded price for a symbol.
func (c *Client) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var out decimal.Decimal

	err := c.withRetry(ctx, "latest_price", func() error {
		resp, err := c.http.Do(c.generateRequest(
			ctx,
			http.MethodGet,
			"/api/v1/market/ticker?symbol="+url.QueryEscape(symbol),
			"",
		))
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
		}

		var r struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data struct {
				Symbol string `json:"symbol"`
				Price  string `json:"price"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode: %w; body=%s", err, string(data))
		}
		if r.Code != "0" {
			return fmt.Errorf("exchange error: code=%s msg=%s", r.Code, r.Msg)
		}

		v, err := decimal.NewFromString(r.Data.Price)
		if err != nil {
			return fmt.Errorf("parse price %q: %w", r.Data.Price, err)
		}
		if v.Sign() <= 0 {
			return fmt.Errorf("non-positive price %s for %s", v, symbol)
		}
		out = v
		return nil
	})

	return out, err
}
