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

// Balance returns the free balance for one asset.
func (c *Client) Balance(ctx context.Context, asset string) (decimal.Decimal, error) {
	var out decimal.Decimal

	err := c.withRetry(ctx, "balance", func() error {
		resp, err := c.http.Do(c.generateRequest(
			ctx,
			http.MethodGet,
			"/api/v1/account/balance?asset="+url.QueryEscape(asset),
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
			Data []struct {
				Asset string `json:"asset"`
				Free  string `json:"free"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode: %w; body=%s", err, string(data))
		}
		if r.Code != "0" {
			return fmt.Errorf("exchange error: code=%s msg=%s", r.Code, r.Msg)
		}

		for _, b := range r.Data {
			if b.Asset != asset {
				continue
			}
			v, err := decimal.NewFromString(b.Free)
			if err != nil {
				return fmt.Errorf("parse balance %q: %w", b.Free, err)
			}
			out = v
			return nil
		}
		return fmt.Errorf("asset %s not found in account", asset)
	})

	return out, err
}
