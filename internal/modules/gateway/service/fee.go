package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"hedge_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

// TradeFee returns the maker/taker rates for a symbol and instrument class.
func (c *Client) TradeFee(ctx context.Context, symbol string, class models.InstrumentClass) (models.FeeRates, error) {
	var out models.FeeRates

	requestPath := fmt.Sprintf(
		"/api/v1/account/trade-fee?symbol=%s&class=%s",
		url.QueryEscape(symbol), url.QueryEscape(string(class)),
	)

	err := c.withRetry(ctx, "trade_fee", func() error {
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
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data struct {
				Maker string `json:"maker"`
				Taker string `json:"taker"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode: %w; body=%s", err, string(data))
		}
		if r.Code != "0" {
			return fmt.Errorf("exchange error: code=%s msg=%s", r.Code, r.Msg)
		}

		maker, err := decimal.NewFromString(r.Data.Maker)
		if err != nil {
			return fmt.Errorf("parse maker fee %q: %w", r.Data.Maker, err)
		}
		taker, err := decimal.NewFromString(r.Data.Taker)
		if err != nil {
			return fmt.Errorf("parse taker fee %q: %w", r.Data.Taker, err)
		}
		out = models.FeeRates{Maker: maker, Taker: taker}
		return nil
	})

	return out, err
}
