package service

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"hedge_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

// SubmitMarketOrder places a market order and returns the exchange receipt.
// Unlike reads, failures here must surface to the caller so an open can be
// rolled back, so the retry budget still applies but the final error is not
// swallowed.
func (c *Client) SubmitMarketOrder(
	ctx context.Context,
	side models.OrderSide,
	symbol string,
	quantity decimal.Decimal,
) (models.OrderReceipt, error) {
	var out models.OrderReceipt

	if quantity.Sign() <= 0 {
		return out, fmt.Errorf("SubmitMarketOrder: quantity <= 0")
	}

	body := map[string]string{
		"symbol":   symbol,
		"side":     string(side),
		"type":     "MARKET",
		"quantity": quantity.String(),
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return out, fmt.Errorf("SubmitMarketOrder marshal: %w", err)
	}

	const requestPath = "/api/v1/trade/order"

	err = c.withRetry(ctx, "submit_order", func() error {
		resp, err := c.http.Do(c.generateRequest(ctx, http.MethodPost, requestPath, string(payload)))
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
				OrderID  string `json:"orderId"`
				Symbol   string `json:"symbol"`
				Price    string `json:"price"`
				Quantity string `json:"executedQty"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode: %w; body=%s", err, string(data))
		}
		if r.Code != "0" {
			return fmt.Errorf("order rejected: code=%s msg=%s RAW=%s", r.Code, r.Msg, string(data))
		}
		if r.Data.OrderID == "" {
			return fmt.Errorf("empty orderId RAW=%s", string(data))
		}

		price, _ := decimal.NewFromString(r.Data.Price)
		qty, _ := decimal.NewFromString(r.Data.Quantity)
		out = models.OrderReceipt{
			OrderID:  r.Data.OrderID,
			Symbol:   r.Data.Symbol,
			Side:     side,
			Quantity: qty,
			Price:    price,
		}
		return nil
	})

	return out, err
}
