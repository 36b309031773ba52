package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hedge_bot/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Exchange.BaseURL = baseURL
	cfg.Exchange.APIKey = "key"
	cfg.Exchange.APISecret = "secret"
	cfg.APIMaxRetries = 2
	return NewClient(cfg)
}

func TestLatestPriceParsesDecimal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/market/ticker", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.NotEmpty(t, r.Header.Get("X-API-SIGN"))
		assert.Equal(t, "key", r.Header.Get("X-API-KEY"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":{"symbol":"BTCUSDT","price":"42123.45"}}`))
	}))
	defer srv.Close()

	price, err := testClient(srv.URL).LatestPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "42123.45", price.String())
}

func TestBalancePicksRequestedAsset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[` +
			`{"asset":"BTC","free":"0.5"},{"asset":"USDT","free":"10000.25"}]}`))
	}))
	defer srv.Close()

	bal, err := testClient(srv.URL).Balance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, "10000.25", bal.String())
}

func TestGatewayRetriesThenWrapsError(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).LatestPrice(context.Background(), "BTCUSDT")
	require.Error(t, err)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "latest_price", gwErr.Op)
	assert.Equal(t, 2, hits, "bounded attempts")
}

func TestGatewayRetryRecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "flap", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":{"symbol":"BTCUSDT","price":"100"}}`))
	}))
	defer srv.Close()

	price, err := testClient(srv.URL).LatestPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "100", price.String())
	assert.Equal(t, 2, hits)
}

func TestExchangeErrorCodeSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"1002","msg":"rate limited","data":null}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).LatestPrice(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1002")
}

func TestSignIsDeterministic(t *testing.T) {
	t.Parallel()

	c := testClient("http://localhost")
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02T15:04:05.000Z")

	a := c.sign(ts, "GET", "/api/v1/market/ticker", "")
	b := c.sign(ts, "GET", "/api/v1/market/ticker", "")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c.sign(ts, "POST", "/api/v1/market/ticker", ""))
	assert.NotEqual(t, a, c.sign(ts, "GET", "/api/v1/market/ticker", `{"x":1}`))
}
