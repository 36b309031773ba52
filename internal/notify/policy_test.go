package notify

import (
	"context"
	"testing"
	"time"

	"hedge_bot/internal/models"
	"hedge_bot/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	answer  bool
	prompts []string
}

func (f *fakeNotifier) Send(msg string)                  {}
func (f *fakeNotifier) Sendf(format string, args ...any) {}
func (f *fakeNotifier) Confirm(ctx context.Context, prompt string, timeout time.Duration) bool {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

func TestShouldAcceptTradeDelegatesToNotifier(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{answer: true}
	p := NewConfirmPolicy(&config.Config{}, n)

	assert.True(t, p.ShouldAcceptTrade(context.Background(), "BTCUSDT", 75.5))
	require.Len(t, n.prompts, 1)
	assert.Contains(t, n.prompts[0], "BTCUSDT")
	assert.Contains(t, n.prompts[0], "75.50")

	n.answer = false
	assert.False(t, p.ShouldAcceptTrade(context.Background(), "BTCUSDT", 72))
}

func TestTradeParamsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		amount    float64
		class     string
		mode      string
		ok        bool
		wantClass models.InstrumentClass
		wantMode  models.Mode
	}{
		{"valid futures sim", 0.5, "futures", "simulated", true, models.ClassFutures, models.ModeSimulated},
		{"valid spot real", 1, "spot", "real", true, models.ClassSpot, models.ModeReal},
		{"unknown class defaults to futures", 1, "margin", "simulated", true, models.ClassFutures, models.ModeSimulated},
		{"unknown mode defaults to simulated", 1, "spot", "paper", true, models.ClassSpot, models.ModeSimulated},
		{"zero amount rejected", 0, "spot", "real", false, "", ""},
		{"negative amount rejected", -1, "spot", "real", false, "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{TradeAmount: tt.amount, TradeClass: tt.class, TradeMode: tt.mode}
			p := NewConfirmPolicy(cfg, &fakeNotifier{})

			params, ok := p.TradeParams(context.Background())
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantClass, params.Class)
			assert.Equal(t, tt.wantMode, params.Mode)
			assert.False(t, params.Amount.IsZero())
		})
	}
}

func TestStdoutConfirmAutoAccepts(t *testing.T) {
	t.Parallel()

	s := NewStdout()
	assert.True(t, s.Confirm(context.Background(), "open?", time.Second))
}

func TestDisabledTelegramIsSafeNoOp(t *testing.T) {
	t.Parallel()

	tg, err := NewTelegram("", 0)
	require.NoError(t, err)

	tg.Send("into the void")
	tg.Sendf("still %s", "fine")
	assert.True(t, tg.Confirm(context.Background(), "headless runs auto-confirm", 10*time.Millisecond))
}
