package metrics

import (
	"hedge_bot/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's prometheus instruments:
//   - bot_decisions_total{accepted}     signal gate outcomes
//   - bot_positions_opened_total{mode,direction}
//   - bot_trades_settled_total{reason,result}
//   - bot_equity{mode}                  ledger balance snapshot
type Metrics struct {
	decisions *prometheus.CounterVec
	opened    *prometheus.CounterVec
	settled   *prometheus.CounterVec
	equity    *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_decisions_total",
				Help: "Trade signal decisions",
			},
			[]string{"accepted"},
		),
		opened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_positions_opened_total",
				Help: "Positions opened",
			},
			[]string{"mode", "direction"},
		),
		settled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_trades_settled_total",
				Help: "Settled trades by exit reason and result",
			},
			[]string{"reason", "result"},
		),
		equity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bot_equity",
				Help: "Ledger balance per mode",
			},
			[]string{"mode"},
		),
	}

	reg.MustRegister(m.decisions, m.opened, m.settled, m.equity)
	return m
}

func (m *Metrics) Decision(accepted bool) {
	v := "no"
	if accepted {
		v = "yes"
	}
	m.decisions.WithLabelValues(v).Inc()
}

func (m *Metrics) Opened(mode models.Mode, direction models.Direction) {
	m.opened.WithLabelValues(string(mode), string(direction)).Inc()
}

func (m *Metrics) Settled(reason models.ExitReason, result models.TradeResult) {
	m.settled.WithLabelValues(string(reason), string(result)).Inc()
}

func (m *Metrics) Equity(mode models.Mode, value float64) {
	m.equity.WithLabelValues(string(mode)).Set(value)
}
