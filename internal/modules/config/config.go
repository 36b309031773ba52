package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const configFilePathENV = "CONFIG_FILE"

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
	} `yaml:"service"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Exchange struct {
		BaseURL   string `yaml:"base_url"`
		WSURL     string `yaml:"ws_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"exchange"`

	Symbol     string `yaml:"symbol"`
	Interval   string `yaml:"interval"`
	QuoteAsset string `yaml:"quote_asset"`

	// Risk defaults. Percent values are whole percents (1.5 => 1.5%).
	StopLossPct    float64 `yaml:"stop_loss_pct"`
	TakeProfitPct  float64 `yaml:"take_profit_pct"`
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct"`
	Leverage       int     `yaml:"leverage"`

	// Fallback taker fees used when the exchange fee lookup fails.
	SpotFeeFallback    float64 `yaml:"spot_fee_fallback"`
	FuturesFeeFallback float64 `yaml:"futures_fee_fallback"`

	// Probability tuning
	BaseProbability float64 `yaml:"base_probability"`
	ProbWindow      int     `yaml:"prob_window"`
	ProbAlpha       float64 `yaml:"prob_alpha"`
	DampThreshold   float64 `yaml:"damp_threshold"`
	DampPenalty     float64 `yaml:"damp_penalty"`
	AcceptLow       float64 `yaml:"accept_low"`
	AcceptHigh      float64 `yaml:"accept_high"`

	// Durations arrive as "5s"/"15m" strings and are parsed after decode.
	DampWindowStr   string `yaml:"damp_window"`
	TickIntervalStr string `yaml:"tick_interval"`
	LockTimeoutStr  string `yaml:"lock_timeout"`

	DampWindow   time.Duration `yaml:"-"`
	TickInterval time.Duration `yaml:"-"`
	LockTimeout  time.Duration `yaml:"-"`

	// Trade defaults handed out by the auto decision policy
	TradeAmount float64 `yaml:"trade_amount"`
	TradeClass  string  `yaml:"trade_class"` // spot | futures
	TradeMode   string  `yaml:"trade_mode"`  // real | simulated

	// Engine loop
	CandleWindow  int `yaml:"candle_window"`
	MinCandles    int `yaml:"min_candles"`
	WSMaxRetries  int `yaml:"ws_max_retries"`
	APIMaxRetries int `yaml:"api_max_retries"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Symbol:     "BTCUSDT",
		Interval:   "1m",
		QuoteAsset: "USDT",

		StopLossPct:    1.5,
		TakeProfitPct:  6,
		MaxDrawdownPct: 2,
		Leverage:       10,

		SpotFeeFallback:    0.001,
		FuturesFeeFallback: 0.0004,

		BaseProbability: 75,
		ProbWindow:      100,
		ProbAlpha:       0.1,
		DampThreshold:   20,
		DampPenalty:     5,
		AcceptLow:       70,
		AcceptHigh:      80,

		TradeAmount: 0.01,
		TradeClass:  "futures",
		TradeMode:   "simulated",

		CandleWindow:  200,
		MinCandles:    35,
		WSMaxRetries:  10,
		APIMaxRetries: 3,
	}
	err = decoder.Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.DampWindow = parseDuration(config.DampWindowStr, 15*time.Minute)
	config.TickInterval = parseDuration(config.TickIntervalStr, 5*time.Second)
	config.LockTimeout = parseDuration(config.LockTimeoutStr, 3*time.Second)

	applyEnv(&config)

	return &config, nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// applyEnv overlays secrets and per-deploy knobs from the environment.
func applyEnv(config *Config) {
	v := viper.New()
	v.AutomaticEnv()

	if s := v.GetString("TELEGRAM_TOKEN"); s != "" {
		config.Telegram.Token = s
	}
	if id := v.GetInt64("TELEGRAM_CHAT_ID"); id != 0 {
		config.Telegram.ChatID = id
	}
	if s := v.GetString("DATABASE_DSN"); s != "" {
		config.DB = s
	}
	if s := v.GetString("EXCHANGE_API_KEY"); s != "" {
		config.Exchange.APIKey = s
	}
	if s := v.GetString("EXCHANGE_API_SECRET"); s != "" {
		config.Exchange.APISecret = s
	}
	if s := v.GetString("SYMBOL"); s != "" {
		config.Symbol = s
	}
	if s := v.GetString("INTERVAL"); s != "" {
		config.Interval = s
	}
	if s := v.GetString("TRADE_MODE"); s != "" {
		config.TradeMode = s
	}
	if f := v.GetFloat64("TRADE_AMOUNT"); f > 0 {
		config.TradeAmount = f
	}
	if n := v.GetInt("LEVERAGE"); n > 0 {
		config.Leverage = n
	}
	if d := v.GetDuration("TICK_INTERVAL"); d > 0 {
		config.TickInterval = d
	}
}
