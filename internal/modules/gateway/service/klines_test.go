package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		interval string
		want     time.Duration
	}{
		{"1m", time.Minute},
		{"5m", 5 * time.Minute},
		{"15m", 15 * time.Minute},
		{"1h", time.Hour},
		{"4h", 4 * time.Hour},
		{"1d", 24 * time.Hour},
		{"", 0},
		{"m", 0},
		{"0m", 0},
		{"-5m", 0},
		{"1w", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.interval, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IntervalDuration(tt.interval))
		})
	}
}
