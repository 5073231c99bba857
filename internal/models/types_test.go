package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeconds(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want time.Duration
	}{
		{"whole", 2, 2 * time.Second},
		{"rounds to nanosecond", 1.0000000004, time.Second},
		{"negative", -1.5, -1500 * time.Millisecond},
		{"too large saturates", 1e12, math.MaxInt64},
		{"too small saturates", -1e12, math.MinInt64},
		{"positive infinity", math.Inf(1), math.MaxInt64},
		{"negative infinity", math.Inf(-1), math.MinInt64},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Seconds(tt.in))
		})
	}
}

func TestEventEnd_NeverWrapsBeforeStart(t *testing.T) {
	e := Event{Timestamp: base, Duration: 1e12}
	assert.False(t, e.End().Before(e.Timestamp))
}
