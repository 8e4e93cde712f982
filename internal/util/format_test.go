package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "zero", duration: 0, expected: ""},
		{name: "seconds only", duration: 42 * time.Second, expected: "42 seconds"},
		{name: "hours and minutes", duration: time.Hour + 2*time.Minute + 5*time.Second, expected: "1 hour, 2 minutes, 5 seconds"},
		{name: "days", duration: 50 * time.Hour, expected: "2 days, 2 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.duration))
		})
	}
}

func TestFormatDurationRounded(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{name: "zero", seconds: 0, expected: "0 seconds"},
		{name: "few seconds", seconds: 10, expected: "10 seconds"},
		{name: "seconds round up to a minute", seconds: 45, expected: "1 minute"},
		{name: "minute and a half stays", seconds: 90, expected: "1 minute"},
		{name: "rounds up minutes", seconds: 119, expected: "2 minutes"},
		{name: "rounds up hours", seconds: 3*3600 + 50*60, expected: "4 hours"},
		{name: "days", seconds: 3 * 86400, expected: "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDurationRounded(tt.seconds))
		})
	}
}

func TestFormatSince(t *testing.T) {
	clock := NewFixedClock(1408628778)
	assert.Equal(t, "about 16 seconds ago", FormatSince(clock, 1408628762))
}

func TestPadAndCenter(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
	assert.Equal(t, "中文 ", PadRight("中文", 5))
	assert.Equal(t, " ab  ", CenterText("ab", 5))
	assert.Equal(t, "abc", CenterText("abc", 2))
	assert.Equal(t, 4, GetDisplayWidth("中文"))
}
