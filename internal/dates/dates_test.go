package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAt(t *testing.T) {
	loc := time.FixedZone("Test", -5*3600)
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, loc)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", time.Date(2026, 3, 14, 0, 0, 0, 0, loc)},
		{"Tomorrow", time.Date(2026, 3, 15, 0, 0, 0, 0, loc)},
		{"next  week", time.Date(2026, 3, 21, 0, 0, 0, 0, loc)},
		{"2026-04-01", time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"2026-04-01 09:30", time.Date(2026, 4, 1, 9, 30, 0, 0, loc)},
		{"2026-04-01T09:30", time.Date(2026, 4, 1, 9, 30, 0, 0, loc)},
		{"2026-04-01T09:30:00Z", time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)},
		{"04/01/2026", time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"04/01/2026 18:00", time.Date(2026, 4, 1, 18, 0, 0, 0, loc)},
		{"Apr 1, 2026", time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"April 1, 2026", time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"Apr 1 2026", time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{" April 1 2026 ", time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAt(tt.in, now)
			assert.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseAtRejects(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"", "someday", "2026-13-01", "32/01/2026", "yesterday-ish"} {
		_, ok := ParseAt(in, now)
		assert.False(t, ok, in)
	}
}

func TestParseUsesCurrentTime(t *testing.T) {
	got, ok := Parse("today")
	assert.True(t, ok)
	now := time.Now()
	assert.Equal(t, now.Day(), got.Day())
	assert.Equal(t, 0, got.Hour())
}
