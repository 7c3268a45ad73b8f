package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextQuarterMinute(t *testing.T) {
	t.Run("aligns to quarter grid with offset", func(t *testing.T) {
		cases := []struct {
			now  string
			want string
		}{
			{"2025-03-10T09:00:00Z", "2025-03-10T09:15:05Z"},
			{"2025-03-10T09:07:42Z", "2025-03-10T09:15:05Z"},
			{"2025-03-10T09:15:05Z", "2025-03-10T09:30:05Z"},
			{"2025-03-10T09:44:59Z", "2025-03-10T09:45:05Z"},
			{"2025-03-10T09:46:00Z", "2025-03-10T10:00:05Z"},
			{"2025-03-10T23:59:30Z", "2025-03-11T00:00:05Z"},
		}
		for _, tc := range cases {
			now, _ := time.Parse(time.RFC3339, tc.now)
			want, _ := time.Parse(time.RFC3339, tc.want)
			assert.Equal(t, want, NextQuarterMinute(now), "now=%s", tc.now)
		}
	})

	t.Run("always strictly in the future", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 24*60; i++ {
			probe := now.Add(time.Duration(i) * time.Minute).Add(37 * time.Second)
			next := NextQuarterMinute(probe)
			assert.True(t, next.After(probe))
			assert.Contains(t, []int{0, 15, 30, 45}, next.Minute())
			assert.Equal(t, 5, next.Second())
		}
	})

	t.Run("applied twice never returns the same instant", func(t *testing.T) {
		probe := time.Date(2025, 3, 10, 9, 3, 11, 0, time.UTC)
		first := NextQuarterMinute(probe)
		second := NextQuarterMinute(first)
		assert.True(t, second.After(first))
	})
}

func TestWaitUntilRespectsContext(t *testing.T) {
	ctx, cancel := contextWithCancel()
	cancel()
	start := time.Now()
	ok := WaitUntil(ctx, time.Now().Add(time.Hour), nil)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second*2)
}
