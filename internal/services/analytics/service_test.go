package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{PeriodWeek, now.AddDate(0, 0, -7)},
		{PeriodMonth, now.AddDate(0, 0, -30)},
		{PeriodQuarter, now.AddDate(0, 0, -90)},
		{PeriodYear, now.AddDate(-1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := periodStart(tt.period, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown period", func(t *testing.T) {
		_, err := periodStart("14d", now)
		assert.ErrorIs(t, err, ErrUnknownPeriod)
	})
}

func TestTruncUnit(t *testing.T) {
	assert.Equal(t, "day", truncUnit(GroupDay))
	assert.Equal(t, "week", truncUnit(GroupWeek))
	assert.Equal(t, "month", truncUnit(GroupMonth))
	assert.Equal(t, "day", truncUnit(""))
	assert.Equal(t, "day", truncUnit("hour"))
}
