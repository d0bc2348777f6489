package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
		wantErr    bool
	}{
		{name: "one week", start: "2025-07-20", end: "2025-07-27", want: 7},
		{name: "same day", start: "2025-07-20", end: "2025-07-20", want: 1},
		{name: "overnight", start: "2025-07-20", end: "2025-07-21", want: 1},
		{name: "across months", start: "2025-01-30", end: "2025-02-02", want: 3},
		{name: "reversed", start: "2025-07-27", end: "2025-07-20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Days(date(tt.start), date(tt.end))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateAddsServiceFeeOnce(t *testing.T) {
	q, err := Calculate(30000, DefaultServiceFee, date("2025-07-20"), date("2025-07-27"))
	require.NoError(t, err)

	assert.Equal(t, 7, q.Days)
	assert.Equal(t, int64(210000), q.Subtotal)
	assert.Equal(t, int64(215000), q.Total)
}

func TestDaysIgnoresClockAndZone(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	start := time.Date(2025, 7, 20, 23, 30, 0, 0, seoul)
	end := time.Date(2025, 7, 22, 0, 15, 0, 0, seoul)

	got, err := Days(start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
