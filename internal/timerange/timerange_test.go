package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return v
}

func TestHourBounds(t *testing.T) {
	start, end := HourBounds(mustParse(t, "2024-06-01T18:30:12Z"), time.UTC)

	assert.Equal(t, mustParse(t, "2024-06-01T18:00:00Z"), start)
	assert.Equal(t, mustParse(t, "2024-06-01T18:59:59.999999999Z"), end)
}

func TestHourBounds_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		shared bool
	}{
		{"exact hour vs one second before", "2024-06-01T18:00:00Z", "2024-06-01T17:59:59Z", false},
		{"start and end of same hour", "2024-06-01T18:00:00Z", "2024-06-01T18:59:59Z", true},
		{"half past", "2024-06-01T18:00:00Z", "2024-06-01T18:30:00Z", true},
		{"next hour", "2024-06-01T18:59:59Z", "2024-06-01T19:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := HourBounds(mustParse(t, tt.a), time.UTC)
			assert.Equal(t, tt.shared, Within(mustParse(t, tt.b), start, end))
		})
	}
}

func TestHourBounds_HalfHourZone(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+30*60)

	// 18:10Z is 23:40 IST, so the local hour runs 17:30Z..18:29:59Z.
	start, end := HourBounds(mustParse(t, "2024-06-01T18:10:00Z"), kolkata)

	assert.True(t, start.Equal(mustParse(t, "2024-06-01T17:30:00Z")))
	assert.True(t, end.Equal(mustParse(t, "2024-06-01T18:29:59.999999999Z")))
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(mustParse(t, "2024-06-01T18:30:00Z"), time.UTC)

	assert.Equal(t, mustParse(t, "2024-06-01T00:00:00Z"), start)
	assert.Equal(t, mustParse(t, "2024-06-01T23:59:59.999999999Z"), end)
}

func TestDayBounds_NilLocationIsUTC(t *testing.T) {
	start, _ := DayBounds(mustParse(t, "2024-06-01T01:00:00+03:00"), nil)

	assert.Equal(t, mustParse(t, "2024-05-31T00:00:00Z"), start)
}

func TestIsPast(t *testing.T) {
	now := mustParse(t, "2024-06-01T18:00:00Z")

	assert.True(t, IsPast(now, now.Add(-time.Nanosecond)))
	assert.False(t, IsPast(now, now))
	assert.False(t, IsPast(now, now.Add(time.Minute)))
}

func TestFixedClock(t *testing.T) {
	now := mustParse(t, "2024-06-01T18:00:00Z")
	var c Clock = FixedClock{T: now}
	assert.Equal(t, now, c.Now())
}
