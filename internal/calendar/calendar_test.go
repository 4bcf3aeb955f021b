package calendar

import (
	"testing"
	"time"

	"gymcrew-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday(t *testing.T) {
	// 2024-03-01 03:30 UTC is still Feb 29 in Los Angeles.
	now := time.Date(2024, 3, 1, 3, 30, 0, 0, time.UTC)

	t.Run("UTC", func(t *testing.T) {
		d, err := Today("UTC", now)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", d)
	})

	t.Run("Behind UTC", func(t *testing.T) {
		d, err := Today("America/Los_Angeles", now)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-29", d)
	})

	t.Run("Empty zone defaults to UTC", func(t *testing.T) {
		d, err := Today("", now)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", d)
	})

	t.Run("DST spring forward", func(t *testing.T) {
		// 04:59 UTC is 23:59 EST on Mar 9; 07:00 UTC is 03:00 EDT on Mar 10.
		before := time.Date(2024, 3, 10, 4, 59, 0, 0, time.UTC)
		after := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
		d1, err := Today("America/New_York", before)
		require.NoError(t, err)
		d2, err := Today("America/New_York", after)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09", d1)
		assert.Equal(t, "2024-03-10", d2)
	})

	t.Run("Invalid zone", func(t *testing.T) {
		_, err := Today("Mars/Olympus_Mons", now)
		assert.True(t, domain.IsKind(err, domain.KindInvalidTimezone))
	})
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name  string
		tz    string
		now   time.Time
		start string
		end   string
	}{
		{"Leap February", "UTC", time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"Plain February", "UTC", time.Date(2023, 2, 10, 12, 0, 0, 0, time.UTC), "2023-02-01", "2023-02-28"},
		{"December", "UTC", time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), "2024-12-01", "2024-12-31"},
		{"Zone ahead rolls month", "Asia/Tokyo", time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC), "2024-05-01", "2024-05-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := MonthRange(tt.tz, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, tt.end, r.End)
		})
	}

	_, err := MonthRange("Not/AZone", time.Now())
	assert.True(t, domain.IsKind(err, domain.KindInvalidTimezone))
}

func TestPrevMonthStart(t *testing.T) {
	d, err := PrevMonthStart("UTC", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", d)

	d, err = PrevMonthStart("UTC", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", d)

	// Still January 31 in Honolulu.
	d, err = PrevMonthStart("Pacific/Honolulu", time.Date(2024, 2, 1, 5, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", d)
}

func TestMonthRangeOf(t *testing.T) {
	r, err := MonthRangeOf("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "2024-02-01", End: "2024-02-29"}, r)

	_, err = MonthRangeOf("2024/02/01")
	assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))
}

func TestStreak(t *testing.T) {
	assert.Equal(t, 0, Streak(DateSet(nil), "2024-01-10"))
	assert.Equal(t, 3, Streak(DateSet([]string{"2024-01-08", "2024-01-09", "2024-01-10"}), "2024-01-10"))
	assert.Equal(t, 0, Streak(DateSet([]string{"2024-01-09"}), "2024-01-10"))
	assert.Equal(t, 2, Streak(DateSet([]string{"2024-01-06", "2024-01-09", "2024-01-10"}), "2024-01-10"))
	assert.Equal(t, 3, Streak(DateSet([]string{"2024-02-28", "2024-02-29", "2024-03-01"}), "2024-03-01"))
}
