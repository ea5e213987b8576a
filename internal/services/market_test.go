package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) (*MarketClock, *time.Location) {
	t.Helper()
	c, err := NewMarketClock()
	require.NoError(t, err)
	return c, c.loc
}

func TestMarketClock_Status(t *testing.T) {
	c, ny := newYork(t)

	tests := []struct {
		name   string
		at     time.Time
		open   bool
		reason string
	}{
		{"mid session", time.Date(2024, 2, 15, 11, 0, 0, 0, ny), true, ""},
		{"at open", time.Date(2024, 2, 15, 9, 30, 0, 0, ny), true, ""},
		{"at close", time.Date(2024, 2, 15, 16, 0, 0, 0, ny), false, "after-hours"},
		{"pre-market", time.Date(2024, 2, 15, 8, 0, 0, 0, ny), false, "pre-market"},
		{"saturday", time.Date(2024, 2, 17, 12, 0, 0, 0, ny), false, "weekend"},
		{"presidents day", time.Date(2024, 2, 19, 12, 0, 0, 0, ny), false, "holiday"},
		{"good friday", time.Date(2024, 3, 29, 12, 0, 0, 0, ny), false, "holiday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := c.Status(tt.at)
			assert.Equal(t, tt.open, st.Open)
			assert.Equal(t, tt.reason, st.Reason)
			assert.Equal(t, !tt.open, c.Closed(tt.at))
		})
	}
}

func TestMarketClock_UntilNextOpen(t *testing.T) {
	c, ny := newYork(t)

	// Friday after the close: the next session is Monday 09:30
	st := c.Status(time.Date(2024, 2, 9, 17, 0, 0, 0, ny))
	assert.Equal(t, 64*time.Hour+30*time.Minute, st.Until)

	st = c.Status(time.Date(2024, 2, 15, 15, 0, 0, 0, ny))
	assert.Equal(t, time.Hour, st.Until)
}

func TestMarketClock_SinceClose(t *testing.T) {
	c, ny := newYork(t)

	assert.Equal(t, time.Duration(0), c.SinceClose(time.Date(2024, 2, 15, 12, 0, 0, 0, ny)))
	assert.Equal(t, 90*time.Minute, c.SinceClose(time.Date(2024, 2, 15, 17, 30, 0, 0, ny)))
	// Monday pre-market counts from Friday's close
	assert.Equal(t, 64*time.Hour, c.SinceClose(time.Date(2024, 2, 12, 8, 0, 0, 0, ny)))
}

func TestHolidayName(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "New Year's Day"},
		{time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), "New Year's Day"},
		{time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), ""},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Martin Luther King Jr. Day"},
		{time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC), "Memorial Day"},
		{time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC), "Juneteenth"},
		{time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC), ""},
		{time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC), "Independence Day"},
		{time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), "Labor Day"},
		{time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC), "Thanksgiving Day"},
		{time.Date(2022, 12, 26, 0, 0, 0, 0, time.UTC), "Christmas Day"},
		{time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC), "Good Friday"},
		{time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HolidayName(tt.date), tt.date.Format("2006-01-02"))
	}
}
