package services

import (
	"fmt"
	"time"
)

// MarketClock answers whether the NYSE regular session is open.
type MarketClock struct {
	loc *time.Location
}

// MarketStatus describes the session at one instant.
type MarketStatus struct {
	Open      bool      `json:"open"`
	Reason    string    `json:"reason,omitempty"` // "weekend", "holiday", "pre-market", "after-hours"
	Holiday   string    `json:"holiday,omitempty"`
	LocalTime time.Time `json:"local_time"`
	// Until is the time left until the close when open, or until the
	// next open when closed.
	Until time.Duration `json:"until_ns"`
}

// Session bounds in exchange local time.
const (
	openHour, openMinute   = 9, 30
	closeHour, closeMinute = 16, 0
)

// NewMarketClock loads the exchange time zone.
func NewMarketClock() (*MarketClock, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("loading exchange time zone: %w", err)
	}
	return &MarketClock{loc: loc}, nil
}

// Closed reports whether the market is closed at t.
func (c *MarketClock) Closed(t time.Time) bool {
	return !c.Status(t).Open
}

// Status returns the session state at t.
func (c *MarketClock) Status(t time.Time) MarketStatus {
	local := t.In(c.loc)
	st := MarketStatus{LocalTime: local}

	open, close := c.session(local)
	switch {
	case !c.tradingDay(local):
		st.Reason = "weekend"
		if name := HolidayName(local); name != "" {
			st.Reason, st.Holiday = "holiday", name
		}
	case local.Before(open):
		st.Reason = "pre-market"
	case !local.Before(close):
		st.Reason = "after-hours"
	default:
		st.Open = true
		st.Until = close.Sub(local)
		return st
	}
	st.Until = c.nextOpen(local).Sub(local)
	return st
}

// SinceClose returns how long ago the most recent session closed, or 0
// while the market is open.
func (c *MarketClock) SinceClose(t time.Time) time.Duration {
	local := t.In(c.loc)
	day := local
	for i := 0; i < 15; i++ {
		if c.tradingDay(day) {
			open, close := c.session(day)
			if !local.Before(close) {
				return local.Sub(close)
			}
			if !local.Before(open) {
				return 0
			}
		}
		day = day.AddDate(0, 0, -1)
	}
	return 0
}

func (c *MarketClock) session(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	return time.Date(y, m, d, openHour, openMinute, 0, 0, c.loc),
		time.Date(y, m, d, closeHour, closeMinute, 0, 0, c.loc)
}

func (c *MarketClock) tradingDay(day time.Time) bool {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return HolidayName(day) == ""
}

func (c *MarketClock) nextOpen(local time.Time) time.Time {
	day := local
	for i := 0; i < 15; i++ {
		if c.tradingDay(day) {
			open, _ := c.session(day)
			if local.Before(open) {
				return open
			}
		}
		y, m, d := day.Date()
		day = time.Date(y, m, d+1, 12, 0, 0, 0, c.loc)
	}
	return local
}

// HolidayName returns the NYSE full-day holiday observed on the date of t,
// or "".
func HolidayName(t time.Time) string {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, h := range holidays(y) {
		if h.date.Equal(date) {
			return h.name
		}
	}
	return ""
}

type holiday struct {
	name string
	date time.Time
}

func holidays(year int) []holiday {
	hs := []holiday{
		{"New Year's Day", newYearObserved(year)},
		{"Martin Luther King Jr. Day", nthWeekday(year, time.January, time.Monday, 3)},
		{"Washington's Birthday", nthWeekday(year, time.February, time.Monday, 3)},
		{"Good Friday", easter(year).AddDate(0, 0, -2)},
		{"Memorial Day", lastWeekday(year, time.May, time.Monday)},
		{"Independence Day", observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC))},
		{"Labor Day", nthWeekday(year, time.September, time.Monday, 1)},
		{"Thanksgiving Day", nthWeekday(year, time.November, time.Thursday, 4)},
		{"Christmas Day", observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC))},
	}
	if year >= 2022 {
		hs = append(hs, holiday{"Juneteenth", observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC))})
	}
	return hs
}

// observed moves Saturday holidays to Friday and Sunday holidays to Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// New Year's Day on a Saturday is not observed on the prior Friday.
func newYearObserved(year int) time.Time {
	d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if d.Weekday() == time.Sunday {
		return d.AddDate(0, 0, 1)
	}
	return d
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// easter returns Easter Sunday (anonymous Gregorian algorithm).
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
