package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// NextOptionsExpiration returns the next third Friday for options expiration:
// - Third Friday of the current month if we haven't reached the expiration week yet
// - Third Friday of next month if we're in or past the expiration week
func NextOptionsExpiration(now time.Time) time.Time {
	thirdFriday := thirdFridayOf(now.Year(), now.Month(), now.Location())
	weekStart := thirdFriday.AddDate(0, 0, -7)

	if !now.Before(weekStart) {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		return thirdFridayOf(next.Year(), next.Month(), now.Location())
	}
	return thirdFriday
}

func thirdFridayOf(year int, month time.Month, loc *time.Location) time.Time {
	firstFriday := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for firstFriday.Weekday() != time.Friday {
		firstFriday = firstFriday.AddDate(0, 0, 1)
	}
	return firstFriday.AddDate(0, 0, 14)
}

// ParseExpiration parses a YYYY-MM-DD expiration in the given location.
func ParseExpiration(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiration %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// DaysUntil counts calendar days from now's date to expiry's date. Past expirations
// give a negative count.
func DaysUntil(expiry, now time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n).Hours() / 24)
}

// TradingDaysBetween counts weekdays in (from, to]. Exchange holidays are not removed.
func TradingDaysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
