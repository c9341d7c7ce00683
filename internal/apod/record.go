package apod

import (
	"fmt"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD form used as the record key.
// Being fixed-width and zero-padded, lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

// Record is one Astronomy Picture of the Day entry.
// Date is the natural key; ID is assigned by the store on insert.
type Record struct {
	ID          string `json:"-"`
	Copyright   string `json:"copyright,omitempty"`
	Date        string `json:"date"`
	Explanation string `json:"explanation"`
	HDURL       string `json:"hdurl,omitempty"`
	MediaType   string `json:"media_type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// ParseDate parses a canonical date string. Anything else yields ErrInvalidDate.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, use YYYY-MM-DD", ErrInvalidDate, s)
	}
	return d, nil
}

// FormatDate returns the canonical key for the calendar day of t in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Today returns midnight UTC of the current day.
func Today(now time.Time) time.Time {
	return truncateDay(now)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
