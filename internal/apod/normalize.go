package apod

import (
	"sort"
	"strings"
	"time"
)

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// NormalizeCopyright strips embedded line breaks, collapses runs of
// whitespace to a single space and trims the result.
func NormalizeCopyright(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(lineBreaks.Replace(s)), " ")
}

// Normalize prepares an upstream record for persistence. A record without a
// date is keyed by the date that was requested.
func Normalize(rec Record, requested time.Time) Record {
	rec.ID = ""
	rec.Copyright = NormalizeCopyright(rec.Copyright)
	if rec.Date == "" {
		rec.Date = FormatDate(requested)
	}
	return rec
}

// DaysInRange returns every calendar day in [start, end] in ascending order.
// It returns nil when start is after end.
func DaysInRange(start, end time.Time) []time.Time {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return nil
	}

	days := make([]time.Time, 0, DayCount(start, end))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DayCount is the inclusive number of calendar days between start and end.
func DayCount(start, end time.Time) int {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return 0
	}
	// time.Duration saturates at ~292 years, Unix seconds do not.
	return int((end.Unix()-start.Unix())/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60

// SortByDateDesc orders records newest first, in place.
func SortByDateDesc(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date > recs[j].Date
	})
}
