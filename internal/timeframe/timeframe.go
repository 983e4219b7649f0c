// Package timeframe holds the report's time arithmetic: inclusive range
// filtering over normalized instants, Monday-anchored weekly bucketing in
// the report timezone, and the hour-by-weekday activity matrix.
package timeframe

import (
	"sort"
	"time"
)

// DateStat is one bucket of a time series. Date is the bucket start in
// YYYY-MM-DD local form.
type DateStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Range is an inclusive [From, To] window over UTC instants. A zero bound
// leaves that side open; the zero Range matches everything.
type Range struct {
	From time.Time
	To   time.Time
}

// Open reports whether both bounds are unset.
func (r Range) Open() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Timestamped is any record with a normalized, possibly missing instant.
type Timestamped interface {
	Occurred() (time.Time, bool)
}

// FilterRange keeps the rows whose instant falls inside r. Rows without an
// instant are dropped, unless the range is fully open, in which case the
// input passes through untouched (a report over all time must keep rows
// whose timestamps never parsed).
func FilterRange[T Timestamped](rows []T, r Range) []T {
	if r.Open() {
		return rows
	}
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		at, ok := row.Occurred()
		if !ok {
			continue
		}
		if r.Contains(at) {
			kept = append(kept, row)
		}
	}
	return kept
}

// TruncateToWeekStart returns the Monday 00:00 that starts t's week in loc.
func TruncateToWeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	weekday := int(local.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	daysToSubtract := weekday - 1
	return time.Date(local.Year(), local.Month(), local.Day()-daysToSubtract, 0, 0, 0, 0, loc)
}

// Sample is one (instant, account) observation feeding the WAU series.
type Sample struct {
	At  time.Time
	Key string
}

// WeeklyDistinct buckets samples into loc-local Monday weeks and counts the
// distinct keys per bucket. Weeks with no samples are omitted; the series
// is sorted by week start ascending.
func WeeklyDistinct(samples []Sample, loc *time.Location) []DateStat {
	weeks := make(map[string]map[string]struct{})
	for _, s := range samples {
		week := TruncateToWeekStart(s.At, loc).Format("2006-01-02")
		if weeks[week] == nil {
			weeks[week] = make(map[string]struct{})
		}
		weeks[week][s.Key] = struct{}{}
	}

	stats := make([]DateStat, 0, len(weeks))
	for week, keys := range weeks {
		stats = append(stats, DateStat{Date: week, Count: len(keys)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })
	return stats
}

// dayLabels is Monday-first, matching the activity matrix column order.
var dayLabels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayLabels returns the weekday labels in activity-matrix column order.
func DayLabels() []string {
	labels := make([]string, len(dayLabels))
	copy(labels, dayLabels)
	return labels
}

// HourLabels returns the hour labels 0 through 23 in activity-matrix row order.
func HourLabels() []int {
	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}
	return hours
}

// ActivityMatrix is a 24x7 grid of event counts: Cells[hour][day], hours
// 0-23 local, days Monday-first. Cells without events stay zero.
type ActivityMatrix struct {
	Cells [24][7]int `json:"cells"`
}

// BuildActivityMatrix counts instants per loc-local hour and weekday.
func BuildActivityMatrix(instants []time.Time, loc *time.Location) ActivityMatrix {
	var m ActivityMatrix
	for _, t := range instants {
		local := t.In(loc)
		day := int(local.Weekday())
		if day == 0 { // Sunday
			day = 7
		}
		m.Cells[local.Hour()][day-1]++
	}
	return m
}

// Max returns the largest cell count, 0 for an empty matrix. Renderers use
// it as the color scale ceiling.
func (m ActivityMatrix) Max() int {
	max := 0
	for hour := range m.Cells {
		for day := range m.Cells[hour] {
			if m.Cells[hour][day] > max {
				max = m.Cells[hour][day]
			}
		}
	}
	return max
}
