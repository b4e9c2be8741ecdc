package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

// isoLayouts are tried in order before any natural-language parsing so that
// exact inputs stay deterministic.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDateTime turns a --start/--end flag value into a point in time.
// Accepted forms, tried in order:
//   - named days: "today", "yesterday", "tomorrow" (midnight)
//   - ISO 8601 dates and datetimes
//   - day offsets: "7d", "30d" (time.ParseDuration has no day unit)
//   - Go durations: "24h", "2h30m"
//   - natural language via go-naturaldate: "last week", "3 days ago"
func parseDateTime(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	now := time.Now()

	switch dateStr {
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return startOfDay(now.AddDate(0, 0, 1)), nil
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}

	if days, ok := strings.CutSuffix(dateStr, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}

	if d, err := time.ParseDuration(dateStr); err == nil {
		return now.Add(-d), nil
	}

	t, err := naturaldate.Parse(dateStr, now)
	if err == nil && (!t.Equal(now) || strings.EqualFold(strings.TrimSpace(dateStr), "now")) {
		// naturaldate returns the reference time instead of an error for
		// unparseable input, so an unchanged result only counts for "now".
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date %q: supported forms are ISO 8601 (2006-01-02), day offsets (7d), durations (24h), named days (today, yesterday), or natural language (last week)", dateStr)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
