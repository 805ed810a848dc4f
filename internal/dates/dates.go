// Package dates parses the due-date strings accepted by the tools and CLI.
package dates

import (
	"strings"
	"time"
)

var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04",
	"01/02/2006",
	"01/02/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006 15:04",
	"January 2, 2006 15:04",
}

// Parse is ParseAt relative to the current time.
func Parse(s string) (time.Time, bool) {
	return ParseAt(s, time.Now())
}

// ParseAt understands "today", "tomorrow" and "next week" (midnight in
// now's location) plus a fixed list of explicit formats. Formats without a
// zone are read in now's location.
func ParseAt(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "today":
		return day, true
	case "tomorrow":
		return day.AddDate(0, 0, 1), true
	case "next week":
		return day.AddDate(0, 0, 7), true
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
