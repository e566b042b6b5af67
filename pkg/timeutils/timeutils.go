package timeutils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// weekdayNames maps the short day names used by schedule definitions to
// time.Weekday values (0=Sunday ... 6=Saturday).
var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays converts short day names ("mon", "wed") into weekday values.
// Duplicates collapse, output is sorted Sunday-first.
func ParseWeekdays(days []string) ([]time.Weekday, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	seen := make(map[time.Weekday]bool)
	for _, d := range days {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %q", d)
		}
		seen[wd] = true
	}
	out := make([]time.Weekday, 0, len(seen))
	for wd := range seen {
		out = append(out, wd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ParseTimeOfDay parses a "HH:MM" string into hour and minute.
func ParseTimeOfDay(timeOfDay string) (hour, minute int, err error) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format, expected HH:MM")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour: %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute: %q", parts[1])
	}
	return hour, minute, nil
}

// CronSpec derives a cron expression from a time-of-day, a weekday set and a
// timezone name. The CRON_TZ prefix makes the entry fire at the given local
// time in that zone regardless of the server's timezone.
func CronSpec(timeOfDay string, days []string, timezone string) (string, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return "", err
	}
	weekdays, err := ParseWeekdays(days)
	if err != nil {
		return "", err
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	nums := make([]string, len(weekdays))
	for i, wd := range weekdays {
		nums[i] = strconv.Itoa(int(wd))
	}
	return fmt.Sprintf("CRON_TZ=%s %d %d * * %s", timezone, minute, hour, strings.Join(nums, ",")), nil
}

// NextOccurrence returns the first instant strictly after from that lands on
// one of the given weekdays at timeOfDay in loc. Weekday matching happens in
// loc, so a schedule declared for Monday 09:00 Asia/Kolkata fires at that
// local time independent of where the process runs.
func NextOccurrence(days []string, timeOfDay string, loc *time.Location, from time.Time) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	weekdays, err := ParseWeekdays(days)
	if err != nil {
		return time.Time{}, err
	}
	target := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		target[wd] = true
	}

	local := from.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	// 8 iterations cover every weekday from any starting point.
	for i := 0; i < 8; i++ {
		if target[candidate.Weekday()] {
			return candidate, nil
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return time.Time{}, fmt.Errorf("no matching weekday found")
}
