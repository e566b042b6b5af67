package timeutils

import (
	"testing"
	"time"
)

func TestParseWeekdays(t *testing.T) {
	got, err := ParseWeekdays([]string{"mon", "Wed", " fri"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParseWeekdaysCollapsesDuplicates(t *testing.T) {
	got, err := ParseWeekdays([]string{"mon", "mon", "MON"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != time.Monday {
		t.Fatalf("got %v, want [Monday]", got)
	}
}

func TestParseWeekdaysRejectsUnknown(t *testing.T) {
	if _, err := ParseWeekdays([]string{"monday"}); err == nil {
		t.Fatal("expected error for long day name")
	}
	if _, err := ParseWeekdays(nil); err == nil {
		t.Fatal("expected error for empty day list")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hour != 9 || minute != 30 {
		t.Fatalf("got %d:%d, want 9:30", hour, minute)
	}

	for _, bad := range []string{"9", "24:00", "12:60", "ab:cd", ""} {
		if _, _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCronSpec(t *testing.T) {
	spec, err := CronSpec("09:00", []string{"mon", "thu"}, "Asia/Kolkata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "CRON_TZ=Asia/Kolkata 0 9 * * 1,4"
	if spec != want {
		t.Fatalf("got %q, want %q", spec, want)
	}
}

func TestCronSpecRejectsBadTimezone(t *testing.T) {
	if _, err := CronSpec("09:00", []string{"mon"}, "Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestNextOccurrenceRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Saturday 2024-06-01 12:00 UTC; next Monday 09:00 in Kolkata is
	// 2024-06-03 03:30 UTC.
	from := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got, err := NextOccurrence([]string{"mon"}, "09:00", loc, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 6, 3, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if gotUTC := got.UTC(); gotUTC.Hour() != 3 || gotUTC.Minute() != 30 {
		t.Fatalf("expected 03:30 UTC, got %v", gotUTC)
	}
}

func TestNextOccurrenceSkipsSameDayPastTime(t *testing.T) {
	// Monday 10:00 UTC asking for Monday 09:00 rolls to next Monday.
	from := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	got, err := NextOccurrence([]string{"mon"}, "09:00", time.UTC, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceSameDayFutureTime(t *testing.T) {
	// Monday 08:00 UTC asking for Monday 09:00 fires the same day.
	from := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	got, err := NextOccurrence([]string{"mon"}, "09:00", time.UTC, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
