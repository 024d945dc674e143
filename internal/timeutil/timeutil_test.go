package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestTruncateToDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	ts := time.Date(2025, time.April, 14, 23, 30, 0, 0, time.UTC)
	got := TruncateToDay(ts, loc)
	// 23:30 UTC in April is 00:30 BST the next day.
	if got.Day() != 15 || got.Hour() != 0 || got.Location() != loc {
		t.Fatalf("unexpected truncation %v", got)
	}
}

func TestTruncateToDayNilLocation(t *testing.T) {
	ts := time.Date(2025, time.April, 14, 13, 45, 0, 0, time.UTC)
	got := TruncateToDay(ts, nil)
	if got.Location() != time.UTC || got.Hour() != 0 || got.Day() != 14 {
		t.Fatalf("unexpected truncation %v", got)
	}
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2025-04-14", time.UTC)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	if !got.Equal(time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
	if FormatDay(got) != "2025-04-14" {
		t.Fatalf("round trip failed: %s", FormatDay(got))
	}
	if _, err := ParseDay("14/04/2025", time.UTC); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, time.April, 14, 1, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.April, 14, 23, 0, 0, 0, time.UTC)
	if !SameDay(a, b, time.UTC) {
		t.Fatalf("expected same day")
	}
	if SameDay(a, b.AddDate(0, 0, 1), time.UTC) {
		t.Fatalf("expected different days")
	}
}
