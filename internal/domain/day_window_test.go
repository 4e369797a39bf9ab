package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayWindow(t *testing.T) {
	window, err := ParseDayWindow("2024-06-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantStart := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, window.Start)
	}
	wantEnd := time.Date(2024, 6, 15, 23, 59, 59, 999999000, time.UTC)
	if !window.End.Equal(wantEnd) {
		t.Fatalf("expected end %v, got %v", wantEnd, window.End)
	}
}

func TestParseDayWindowRejectsMalformedDates(t *testing.T) {
	for _, raw := range []string{"2024-13-40", "not-a-date", "2024/06/15", ""} {
		if _, err := ParseDayWindow(raw); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate for %q, got %v", raw, err)
		}
	}
}

func TestDayWindowBoundaries(t *testing.T) {
	window, _ := ParseDayWindow("2024-06-15")

	lastInstant := time.Date(2024, 6, 15, 23, 59, 59, 999999000, time.UTC)
	if !window.Contains(lastInstant) {
		t.Fatalf("expected %v inside window", lastInstant)
	}
	nextMidnight := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	if window.Contains(nextMidnight) {
		t.Fatalf("expected %v outside window", nextMidnight)
	}
	if window.Contains(window.Start.Add(-time.Microsecond)) {
		t.Fatalf("expected instant before midnight outside window")
	}
}

func TestDayWindowForNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2024, 6, 16, 2, 30, 0, 0, loc) // 2024-06-15 21:30 UTC
	window := DayWindowFor(at)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !window.Day().Equal(want) {
		t.Fatalf("expected UTC day %v, got %v", want, window.Day())
	}
}
