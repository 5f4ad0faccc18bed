package models

import (
	"testing"
	"time"
)

func TestTruncC(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{21.9, 21},
		{21.1, 21},
		{0.9, 0},
		{-0.9, 0},
		{-3.7, -3},
	}
	for _, tt := range tests {
		if got := TruncC(tt.in); got != tt.want {
			t.Errorf("TruncC(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWindKmh(t *testing.T) {
	tests := []struct {
		mps  float64
		want int
	}{
		{0, 0},
		{1, 3},     // 3.6 truncated
		{5.5, 19},  // 19.8 truncated
		{10, 36},
	}
	for _, tt := range tests {
		if got := WindKmh(tt.mps); got != tt.want {
			t.Errorf("WindKmh(%v) = %d, want %d", tt.mps, got, tt.want)
		}
	}
}

func TestVisibilityKm(t *testing.T) {
	if got := VisibilityKm(9999); got != 9 {
		t.Errorf("VisibilityKm(9999) = %d, want 9", got)
	}
	if got := VisibilityKm(10000); got != 10 {
		t.Errorf("VisibilityKm(10000) = %d, want 10", got)
	}
}

func TestIsDaytime(t *testing.T) {
	sunrise := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	sunset := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	w := CurrentWeather{SunriseUtc: sunrise, SunsetUtc: sunset}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before sunrise", sunrise.Add(-time.Second), false},
		{"exactly sunrise", sunrise, true},
		{"midday", sunrise.Add(6 * time.Hour), true},
		{"just before sunset", sunset.Add(-time.Second), true},
		{"exactly sunset", sunset, false},
		{"after sunset", sunset.Add(time.Hour), false},
	}
	for _, tt := range tests {
		if got := w.IsDaytime(tt.now); got != tt.want {
			t.Errorf("%s: IsDaytime = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHourlyStrip(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	var series ForecastSeries
	for i := -2; i < 12; i++ {
		series = append(series, ForecastPoint{TimestampUtc: now.Add(time.Duration(i) * 3 * time.Hour)})
	}

	strip := series.HourlyStrip(now)
	if len(strip) != 8 {
		t.Fatalf("len(strip) = %d, want 8", len(strip))
	}
	if strip[0].TimestampUtc.Before(now) {
		t.Errorf("first point %v is before now %v", strip[0].TimestampUtc, now)
	}
	for i := 1; i < len(strip); i++ {
		if !strip[i].TimestampUtc.After(strip[i-1].TimestampUtc) {
			t.Errorf("strip not ascending at %d", i)
		}
	}
}

func TestDailyStrip(t *testing.T) {
	// 40 three-hour points spanning 5 days starting mid-morning today.
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	var series ForecastSeries
	for i := 0; i < 40; i++ {
		series = append(series, ForecastPoint{
			TimestampUtc: now.Add(time.Duration(i) * 3 * time.Hour),
			TempC:        float64(i),
		})
	}

	strip := series.DailyStrip(now, time.UTC)

	if len(strip) > 5 {
		t.Fatalf("len(strip) = %d, want <= 5", len(strip))
	}
	seen := make(map[string]bool)
	today := now.Format("2006-01-02")
	for i, p := range strip {
		day := p.TimestampUtc.In(time.UTC).Format("2006-01-02")
		if day == today {
			t.Errorf("strip contains today's point at %d", i)
		}
		if seen[day] {
			t.Errorf("duplicate day %s", day)
		}
		seen[day] = true
		if i > 0 && !strip[i].TimestampUtc.After(strip[i-1].TimestampUtc) {
			t.Errorf("strip not sorted ascending at %d", i)
		}
	}
	if len(strip) != 5 {
		t.Errorf("len(strip) = %d, want 5 (one per following day)", len(strip))
	}
	// Each entry is the earliest point of its day: midnight for full days.
	for i, p := range strip {
		if hr := p.TimestampUtc.In(time.UTC).Hour(); hr != 0 {
			t.Errorf("strip[%d] hour = %d, want 0 (earliest point of day)", i, hr)
		}
	}
}

func TestDailyStripExcludesPastPoints(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	series := ForecastSeries{
		{TimestampUtc: now.Add(-6 * time.Hour)},                 // past
		{TimestampUtc: now.Add(4 * time.Hour)},                  // tomorrow 03:00
		{TimestampUtc: now.Add(7 * time.Hour)},                  // tomorrow 06:00
		{TimestampUtc: now.AddDate(0, 0, 2).Add(-2 * time.Hour)}, // day after
	}
	strip := series.DailyStrip(now, time.UTC)
	if len(strip) != 2 {
		t.Fatalf("len(strip) = %d, want 2", len(strip))
	}
	if !strip[0].TimestampUtc.Equal(now.Add(4 * time.Hour)) {
		t.Errorf("strip[0] = %v, want earliest future point of tomorrow", strip[0].TimestampUtc)
	}
}
