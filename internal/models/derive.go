package models

import "time"

// Display-oriented numeric semantics: temperatures are truncated, not
// rounded. Wind is m/s converted to km/h then truncated; visibility is
// meters to whole kilometers.

// TruncC truncates a temperature to integer Celsius.
func TruncC(c float64) int {
	return int(c)
}

// WindKmh converts a wind speed in m/s to truncated km/h.
func WindKmh(mps float64) int {
	return int(mps * 3.6)
}

// VisibilityKm converts visibility in meters to whole kilometers.
func VisibilityKm(m int) int {
	return m / 1000
}

const (
	hourlyStripLen = 8
	dailyStripLen  = 5
)

// HourlyStrip returns the next 8 points at or after now.
func (s ForecastSeries) HourlyStrip(now time.Time) ForecastSeries {
	var strip ForecastSeries
	for _, p := range s {
		if p.TimestampUtc.Before(now) {
			continue
		}
		strip = append(strip, p)
		if len(strip) == hourlyStripLen {
			break
		}
	}
	return strip
}

// DailyStrip returns the earliest future point per distinct calendar day in
// loc, excluding today, sorted by day ascending, at most 5 entries. The
// series is already time-ordered, so the first point seen for a day is the
// earliest.
func (s ForecastSeries) DailyStrip(now time.Time, loc *time.Location) ForecastSeries {
	today := now.In(loc).Format("2006-01-02")
	seen := make(map[string]bool)

	var strip ForecastSeries
	for _, p := range s {
		if p.TimestampUtc.Before(now) {
			continue
		}
		day := p.TimestampUtc.In(loc).Format("2006-01-02")
		if day == today || seen[day] {
			continue
		}
		seen[day] = true
		strip = append(strip, p)
		if len(strip) == dailyStripLen {
			break
		}
	}
	return strip
}
