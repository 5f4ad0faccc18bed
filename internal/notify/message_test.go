package notify

import (
	"testing"
	"time"

	"github.com/Arianiii/morningweather/internal/models"
)

func TestSummaryBodyBuckets(t *testing.T) {
	weather := &models.CurrentWeather{
		LocationName:         "London",
		TempC:                12.8,
		ConditionDescription: "Light Rain",
	}

	tests := []struct {
		hour     int
		greeting string
	}{
		{0, "Good morning"},
		{11, "Good morning"},
		{12, "Good afternoon"},
		{17, "Good afternoon"},
		{18, "Good evening"},
		{19, "Good evening"},
		{20, "Good night"},
		{23, "Good night"},
	}
	for _, tt := range tests {
		now := time.Date(2026, 3, 15, tt.hour, 0, 0, 0, time.UTC)
		body := SummaryBody(now, weather)
		want := tt.greeting + "! It's 12° in London with light rain."
		if body != want {
			t.Errorf("hour %d: body = %q, want %q", tt.hour, body, want)
		}
	}
}

func TestSummaryBodyTruncatesTemperature(t *testing.T) {
	weather := &models.CurrentWeather{
		LocationName:         "Oslo",
		TempC:                -0.9,
		ConditionDescription: "Snow",
	}
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	want := "Good morning! It's 0° in Oslo with snow."
	if got := SummaryBody(now, weather); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
