package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Arianiii/morningweather/internal/models"
)

// SummaryBody builds the daily summary text. The greeting bucket is picked
// from the local time at schedule time: morning before 12:00, afternoon
// before 18:00, evening before 20:00, night otherwise.
func SummaryBody(localNow time.Time, weather *models.CurrentWeather) string {
	var greeting string
	switch hour := localNow.Hour(); {
	case hour < 12:
		greeting = "Good morning"
	case hour < 18:
		greeting = "Good afternoon"
	case hour < 20:
		greeting = "Good evening"
	default:
		greeting = "Good night"
	}

	return fmt.Sprintf("%s! It's %d° in %s with %s.",
		greeting,
		models.TruncC(weather.TempC),
		weather.LocationName,
		strings.ToLower(weather.ConditionDescription),
	)
}
