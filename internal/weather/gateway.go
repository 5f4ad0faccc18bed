package weather

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/metrics"
	"github.com/Arianiii/morningweather/internal/models"
)

// Fetcher is the remote-API surface the gateway drives. *Client implements
// it; tests substitute fakes.
type Fetcher interface {
	FetchCurrent(ctx context.Context, point models.GeoPoint) (*models.CurrentWeather, error)
	FetchForecast(ctx context.Context, point models.GeoPoint) (models.ForecastSeries, error)
}

// LocationRecorder persists the outcome of a successful fetch.
type LocationRecorder interface {
	SetLastViewed(name string, point models.GeoPoint) error
	Add(name string, point models.GeoPoint) error
}

// SummaryScheduler reschedules the daily summary off fresh weather.
type SummaryScheduler interface {
	ScheduleDailySummary(point models.GeoPoint, weather *models.CurrentWeather)
}

// Result is one completed fetch sequence. ForecastErr is set when current
// conditions succeeded but the forecast did not; the forecast is then nil and
// the current weather still stands.
type Result struct {
	Current     *models.CurrentWeather
	Forecast    models.ForecastSeries
	ForecastErr error
}

// Gateway runs the two dependent fetches in strict order and, on full
// success, hands the result to the store and the notification scheduler.
type Gateway struct {
	api      Fetcher
	recorder LocationRecorder
	summary  SummaryScheduler
	log      zerolog.Logger
}

func NewGateway(api Fetcher, recorder LocationRecorder, summary SummaryScheduler, log zerolog.Logger) *Gateway {
	return &Gateway{
		api:      api,
		recorder: recorder,
		summary:  summary,
		log:      log.With().Str("component", "weather").Logger(),
	}
}

// Fetch resolves (current, forecast) for point. Current conditions must
// complete before the forecast is attempted; a current failure aborts the
// sequence and the forecast is never requested. A forecast failure is
// downgraded into Result.ForecastErr.
func (g *Gateway) Fetch(ctx context.Context, point models.GeoPoint) (*Result, error) {
	current, err := g.api.FetchCurrent(ctx, point)
	if err != nil {
		metrics.FetchSequencesTotal.WithLabelValues("current_failed").Inc()
		return nil, err
	}

	forecast, ferr := g.api.FetchForecast(ctx, point)
	if ferr != nil {
		g.log.Warn().Err(ferr).Str("location", current.LocationName).Msg("forecast fetch failed, keeping current conditions")
		metrics.FetchSequencesTotal.WithLabelValues("forecast_failed").Inc()
		return &Result{Current: current, ForecastErr: &ForecastError{Err: ferr}}, nil
	}

	metrics.FetchSequencesTotal.WithLabelValues("success").Inc()

	if name := current.LocationName; name != "" {
		if err := g.recorder.SetLastViewed(name, point); err != nil {
			g.log.Warn().Err(err).Msg("persist last viewed location")
		}
		if err := g.recorder.Add(name, point); err != nil {
			g.log.Warn().Err(err).Msg("persist saved location")
		}
	}
	g.summary.ScheduleDailySummary(point, current)

	return &Result{Current: current, Forecast: forecast}, nil
}
