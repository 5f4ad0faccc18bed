// Package weather performs the two remote fetches (current conditions and
// 5-day/3-hour forecast) for a GeoPoint and enforces the ordering and
// partial-failure rules between them.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Arianiii/morningweather/internal/httputil"
	"github.com/Arianiii/morningweather/internal/metrics"
	"github.com/Arianiii/morningweather/internal/models"
)

const defaultBaseURL = "https://api.openweathermap.org"

// ErrInvalidRequest means the request URL could not be built. Should never
// happen with valid coordinates.
var ErrInvalidRequest = errors.New("invalid weather request")

// FetchError is a failed current-conditions fetch. It halts the pipeline.
type FetchError struct {
	Status int // HTTP status, 0 for transport/decode failures
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("weather fetch failed: status %d", e.Status)
	}
	return fmt.Sprintf("weather fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ForecastError is a failed forecast fetch after current conditions already
// succeeded. Non-blocking: the current weather stays published.
type ForecastError struct {
	Err error
}

func (e *ForecastError) Error() string { return fmt.Sprintf("forecast fetch failed: %v", e.Err) }
func (e *ForecastError) Unwrap() error { return e.Err }

// Client speaks to the OpenWeatherMap current-conditions and forecast
// endpoints with retries, a circuit breaker, and rate limiting.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewClient(apiKey string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  httputil.NewClient(),
		breaker: cb,
		// Free-tier budget is 60 calls/min; stay well under it.
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp    float64 `json:"temp"`
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

// FetchCurrent fetches current conditions for point. Any failure (transport,
// non-200 status, decode) is reported as a *FetchError.
func (c *Client) FetchCurrent(ctx context.Context, point models.GeoPoint) (*models.CurrentWeather, error) {
	body, status, err := c.get(ctx, "/data/2.5/weather", "weather", point)
	if err != nil {
		return nil, &FetchError{Status: status, Err: err}
	}

	var data currentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("unmarshal: %w", err)}
	}

	w := &models.CurrentWeather{
		LocationName: data.Name,
		TempC:        data.Main.Temp,
		FeelsLikeC:   data.Main.FeelsLike,
		TempMinC:     data.Main.TempMin,
		TempMaxC:     data.Main.TempMax,
		HumidityPct:  data.Main.Humidity,
		PressureHPa:  data.Main.Pressure,
		WindSpeedMps: data.Wind.Speed,
		VisibilityM:  data.Visibility,
		SunriseUtc:   time.Unix(data.Sys.Sunrise, 0).UTC(),
		SunsetUtc:    time.Unix(data.Sys.Sunset, 0).UTC(),
	}
	if len(data.Weather) > 0 {
		w.ConditionMain = data.Weather[0].Main
		w.ConditionDescription = data.Weather[0].Description
		w.Icon = data.Weather[0].Icon
	}
	return w, nil
}

// FetchForecast fetches the 5-day/3-hour series for point.
func (c *Client) FetchForecast(ctx context.Context, point models.GeoPoint) (models.ForecastSeries, error) {
	body, _, err := c.get(ctx, "/data/2.5/forecast", "forecast", point)
	if err != nil {
		return nil, err
	}

	var data forecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	series := make(models.ForecastSeries, 0, len(data.List))
	for _, item := range data.List {
		p := models.ForecastPoint{
			TimestampUtc: time.Unix(item.Dt, 0).UTC(),
			TempC:        item.Main.Temp,
			TempMinC:     item.Main.TempMin,
			TempMaxC:     item.Main.TempMax,
		}
		if len(item.Weather) > 0 {
			p.ConditionMain = item.Weather[0].Main
			p.Icon = item.Weather[0].Icon
		}
		series = append(series, p)
	}
	return series, nil
}

// get runs one endpoint call with rate limiting, the circuit breaker, and
// retries on transient failures. Non-retryable failures (4xx other than 429,
// transport errors) short-circuit via backoff.Permanent.
func (c *Client) get(ctx context.Context, path, endpoint string, point models.GeoPoint) ([]byte, int, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%.6f", point.Latitude))
	values.Set("lon", fmt.Sprintf("%.6f", point.Longitude))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	reqURL.RawQuery = values.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var body []byte
	var status int
	started := time.Now()

	operation := func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			}
			resp, err := c.client.Do(req)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("fetch %s: %w", endpoint, err))
			}
			defer resp.Body.Close()

			status = resp.StatusCode
			metrics.WeatherAPICallsTotal.WithLabelValues(endpoint, fmt.Sprint(resp.StatusCode)).Inc()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return nil, backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, string(b)))
			}

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("read body: %w", err))
			}
			return b, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = result.([]byte)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, status, err
	}

	metrics.WeatherAPILatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	return body, status, nil
}
