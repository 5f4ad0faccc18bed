package models

import (
	"time"

	"github.com/google/uuid"
)

// GeoPoint is a latitude/longitude pair. Value type, equality by coordinate.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// SavedLocation is a named point the user has viewed or kept. Never mutated,
// only appended to or removed from the saved list.
type SavedLocation struct {
	ID        uuid.UUID
	Name      string
	Latitude  float64
	Longitude float64
}

func (l SavedLocation) Point() GeoPoint {
	return GeoPoint{Latitude: l.Latitude, Longitude: l.Longitude}
}

// CurrentWeather is an instantaneous snapshot for one location. It is
// replaced wholesale on every fetch, never partially updated.
type CurrentWeather struct {
	LocationName         string
	TempC                float64
	FeelsLikeC           float64
	TempMinC             float64
	TempMaxC             float64
	HumidityPct          int
	PressureHPa          float64
	WindSpeedMps         float64
	VisibilityM          *int
	ConditionMain        string
	ConditionDescription string
	Icon                 string
	SunriseUtc           time.Time
	SunsetUtc            time.Time
}

// IsDaytime reports whether now falls in [sunrise, sunset). False exactly at
// sunset and before sunrise.
func (w CurrentWeather) IsDaytime(now time.Time) bool {
	return !now.Before(w.SunriseUtc) && now.Before(w.SunsetUtc)
}

// ForecastPoint is a single 3-hour forecast step.
type ForecastPoint struct {
	TimestampUtc  time.Time
	TempC         float64
	TempMinC      float64
	TempMaxC      float64
	ConditionMain string
	Icon          string
}

// ForecastSeries is an ordered sequence of 3-hour points covering up to 5 days.
type ForecastSeries []ForecastPoint

// PermissionState is the device location-authorization state. It transitions
// only via OS callback; nothing here assumes a transition happened without
// being told.
type PermissionState int

const (
	PermissionNotDetermined PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (s PermissionState) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "notDetermined"
	}
}

// AlarmCondition is the weather condition a one-time alarm is labeled with.
type AlarmCondition string

const (
	ConditionRain      AlarmCondition = "Rain"
	ConditionSnow      AlarmCondition = "Snow"
	ConditionHeavyWind AlarmCondition = "Heavy Wind"
)

// NotificationConfig holds the persisted notification preferences. The daily
// summary time defaults to 08:00 when unset.
type NotificationConfig struct {
	DailyHour      int
	DailyMinute    int
	AlarmHour      *int
	AlarmMinute    *int
	AlarmCondition *AlarmCondition
	AlarmLocation  *SavedLocation
}

const (
	DefaultDailyHour   = 8
	DefaultDailyMinute = 0
)

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{DailyHour: DefaultDailyHour, DailyMinute: DefaultDailyMinute}
}
