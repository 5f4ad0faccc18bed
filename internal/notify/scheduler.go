// Package notify converts fetched weather into local reminders. Scheduling
// is best-effort: failures are logged and never surfaced to the user or
// allowed to block the fetch pipeline.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/metrics"
	"github.com/Arianiii/morningweather/internal/models"
)

// DailySummaryID identifies the single repeating daily summary notification.
const DailySummaryID = "daily-summary"

// AlarmID returns the notification identifier for a condition alarm, keyed
// by location name so a new alarm replaces the previous one for that place.
func AlarmID(location models.SavedLocation) string {
	return "alarm-" + location.Name
}

// Notifier is the OS local-notification collaborator.
type Notifier interface {
	// Authorized reports whether notification permission is currently
	// granted.
	Authorized(ctx context.Context) (bool, error)
	// ScheduleRepeating schedules a daily repeating reminder at hour:minute.
	ScheduleRepeating(id string, hour, minute int, title, body string) error
	// ScheduleAt schedules a one-time reminder at the given instant.
	ScheduleAt(id string, at time.Time, title, body string) error
	// Cancel removes the pending notification with the given identifier.
	Cancel(id string) error
	// CancelAll removes every pending notification.
	CancelAll() error
}

// ConfigSource provides the persisted notification preferences.
type ConfigSource interface {
	NotificationConfig() (models.NotificationConfig, error)
}

// Scheduler drives the Notifier off fetched weather data.
type Scheduler struct {
	notifier Notifier
	config   ConfigSource
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

func NewScheduler(notifier Notifier, config ConfigSource, loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		config:   config,
		loc:      loc,
		now:      time.Now,
		log:      log.With().Str("component", "notify").Logger(),
	}
}

// ScheduleDailySummary cancels the previous daily summary and, if
// notification permission is granted, schedules a repeating daily reminder
// at the configured time. The body is chosen by the time-of-day rule at
// schedule time, not at delivery time.
func (s *Scheduler) ScheduleDailySummary(point models.GeoPoint, weather *models.CurrentWeather) {
	if err := s.notifier.Cancel(DailySummaryID); err != nil {
		s.log.Warn().Err(err).Msg("cancel previous daily summary")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	granted, err := s.notifier.Authorized(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("query notification authorization")
		return
	}
	if !granted {
		s.log.Debug().Msg("notification permission not granted, skipping daily summary")
		return
	}

	cfg, err := s.config.NotificationConfig()
	if err != nil {
		s.log.Warn().Err(err).Msg("load notification config, using defaults")
		cfg = models.DefaultNotificationConfig()
	}

	body := SummaryBody(s.now().In(s.loc), weather)
	if err := s.notifier.ScheduleRepeating(DailySummaryID, cfg.DailyHour, cfg.DailyMinute, "MorningWeather", body); err != nil {
		s.log.Warn().Err(err).Msg("schedule daily summary")
		return
	}
	metrics.NotificationsScheduledTotal.WithLabelValues("daily_summary").Inc()
	s.log.Info().
		Str("location", weather.LocationName).
		Str("time", fmt.Sprintf("%02d:%02d", cfg.DailyHour, cfg.DailyMinute)).
		Msg("daily summary scheduled")
}

// ScheduleConditionAlarm cancels any alarm for the same location and
// schedules a one-time reminder at hour:minute on the following calendar
// day. The alarm is a plain labeled reminder; the forecast is not evaluated
// against the condition before it fires.
func (s *Scheduler) ScheduleConditionAlarm(hour, minute int, condition models.AlarmCondition, location models.SavedLocation) {
	id := AlarmID(location)
	if err := s.notifier.Cancel(id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("cancel previous alarm")
	}

	now := s.now().In(s.loc)
	at := time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, s.loc)

	body := fmt.Sprintf("Weather alarm: %s expected in %s.", condition, location.Name)
	if err := s.notifier.ScheduleAt(id, at, "MorningWeather Alarm", body); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("schedule condition alarm")
		return
	}
	metrics.NotificationsScheduledTotal.WithLabelValues("condition_alarm").Inc()
	s.log.Info().
		Str("location", location.Name).
		Str("condition", string(condition)).
		Time("at", at).
		Msg("condition alarm scheduled")
}

// ClearAll cancels every pending local notification.
func (s *Scheduler) ClearAll() {
	if err := s.notifier.CancelAll(); err != nil {
		s.log.Warn().Err(err).Msg("cancel all notifications")
	}
}
