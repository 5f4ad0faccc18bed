package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/models"
)

type scheduledCall struct {
	id     string
	hour   int
	minute int
	at     time.Time
	body   string
}

type fakeNotifier struct {
	authorized bool
	cancelled  []string
	repeating  []scheduledCall
	oneTime    []scheduledCall
	cancelAll  int
}

func (f *fakeNotifier) Authorized(ctx context.Context) (bool, error) { return f.authorized, nil }

func (f *fakeNotifier) ScheduleRepeating(id string, hour, minute int, title, body string) error {
	f.repeating = append(f.repeating, scheduledCall{id: id, hour: hour, minute: minute, body: body})
	return nil
}

func (f *fakeNotifier) ScheduleAt(id string, at time.Time, title, body string) error {
	f.oneTime = append(f.oneTime, scheduledCall{id: id, at: at, body: body})
	return nil
}

func (f *fakeNotifier) Cancel(id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeNotifier) CancelAll() error {
	f.cancelAll++
	return nil
}

type fakeConfig struct {
	cfg models.NotificationConfig
}

func (f *fakeConfig) NotificationConfig() (models.NotificationConfig, error) {
	return f.cfg, nil
}

func newTestScheduler(notifier *fakeNotifier, cfg models.NotificationConfig, now time.Time) *Scheduler {
	s := NewScheduler(notifier, &fakeConfig{cfg: cfg}, time.UTC, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestScheduleDailySummary(t *testing.T) {
	notifier := &fakeNotifier{authorized: true}
	cfg := models.NotificationConfig{DailyHour: 7, DailyMinute: 15}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(notifier, cfg, now)

	s.ScheduleDailySummary(models.GeoPoint{}, &models.CurrentWeather{
		LocationName:         "London",
		TempC:                14.6,
		ConditionDescription: "Overcast Clouds",
	})

	if len(notifier.cancelled) != 1 || notifier.cancelled[0] != DailySummaryID {
		t.Errorf("cancelled = %v, want previous daily summary cancelled first", notifier.cancelled)
	}
	if len(notifier.repeating) != 1 {
		t.Fatalf("repeating = %d, want 1", len(notifier.repeating))
	}
	call := notifier.repeating[0]
	if call.hour != 7 || call.minute != 15 {
		t.Errorf("time = %02d:%02d, want 07:15", call.hour, call.minute)
	}
	if !strings.Contains(call.body, "14°") || !strings.Contains(call.body, "overcast clouds") {
		t.Errorf("body = %q", call.body)
	}
	if !strings.HasPrefix(call.body, "Good morning") {
		t.Errorf("body = %q, want morning greeting at 09:00", call.body)
	}
}

func TestScheduleDailySummarySkipsWhenUnauthorized(t *testing.T) {
	notifier := &fakeNotifier{authorized: false}
	s := newTestScheduler(notifier, models.DefaultNotificationConfig(), time.Now())

	s.ScheduleDailySummary(models.GeoPoint{}, &models.CurrentWeather{LocationName: "London"})

	if len(notifier.cancelled) != 1 {
		t.Errorf("cancelled = %v, want stale summary still cancelled", notifier.cancelled)
	}
	if len(notifier.repeating) != 0 {
		t.Errorf("repeating = %d, want 0 without permission", len(notifier.repeating))
	}
}

func TestScheduleConditionAlarm(t *testing.T) {
	notifier := &fakeNotifier{authorized: true}
	now := time.Date(2026, 3, 15, 21, 30, 0, 0, time.UTC)
	s := newTestScheduler(notifier, models.DefaultNotificationConfig(), now)

	loc := models.SavedLocation{Name: "Bright", Latitude: -36.73, Longitude: 146.96}
	s.ScheduleConditionAlarm(6, 30, models.ConditionRain, loc)

	if len(notifier.cancelled) != 1 || notifier.cancelled[0] != AlarmID(loc) {
		t.Errorf("cancelled = %v, want alarm keyed by location name", notifier.cancelled)
	}
	if len(notifier.oneTime) != 1 {
		t.Fatalf("oneTime = %d, want 1", len(notifier.oneTime))
	}
	call := notifier.oneTime[0]
	want := time.Date(2026, 3, 16, 6, 30, 0, 0, time.UTC)
	if !call.at.Equal(want) {
		t.Errorf("at = %v, want next day %v", call.at, want)
	}
	if !strings.Contains(call.body, "Rain") || !strings.Contains(call.body, "Bright") {
		t.Errorf("body = %q, want condition and location named", call.body)
	}
}

func TestClearAll(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newTestScheduler(notifier, models.DefaultNotificationConfig(), time.Now())

	s.ClearAll()
	if notifier.cancelAll != 1 {
		t.Errorf("cancelAll = %d, want 1", notifier.cancelAll)
	}
}
