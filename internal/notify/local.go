package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// LocalNotifier implements Notifier for the headless binary, standing in for
// the OS notification center. Pending notifications are gocron jobs whose
// delivery is a log line.
type LocalNotifier struct {
	scheduler *gocron.Scheduler
	enabled   bool
	log       zerolog.Logger
}

// NewLocalNotifier builds a notifier delivering through sched. enabled models
// the user's notification-permission grant.
func NewLocalNotifier(loc *time.Location, enabled bool, log zerolog.Logger) *LocalNotifier {
	return &LocalNotifier{
		scheduler: gocron.NewScheduler(loc),
		enabled:   enabled,
		log:       log.With().Str("component", "notifier").Logger(),
	}
}

// Start begins delivering scheduled notifications until ctx is done.
func (n *LocalNotifier) Start(ctx context.Context) {
	n.scheduler.StartAsync()
	go func() {
		<-ctx.Done()
		n.scheduler.Stop()
	}()
}

func (n *LocalNotifier) Authorized(ctx context.Context) (bool, error) {
	return n.enabled, nil
}

func (n *LocalNotifier) ScheduleRepeating(id string, hour, minute int, title, body string) error {
	at := fmt.Sprintf("%02d:%02d", hour, minute)
	_, err := n.scheduler.Every(1).Day().At(at).Tag(id).Do(func() {
		n.deliver(id, title, body)
	})
	return err
}

func (n *LocalNotifier) ScheduleAt(id string, at time.Time, title, body string) error {
	_, err := n.scheduler.Every(1).Day().StartAt(at).LimitRunsTo(1).Tag(id).Do(func() {
		n.deliver(id, title, body)
	})
	return err
}

func (n *LocalNotifier) Cancel(id string) error {
	err := n.scheduler.RemoveByTag(id)
	if errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return nil
	}
	return err
}

func (n *LocalNotifier) CancelAll() error {
	n.scheduler.Clear()
	return nil
}

// Pending returns how many notifications are currently scheduled.
func (n *LocalNotifier) Pending() int {
	return len(n.scheduler.Jobs())
}

func (n *LocalNotifier) deliver(id, title, body string) {
	n.log.Info().Str("id", id).Str("title", title).Str("body", body).Msg("notification delivered")
}
