package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Arianiii/morningweather/internal/api"
	"github.com/Arianiii/morningweather/internal/location"
	"github.com/Arianiii/morningweather/internal/models"
	"github.com/Arianiii/morningweather/internal/notify"
	"github.com/Arianiii/morningweather/internal/orchestrator"
	"github.com/Arianiii/morningweather/internal/permission"
	"github.com/Arianiii/morningweather/internal/weather"
)

type ServeCmd struct {
	Port     string `env:"PORT" default:"8080" help:"HTTP server port."`
	NoNotify bool   `help:"Disable local notification delivery."`
}

func (cmd *ServeCmd) Run(a *app) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	notifier := notify.NewLocalNotifier(a.loc, !cmd.NoNotify, a.log)
	scheduler := notify.NewScheduler(notifier, st, a.loc, a.log)
	client := weather.NewClient(a.APIKey)
	gateway := weather.NewGateway(client, st, scheduler, a.log)
	gate := permission.New(staticAuthorizer{granted: !a.DenyGPS}, a.log)
	resolver := location.NewResolver(staticLocator{point: a.devicePoint()}, location.NewGeocodeClient(a.APIKey), a.log)
	orch := orchestrator.New(gate, resolver, gateway, st, a.log)
	server := api.NewServer(orch, st, cmd.Port, a.loc, a.log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier.Start(ctx)

	// Re-arm a persisted condition alarm across restarts.
	if cfg, err := st.NotificationConfig(); err == nil && cfg.AlarmCondition != nil && cfg.AlarmLocation != nil {
		hour, minute := models.DefaultDailyHour, models.DefaultDailyMinute
		if cfg.AlarmHour != nil {
			hour = *cfg.AlarmHour
		}
		if cfg.AlarmMinute != nil {
			minute = *cfg.AlarmMinute
		}
		scheduler.ScheduleConditionAlarm(hour, minute, *cfg.AlarmCondition, *cfg.AlarmLocation)
	}

	go orch.Start(ctx)
	return server.Run(ctx)
}

type FetchCmd struct {
	Lat *float64 `help:"Latitude to fetch for (defaults to the device fix)."`
	Lon *float64 `help:"Longitude to fetch for (defaults to the device fix)."`
}

func (cmd *FetchCmd) Run(a *app) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	point := a.devicePoint()
	if cmd.Lat != nil && cmd.Lon != nil {
		point = models.GeoPoint{Latitude: *cmd.Lat, Longitude: *cmd.Lon}
	}

	// One-shot runs never deliver notifications; the scheduler degrades to
	// a no-op when the notifier reports unauthorized.
	notifier := notify.NewLocalNotifier(a.loc, false, a.log)
	scheduler := notify.NewScheduler(notifier, st, a.loc, a.log)
	gateway := weather.NewGateway(weather.NewClient(a.APIKey), st, scheduler, a.log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := gateway.Fetch(ctx, point)
	if err != nil {
		return err
	}

	out := map[string]any{
		"location":    result.Current.LocationName,
		"temp_c":      models.TruncC(result.Current.TempC),
		"feels_like":  models.TruncC(result.Current.FeelsLikeC),
		"condition":   result.Current.ConditionDescription,
		"wind_kmh":    models.WindKmh(result.Current.WindSpeedMps),
		"humidity":    result.Current.HumidityPct,
		"is_daytime":  result.Current.IsDaytime(time.Now()),
		"forecast_3h": len(result.Forecast),
	}
	if result.ForecastErr != nil {
		out["forecast_error"] = result.ForecastErr.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type SearchCmd struct {
	Query []string `arg:"" help:"Place name to search for."`
}

func (cmd *SearchCmd) Run(a *app) error {
	geocoder := location.NewGeocodeClient(a.APIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	candidates, err := geocoder.Search(ctx, strings.Join(cmd.Query, " "))
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, c := range candidates {
		fmt.Printf("%s  (%.4f, %.4f)\n", c.Title, c.Point.Latitude, c.Point.Longitude)
	}
	return nil
}

type LocationsCmd struct {
	List   ListLocationsCmd   `cmd:"" default:"withargs" help:"List saved locations."`
	Remove RemoveLocationsCmd `cmd:"" help:"Remove saved locations by index."`
}

type ListLocationsCmd struct{}

func (ListLocationsCmd) Run(a *app) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.Saved()
	if err != nil {
		return err
	}
	last, err := st.LastViewed()
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Println("no saved locations")
		return nil
	}
	for i, l := range saved {
		marker := " "
		if last != nil && last.Name == l.Name {
			marker = "*"
		}
		fmt.Printf("%s %d  %s  (%.4f, %.4f)\n", marker, i, l.Name, l.Latitude, l.Longitude)
	}
	return nil
}

type RemoveLocationsCmd struct {
	Indices []int `arg:"" help:"Indices to remove, as shown by list."`
}

func (cmd *RemoveLocationsCmd) Run(a *app) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Remove(cmd.Indices)
}

type NotifyCmd struct {
	SetTime NotifySetTimeCmd `cmd:"" name:"set-time" help:"Set the daily summary time."`
	Alarm   NotifyAlarmCmd   `cmd:"" help:"Set a next-day condition alarm."`
	Clear   NotifyClearCmd   `cmd:"" help:"Clear the condition alarm."`
}

type NotifySetTimeCmd struct {
	Time string `arg:"" help:"Daily summary time, HH:MM."`
}

func (cmd *NotifySetTimeCmd) Run(a *app) error {
	at, err := time.Parse("15:04", cmd.Time)
	if err != nil {
		return fmt.Errorf("invalid time %q, want HH:MM", cmd.Time)
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, err := st.NotificationConfig()
	if err != nil {
		return err
	}
	cfg.DailyHour = at.Hour()
	cfg.DailyMinute = at.Minute()
	if err := st.SetNotificationConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("daily summary time set to %02d:%02d\n", cfg.DailyHour, cfg.DailyMinute)
	return nil
}

type NotifyAlarmCmd struct {
	Condition string `arg:"" enum:"rain,snow,heavy-wind" help:"Condition label: rain, snow, or heavy-wind."`
	Location  string `arg:"" help:"Saved location name the alarm is for."`
	At        string `default:"08:00" help:"Alarm time on the following day, HH:MM."`
}

func (cmd *NotifyAlarmCmd) Run(a *app) error {
	at, err := time.Parse("15:04", cmd.At)
	if err != nil {
		return fmt.Errorf("invalid time %q, want HH:MM", cmd.At)
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.Saved()
	if err != nil {
		return err
	}
	var loc *models.SavedLocation
	for i := range saved {
		if saved[i].Name == cmd.Location {
			loc = &saved[i]
			break
		}
	}
	if loc == nil {
		return fmt.Errorf("no saved location named %q", cmd.Location)
	}

	condition := map[string]models.AlarmCondition{
		"rain":       models.ConditionRain,
		"snow":       models.ConditionSnow,
		"heavy-wind": models.ConditionHeavyWind,
	}[cmd.Condition]

	cfg, err := st.NotificationConfig()
	if err != nil {
		return err
	}
	hour, minute := at.Hour(), at.Minute()
	cfg.AlarmHour = &hour
	cfg.AlarmMinute = &minute
	cfg.AlarmCondition = &condition
	cfg.AlarmLocation = loc
	if err := st.SetNotificationConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("alarm set: %s in %s at %02d:%02d tomorrow\n", condition, loc.Name, hour, minute)
	return nil
}

type NotifyClearCmd struct{}

func (NotifyClearCmd) Run(a *app) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, err := st.NotificationConfig()
	if err != nil {
		return err
	}
	cfg.AlarmHour = nil
	cfg.AlarmMinute = nil
	cfg.AlarmCondition = nil
	cfg.AlarmLocation = nil
	if err := st.SetNotificationConfig(cfg); err != nil {
		return err
	}
	fmt.Println("alarm cleared")
	return nil
}
