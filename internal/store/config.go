package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Arianiii/morningweather/internal/models"
)

// NotificationConfig returns the persisted notification preferences, falling
// back to the defaults (daily summary at 08:00) when nothing is stored.
func (s *Store) NotificationConfig() (models.NotificationConfig, error) {
	row := s.db.QueryRow(`
		SELECT daily_hour, daily_minute, alarm_hour, alarm_minute, alarm_condition,
		       alarm_location_id, alarm_location_name, alarm_latitude, alarm_longitude
		FROM notification_config WHERE slot = 1
	`)

	var cfg models.NotificationConfig
	var alarmHour, alarmMinute sql.NullInt64
	var condition, locID, locName sql.NullString
	var lat, lon sql.NullFloat64

	err := row.Scan(&cfg.DailyHour, &cfg.DailyMinute, &alarmHour, &alarmMinute, &condition,
		&locID, &locName, &lat, &lon)
	if err == sql.ErrNoRows {
		return models.DefaultNotificationConfig(), nil
	}
	if err != nil {
		return models.NotificationConfig{}, err
	}

	if alarmHour.Valid {
		h := int(alarmHour.Int64)
		cfg.AlarmHour = &h
	}
	if alarmMinute.Valid {
		m := int(alarmMinute.Int64)
		cfg.AlarmMinute = &m
	}
	if condition.Valid {
		c := models.AlarmCondition(condition.String)
		cfg.AlarmCondition = &c
	}
	if locID.Valid && locName.Valid && lat.Valid && lon.Valid {
		id, err := uuid.Parse(locID.String)
		if err != nil {
			return models.NotificationConfig{}, fmt.Errorf("parse alarm location id %q: %w", locID.String, err)
		}
		cfg.AlarmLocation = &models.SavedLocation{
			ID:        id,
			Name:      locName.String,
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
		}
	}
	return cfg, nil
}

// SetNotificationConfig overwrites the persisted notification preferences.
func (s *Store) SetNotificationConfig(cfg models.NotificationConfig) error {
	var alarmHour, alarmMinute sql.NullInt64
	var condition, locID, locName sql.NullString
	var lat, lon sql.NullFloat64

	if cfg.AlarmHour != nil {
		alarmHour = sql.NullInt64{Int64: int64(*cfg.AlarmHour), Valid: true}
	}
	if cfg.AlarmMinute != nil {
		alarmMinute = sql.NullInt64{Int64: int64(*cfg.AlarmMinute), Valid: true}
	}
	if cfg.AlarmCondition != nil {
		condition = sql.NullString{String: string(*cfg.AlarmCondition), Valid: true}
	}
	if cfg.AlarmLocation != nil {
		locID = sql.NullString{String: cfg.AlarmLocation.ID.String(), Valid: true}
		locName = sql.NullString{String: cfg.AlarmLocation.Name, Valid: true}
		lat = sql.NullFloat64{Float64: cfg.AlarmLocation.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: cfg.AlarmLocation.Longitude, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO notification_config (slot, daily_hour, daily_minute, alarm_hour, alarm_minute,
		    alarm_condition, alarm_location_id, alarm_location_name, alarm_latitude, alarm_longitude, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET
			daily_hour = excluded.daily_hour,
			daily_minute = excluded.daily_minute,
			alarm_hour = excluded.alarm_hour,
			alarm_minute = excluded.alarm_minute,
			alarm_condition = excluded.alarm_condition,
			alarm_location_id = excluded.alarm_location_id,
			alarm_location_name = excluded.alarm_location_name,
			alarm_latitude = excluded.alarm_latitude,
			alarm_longitude = excluded.alarm_longitude,
			updated_at = excluded.updated_at
	`, cfg.DailyHour, cfg.DailyMinute, alarmHour, alarmMinute, condition, locID, locName, lat, lon)
	return err
}
