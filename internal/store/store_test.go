package store

import (
	"database/sql"
	"math"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Arianiii/morningweather/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestAddAndSaved(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Add("London", models.GeoPoint{Latitude: 51.51, Longitude: -0.13}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add("Paris", models.GeoPoint{Latitude: 48.86, Longitude: 2.35}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	saved, err := store.Saved()
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("len(saved) = %d, want 2", len(saved))
	}
	if saved[0].Name != "London" || saved[1].Name != "Paris" {
		t.Errorf("order = [%s, %s], want insertion order", saved[0].Name, saved[1].Name)
	}
	if saved[0].ID == saved[1].ID {
		t.Error("IDs must be distinct")
	}
}

func TestAddDuplicateNameIgnored(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Add("London", models.GeoPoint{Latitude: 51.51, Longitude: -0.13}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Same name, different coordinates: still suppressed.
	if err := store.Add("London", models.GeoPoint{Latitude: 42.98, Longitude: -81.24}); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}

	saved, err := store.Saved()
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("len(saved) = %d, want exactly 1", len(saved))
	}
	if saved[0].Latitude != 51.51 {
		t.Errorf("Latitude = %v, want original entry kept", saved[0].Latitude)
	}
}

func TestAddCaseSensitive(t *testing.T) {
	store := setupTestStore(t)

	store.Add("London", models.GeoPoint{})
	store.Add("london", models.GeoPoint{})

	saved, err := store.Saved()
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("len(saved) = %d, want 2 (match is case-sensitive)", len(saved))
	}
}

func TestRemove(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"A", "B", "C", "D"} {
		if err := store.Add(name, models.GeoPoint{}); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}

	if err := store.Remove([]int{0, 2}); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	saved, err := store.Saved()
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("len(saved) = %d, want 2", len(saved))
	}
	if saved[0].Name != "B" || saved[1].Name != "D" {
		t.Errorf("remaining = [%s, %s], want [B, D]", saved[0].Name, saved[1].Name)
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	store := setupTestStore(t)
	store.Add("A", models.GeoPoint{})

	if err := store.Remove([]int{3}); err == nil {
		t.Error("Remove out-of-range index returned nil error")
	}

	saved, _ := store.Saved()
	if len(saved) != 1 {
		t.Errorf("len(saved) = %d, want 1 (failed remove must not mutate)", len(saved))
	}
}

func TestLastViewedRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.LastViewed()
	if err != nil {
		t.Fatalf("LastViewed: %v", err)
	}
	if got != nil {
		t.Fatalf("LastViewed = %+v, want nil before first set", got)
	}

	point := models.GeoPoint{Latitude: 37.3323, Longitude: -122.0312}
	if err := store.SetLastViewed("Cupertino", point); err != nil {
		t.Fatalf("SetLastViewed: %v", err)
	}

	got, err = store.LastViewed()
	if err != nil {
		t.Fatalf("LastViewed: %v", err)
	}
	if got == nil {
		t.Fatal("LastViewed = nil after set")
	}
	if got.Name != "Cupertino" {
		t.Errorf("Name = %q, want Cupertino", got.Name)
	}
	if math.Abs(got.Latitude-point.Latitude) > 1e-9 || math.Abs(got.Longitude-point.Longitude) > 1e-9 {
		t.Errorf("point = (%v, %v), want (%v, %v)", got.Latitude, got.Longitude, point.Latitude, point.Longitude)
	}
}

func TestSetLastViewedOverwrites(t *testing.T) {
	store := setupTestStore(t)

	store.SetLastViewed("Cupertino", models.GeoPoint{Latitude: 37.33, Longitude: -122.03})
	store.SetLastViewed("London", models.GeoPoint{Latitude: 51.51, Longitude: -0.13})

	got, err := store.LastViewed()
	if err != nil {
		t.Fatalf("LastViewed: %v", err)
	}
	if got.Name != "London" {
		t.Errorf("Name = %q, want London (overwritten, not appended)", got.Name)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM last_viewed`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want single record", count)
	}
}

func TestNotificationConfigDefaults(t *testing.T) {
	store := setupTestStore(t)

	cfg, err := store.NotificationConfig()
	if err != nil {
		t.Fatalf("NotificationConfig: %v", err)
	}
	if cfg.DailyHour != 8 || cfg.DailyMinute != 0 {
		t.Errorf("daily time = %02d:%02d, want 08:00 default", cfg.DailyHour, cfg.DailyMinute)
	}
	if cfg.AlarmCondition != nil {
		t.Errorf("AlarmCondition = %v, want nil", *cfg.AlarmCondition)
	}
}

func TestNotificationConfigRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Add("Bright", models.GeoPoint{Latitude: -36.73, Longitude: 146.96}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	saved, _ := store.Saved()

	hour, minute := 7, 30
	cond := models.ConditionSnow
	in := models.NotificationConfig{
		DailyHour:      6,
		DailyMinute:    45,
		AlarmHour:      &hour,
		AlarmMinute:    &minute,
		AlarmCondition: &cond,
		AlarmLocation:  &saved[0],
	}
	if err := store.SetNotificationConfig(in); err != nil {
		t.Fatalf("SetNotificationConfig: %v", err)
	}

	out, err := store.NotificationConfig()
	if err != nil {
		t.Fatalf("NotificationConfig: %v", err)
	}
	if out.DailyHour != 6 || out.DailyMinute != 45 {
		t.Errorf("daily time = %02d:%02d, want 06:45", out.DailyHour, out.DailyMinute)
	}
	if out.AlarmHour == nil || *out.AlarmHour != 7 || out.AlarmMinute == nil || *out.AlarmMinute != 30 {
		t.Errorf("alarm time = %v:%v, want 7:30", out.AlarmHour, out.AlarmMinute)
	}
	if out.AlarmCondition == nil || *out.AlarmCondition != models.ConditionSnow {
		t.Errorf("AlarmCondition = %v, want Snow", out.AlarmCondition)
	}
	if out.AlarmLocation == nil || out.AlarmLocation.Name != "Bright" || out.AlarmLocation.ID != saved[0].ID {
		t.Errorf("AlarmLocation = %+v", out.AlarmLocation)
	}
}
