package store

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Arianiii/morningweather/internal/models"
)

// Saved returns the saved-location list in insertion order.
func (s *Store) Saved() ([]models.SavedLocation, error) {
	rows, err := s.db.Query(`
		SELECT id, name, latitude, longitude
		FROM saved_locations
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.SavedLocation
	for rows.Next() {
		var idStr string
		var loc models.SavedLocation
		if err := rows.Scan(&idStr, &loc.Name, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse saved location id %q: %w", idStr, err)
		}
		loc.ID = id
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// Add appends a new saved location unless an entry with the same name
// already exists. The match is exact and case-sensitive; duplicates are
// silently ignored.
func (s *Store) Add(name string, point models.GeoPoint) error {
	_, err := s.db.Exec(`
		INSERT INTO saved_locations (id, name, latitude, longitude, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM saved_locations))
		ON CONFLICT(name) DO NOTHING
	`, uuid.New().String(), name, point.Latitude, point.Longitude)
	return err
}

// Remove deletes the saved locations at the given insertion-order indices.
func (s *Store) Remove(indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	locations, err := s.Saved()
	if err != nil {
		return err
	}

	// Delete from the highest index down so earlier removals don't shift
	// later ones.
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, idx := range sorted {
		if idx < 0 || idx >= len(locations) {
			tx.Rollback()
			return fmt.Errorf("remove: index %d out of range [0,%d)", idx, len(locations))
		}
		if _, err := tx.Exec(`DELETE FROM saved_locations WHERE id = ?`, locations[idx].ID.String()); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SetLastViewed overwrites the single last-viewed record.
func (s *Store) SetLastViewed(name string, point models.GeoPoint) error {
	_, err := s.db.Exec(`
		INSERT INTO last_viewed (slot, id, name, latitude, longitude, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at
	`, uuid.New().String(), name, point.Latitude, point.Longitude)
	return err
}

// LastViewed returns the last-viewed location, or nil when none is recorded.
func (s *Store) LastViewed() (*models.SavedLocation, error) {
	row := s.db.QueryRow(`SELECT id, name, latitude, longitude FROM last_viewed WHERE slot = 1`)

	var idStr string
	var loc models.SavedLocation
	err := row.Scan(&idStr, &loc.Name, &loc.Latitude, &loc.Longitude)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse last viewed id %q: %w", idStr, err)
	}
	loc.ID = id
	return &loc, nil
}
