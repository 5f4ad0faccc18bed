// Package location resolves a device position or a free-text place query
// into a normalized GeoPoint.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/models"
)

var (
	// ErrAccessDenied is surfaced when location permission is missing or
	// refused.
	ErrAccessDenied = errors.New("location access denied")
	// ErrUnavailable is surfaced when the device returns no fix.
	ErrUnavailable = errors.New("location unavailable")
)

// DeviceLocator is the OS location-service collaborator for a one-shot fix.
type DeviceLocator interface {
	CurrentLocation(ctx context.Context) (models.GeoPoint, error)
}

// Candidate is one place-search result.
type Candidate struct {
	Title string
	Point models.GeoPoint
}

// Searcher produces place candidates for a free-text query. Queries may race;
// stale results are the caller's problem to discard.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Resolver wraps one-shot GPS resolution and free-text place search.
type Resolver struct {
	locator  DeviceLocator
	searcher Searcher
	log      zerolog.Logger
}

func NewResolver(locator DeviceLocator, searcher Searcher, log zerolog.Logger) *Resolver {
	return &Resolver{
		locator:  locator,
		searcher: searcher,
		log:      log.With().Str("component", "location").Logger(),
	}
}

// ResolveCurrent requests a single device fix. The caller must have checked
// permission first; a missing fix maps to ErrUnavailable.
func (r *Resolver) ResolveCurrent(ctx context.Context) (models.GeoPoint, error) {
	point, err := r.locator.CurrentLocation(ctx)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrUnavailable) {
			return models.GeoPoint{}, err
		}
		return models.GeoPoint{}, fmt.Errorf("resolve current location: %w", err)
	}
	r.log.Debug().
		Float64("lat", point.Latitude).
		Float64("lon", point.Longitude).
		Msg("resolved device location")
	return point, nil
}

// Search returns up to the provider limit of place candidates for query.
func (r *Resolver) Search(ctx context.Context, query string) ([]Candidate, error) {
	candidates, err := r.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return candidates, nil
}
