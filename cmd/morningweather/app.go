package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/models"
	"github.com/Arianiii/morningweather/internal/store"
)

// app carries parsed globals and shared runtime state into command Run
// methods.
type app struct {
	Globals
	log zerolog.Logger
	loc *time.Location
}

func (a *app) openStore() (*store.Store, error) {
	if dir := filepath.Dir(a.DB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return store.Open(a.DB)
}

func (a *app) devicePoint() models.GeoPoint {
	return models.GeoPoint{Latitude: a.Lat, Longitude: a.Lon}
}

// staticAuthorizer stands in for the OS permission service: the state is
// fixed by a flag and never prompts.
type staticAuthorizer struct {
	granted bool
}

func (s staticAuthorizer) Status() models.PermissionState {
	if s.granted {
		return models.PermissionGranted
	}
	return models.PermissionDenied
}

func (staticAuthorizer) Request() {}

// staticLocator stands in for the OS location service with a fixed fix.
type staticLocator struct {
	point models.GeoPoint
}

func (l staticLocator) CurrentLocation(context.Context) (models.GeoPoint, error) {
	return l.point, nil
}
