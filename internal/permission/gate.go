// Package permission tracks device location-authorization state. The OS
// owns the actual permission; state changes only enter through the
// authorization callback.
package permission

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/models"
)

// Authorizer is the OS location-service collaborator for permission. Request
// triggers the system prompt; the outcome arrives later through the
// registered authorization-change callback, never as a return value.
type Authorizer interface {
	Status() models.PermissionState
	Request()
}

// Gate caches the authorization state and exposes a single async "ensure
// permission" operation.
type Gate struct {
	auth Authorizer
	log  zerolog.Logger

	mu       sync.Mutex
	state    models.PermissionState
	waiters  []chan models.PermissionState
	onChange func(models.PermissionState)
}

func New(auth Authorizer, log zerolog.Logger) *Gate {
	return &Gate{
		auth:  auth,
		log:   log.With().Str("component", "permission").Logger(),
		state: auth.Status(),
	}
}

// Current returns the last known authorization state.
func (g *Gate) Current() models.PermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// OnChange registers the single handler re-notified on every state change.
func (g *Gate) OnChange(fn func(models.PermissionState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

// RequestAuthorization triggers the OS prompt when the state is still
// undetermined. No-op otherwise; the eventual outcome arrives via
// HandleStateChange.
func (g *Gate) RequestAuthorization() {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	if state != models.PermissionNotDetermined {
		return
	}
	g.log.Debug().Msg("requesting location authorization")
	g.auth.Request()
}

// HandleStateChange is the OS authorization-change callback. It updates the
// cached state, re-emits to the OnChange handler, and releases any Ensure
// waiters once the state is determined.
func (g *Gate) HandleStateChange(state models.PermissionState) {
	g.mu.Lock()
	g.state = state
	fn := g.onChange
	var waiters []chan models.PermissionState
	if state != models.PermissionNotDetermined {
		waiters = g.waiters
		g.waiters = nil
	}
	g.mu.Unlock()

	g.log.Info().Stringer("state", state).Msg("authorization state changed")
	if fn != nil {
		fn(state)
	}
	for _, w := range waiters {
		w <- state
	}
}

// Ensure resolves the authorization state: if it is already determined it is
// returned immediately, otherwise the OS prompt is triggered and Ensure
// suspends until the callback delivers a determined state or ctx is done.
func (g *Gate) Ensure(ctx context.Context) (models.PermissionState, error) {
	g.mu.Lock()
	if g.state != models.PermissionNotDetermined {
		state := g.state
		g.mu.Unlock()
		return state, nil
	}
	ch := make(chan models.PermissionState, 1)
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()

	g.auth.Request()

	select {
	case <-ctx.Done():
		return models.PermissionNotDetermined, ctx.Err()
	case state := <-ch:
		return state, nil
	}
}
