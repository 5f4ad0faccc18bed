// Package orchestrator sequences permission checks, location resolution, the
// two weather fetches, persistence, and notification scheduling, and owns
// the single published state the UI renders.
package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/location"
	"github.com/Arianiii/morningweather/internal/models"
	"github.com/Arianiii/morningweather/internal/permission"
	"github.com/Arianiii/morningweather/internal/weather"
)

// Phase is the orchestrator's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolvingLocation
	PhaseFetching
	PhaseReady
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseResolvingLocation:
		return "resolvingLocation"
	case PhaseFetching:
		return "fetching"
	case PhaseReady:
		return "ready"
	case PhaseErrored:
		return "errored"
	default:
		return "idle"
	}
}

// SearchResults is the published outcome of the most recent place search.
type SearchResults struct {
	Query      string
	Candidates []location.Candidate
}

// Snapshot is the published observable state. Weather and Forecast always
// belong to the same Point; Err and Notice never conflict (setting a new
// error clears the previous one, a primary error clears the notice).
type Snapshot struct {
	Phase    Phase
	Point    *models.GeoPoint
	Weather  *models.CurrentWeather
	Forecast models.ForecastSeries
	Err      error
	Notice   error // non-blocking, e.g. forecast failed after current succeeded
	Search   *SearchResults
}

// IsResolvingLocation is true strictly between entering resolution/fetching
// and reaching Ready, Errored, or Idle.
func (s Snapshot) IsResolvingLocation() bool {
	return s.Phase == PhaseResolvingLocation || s.Phase == PhaseFetching
}

// Gateway runs one fetch sequence. *weather.Gateway implements it.
type Gateway interface {
	Fetch(ctx context.Context, point models.GeoPoint) (*weather.Result, error)
}

// LastViewedSource restores the location shown at the previous launch.
type LastViewedSource interface {
	LastViewed() (*models.SavedLocation, error)
}

// lastOp remembers the resolution path of the most recent request so Retry
// can re-run exactly the path that failed.
type lastOp struct {
	useGPS bool
	point  models.GeoPoint
}

// Orchestrator coordinates the acquisition pipeline. At most one in-flight
// fetch sequence can update published state: a new request bumps the
// generation and stale completions are dropped.
type Orchestrator struct {
	gate     *permission.Gate
	resolver *location.Resolver
	gateway  Gateway
	restore  LastViewedSource
	log      zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	searchGen uint64
	snap      Snapshot
	last      *lastOp
	subs      []chan Snapshot
}

func New(gate *permission.Gate, resolver *location.Resolver, gateway Gateway, restore LastViewedSource, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		gate:     gate,
		resolver: resolver,
		gateway:  gateway,
		restore:  restore,
		log:      log.With().Str("component", "orchestrator").Logger(),
		snap:     Snapshot{Phase: PhaseIdle},
	}
}

// State returns the current published snapshot.
func (o *Orchestrator) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Subscribe returns a channel receiving every published snapshot. Slow
// consumers miss intermediate snapshots rather than blocking the pipeline.
func (o *Orchestrator) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 16)
	o.mu.Lock()
	o.subs = append(o.subs, ch)
	ch <- o.snap
	o.mu.Unlock()
	return ch
}

// begin supersedes any in-flight work: it bumps the generation, installs the
// starting snapshot for the new sequence, and returns the new generation.
func (o *Orchestrator) begin(phase Phase, op *lastOp) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	if op != nil {
		o.last = op
	}
	// Stale data is never shown mid-sequence.
	o.snap = Snapshot{Phase: phase, Search: o.snap.Search}
	o.notifyLocked()
	return o.gen
}

// publish applies fn to the snapshot unless gen has been superseded.
func (o *Orchestrator) publish(gen uint64, fn func(*Snapshot)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return false
	}
	fn(&o.snap)
	o.notifyLocked()
	return true
}

func (o *Orchestrator) notifyLocked() {
	for _, ch := range o.subs {
		select {
		case ch <- o.snap:
		default:
		}
	}
}

// Start runs the launch path: restore the last-viewed location and fetch for
// it directly, or fall back to the GPS path when nothing was saved.
func (o *Orchestrator) Start(ctx context.Context) {
	last, err := o.restore.LastViewed()
	if err != nil {
		o.log.Warn().Err(err).Msg("restore last viewed location")
	}
	if last != nil {
		point := last.Point()
		gen := o.begin(PhaseFetching, &lastOp{point: point})
		o.fetch(ctx, gen, point)
		return
	}
	o.UseCurrentLocation(ctx)
}

// UseCurrentLocation resolves the device position (requesting permission if
// needed) and fetches weather for it, superseding any in-flight sequence.
func (o *Orchestrator) UseCurrentLocation(ctx context.Context) {
	gen := o.begin(PhaseResolvingLocation, &lastOp{useGPS: true})

	state, err := o.gate.Ensure(ctx)
	if err != nil {
		o.publish(gen, func(s *Snapshot) {
			s.Phase = PhaseErrored
			s.Err = err
		})
		return
	}
	if state != models.PermissionGranted {
		o.log.Info().Stringer("state", state).Msg("location access not granted")
		o.publish(gen, func(s *Snapshot) {
			s.Phase = PhaseErrored
			s.Err = location.ErrAccessDenied
		})
		return
	}

	point, err := o.resolver.ResolveCurrent(ctx)
	if err != nil {
		o.publish(gen, func(s *Snapshot) {
			s.Phase = PhaseErrored
			s.Err = err
		})
		return
	}

	if !o.publish(gen, func(s *Snapshot) { s.Phase = PhaseFetching }) {
		return
	}
	o.fetch(ctx, gen, point)
}

// Select fetches weather for a chosen search result, superseding any
// in-flight sequence.
func (o *Orchestrator) Select(ctx context.Context, point models.GeoPoint) {
	gen := o.begin(PhaseFetching, &lastOp{point: point})
	o.fetch(ctx, gen, point)
}

// Refresh re-runs the most recent acquisition path; on a fresh instance it
// behaves like Start.
func (o *Orchestrator) Refresh(ctx context.Context) {
	o.mu.Lock()
	last := o.last
	o.mu.Unlock()

	if last == nil {
		o.Start(ctx)
		return
	}
	o.runOp(ctx, *last)
}

// Retry re-runs the resolution path that produced the current error.
func (o *Orchestrator) Retry(ctx context.Context) {
	o.mu.Lock()
	last := o.last
	o.mu.Unlock()

	if last == nil {
		o.Start(ctx)
		return
	}
	o.runOp(ctx, *last)
}

func (o *Orchestrator) runOp(ctx context.Context, op lastOp) {
	if op.useGPS {
		o.UseCurrentLocation(ctx)
		return
	}
	o.Select(ctx, op.point)
}

// ChangeLocation resets to Idle, clearing weather, forecast, and error, and
// superseding any in-flight sequence.
func (o *Orchestrator) ChangeLocation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	o.snap = Snapshot{Phase: PhaseIdle}
	o.notifyLocked()
}

// Search runs a place search. Searches may race; only the result set for the
// most recently issued query is ever published.
func (o *Orchestrator) Search(ctx context.Context, query string) ([]location.Candidate, error) {
	o.mu.Lock()
	o.searchGen++
	seq := o.searchGen
	o.mu.Unlock()

	candidates, err := o.resolver.Search(ctx, query)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.searchGen {
		// A later query superseded this one; its results are stale.
		o.log.Debug().Str("query", query).Msg("dropping stale search results")
		return nil, nil
	}
	if err != nil {
		o.log.Warn().Err(err).Str("query", query).Msg("place search failed")
		return nil, err
	}
	o.snap.Search = &SearchResults{Query: query, Candidates: candidates}
	o.notifyLocked()
	return candidates, nil
}

// fetch runs one generation-guarded fetch sequence for point.
func (o *Orchestrator) fetch(ctx context.Context, gen uint64, point models.GeoPoint) {
	result, err := o.gateway.Fetch(ctx, point)
	if err != nil {
		o.publish(gen, func(s *Snapshot) {
			s.Phase = PhaseErrored
			s.Err = err
			s.Weather = nil
			s.Forecast = nil
			s.Notice = nil
		})
		return
	}

	o.publish(gen, func(s *Snapshot) {
		s.Phase = PhaseReady
		s.Point = &models.GeoPoint{Latitude: point.Latitude, Longitude: point.Longitude}
		s.Weather = result.Current
		s.Forecast = result.Forecast
		s.Err = nil
		s.Notice = result.ForecastErr
	})
}
