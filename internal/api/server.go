// Package api is the thin HTTP surface standing in for the UI layer. Handlers
// only invoke orchestrator operations and render published state; no weather
// logic lives here.
package api

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/models"
	"github.com/Arianiii/morningweather/internal/orchestrator"
	"github.com/Arianiii/morningweather/internal/store"
)

type Server struct {
	orch  *orchestrator.Orchestrator
	store *store.Store
	port  string
	loc   *time.Location
	log   zerolog.Logger
	now   func() time.Time
}

func NewServer(orch *orchestrator.Orchestrator, st *store.Store, port string, loc *time.Location, log zerolog.Logger) *Server {
	return &Server{
		orch:  orch,
		store: st,
		port:  port,
		loc:   loc,
		log:   log.With().Str("component", "api").Logger(),
		now:   time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/select", s.handleSelect)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/retry", s.handleRetry)
	mux.HandleFunc("POST /api/location/current", s.handleCurrentLocation)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /api/locations", s.handleLocationsList)
	mux.HandleFunc("DELETE /api/locations", s.handleLocationsRemove)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("port", s.port).Msg("listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// weatherView is the display projection of current conditions: truncated
// temperatures, km/h wind, whole-km visibility.
type weatherView struct {
	LocationName string `json:"location_name"`
	TempC        int    `json:"temp_c"`
	FeelsLikeC   int    `json:"feels_like_c"`
	TempMinC     int    `json:"temp_min_c"`
	TempMaxC     int    `json:"temp_max_c"`
	HumidityPct  int    `json:"humidity_pct"`
	PressureHPa  int    `json:"pressure_hpa"`
	WindKmh      int    `json:"wind_kmh"`
	VisibilityKm *int   `json:"visibility_km,omitempty"`
	Condition    string `json:"condition"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	IsDaytime    bool   `json:"is_daytime"`
}

type forecastPointView struct {
	Time      time.Time `json:"time"`
	TempC     int       `json:"temp_c"`
	Condition string    `json:"condition"`
	Icon      string    `json:"icon"`
}

type candidateView struct {
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type stateResponse struct {
	Phase               string              `json:"phase"`
	IsResolvingLocation bool                `json:"is_resolving_location"`
	Weather             *weatherView        `json:"weather,omitempty"`
	Hourly              []forecastPointView `json:"hourly,omitempty"`
	Daily               []forecastPointView `json:"daily,omitempty"`
	Error               string              `json:"error,omitempty"`
	Notice              string              `json:"notice,omitempty"`
	SearchQuery         string              `json:"search_query,omitempty"`
	SearchResults       []candidateView     `json:"search_results,omitempty"`
}

func (s *Server) renderState(snap orchestrator.Snapshot) stateResponse {
	resp := stateResponse{
		Phase:               snap.Phase.String(),
		IsResolvingLocation: snap.IsResolvingLocation(),
	}
	now := s.now()
	if w := snap.Weather; w != nil {
		view := &weatherView{
			LocationName: w.LocationName,
			TempC:        models.TruncC(w.TempC),
			FeelsLikeC:   models.TruncC(w.FeelsLikeC),
			TempMinC:     models.TruncC(w.TempMinC),
			TempMaxC:     models.TruncC(w.TempMaxC),
			HumidityPct:  w.HumidityPct,
			PressureHPa:  int(w.PressureHPa),
			WindKmh:      models.WindKmh(w.WindSpeedMps),
			Condition:    w.ConditionMain,
			Description:  w.ConditionDescription,
			Icon:         w.Icon,
			IsDaytime:    w.IsDaytime(now),
		}
		if w.VisibilityM != nil {
			km := models.VisibilityKm(*w.VisibilityM)
			view.VisibilityKm = &km
		}
		resp.Weather = view
	}
	if len(snap.Forecast) > 0 {
		resp.Hourly = pointViews(snap.Forecast.HourlyStrip(now))
		resp.Daily = pointViews(snap.Forecast.DailyStrip(now, s.loc))
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	if snap.Notice != nil {
		resp.Notice = snap.Notice.Error()
	}
	if sr := snap.Search; sr != nil {
		resp.SearchQuery = sr.Query
		for _, c := range sr.Candidates {
			resp.SearchResults = append(resp.SearchResults, candidateView{
				Title:     c.Title,
				Latitude:  c.Point.Latitude,
				Longitude: c.Point.Longitude,
			})
		}
	}
	return resp
}

func pointViews(series models.ForecastSeries) []forecastPointView {
	views := make([]forecastPointView, 0, len(series))
	for _, p := range series {
		views = append(views, forecastPointView{
			Time:      p.TimestampUtc,
			TempC:     models.TruncC(p.TempC),
			Condition: p.ConditionMain,
			Icon:      p.Icon,
		})
	}
	return views
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.renderState(s.orch.State()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	candidates, err := s.orch.Search(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	views := make([]candidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, candidateView{
			Title:     c.Title,
			Latitude:  c.Point.Latitude,
			Longitude: c.Point.Longitude,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

type selectRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	point := models.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude}
	// Acquisition outlives the request; the UI polls /api/state for progress.
	go s.orch.Select(context.Background(), point)
	s.writeJSON(w, http.StatusAccepted, s.renderState(s.orch.State()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	go s.orch.Refresh(context.Background())
	s.writeJSON(w, http.StatusAccepted, s.renderState(s.orch.State()))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	go s.orch.Retry(context.Background())
	s.writeJSON(w, http.StatusAccepted, s.renderState(s.orch.State()))
}

func (s *Server) handleCurrentLocation(w http.ResponseWriter, r *http.Request) {
	go s.orch.UseCurrentLocation(context.Background())
	s.writeJSON(w, http.StatusAccepted, s.renderState(s.orch.State()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.orch.ChangeLocation()
	s.writeJSON(w, http.StatusOK, s.renderState(s.orch.State()))
}

type savedLocationView struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) handleLocationsList(w http.ResponseWriter, r *http.Request) {
	saved, err := s.store.Saved()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]savedLocationView, 0, len(saved))
	for i, l := range saved {
		views = append(views, savedLocationView{
			Index:     i,
			Name:      l.Name,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

type removeRequest struct {
	Indices []int `json:"indices"`
}

func (s *Server) handleLocationsRemove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.store.Remove(req.Indices); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.store.MigrationVersion()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"schema_version": version,
		"phase":          s.orch.State().Phase.String(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("write response")
	}
}
