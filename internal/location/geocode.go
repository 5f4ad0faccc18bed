package location

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/Arianiii/morningweather/internal/httputil"
	"github.com/Arianiii/morningweather/internal/metrics"
	"github.com/Arianiii/morningweather/internal/models"
)

const (
	defaultGeocodeBaseURL = "https://api.openweathermap.org"
	// MaxCandidates caps how many place candidates a search yields.
	MaxCandidates = 5
)

// GeocodeClient implements Searcher against the OpenWeatherMap direct
// geocoding API.
type GeocodeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeocodeClient(apiKey string) *GeocodeClient {
	return &GeocodeClient{
		apiKey:  apiKey,
		baseURL: defaultGeocodeBaseURL,
		client:  httputil.NewClient(),
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (g *GeocodeClient) SetBaseURL(u string) {
	g.baseURL = u
}

type geocodeEntry struct {
	Name    string `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string `json:"country"`
	State   string `json:"state"`
}

func (g *GeocodeClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", fmt.Sprint(MaxCandidates))
	values.Set("appid", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/geo/1.0/direct?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.GeocodeCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	metrics.GeocodeCallsTotal.WithLabelValues(fmt.Sprint(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocode: status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var entries []geocodeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, Candidate{
			Title: displayTitle(e.Name, e.State, e.Country),
			Point: models.GeoPoint{Latitude: e.Lat, Longitude: e.Lon},
		})
	}
	return candidates, nil
}

// displayTitle formats "<name>, <countryCode>", falling back to the locality
// (state), then the bare country code.
func displayTitle(name, locality, country string) string {
	if name != "" {
		return fmt.Sprintf("%s, %s", name, country)
	}
	if locality != "" {
		return fmt.Sprintf("%s, %s", locality, country)
	}
	return country
}
