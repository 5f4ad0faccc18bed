package location

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Arianiii/morningweather/internal/models"
)

func TestSearchBuildsRequestAndMapsResults(t *testing.T) {
	var gotQuery, gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		if r.URL.Query().Get("appid") != "test-key" {
			t.Errorf("appid = %q, want test-key", r.URL.Query().Get("appid"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name":"London","lat":51.5073,"lon":-0.1276,"country":"GB","state":"England"},
			{"name":"London","lat":42.9836,"lon":-81.2497,"country":"CA","state":"Ontario"}
		]`)
	}))
	defer ts.Close()

	client := NewGeocodeClient("test-key")
	client.SetBaseURL(ts.URL)

	candidates, err := client.Search(context.Background(), "London")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotQuery != "London" {
		t.Errorf("q = %q, want London", gotQuery)
	}
	if gotLimit != "5" {
		t.Errorf("limit = %q, want 5", gotLimit)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].Title != "London, GB" {
		t.Errorf("title = %q, want %q", candidates[0].Title, "London, GB")
	}
	if candidates[0].Point.Latitude != 51.5073 {
		t.Errorf("lat = %v, want 51.5073", candidates[0].Point.Latitude)
	}
	if candidates[1].Title != "London, CA" {
		t.Errorf("title = %q, want %q", candidates[1].Title, "London, CA")
	}
}

func TestSearchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewGeocodeClient("bad-key")
	client.SetBaseURL(ts.URL)

	if _, err := client.Search(context.Background(), "London"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestDisplayTitleFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		locality string
		country  string
		want     string
	}{
		{"London", "England", "GB", "London, GB"},
		{"", "England", "GB", "England, GB"},
		{"", "", "GB", "GB"},
	}
	for _, tt := range tests {
		if got := displayTitle(tt.name, tt.locality, tt.country); got != tt.want {
			t.Errorf("displayTitle(%q, %q, %q) = %q, want %q", tt.name, tt.locality, tt.country, got, tt.want)
		}
	}
}

type errLocator struct {
	err error
}

func (l errLocator) CurrentLocation(context.Context) (models.GeoPoint, error) {
	return models.GeoPoint{}, l.err
}

func TestResolveCurrentPassesThroughSentinels(t *testing.T) {
	for _, sentinel := range []error{ErrAccessDenied, ErrUnavailable} {
		r := NewResolver(errLocator{err: sentinel}, nil, zerolog.Nop())
		_, err := r.ResolveCurrent(context.Background())
		if !errors.Is(err, sentinel) {
			t.Errorf("err = %v, want %v", err, sentinel)
		}
	}
}

func TestResolveCurrentWrapsOtherErrors(t *testing.T) {
	cause := errors.New("gps hardware fault")
	r := NewResolver(errLocator{err: cause}, nil, zerolog.Nop())
	_, err := r.ResolveCurrent(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want wrapped %v", err, cause)
	}
	if errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v must not alias a sentinel", err)
	}
}
