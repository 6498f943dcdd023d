package geocode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func mkResult(locType string, partial bool, types ...string) result {
	var r result
	r.Geometry.LocationType = locType
	r.PartialMatch = partial
	r.Types = types
	return r
}

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		r    result
		want int
	}{
		{"rooftop street address", mkResult("ROOFTOP", false, "street_address"), 5},
		{"rooftop plain", mkResult("ROOFTOP", false), 4},
		{"range interpolated", mkResult("RANGE_INTERPOLATED", false), 3},
		{"geometric center", mkResult("GEOMETRIC_CENTER", false), 2},
		{"approximate partial", mkResult("APPROXIMATE", true), -1},
		{"unknown tier", mkResult("SOMETHING_ELSE", false), 1},
		{"partial rooftop street", mkResult("ROOFTOP", true, "street_address"), 3},
	}
	for _, c := range cases {
		if got := score(c.r); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestBestResultPrefersHigherScore(t *testing.T) {
	lo := mkResult("APPROXIMATE", true)
	hi := mkResult("ROOFTOP", false, "street_address")
	hi.Geometry.Location.Lat = 38.85
	hi.Geometry.Location.Lng = -104.92

	best := bestResult([]result{lo, hi})
	if best.Geometry.Location.Lat != 38.85 {
		t.Fatalf("picked the wrong candidate: %+v", best)
	}
}

func TestBestResultStableOnTies(t *testing.T) {
	first := mkResult("ROOFTOP", false)
	first.Geometry.Location.Lat = 1
	second := mkResult("ROOFTOP", false)
	second.Geometry.Location.Lat = 2

	best := bestResult([]result{first, second})
	if best.Geometry.Location.Lat != 1 {
		t.Fatalf("tie should keep provider order, got lat=%v", best.Geometry.Location.Lat)
	}
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", slog.Default())
	c.baseURL = srv.URL
	return c
}

func TestGeocodeNoCredential(t *testing.T) {
	c := NewClient("", slog.Default())
	coords, err := c.Geocode(context.Background(), Address{Street: "1 Main St", City: "Denver", State: "CO", Zip: "80202"})
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("want ErrNoCredential, got %v", err)
	}
	if coords != nil {
		t.Fatalf("want nil coords, got %+v", coords)
	}
}

func TestGeocodePicksBestCandidate(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("components"); got != "country:US|postal_code:80829" {
			t.Errorf("components: got %q", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"partial_match": true, "geometry": {"location": {"lat": 1, "lng": 1}, "location_type": "APPROXIMATE"}},
				{"types": ["street_address"], "geometry": {"location": {"lat": 38.85, "lng": -104.92}, "location_type": "ROOFTOP"}}
			]
		}`))
	})
	coords, err := c.Geocode(context.Background(), Address{Street: "115 Crystal Park Rd", City: "Manitou Springs", State: "CO", Zip: "80829"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords == nil || coords.Lat != 38.85 || coords.Lon != -104.92 {
		t.Fatalf("got %+v, want rooftop candidate", coords)
	}
}

func TestGeocodeNonOKStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})
	coords, err := c.Geocode(context.Background(), Address{Street: "1 Nowhere", City: "Denver", State: "CO", Zip: "80202"})
	if err != nil || coords != nil {
		t.Fatalf("want (nil, nil), got (%+v, %v)", coords, err)
	}
}

func TestGeocodeHTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	coords, err := c.Geocode(context.Background(), Address{Street: "1 Main St", City: "Denver", State: "CO", Zip: "80202"})
	if err == nil {
		t.Fatal("want error on 403")
	}
	if coords != nil {
		t.Fatalf("want nil coords, got %+v", coords)
	}
}

func TestGeocodeUnitInQuery(t *testing.T) {
	var gotAddress string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		w.Write([]byte(`{"status": "OK", "results": [{"geometry": {"location": {"lat": 1, "lng": 2}, "location_type": "ROOFTOP"}}]}`))
	})
	_, err := c.Geocode(context.Background(), Address{Street: "1 Main St", Unit: "Apt 4", City: "Denver", State: "CO", Zip: "80202"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1 Main St Apt 4, Denver, CO 80202, USA"
	if gotAddress != want {
		t.Errorf("address query: got %q, want %q", gotAddress, want)
	}
}
