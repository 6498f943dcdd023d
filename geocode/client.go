package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ErrNoCredential is returned when no provider API key is configured.
// Callers treat every geocode error as a soft failure and proceed
// without coordinates.
var ErrNoCredential = errors.New("geocode: no api key configured")

type Address struct {
	Street string
	Unit   string // optional
	City   string
	State  string
	Zip    string
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
	log     *slog.Logger

	// Limiter, when set, paces outgoing provider calls. The bulk
	// importer sets this to stay under the provider QPS cap.
	Limiter *rate.Limiter
}

func NewClient(apiKey string, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0 // one best-effort attempt per lookup
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil

	if log == nil {
		log = slog.Default()
	}
	return &Client{
		key:     apiKey,
		baseURL: "https://maps.googleapis.com",
		http:    rc,
		log:     log,
	}
}

// Geocode resolves a postal address to coordinates. It returns
// (nil, nil) when the provider answers but has no usable match, and a
// non-nil error on credential or transport problems. Either way the
// caller continues without coordinates.
func (c *Client) Geocode(ctx context.Context, a Address) (*Coords, error) {
	if c.key == "" {
		return nil, ErrNoCredential
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	line1 := a.Street
	if a.Unit != "" {
		line1 += " " + a.Unit
	}
	freeform := fmt.Sprintf("%s, %s, %s %s, USA", line1, a.City, a.State, a.Zip)

	q := url.Values{}
	q.Set("address", freeform)
	q.Set("components", "country:US|postal_code:"+a.Zip)
	q.Set("region", "us")
	q.Set("key", c.key)

	u := fmt.Sprintf("%s/maps/api/geocode/json?%s", c.baseURL, q.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geocode http %d", resp.StatusCode)
	}

	body, err := ioReadAllLimit(resp.Body, 1<<20)
	if err != nil {
		return nil, err
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("geocode decode: %w", err)
	}
	if payload.Status != "OK" || len(payload.Results) == 0 {
		c.log.Warn("geocode miss", "status", payload.Status, "error_message", payload.ErrorMessage)
		return nil, nil
	}

	best := bestResult(payload.Results)
	lat := best.Geometry.Location.Lat
	lon := best.Geometry.Location.Lng
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil, nil
	}
	return &Coords{Lat: lat, Lon: lon}, nil
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
