package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/assumables-api/geocode"
	"github.com/yourorg/assumables-api/internal/canon"
	"github.com/yourorg/assumables-api/internal/listings"
	"github.com/yourorg/assumables-api/internal/store"
)

type ListingCreator interface {
	Create(ctx context.Context, sub listings.Submission) (int64, error)
}

type ListingReader interface {
	ListListings(ctx context.Context, loanTypes []string) ([]store.ListingSummary, error)
	GetListing(ctx context.Context, id int64) (*store.ListingDetail, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, a geocode.Address) (*geocode.Coords, error)
}

type ListingsDeps struct {
	Writer ListingCreator
	Reader ListingReader
	Geo    Geocoder
	// HomeState fills in a missing state on submissions.
	HomeState string
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	r.Post("/api/listings", func(w http.ResponseWriter, req *http.Request) {
		var sub listings.Submission
		if err := json.NewDecoder(req.Body).Decode(&sub); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if code, detail := normalizeSubmission(&sub, d.HomeState); code != "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": code, "detail": detail})
			return
		}
		id, err := d.Writer.Create(req.Context(), sub)
		if err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "create_failed", "detail": err.Error()})
			return
		}
		render.JSON(w, req, map[string]any{"id": id})
	})

	r.Get("/api/listings", func(w http.ResponseWriter, req *http.Request) {
		var loanTypes []string
		for _, lt := range req.URL.Query()["loan_type"] {
			if lt = strings.TrimSpace(lt); lt != "" {
				loanTypes = append(loanTypes, lt)
			}
		}
		records, err := d.Reader.ListListings(req.Context(), loanTypes)
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "query_failed", "detail": err.Error()})
			return
		}
		out := make([]ListingSummary, 0, len(records))
		for _, rec := range records {
			out = append(out, toSummary(rec))
		}
		render.JSON(w, req, out)
	})

	r.Get("/api/listings/{listingID}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(req, "listingID"), 10, 64)
		if err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_listing_id"})
			return
		}
		detail, err := d.Reader.GetListing(req.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "not_found"})
			return
		}
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "query_failed", "detail": err.Error()})
			return
		}
		render.JSON(w, req, toDetail(detail))
	})

	// Manual geocode check, handy while verifying provider credentials.
	r.Get("/api/dev/geocode", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		a := geocode.Address{
			Street: strings.TrimSpace(q.Get("street")),
			Unit:   strings.TrimSpace(q.Get("unit")),
			City:   strings.TrimSpace(q.Get("city")),
			State:  canon.NormalizeState(q.Get("state")),
			Zip:    strings.TrimSpace(q.Get("zip")),
		}
		if a.Street == "" || a.City == "" || a.State == "" || a.Zip == "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "address_required", "detail": "street, city, state, zip are required"})
			return
		}
		coords, err := d.Geo.Geocode(req.Context(), a)
		if err != nil {
			render.Status(req, http.StatusBadGateway)
			render.JSON(w, req, map[string]any{"error": "upstream_error", "detail": err.Error()})
			return
		}
		render.JSON(w, req, map[string]any{"query": a, "result": coords})
	})
}

// normalizeSubmission applies the intake rules in place: required address
// fields, ZIP shape, uppercased two-letter state with a home-state default,
// and an "Unknown" realtor fallback. Returns an error code and detail when
// the submission is rejected.
func normalizeSubmission(sub *listings.Submission, homeState string) (code, detail string) {
	sub.Street = strings.TrimSpace(sub.Street)
	sub.City = strings.TrimSpace(sub.City)
	sub.Zip = strings.TrimSpace(sub.Zip)
	sub.State = canon.NormalizeState(sub.State)
	if sub.State == "" {
		sub.State = canon.NormalizeState(homeState)
	}
	if sub.Street == "" || sub.City == "" || sub.State == "" || sub.Zip == "" {
		return "address_required", "street, city, state, zip are required"
	}
	if !canon.ValidZIP(sub.Zip) {
		return "invalid_zip", "zip must be 5 digits, optionally +4"
	}
	sub.RealtorName = strings.TrimSpace(sub.RealtorName)
	if sub.RealtorName == "" {
		sub.RealtorName = "Unknown"
	}
	return "", ""
}
