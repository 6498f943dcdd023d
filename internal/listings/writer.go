package listings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/yourorg/assumables-api/geocode"
	"github.com/yourorg/assumables-api/internal/events"
	"github.com/yourorg/assumables-api/internal/store"
)

// Fixed note authors carried over from the intake form.
const (
	AuthorRealtor = "Realtor/Seller"
	AuthorAmy     = "Amy"
)

// DefaultLoanType is assumed when a submission does not name one.
const DefaultLoanType = "CONV"

type Storage interface {
	PropertyNeedsCoords(ctx context.Context, key store.AddressKey) (bool, error)
	CreateListing(ctx context.Context, in store.CreateListingInput) (store.CreateListingResult, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, a geocode.Address) (*geocode.Coords, error)
}

// Submission is the full intake payload. Street, city, state, and zip
// are required and assumed validated/normalized by the caller;
// everything else is optional.
type Submission struct {
	Street   string   `json:"street"`
	Unit     *string  `json:"unit,omitempty"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Zip      string   `json:"zip"`
	Beds     *int     `json:"beds,omitempty"`
	Baths    *float64 `json:"baths,omitempty"`
	Sqft     *int     `json:"sqft,omitempty"`
	HOAMonth *float64 `json:"hoa_month,omitempty"`

	RealtorName string `json:"realtor_name"`

	DateAdded     string  `json:"date_added,omitempty"`
	MLSLink       *string `json:"mls_link,omitempty"`
	MLSStatus     *string `json:"mls_status,omitempty"`
	SentToClients bool    `json:"sent_to_clients"`

	LoanType        *string  `json:"loan_type,omitempty"`
	InterestRate    *float64 `json:"interest_rate,omitempty"`
	Balance         *float64 `json:"balance,omitempty"`
	PITI            *float64 `json:"piti,omitempty"`
	LoanServicer    *string  `json:"loan_servicer,omitempty"`
	InvestorAllowed bool     `json:"investor_allowed"`

	AskingPrice *float64 `json:"asking_price,omitempty"`

	AnalysisURL        *string `json:"analysis_url,omitempty"`
	DoneRunningNumbers *bool   `json:"done_running_numbers,omitempty"`
	ROIPass            *bool   `json:"roi_pass,omitempty"`

	ResponseFromRealtor *string `json:"response_from_realtor,omitempty"`
	FullResponseFromAmy *string `json:"full_response_from_amy,omitempty"`
}

// Writer turns one submission into the full set of rows. Coordinates
// are resolved before the transaction opens so no connection is held
// across the provider round-trip; a geocode failure only means the
// listing is created without them.
type Writer struct {
	Store Storage
	Geo   Geocoder
	Pub   events.Publisher
	Log   *slog.Logger
}

func (w *Writer) logger() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

func (w *Writer) Create(ctx context.Context, sub Submission) (int64, error) {
	unit := strings.TrimSpace(deref(sub.Unit))
	var unitNull sql.NullString
	if unit != "" {
		unitNull = sql.NullString{String: unit, Valid: true}
	}
	key := store.AddressKey{
		Street: sub.Street,
		Unit:   unitNull,
		City:   sub.City,
		State:  sub.State,
		Zip:    sub.Zip,
	}

	var lat, lon sql.NullFloat64
	needs, err := w.Store.PropertyNeedsCoords(ctx, key)
	if err != nil {
		return 0, err
	}
	if needs && w.Geo != nil {
		coords, gerr := w.Geo.Geocode(ctx, geocode.Address{
			Street: sub.Street,
			Unit:   unit,
			City:   sub.City,
			State:  sub.State,
			Zip:    sub.Zip,
		})
		if gerr != nil {
			w.logger().Warn("geocode failed, continuing without coordinates",
				"street", sub.Street, "zip", sub.Zip, "err", gerr)
		} else if coords != nil {
			lat = sql.NullFloat64{Float64: coords.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: coords.Lon, Valid: true}
		}
	}

	dateAdded := sub.DateAdded
	if dateAdded == "" {
		dateAdded = time.Now().Format("2006-01-02")
	}

	loanType := DefaultLoanType
	if sub.LoanType != nil && strings.TrimSpace(*sub.LoanType) != "" {
		loanType = strings.TrimSpace(*sub.LoanType)
	}

	in := store.CreateListingInput{
		RealtorName: sub.RealtorName,
		Address:     key,

		Beds:     nullInt(sub.Beds),
		Baths:    nullFloat(sub.Baths),
		Sqft:     nullInt(sub.Sqft),
		HOAMonth: nullFloat(sub.HOAMonth),
		Lat:      lat,
		Lon:      lon,

		DateAdded:     dateAdded,
		MLSLink:       nullString(sub.MLSLink),
		MLSStatus:     nullString(sub.MLSStatus),
		EquityToCover: nullFloat(EquityToCover(sub.AskingPrice, sub.Balance)),
		SentToClients: sub.SentToClients,
		InvestorOK:    sql.NullBool{Bool: sub.InvestorAllowed, Valid: true},

		AskingPrice: nullFloat(sub.AskingPrice),

		LoanType:        loanType,
		InterestRate:    nullFloat(sub.InterestRate),
		Balance:         nullFloat(sub.Balance),
		PITI:            nullFloat(sub.PITI),
		LoanServicer:    nullString(sub.LoanServicer),
		InvestorAllowed: sub.InvestorAllowed,

		Analysis: analysisInput(sub),
		Notes:    noteInputs(sub),
	}

	res, err := w.Store.CreateListing(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("create listing: %w", err)
	}

	if w.Pub != nil {
		w.Pub.PublishListingCreated(ctx, events.ListingCreated{
			ListingID:  res.ListingID,
			PropertyID: res.PropertyID,
			Address:    fmt.Sprintf("%s, %s, %s %s", sub.Street, sub.City, sub.State, sub.Zip),
		})
	}
	return res.ListingID, nil
}

// EquityToCover is the cash gap a buyer must bring: asking price minus
// loan balance, floored at zero, rounded to cents. Nil unless both
// inputs are known.
func EquityToCover(askingPrice, balance *float64) *float64 {
	if askingPrice == nil || balance == nil {
		return nil
	}
	e := math.Round((*askingPrice-*balance)*100) / 100
	if e < 0 {
		e = 0
	}
	return &e
}

func analysisInput(sub Submission) *store.AnalysisInput {
	url := strings.TrimSpace(deref(sub.AnalysisURL))
	if sub.DoneRunningNumbers == nil && sub.ROIPass == nil && url == "" {
		return nil
	}
	in := &store.AnalysisInput{}
	if url != "" {
		in.URL = sql.NullString{String: url, Valid: true}
	}
	if sub.ROIPass != nil {
		in.ROIPass = *sub.ROIPass
	}
	if sub.DoneRunningNumbers != nil {
		in.RunComplete = *sub.DoneRunningNumbers
	}
	return in
}

func noteInputs(sub Submission) []store.NoteInput {
	var notes []store.NoteInput
	if txt := strings.TrimSpace(deref(sub.ResponseFromRealtor)); txt != "" {
		notes = append(notes, store.NoteInput{Author: AuthorRealtor, Text: txt})
	}
	if txt := strings.TrimSpace(deref(sub.FullResponseFromAmy)); txt != "" {
		notes = append(notes, store.NoteInput{Author: AuthorAmy, Text: txt})
	}
	return notes
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
