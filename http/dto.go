package httpapi

import (
	"database/sql"
	"time"

	"github.com/yourorg/assumables-api/internal/store"
)

// ListingSummary is the list-view wire shape.
type ListingSummary struct {
	ListingID int64    `json:"listing_id"`
	Address   string   `json:"address"`
	Price     *float64 `json:"price"`
	LoanType  string   `json:"loan_type"`
	MLSStatus *string  `json:"mls_status"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

// ListingDetail is the single-listing wire shape, including the full
// price history and realtor/analyst notes.
type ListingDetail struct {
	ListingID int64 `json:"listing_id"`

	Street   string   `json:"street"`
	Unit     *string  `json:"unit"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Zip      string   `json:"zip"`
	Beds     *int64   `json:"beds"`
	Baths    *float64 `json:"baths"`
	Sqft     *int64   `json:"sqft"`
	HOAMonth *float64 `json:"hoa_month"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`

	DateAdded     string   `json:"date_added"`
	MLSLink       *string  `json:"mls_link"`
	MLSStatus     *string  `json:"mls_status"`
	EquityToCover *float64 `json:"equity_to_cover"`
	SentToClients bool     `json:"sent_to_clients"`
	InvestorOK    *bool    `json:"investor_ok"`

	RealtorName string `json:"realtor_name"`

	LoanType        *string  `json:"loan_type"`
	InterestRate    *float64 `json:"interest_rate"`
	Balance         *float64 `json:"balance"`
	PITI            *float64 `json:"piti"`
	LoanServicer    *string  `json:"loan_servicer"`
	InvestorAllowed *bool    `json:"investor_allowed"`

	AskingPrice     *float64 `json:"asking_price"`
	AnalysisURL     *string  `json:"analysis_url"`
	ROIPass         *bool    `json:"roi_pass"`
	RunComplete     *bool    `json:"done_running_numbers"`
	AnalysisRunDate *string  `json:"analysis_run_date"`

	PriceHistory []PricePoint `json:"price_history"`
	Notes        []Note       `json:"responses"`
}

type PricePoint struct {
	PriceID       int64   `json:"price_id"`
	EffectiveDate string  `json:"effective_date"`
	Price         float64 `json:"price"`
}

type Note struct {
	ResponseID int64  `json:"response_id"`
	Author     string `json:"author"`
	NoteText   string `json:"note_text"`
	CreatedAt  string `json:"created_at"`
}

func toSummary(rec store.ListingSummary) ListingSummary {
	return ListingSummary{
		ListingID: rec.ListingID,
		Address:   rec.Address,
		Price:     fptr(rec.Price),
		LoanType:  rec.LoanType,
		MLSStatus: sptr(rec.MLSStatus),
		Lat:       fptr(rec.Lat),
		Lon:       fptr(rec.Lon),
	}
}

func toDetail(d *store.ListingDetail) ListingDetail {
	out := ListingDetail{
		ListingID:       d.ListingID,
		Street:          d.Street,
		Unit:            sptr(d.Unit),
		City:            d.City,
		State:           d.State,
		Zip:             d.Zip,
		Beds:            iptr(d.Beds),
		Baths:           fptr(d.Baths),
		Sqft:            iptr(d.Sqft),
		HOAMonth:        fptr(d.HOAMonth),
		Lat:             fptr(d.Lat),
		Lon:             fptr(d.Lon),
		DateAdded:       d.DateAdded.Format("2006-01-02"),
		MLSLink:         sptr(d.MLSLink),
		MLSStatus:       sptr(d.MLSStatus),
		EquityToCover:   fptr(d.EquityToCover),
		SentToClients:   d.SentToClients,
		InvestorOK:      bptr(d.InvestorOK),
		RealtorName:     d.RealtorName,
		LoanType:        sptr(d.LoanType),
		InterestRate:    fptr(d.InterestRate),
		Balance:         fptr(d.Balance),
		PITI:            fptr(d.PITI),
		LoanServicer:    sptr(d.LoanServicer),
		InvestorAllowed: bptr(d.InvestorAllowed),
		AskingPrice:     fptr(d.AskingPrice),
		AnalysisURL:     sptr(d.AnalysisURL),
		ROIPass:         bptr(d.ROIPass),
		RunComplete:     bptr(d.RunComplete),
		PriceHistory:    make([]PricePoint, 0, len(d.PriceHistory)),
		Notes:           make([]Note, 0, len(d.Notes)),
	}
	if d.AnalysisRunDate.Valid {
		s := d.AnalysisRunDate.Time.Format("2006-01-02")
		out.AnalysisRunDate = &s
	}
	for _, pp := range d.PriceHistory {
		out.PriceHistory = append(out.PriceHistory, PricePoint{
			PriceID:       pp.PriceID,
			EffectiveDate: pp.EffectiveDate.Format("2006-01-02"),
			Price:         pp.Price,
		})
	}
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, Note{
			ResponseID: n.ResponseID,
			Author:     n.Author,
			NoteText:   n.NoteText,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func fptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func iptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func sptr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func bptr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
