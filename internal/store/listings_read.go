package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type ListingSummary struct {
	ListingID int64
	Address   string
	Price     sql.NullFloat64
	LoanType  string
	MLSStatus sql.NullString
	Lat       sql.NullFloat64
	Lon       sql.NullFloat64
}

const listListingsSQL = `
WITH latest_price AS (
	SELECT DISTINCT ON (listing_id) listing_id, price
	FROM price_history
	ORDER BY listing_id, effective_date DESC, price_id DESC
)
SELECT l.listing_id,
	p.street || ', ' || p.city || ', ' || p.state || ' ' || p.zip AS address,
	lp.price,
	lo.loan_type,
	l.mls_status,
	p.latitude,
	p.longitude
FROM listing l
JOIN property p  ON p.property_id  = l.property_id
JOIN loan     lo ON lo.property_id = p.property_id
LEFT JOIN latest_price lp ON lp.listing_id = l.listing_id
`

// ListListings returns all listing summaries, or only those whose loan
// type is in loanTypes when the set is non-empty. Ordering is by latest
// price then listing id, stable across identical inputs.
func (s *Store) ListListings(ctx context.Context, loanTypes []string) ([]ListingSummary, error) {
	query := listListingsSQL
	args := make([]any, 0, len(loanTypes))
	if len(loanTypes) > 0 {
		placeholders := make([]string, len(loanTypes))
		for i, lt := range loanTypes {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, lt)
		}
		query += "WHERE lo.loan_type IN (" + strings.Join(placeholders, ",") + ")\n"
	}
	query += "ORDER BY lp.price NULLS LAST, l.listing_id"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []ListingSummary
	for rows.Next() {
		var rec ListingSummary
		if err := rows.Scan(&rec.ListingID, &rec.Address, &rec.Price, &rec.LoanType, &rec.MLSStatus, &rec.Lat, &rec.Lon); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type PricePoint struct {
	PriceID       int64
	EffectiveDate time.Time
	Price         float64
}

type Note struct {
	ResponseID int64
	Author     string
	NoteText   string
	CreatedAt  time.Time
}

type ListingDetail struct {
	ListingID int64

	Street   string
	Unit     sql.NullString
	City     string
	State    string
	Zip      string
	Beds     sql.NullInt64
	Baths    sql.NullFloat64
	Sqft     sql.NullInt64
	HOAMonth sql.NullFloat64
	Lat      sql.NullFloat64
	Lon      sql.NullFloat64

	DateAdded     time.Time
	MLSLink       sql.NullString
	MLSStatus     sql.NullString
	EquityToCover sql.NullFloat64
	SentToClients bool
	InvestorOK    sql.NullBool

	RealtorName string

	LoanType        sql.NullString
	InterestRate    sql.NullFloat64
	Balance         sql.NullFloat64
	PITI            sql.NullFloat64
	LoanServicer    sql.NullString
	InvestorAllowed sql.NullBool

	AskingPrice     sql.NullFloat64
	AnalysisURL     sql.NullString
	ROIPass         sql.NullBool
	RunComplete     sql.NullBool
	AnalysisRunDate sql.NullTime

	PriceHistory []PricePoint
	Notes        []Note
}

const getListingSQL = `
SELECT l.listing_id,
	p.street, p.unit, p.city, p.state, p.zip,
	p.beds, p.baths, p.sqft, p.hoa_month, p.latitude, p.longitude,
	l.date_added, l.mls_link, l.mls_status,
	l.equity_to_cover, l.sent_to_clients, l.investor_ok,
	r.name AS realtor_name,
	lo.loan_type, lo.interest_rate, lo.balance, lo.piti,
	lo.loan_servicer, lo.investor_allowed,
	lp.price AS asking_price,
	la.url, la.roi_pass, la.run_complete, la.run_date
FROM listing l
JOIN property p ON p.property_id = l.property_id
JOIN realtor  r ON r.realtor_id  = l.realtor_id
LEFT JOIN loan lo ON lo.property_id = p.property_id
LEFT JOIN LATERAL (
	SELECT ph.price
	FROM price_history ph
	WHERE ph.listing_id = l.listing_id
	ORDER BY ph.effective_date DESC, ph.price_id DESC
	LIMIT 1
) lp ON TRUE
LEFT JOIN LATERAL (
	SELECT a.url, a.roi_pass, a.run_complete, a.run_date
	FROM analysis a
	WHERE a.listing_id = l.listing_id
	ORDER BY a.run_date DESC, a.analysis_id DESC
	LIMIT 1
) la ON TRUE
WHERE l.listing_id = $1`

// GetListing returns the denormalized detail for one listing, including
// the full price-history sequence and all notes. ErrNotFound when the
// id does not exist.
func (s *Store) GetListing(ctx context.Context, id int64) (*ListingDetail, error) {
	var d ListingDetail
	err := s.DB.QueryRowContext(ctx, getListingSQL, id).Scan(
		&d.ListingID,
		&d.Street, &d.Unit, &d.City, &d.State, &d.Zip,
		&d.Beds, &d.Baths, &d.Sqft, &d.HOAMonth, &d.Lat, &d.Lon,
		&d.DateAdded, &d.MLSLink, &d.MLSStatus,
		&d.EquityToCover, &d.SentToClients, &d.InvestorOK,
		&d.RealtorName,
		&d.LoanType, &d.InterestRate, &d.Balance, &d.PITI,
		&d.LoanServicer, &d.InvestorAllowed,
		&d.AskingPrice,
		&d.AnalysisURL, &d.ROIPass, &d.RunComplete, &d.AnalysisRunDate,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT price_id, effective_date, price
		FROM price_history
		WHERE listing_id = $1
		ORDER BY effective_date, price_id`, id)
	if err != nil {
		return nil, fmt.Errorf("price history for %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pp PricePoint
		if err := rows.Scan(&pp.PriceID, &pp.EffectiveDate, &pp.Price); err != nil {
			return nil, err
		}
		d.PriceHistory = append(d.PriceHistory, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	noteRows, err := s.DB.QueryContext(ctx, `
		SELECT response_id, author, note_text, created_at
		FROM response
		WHERE listing_id = $1
		ORDER BY created_at, response_id`, id)
	if err != nil {
		return nil, fmt.Errorf("responses for %d: %w", id, err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var n Note
		if err := noteRows.Scan(&n.ResponseID, &n.Author, &n.NoteText, &n.CreatedAt); err != nil {
			return nil, err
		}
		d.Notes = append(d.Notes, n)
	}
	if err := noteRows.Err(); err != nil {
		return nil, err
	}

	return &d, nil
}
