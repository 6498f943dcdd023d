package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AddressKey is the property dedup key. Unit is part of the identity;
// a NULL unit matches a NULL unit (see Migrate).
type AddressKey struct {
	Street string
	Unit   sql.NullString
	City   string
	State  string
	Zip    string
}

type AnalysisInput struct {
	URL         sql.NullString
	ROIPass     bool
	RunComplete bool
}

type NoteInput struct {
	Author string
	Text   string
}

// CreateListingInput carries one fully-validated submission.
// Coordinates arrive pre-resolved; the transaction never calls out.
type CreateListingInput struct {
	RealtorName string
	Address     AddressKey

	Beds     sql.NullInt64
	Baths    sql.NullFloat64
	Sqft     sql.NullInt64
	HOAMonth sql.NullFloat64

	Lat sql.NullFloat64
	Lon sql.NullFloat64

	DateAdded     string // YYYY-MM-DD
	MLSLink       sql.NullString
	MLSStatus     sql.NullString
	EquityToCover sql.NullFloat64
	SentToClients bool
	InvestorOK    sql.NullBool

	AskingPrice sql.NullFloat64

	LoanType        string
	InterestRate    sql.NullFloat64
	Balance         sql.NullFloat64
	PITI            sql.NullFloat64
	LoanServicer    sql.NullString
	InvestorAllowed bool

	Analysis *AnalysisInput
	Notes    []NoteInput
}

type CreateListingResult struct {
	ListingID  int64
	PropertyID int64
}

// PropertyNeedsCoords reports whether the property identified by key is
// missing coordinates. Unknown addresses need them too.
func (s *Store) PropertyNeedsCoords(ctx context.Context, key AddressKey) (bool, error) {
	var needs bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT latitude IS NULL AND longitude IS NULL
		FROM property
		WHERE street = $1
		  AND unit IS NOT DISTINCT FROM $2
		  AND city = $3 AND state = $4 AND zip = $5`,
		key.Street, key.Unit, key.City, key.State, key.Zip,
	).Scan(&needs)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("property coords lookup: %w", err)
	}
	return needs, nil
}

// CreateListing runs the whole submission as one transaction: realtor
// and property upserts, the listing row, and the dependent price
// history, loan, analysis, and note rows. Nothing persists unless every
// step succeeds.
//
// Property numeric attributes fill in missing values on conflict but
// never erase known ones; coordinates are write-once.
func (s *Store) CreateListing(ctx context.Context, in CreateListingInput) (CreateListingResult, error) {
	var res CreateListingResult

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return res, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var realtorID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO realtor (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING realtor_id`,
		in.RealtorName,
	).Scan(&realtorID)
	if err != nil {
		return res, fmt.Errorf("realtor upsert: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO property (street, unit, city, state, zip, beds, baths, sqft, hoa_month, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (street, unit, city, state, zip)
		DO UPDATE SET
			beds      = COALESCE(EXCLUDED.beds, property.beds),
			baths     = COALESCE(EXCLUDED.baths, property.baths),
			sqft      = COALESCE(EXCLUDED.sqft, property.sqft),
			hoa_month = COALESCE(EXCLUDED.hoa_month, property.hoa_month),
			latitude  = COALESCE(property.latitude, EXCLUDED.latitude),
			longitude = COALESCE(property.longitude, EXCLUDED.longitude)
		RETURNING property_id`,
		in.Address.Street, in.Address.Unit, in.Address.City, in.Address.State, in.Address.Zip,
		in.Beds, in.Baths, in.Sqft, in.HOAMonth, in.Lat, in.Lon,
	).Scan(&res.PropertyID)
	if err != nil {
		return res, fmt.Errorf("property upsert: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO listing (property_id, realtor_id, date_added, mls_link, mls_status, equity_to_cover, sent_to_clients, investor_ok)
		VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8)
		RETURNING listing_id`,
		res.PropertyID, realtorID, in.DateAdded, in.MLSLink, in.MLSStatus,
		in.EquityToCover, in.SentToClients, in.InvestorOK,
	).Scan(&res.ListingID)
	if err != nil {
		return res, fmt.Errorf("listing insert: %w", err)
	}

	if in.AskingPrice.Valid {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO price_history (listing_id, effective_date, price)
			VALUES ($1, $2::date, $3)`,
			res.ListingID, in.DateAdded, in.AskingPrice,
		); err != nil {
			return res, fmt.Errorf("price history insert: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO loan (property_id, loan_type, interest_rate, balance, piti, loan_servicer, investor_allowed)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (property_id)
		DO UPDATE SET
			loan_type        = EXCLUDED.loan_type,
			interest_rate    = EXCLUDED.interest_rate,
			balance          = EXCLUDED.balance,
			piti             = EXCLUDED.piti,
			loan_servicer    = EXCLUDED.loan_servicer,
			investor_allowed = EXCLUDED.investor_allowed`,
		res.PropertyID, in.LoanType, in.InterestRate, in.Balance, in.PITI,
		in.LoanServicer, in.InvestorAllowed,
	); err != nil {
		return res, fmt.Errorf("loan upsert: %w", err)
	}

	if in.Analysis != nil {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO analysis (listing_id, url, roi_pass, run_complete)
			VALUES ($1,$2,$3,$4)`,
			res.ListingID, in.Analysis.URL, in.Analysis.ROIPass, in.Analysis.RunComplete,
		); err != nil {
			return res, fmt.Errorf("analysis insert: %w", err)
		}
	}

	for _, n := range in.Notes {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO response (listing_id, author, note_text)
			VALUES ($1,$2,$3)`,
			res.ListingID, n.Author, n.Text,
		); err != nil {
			return res, fmt.Errorf("response insert: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}
