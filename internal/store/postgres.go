package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned by lookups for ids that do not exist.
var ErrNotFound = errors.New("store: not found")

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Close() error { return s.DB.Close() }

// Migrate creates the schema. The uniqueness constraints on
// realtor.name, the property address tuple, and loan.property_id are
// load-bearing: the submission transaction relies on them for its
// upsert semantics. NULLS NOT DISTINCT makes a missing unit part of the
// address identity (requires Postgres 15+).
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS realtor (
			realtor_id BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS property (
			property_id BIGSERIAL PRIMARY KEY,
			street      TEXT NOT NULL,
			unit        TEXT,
			city        TEXT NOT NULL,
			state       TEXT NOT NULL,
			zip         TEXT NOT NULL,
			beds        INTEGER,
			baths       NUMERIC(4,1),
			sqft        INTEGER,
			hoa_month   NUMERIC(12,2),
			latitude    DOUBLE PRECISION,
			longitude   DOUBLE PRECISION
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_property_address
			ON property (street, unit, city, state, zip) NULLS NOT DISTINCT;`,
		`CREATE TABLE IF NOT EXISTS listing (
			listing_id      BIGSERIAL PRIMARY KEY,
			property_id     BIGINT NOT NULL REFERENCES property(property_id),
			realtor_id      BIGINT NOT NULL REFERENCES realtor(realtor_id),
			date_added      DATE NOT NULL,
			mls_link        TEXT,
			mls_status      TEXT,
			equity_to_cover NUMERIC(12,2),
			sent_to_clients BOOLEAN NOT NULL DEFAULT FALSE,
			investor_ok     BOOLEAN
		);`,
		`CREATE INDEX IF NOT EXISTS idx_listing_property ON listing(property_id);`,
		`CREATE TABLE IF NOT EXISTS price_history (
			price_id       BIGSERIAL PRIMARY KEY,
			listing_id     BIGINT NOT NULL REFERENCES listing(listing_id) ON DELETE CASCADE,
			effective_date DATE NOT NULL,
			price          NUMERIC(12,2) NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_listing ON price_history(listing_id);`,
		`CREATE TABLE IF NOT EXISTS loan (
			loan_id          BIGSERIAL PRIMARY KEY,
			property_id      BIGINT NOT NULL UNIQUE REFERENCES property(property_id),
			loan_type        TEXT NOT NULL
				CHECK (loan_type IN ('FHA','VA','NVVA','Maybe_NVVA','CONV','USDA')),
			interest_rate    NUMERIC(6,3),
			balance          NUMERIC(12,2),
			piti             NUMERIC(12,2),
			loan_servicer    TEXT,
			investor_allowed BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE TABLE IF NOT EXISTS analysis (
			analysis_id  BIGSERIAL PRIMARY KEY,
			listing_id   BIGINT NOT NULL REFERENCES listing(listing_id) ON DELETE CASCADE,
			url          TEXT,
			roi_pass     BOOLEAN NOT NULL DEFAULT FALSE,
			run_complete BOOLEAN NOT NULL DEFAULT FALSE,
			run_date     TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS response (
			response_id BIGSERIAL PRIMARY KEY,
			listing_id  BIGINT NOT NULL REFERENCES listing(listing_id) ON DELETE CASCADE,
			author      TEXT NOT NULL,
			note_text   TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_response_listing ON response(listing_id);`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id       BIGSERIAL PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
