package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/yourorg/assumables-api/geocode"
	"github.com/yourorg/assumables-api/internal/canon"
	"github.com/yourorg/assumables-api/internal/env"
	"github.com/yourorg/assumables-api/internal/listings"
	"github.com/yourorg/assumables-api/internal/logger"
	"github.com/yourorg/assumables-api/internal/store"
)

// importer loads a spreadsheet export of the tracking sheet into the
// database, one submission per row. Rows share the same write path as
// the API so dedup and geocoding behave identically.
func main() {
	var (
		file = flag.String("file", "", "CSV file to import (header row required)")
		qps  = flag.Float64("qps", 2, "max geocode requests per second")
	)
	flag.Parse()

	_ = godotenv.Load()
	log := logger.New(logger.ParseLevel(env.Get("LOG_LEVEL", "info")), env.GetBool("LOG_JSON", false))

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file listings.csv")
		os.Exit(2)
	}

	ctx := context.Background()

	st, err := store.Open(env.Must("PG_DSN"))
	if err != nil {
		log.Error("postgres open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	geo := geocode.NewClient(env.Get("GOOGLE_MAPS_KEY", ""), log)
	geo.Limiter = rate.NewLimiter(rate.Limit(*qps), 1)

	writer := &listings.Writer{Store: st, Geo: geo, Log: log}
	homeState := env.Get("HOME_STATE", "CO")

	f, err := os.Open(*file)
	if err != nil {
		log.Error("open csv failed", "err", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		log.Error("read header failed", "err", err)
		os.Exit(1)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	start := time.Now()
	var imported, skipped int
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("bad csv row", "line", line, "err", err)
			skipped++
			continue
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		sub, err := rowToSubmission(get, homeState)
		if err != nil {
			log.Warn("row skipped", "line", line, "err", err)
			skipped++
			continue
		}
		id, err := writer.Create(ctx, sub)
		if err != nil {
			log.Warn("row failed", "line", line, "street", sub.Street, "err", err)
			skipped++
			continue
		}
		log.Info("imported", "line", line, "listing_id", id, "street", sub.Street)
		imported++
	}

	log.Info("import finished",
		"imported", imported, "skipped", skipped, "elapsed", time.Since(start).Round(time.Millisecond))
	if skipped > 0 {
		os.Exit(1)
	}
}

func rowToSubmission(get func(string) string, homeState string) (listings.Submission, error) {
	sub := listings.Submission{
		Street: get("street"),
		Unit:   strPtr(get("unit")),
		City:   get("city"),
		State:  canon.NormalizeState(get("state")),
		Zip:    get("zip"),

		Beds:     parseInt(get("beds")),
		Baths:    parseFloat(get("baths")),
		Sqft:     parseInt(get("sqft")),
		HOAMonth: parseMoney(get("hoa_month")),

		RealtorName: get("realtor_name"),

		DateAdded:     get("date_added"),
		MLSLink:       strPtr(get("mls_link")),
		MLSStatus:     strPtr(get("mls_status")),
		SentToClients: parseBool(get("sent_to_clients")),

		LoanType:        strPtr(get("loan_type")),
		InterestRate:    parseFloat(get("interest_rate")),
		Balance:         parseMoney(get("balance")),
		PITI:            parseMoney(get("piti")),
		LoanServicer:    strPtr(get("loan_servicer")),
		InvestorAllowed: parseBool(get("investor_allowed")),

		AskingPrice: parseMoney(get("asking_price")),

		AnalysisURL:        strPtr(get("analysis_url")),
		DoneRunningNumbers: parseBoolPtr(get("done_running_numbers")),
		ROIPass:            parseBoolPtr(get("roi_pass")),

		ResponseFromRealtor: strPtr(get("response_from_realtor")),
		FullResponseFromAmy: strPtr(get("full_response_from_amy")),
	}
	if sub.State == "" {
		sub.State = canon.NormalizeState(homeState)
	}
	if sub.Street == "" || sub.City == "" || sub.State == "" || sub.Zip == "" {
		return sub, fmt.Errorf("street, city, state, zip are required")
	}
	if !canon.ValidZIP(sub.Zip) {
		return sub, fmt.Errorf("invalid zip %q", sub.Zip)
	}
	if sub.RealtorName == "" {
		sub.RealtorName = "Unknown"
	}
	return sub, nil
}
