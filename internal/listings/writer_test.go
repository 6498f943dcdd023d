package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/assumables-api/geocode"
	"github.com/yourorg/assumables-api/internal/store"
)

type fakeStore struct {
	needsCoords bool
	needsErr    error
	createErr   error
	gotInput    store.CreateListingInput
	created     bool
}

func (f *fakeStore) PropertyNeedsCoords(ctx context.Context, key store.AddressKey) (bool, error) {
	return f.needsCoords, f.needsErr
}

func (f *fakeStore) CreateListing(ctx context.Context, in store.CreateListingInput) (store.CreateListingResult, error) {
	if f.createErr != nil {
		return store.CreateListingResult{}, f.createErr
	}
	f.gotInput = in
	f.created = true
	return store.CreateListingResult{ListingID: 42, PropertyID: 7}, nil
}

type fakeGeocoder struct {
	coords  *geocode.Coords
	err     error
	calls   int
	gotAddr geocode.Address
}

func (f *fakeGeocoder) Geocode(ctx context.Context, a geocode.Address) (*geocode.Coords, error) {
	f.calls++
	f.gotAddr = a
	return f.coords, f.err
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }
func bptr(v bool) *bool       { return &v }

func baseSubmission() Submission {
	return Submission{
		Street:      "115 Crystal Park Rd",
		City:        "Manitou Springs",
		State:       "CO",
		Zip:         "80829",
		RealtorName: "Jane Agent",
		LoanType:    sptr("VA"),
	}
}

func TestEquityToCover(t *testing.T) {
	cases := []struct {
		name    string
		asking  *float64
		balance *float64
		want    *float64
	}{
		{"positive gap", fptr(500000), fptr(345000), fptr(155000)},
		{"underwater floors at zero", fptr(300000), fptr(345000), fptr(0)},
		{"nil balance", fptr(300000), nil, nil},
		{"nil asking", nil, fptr(345000), nil},
		{"rounds to cents", fptr(100000.555), fptr(100000.111), fptr(0.44)},
	}
	for _, c := range cases {
		got := EquityToCover(c.asking, c.balance)
		switch {
		case c.want == nil && got != nil:
			t.Errorf("%s: got %v, want nil", c.name, *got)
		case c.want != nil && got == nil:
			t.Errorf("%s: got nil, want %v", c.name, *c.want)
		case c.want != nil && *got != *c.want:
			t.Errorf("%s: got %v, want %v", c.name, *got, *c.want)
		}
	}
}

func TestCreateGeocodeSoftFailure(t *testing.T) {
	st := &fakeStore{needsCoords: true}
	geo := &fakeGeocoder{err: errors.New("provider unreachable")}
	w := &Writer{Store: st, Geo: geo}

	id, err := w.Create(context.Background(), baseSubmission())
	if err != nil {
		t.Fatalf("geocode failure must not abort creation: %v", err)
	}
	if id != 42 {
		t.Fatalf("got id %d, want 42", id)
	}
	if st.gotInput.Lat.Valid || st.gotInput.Lon.Valid {
		t.Fatal("coordinates should stay null after a geocode failure")
	}
}

func TestCreateAppliesGeocodeResult(t *testing.T) {
	st := &fakeStore{needsCoords: true}
	geo := &fakeGeocoder{coords: &geocode.Coords{Lat: 38.85, Lon: -104.92}}
	w := &Writer{Store: st, Geo: geo}

	if _, err := w.Create(context.Background(), baseSubmission()); err != nil {
		t.Fatal(err)
	}
	if !st.gotInput.Lat.Valid || st.gotInput.Lat.Float64 != 38.85 {
		t.Errorf("lat: got %+v", st.gotInput.Lat)
	}
	if !st.gotInput.Lon.Valid || st.gotInput.Lon.Float64 != -104.92 {
		t.Errorf("lon: got %+v", st.gotInput.Lon)
	}
}

func TestCreateTrimsUnitEverywhere(t *testing.T) {
	st := &fakeStore{needsCoords: true}
	geo := &fakeGeocoder{}
	w := &Writer{Store: st, Geo: geo}

	sub := baseSubmission()
	sub.Unit = sptr("  Apt 4  ")
	if _, err := w.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if got := geo.gotAddr.Unit; got != "Apt 4" {
		t.Errorf("geocoded unit = %q, want trimmed %q", got, "Apt 4")
	}
	if got := st.gotInput.Address.Unit; !got.Valid || got.String != "Apt 4" {
		t.Errorf("stored unit = %+v, want trimmed %q", got, "Apt 4")
	}

	sub.Unit = sptr("   ")
	if _, err := w.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if st.gotInput.Address.Unit.Valid {
		t.Errorf("blank unit should store as null, got %+v", st.gotInput.Address.Unit)
	}
}

func TestCreateSkipsGeocodeWhenCoordsKnown(t *testing.T) {
	st := &fakeStore{needsCoords: false}
	geo := &fakeGeocoder{coords: &geocode.Coords{Lat: 1, Lon: 2}}
	w := &Writer{Store: st, Geo: geo}

	if _, err := w.Create(context.Background(), baseSubmission()); err != nil {
		t.Fatal(err)
	}
	if geo.calls != 0 {
		t.Fatalf("geocoder called %d times for a property with coordinates", geo.calls)
	}
}

func TestCreateNotesConditionality(t *testing.T) {
	st := &fakeStore{}
	w := &Writer{Store: st}

	sub := baseSubmission()
	sub.ResponseFromRealtor = sptr("  seller will consider assumption  ")
	sub.FullResponseFromAmy = sptr("   ")

	if _, err := w.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if len(st.gotInput.Notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(st.gotInput.Notes))
	}
	n := st.gotInput.Notes[0]
	if n.Author != AuthorRealtor {
		t.Errorf("author: got %q, want %q", n.Author, AuthorRealtor)
	}
	if n.Text != "seller will consider assumption" {
		t.Errorf("text not trimmed: %q", n.Text)
	}
}

func TestCreateBothNotes(t *testing.T) {
	st := &fakeStore{}
	w := &Writer{Store: st}

	sub := baseSubmission()
	sub.ResponseFromRealtor = sptr("yes")
	sub.FullResponseFromAmy = sptr("numbers look good")

	if _, err := w.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if len(st.gotInput.Notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(st.gotInput.Notes))
	}
	if st.gotInput.Notes[1].Author != AuthorAmy {
		t.Errorf("second author: got %q, want %q", st.gotInput.Notes[1].Author, AuthorAmy)
	}
}

func TestCreateAnalysisOnlyWhenSupplied(t *testing.T) {
	st := &fakeStore{}
	w := &Writer{Store: st}

	if _, err := w.Create(context.Background(), baseSubmission()); err != nil {
		t.Fatal(err)
	}
	if st.gotInput.Analysis != nil {
		t.Fatal("no analysis fields supplied, row should be skipped")
	}

	sub := baseSubmission()
	sub.ROIPass = bptr(true)
	if _, err := w.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if st.gotInput.Analysis == nil || !st.gotInput.Analysis.ROIPass {
		t.Fatalf("analysis: got %+v", st.gotInput.Analysis)
	}
}

func TestCreateDerivedFields(t *testing.T) {
	st := &fakeStore{}
	w := &Writer{Store: st}

	sub := baseSubmission()
	sub.AskingPrice = fptr(500000)
	sub.Balance = fptr(345000)
	sub.LoanType = nil // falls back to the default

	if _, err := w.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	in := st.gotInput
	if !in.EquityToCover.Valid || in.EquityToCover.Float64 != 155000 {
		t.Errorf("equity: got %+v", in.EquityToCover)
	}
	if in.LoanType != DefaultLoanType {
		t.Errorf("loan type: got %q, want %q", in.LoanType, DefaultLoanType)
	}
	if in.DateAdded == "" {
		t.Fatal("date added must default to today")
	}
	if _, err := time.Parse("2006-01-02", in.DateAdded); err != nil {
		t.Errorf("date added %q is not YYYY-MM-DD", in.DateAdded)
	}
	if !in.AskingPrice.Valid || in.AskingPrice.Float64 != 500000 {
		t.Errorf("asking price: got %+v", in.AskingPrice)
	}
}

func TestCreatePropagatesStoreError(t *testing.T) {
	st := &fakeStore{createErr: errors.New("loan_type check violation")}
	w := &Writer{Store: st}

	if _, err := w.Create(context.Background(), baseSubmission()); err == nil {
		t.Fatal("store failure must surface to the caller")
	}
	if st.created {
		t.Fatal("nothing should be recorded on failure")
	}
}
