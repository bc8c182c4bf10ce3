package location

import (
	"context"
	"fmt"
	"testing"

	"github.com/christianyates/DrupalGeoPicture/internal/device"
	"github.com/christianyates/DrupalGeoPicture/internal/domain"
	"github.com/christianyates/DrupalGeoPicture/internal/geocode"
)

type fakeLocator struct {
	pos device.Position
	err error
}

func (f *fakeLocator) CurrentPosition(ctx context.Context, opts device.PositionOptions) (device.Position, error) {
	if !opts.HighAccuracy {
		return device.Position{}, fmt.Errorf("expected high accuracy request")
	}
	return f.pos, f.err
}

type fakeGeocoder struct {
	addr  *geocode.Address
	err   error
	calls int
}

func (f *fakeGeocoder) Reverse(ctx context.Context, lat, lng float64) (*geocode.Address, error) {
	f.calls++
	return f.addr, f.err
}

func TestRefreshPopulatesCoordinatesAndAddress(t *testing.T) {
	locator := &fakeLocator{pos: device.Position{Latitude: 37.77, Longitude: -122.41}}
	geocoder := &fakeGeocoder{addr: &geocode.Address{
		Street:     "Market Street 1",
		City:       "San Francisco",
		Province:   "California",
		PostalCode: "94103",
	}}
	r := NewResolver(locator, geocoder)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	draft := r.Draft()
	if draft.Latitude != 37.77 || draft.Longitude != -122.41 || !draft.HasFix {
		t.Fatalf("unexpected coordinates: %+v", draft)
	}
	if draft.City != "San Francisco" || draft.PostalCode != "94103" {
		t.Fatalf("unexpected address: %+v", draft)
	}
	if geocoder.calls != 1 {
		t.Fatalf("expected 1 geocoder call, got %d", geocoder.calls)
	}
}

func TestRefreshGeocoderFailureIsSwallowed(t *testing.T) {
	locator := &fakeLocator{pos: device.Position{Latitude: 1, Longitude: 2}}
	geocoder := &fakeGeocoder{err: fmt.Errorf("quota exceeded")}
	r := NewResolver(locator, geocoder)
	r.SetCity("Brussels") // manually entered before the refresh

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh surfaced a geocoder failure: %v", err)
	}

	draft := r.Draft()
	if !draft.HasFix || draft.Latitude != 1 {
		t.Fatalf("coordinate-only result lost: %+v", draft)
	}
	if draft.City != "Brussels" {
		t.Fatalf("manually entered field overwritten: %+v", draft)
	}
}

func TestRefreshWithoutGeocoder(t *testing.T) {
	locator := &fakeLocator{pos: device.Position{Latitude: 50.85, Longitude: 4.35}}
	r := NewResolver(locator, nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := r.Draft().LatitudeString(); got != "50.85" {
		t.Fatalf("unexpected latitude string: %q", got)
	}
}

func TestRefreshLocatorError(t *testing.T) {
	locator := &fakeLocator{err: fmt.Errorf("location unavailable")}
	r := NewResolver(locator, nil)

	if err := r.Refresh(context.Background()); err == nil {
		t.Fatalf("expected locator error")
	}
	if r.Draft().HasFix {
		t.Fatalf("draft got a fix despite locator error")
	}
}

func TestSummaryFormula(t *testing.T) {
	tests := []struct {
		draft domain.LocationDraft
		want  string
	}{
		{domain.LocationDraft{Street: "Market Street 1", PostalCode: "94103", City: "San Francisco"}, "Market Street 1, 94103 San Francisco"},
		{domain.LocationDraft{}, ",  "},
		{domain.LocationDraft{Street: "Rue Haute"}, "Rue Haute,  "},
		{domain.LocationDraft{City: "Brussels"}, ",  Brussels"},
		{domain.LocationDraft{PostalCode: "1000"}, ", 1000 "},
	}
	for _, tt := range tests {
		if got := tt.draft.Summary(); got != tt.want {
			t.Fatalf("Summary() = %q, want %q", got, tt.want)
		}
	}
}

func TestLastWriterWins(t *testing.T) {
	locator := &fakeLocator{pos: device.Position{Latitude: 10, Longitude: 20}}
	r := NewResolver(locator, nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	locator.pos = device.Position{Latitude: 30, Longitude: 40}
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if draft := r.Draft(); draft.Latitude != 30 || draft.Longitude != 40 {
		t.Fatalf("expected last refresh to win: %+v", draft)
	}
}
