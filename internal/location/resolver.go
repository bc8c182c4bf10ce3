// Package location produces the best-known device location and a
// human-readable address for it.
package location

import (
	"context"
	"log"
	"sync"

	"github.com/christianyates/DrupalGeoPicture/internal/device"
	"github.com/christianyates/DrupalGeoPicture/internal/domain"
	"github.com/christianyates/DrupalGeoPicture/internal/geocode"
)

// Geocoder reverse-geocodes a coordinate pair. A nil Geocoder disables
// address resolution and keeps raw coordinates.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*geocode.Address, error)
}

// Resolver acquires position fixes and maintains the location draft.
// Overlapping Refresh calls are allowed; there is no request identity
// tracking, so the last completion wins.
type Resolver struct {
	locator  device.Locator
	geocoder Geocoder

	mu    sync.Mutex
	draft domain.LocationDraft
}

// NewResolver creates a resolver. geocoder may be nil.
func NewResolver(locator device.Locator, geocoder Geocoder) *Resolver {
	return &Resolver{locator: locator, geocoder: geocoder}
}

// Refresh requests one high-accuracy fix and updates the draft. Reverse
// geocoding failures are logged and swallowed; the coordinate-only result
// remains valid and previously entered address fields are kept.
func (r *Resolver) Refresh(ctx context.Context) error {
	pos, err := r.locator.CurrentPosition(ctx, device.PositionOptions{HighAccuracy: true})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.draft.Latitude = pos.Latitude
	r.draft.Longitude = pos.Longitude
	r.draft.HasFix = true
	r.mu.Unlock()

	if r.geocoder == nil {
		return nil
	}

	addr, err := r.geocoder.Reverse(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		log.Printf("WARN: reverse geocoding failed: %v", err)
		return nil
	}

	r.mu.Lock()
	r.draft.Street = addr.Street
	r.draft.City = addr.City
	r.draft.Province = addr.Province
	r.draft.PostalCode = addr.PostalCode
	r.mu.Unlock()
	return nil
}

// Draft returns a copy of the current location draft.
func (r *Resolver) Draft() domain.LocationDraft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft
}

// Summary returns the derived display string, recomputed from the current
// field values.
func (r *Resolver) Summary() string {
	return r.Draft().Summary()
}

// SetStreet overrides the street field.
func (r *Resolver) SetStreet(v string) { r.set(func(d *domain.LocationDraft) { d.Street = v }) }

// SetCity overrides the city field.
func (r *Resolver) SetCity(v string) { r.set(func(d *domain.LocationDraft) { d.City = v }) }

// SetProvince overrides the province field.
func (r *Resolver) SetProvince(v string) { r.set(func(d *domain.LocationDraft) { d.Province = v }) }

// SetPostalCode overrides the postal code field.
func (r *Resolver) SetPostalCode(v string) { r.set(func(d *domain.LocationDraft) { d.PostalCode = v }) }

func (r *Resolver) set(apply func(*domain.LocationDraft)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apply(&r.draft)
}
