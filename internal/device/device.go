// Package device defines the capability interfaces the application expects
// from the platform: camera, geolocation, user notification, and file
// entries. Implementations live with the host binary; the library only
// depends on these contracts.
package device

import (
	"context"
	"time"
)

// PictureSource selects where a captured picture comes from.
type PictureSource string

const (
	SourceCamera       PictureSource = "CAMERA"
	SourcePhotoLibrary PictureSource = "PHOTOLIBRARY"
	SourceSavedAlbum   PictureSource = "SAVEDPHOTOALBUM"
)

// DestinationKind selects how a captured picture is returned.
type DestinationKind string

const (
	// DestinationFileURI returns a reference to the picture on disk.
	DestinationFileURI DestinationKind = "FILE_URI"
	// DestinationDataURL returns the picture inline as a base64 data URL.
	DestinationDataURL DestinationKind = "DATA_URL"
)

// CameraOptions configures a single picture capture.
type CameraOptions struct {
	Quality     int
	Source      PictureSource
	Destination DestinationKind
}

// Camera captures a single picture and returns its reference, either a
// file URI or an inline data URL depending on the destination kind.
type Camera interface {
	TakePicture(ctx context.Context, opts CameraOptions) (string, error)
}

// Position is a single location fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time
}

// PositionOptions configures a location request.
type PositionOptions struct {
	HighAccuracy bool
}

// Locator produces the device's current position.
type Locator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// Notifier surfaces user-facing feedback: alerts, haptics, and the busy
// indicator shown while a submission is in flight.
type Notifier interface {
	Alert(title, message string)
	Vibrate(d time.Duration)
	Loading(on bool)
}
