// Package picture acquires a single pending image and normalizes it to an
// inline base64 payload, regardless of whether it came from the camera, a
// file picker, or an existing reference.
package picture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nfnt/resize"

	"github.com/christianyates/DrupalGeoPicture/internal/device"
)

const (
	// Placeholder is the display reference used when no picture is pending.
	Placeholder = "images/entry_no_icon.png"
	// EmptyPayload is the sentinel returned instead of image bytes when the
	// pending picture is absent or the placeholder.
	EmptyPayload = "data:,"

	cameraQuality = 50
	maxDimension  = 2048
	jpegQuality   = 85
)

// ErrNotAnImage is returned when a picked file is not a supported image.
var ErrNotAnImage = errors.New("this file is not an image")

// Acquirer holds the single pending picture reference. Each acquisition
// replaces the previous picture wholesale.
type Acquirer struct {
	camera device.Camera // nil when the platform has no camera

	mu  sync.Mutex
	ref string
}

// NewAcquirer creates an acquirer starting at the placeholder. camera may
// be nil.
func NewAcquirer(camera device.Camera) *Acquirer {
	return &Acquirer{camera: camera, ref: Placeholder}
}

// Ref returns the active image reference: a file URI, an inline data URL,
// or the placeholder.
func (a *Acquirer) Ref() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ref
}

// HasPicture reports whether a non-placeholder picture is pending.
func (a *Acquirer) HasPicture() bool {
	ref := a.Ref()
	return ref != "" && ref != Placeholder
}

// Reset discards the pending picture and restores the placeholder.
func (a *Acquirer) Reset() {
	a.setRef(Placeholder)
}

// FromCamera captures a picture from the device camera at fixed quality
// and stores the returned file URI as the active reference.
func (a *Acquirer) FromCamera(ctx context.Context) error {
	if a.camera == nil {
		return fmt.Errorf("no camera available")
	}
	uri, err := a.camera.TakePicture(ctx, device.CameraOptions{
		Quality:     cameraQuality,
		Source:      device.SourceCamera,
		Destination: device.DestinationFileURI,
	})
	if err != nil {
		return err
	}
	a.setRef(uri)
	return nil
}

// FromFile takes a picked file. Files whose MIME type is not one of
// image/{gif,jpeg,png} are rejected without being read, and the pending
// picture resets to the placeholder.
func (a *Acquirer) FromFile(entry *device.FileEntry) error {
	if !supportedImageMIME(entry.MIME) {
		a.Reset()
		return ErrNotAnImage
	}
	data, err := entry.ReadBase64()
	if err != nil {
		return err
	}
	a.setRef("data:" + entry.MIME + ";base64," + data)
	return nil
}

// EncodedPayload normalizes the active reference into a single base64 data
// URL. The placeholder and an absent picture yield EmptyPayload rather
// than image bytes.
func (a *Acquirer) EncodedPayload(ctx context.Context) (string, error) {
	ref := a.Ref()
	if ref == "" || ref == Placeholder {
		return EmptyPayload, nil
	}
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}

	// A file URI from the camera: read and inline it.
	data, err := os.ReadFile(strings.TrimPrefix(ref, "file://"))
	if err != nil {
		return "", fmt.Errorf("failed to read picture %s: %w", ref, err)
	}
	mimeType := http.DetectContentType(data)
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Downscale shrinks the pending picture so the longer dimension does not
// exceed 2048px, re-encoding it as a JPEG data URL. Pictures already
// within the limit are left untouched.
func (a *Acquirer) Downscale(ctx context.Context) error {
	payload, err := a.EncodedPayload(ctx)
	if err != nil {
		return err
	}
	if payload == EmptyPayload {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(Base64Content(payload))
	if err != nil {
		return fmt.Errorf("failed to decode picture payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode picture: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return nil
	}
	img = resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("failed to encode picture: %w", err)
	}
	a.setRef("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	return nil
}

// Filename derives the upload filename from the active reference. Inline
// data URLs get a name with an extension matching their MIME type.
func (a *Acquirer) Filename() string {
	ref := a.Ref()
	if strings.HasPrefix(ref, "data:") {
		switch dataURLMIME(ref) {
		case "image/png":
			return "picture.png"
		case "image/gif":
			return "picture.gif"
		default:
			return "picture.jpg"
		}
	}
	return filepath.Base(strings.TrimPrefix(ref, "file://"))
}

func (a *Acquirer) setRef(ref string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ref = ref
}

// Base64Content strips the data URL prefix and returns the raw base64
// content. Input without a base64 marker is returned unchanged.
func Base64Content(dataURL string) string {
	const marker = ";base64,"
	if i := strings.Index(dataURL, marker); i >= 0 {
		return dataURL[i+len(marker):]
	}
	return dataURL
}

func dataURLMIME(dataURL string) string {
	rest := strings.TrimPrefix(dataURL, "data:")
	if i := strings.IndexAny(rest, ";,"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func supportedImageMIME(mimeType string) bool {
	switch mimeType {
	case "image/gif", "image/jpeg", "image/png":
		return true
	}
	return false
}
