package picture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/christianyates/DrupalGeoPicture/internal/device"
)

func writeTestPNG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	path := filepath.Join(dir, "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write test png: %v", err)
	}
	return path
}

func TestFromFileRejectsNonImage(t *testing.T) {
	a := NewAcquirer(nil)

	// A text file never triggers a read: the path does not even exist.
	entry := &device.FileEntry{Path: "/nonexistent/notes.txt", MIME: "text/plain"}
	err := a.FromFile(entry)
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	if a.Ref() != Placeholder {
		t.Fatalf("expected placeholder after rejection, got %q", a.Ref())
	}
}

func TestFromFileReadsImage(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 8, 8)
	a := NewAcquirer(nil)

	if err := a.FromFile(device.NewFileEntry(path)); err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if !strings.HasPrefix(a.Ref(), "data:image/png;base64,") {
		t.Fatalf("unexpected ref: %q", a.Ref())
	}
	if !a.HasPicture() {
		t.Fatalf("expected a pending picture")
	}
}

func TestFromFileReplacesWholesale(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, 4, 4)
	a := NewAcquirer(nil)

	if err := a.FromFile(device.NewFileEntry(path)); err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	first := a.Ref()

	// Rejection replaces the pending picture with the placeholder.
	if err := a.FromFile(&device.FileEntry{Path: path, MIME: "text/plain"}); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	if a.Ref() == first {
		t.Fatalf("pending picture was not replaced")
	}
}

type fakeCamera struct {
	uri  string
	opts device.CameraOptions
}

func (f *fakeCamera) TakePicture(ctx context.Context, opts device.CameraOptions) (string, error) {
	f.opts = opts
	return f.uri, nil
}

func TestFromCameraOptions(t *testing.T) {
	cam := &fakeCamera{uri: "/tmp/cam/img_0001.jpg"}
	a := NewAcquirer(cam)

	if err := a.FromCamera(context.Background()); err != nil {
		t.Fatalf("FromCamera failed: %v", err)
	}
	if cam.opts.Quality != 50 {
		t.Fatalf("expected quality 50, got %d", cam.opts.Quality)
	}
	if cam.opts.Destination != device.DestinationFileURI {
		t.Fatalf("expected file URI destination, got %s", cam.opts.Destination)
	}
	if a.Ref() != "/tmp/cam/img_0001.jpg" {
		t.Fatalf("unexpected ref: %q", a.Ref())
	}
}

func TestEncodedPayloadPlaceholderSentinel(t *testing.T) {
	a := NewAcquirer(nil)
	payload, err := a.EncodedPayload(context.Background())
	if err != nil {
		t.Fatalf("EncodedPayload failed: %v", err)
	}
	if payload != EmptyPayload {
		t.Fatalf("expected empty sentinel, got %q", payload)
	}
}

func TestEncodedPayloadFromFileURI(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 4, 4)
	cam := &fakeCamera{uri: path}
	a := NewAcquirer(cam)
	if err := a.FromCamera(context.Background()); err != nil {
		t.Fatalf("FromCamera failed: %v", err)
	}

	payload, err := a.EncodedPayload(context.Background())
	if err != nil {
		t.Fatalf("EncodedPayload failed: %v", err)
	}
	if !strings.HasPrefix(payload, "data:image/png;base64,") {
		t.Fatalf("unexpected payload prefix: %q", payload[:32])
	}
	if _, err := base64.StdEncoding.DecodeString(Base64Content(payload)); err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
}

func TestDownscaleCapsLongerDimension(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 4096, 64)
	a := NewAcquirer(nil)
	if err := a.FromFile(device.NewFileEntry(path)); err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}

	if err := a.Downscale(context.Background()); err != nil {
		t.Fatalf("Downscale failed: %v", err)
	}
	payload, err := a.EncodedPayload(context.Background())
	if err != nil {
		t.Fatalf("EncodedPayload failed: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(Base64Content(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("image decode failed: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg, got %s", format)
	}
	if img.Bounds().Dx() > 2048 || img.Bounds().Dy() > 2048 {
		t.Fatalf("image not downscaled: %v", img.Bounds())
	}
}

func TestDownscaleSmallImageKeepsSize(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 100, 50)
	a := NewAcquirer(nil)
	if err := a.FromFile(device.NewFileEntry(path)); err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if err := a.Downscale(context.Background()); err != nil {
		t.Fatalf("Downscale failed: %v", err)
	}

	payload, _ := a.EncodedPayload(context.Background())
	raw, _ := base64.StdEncoding.DecodeString(Base64Content(payload))
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("image decode failed: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Fatalf("small image was resized: %v", img.Bounds())
	}
}

func TestFilenameDerivation(t *testing.T) {
	a := NewAcquirer(&fakeCamera{uri: "file:///var/cam/tmp/img_42.jpg"})
	if err := a.FromCamera(context.Background()); err != nil {
		t.Fatalf("FromCamera failed: %v", err)
	}
	if got := a.Filename(); got != "img_42.jpg" {
		t.Fatalf("unexpected filename: %q", got)
	}

	a.setRef("data:image/png;base64,AAAA")
	if got := a.Filename(); got != "picture.png" {
		t.Fatalf("unexpected filename for data URL: %q", got)
	}
}

func TestBase64Content(t *testing.T) {
	if got := Base64Content("data:image/jpeg;base64,aGk="); got != "aGk=" {
		t.Fatalf("unexpected content: %q", got)
	}
	if got := Base64Content("aGk="); got != "aGk=" {
		t.Fatalf("input without marker changed: %q", got)
	}
}
