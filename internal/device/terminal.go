package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TerminalNotifier prints notifications to a writer. It stands in for the
// platform alert/vibrate/spinner primitives when running in a terminal.
type TerminalNotifier struct {
	Out io.Writer
}

// NewTerminalNotifier creates a notifier writing to stdout.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{Out: os.Stdout}
}

func (n *TerminalNotifier) Alert(title, message string) {
	fmt.Fprintf(n.Out, "[%s] %s\n", title, message)
}

func (n *TerminalNotifier) Vibrate(d time.Duration) {
	fmt.Fprintf(n.Out, "(vibrate %dms)\n", d.Milliseconds())
}

func (n *TerminalNotifier) Loading(on bool) {
	if on {
		fmt.Fprintln(n.Out, "working...")
	} else {
		fmt.Fprintln(n.Out, "done.")
	}
}

// SpoolCamera emulates a camera by picking the most recently modified
// image file from a spool directory.
type SpoolCamera struct {
	Dir *DirectoryEntry
}

// NewSpoolCamera creates a camera backed by the given directory.
func NewSpoolCamera(dir string) *SpoolCamera {
	return &SpoolCamera{Dir: &DirectoryEntry{Path: dir}}
}

// TakePicture returns the path of the newest image in the spool directory.
func (c *SpoolCamera) TakePicture(ctx context.Context, opts CameraOptions) (string, error) {
	entries, err := c.Dir.List()
	if err != nil {
		return "", err
	}

	var newest *FileEntry
	var newestMod time.Time
	for _, e := range entries {
		fe, ok := e.(*FileEntry)
		if !ok || !strings.HasPrefix(fe.MIME, "image/") {
			continue
		}
		info, err := os.Stat(fe.Path)
		if err != nil {
			continue
		}
		if newest == nil || info.ModTime().After(newestMod) {
			newest = fe
			newestMod = info.ModTime()
		}
	}
	if newest == nil {
		return "", fmt.Errorf("no image found in %s", c.Dir.Path)
	}

	if opts.Destination == DestinationDataURL {
		data, err := newest.ReadBase64()
		if err != nil {
			return "", err
		}
		return "data:" + newest.MIME + ";base64," + data, nil
	}
	return newest.Path, nil
}

// FixedLocator returns a fixed position, configured at startup. It stands
// in for the device GPS when running in a terminal.
type FixedLocator struct {
	Lat float64
	Lng float64
}

func (l *FixedLocator) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	return Position{
		Latitude:  l.Lat,
		Longitude: l.Lng,
		Timestamp: time.Now(),
	}, nil
}
