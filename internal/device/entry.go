package device

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
)

// Entry is a filesystem entry yielded by a picker or spool directory.
// The two variants are FileEntry and DirectoryEntry.
type Entry interface {
	Name() string
	FullPath() string
	IsDirectory() bool
}

// FileEntry is a regular file with a known MIME type.
type FileEntry struct {
	Path string
	MIME string
}

// NewFileEntry creates a FileEntry, deriving the MIME type from the file
// extension. Unknown extensions yield an empty MIME type.
func NewFileEntry(path string) *FileEntry {
	return &FileEntry{
		Path: path,
		MIME: mime.TypeByExtension(filepath.Ext(path)),
	}
}

func (f *FileEntry) Name() string      { return filepath.Base(f.Path) }
func (f *FileEntry) FullPath() string  { return f.Path }
func (f *FileEntry) IsDirectory() bool { return false }

// ReadBase64 reads the whole file and returns its base64 encoding.
func (f *FileEntry) ReadBase64() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DirectoryEntry is a directory that can list its children.
type DirectoryEntry struct {
	Path string
}

func (d *DirectoryEntry) Name() string      { return filepath.Base(d.Path) }
func (d *DirectoryEntry) FullPath() string  { return d.Path }
func (d *DirectoryEntry) IsDirectory() bool { return true }

// List returns the directory's children sorted by name.
func (d *DirectoryEntry) List() ([]Entry, error) {
	dirents, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.Path, err)
	}
	sort.Slice(dirents, func(i, j int) bool { return dirents[i].Name() < dirents[j].Name() })

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		full := filepath.Join(d.Path, de.Name())
		if de.IsDir() {
			entries = append(entries, &DirectoryEntry{Path: full})
		} else {
			entries = append(entries, NewFileEntry(full))
		}
	}
	return entries, nil
}
