package gallery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf16"

	"github.com/Timmoth/doodles/internal/filesystem"
	"github.com/Timmoth/doodles/internal/logging"
	"github.com/Timmoth/doodles/internal/metrics"
)

// Entry is one image in the gallery manifest. Field order is the order
// written to gallery.json.
type Entry struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
	Fullsize  string `json:"fullsize"`
	Timestamp string `json:"timestamp"`

	// Date is the parsed timestamp and where it came from
	Date DateResult `json:"-"`
}

// NewEntry builds the manifest entry for a full-size image file name
func NewEntry(name string, modTime time.Time) Entry {
	display, date := ParseStem(Stem(name), modTime)
	return Entry{
		Name:      display,
		Thumbnail: ThumbnailName(name),
		Fullsize:  name,
		Timestamp: FormatTimestamp(date.Time),
		Date:      date,
	}
}

// Build scans outDir for full-size images and returns their entries
// sorted newest first. Thumbnails and non-image files are ignored, and an
// image that cannot be stat'd is left out with a warning.
func Build(outDir string, retry filesystem.RetryConfig) ([]Entry, error) {
	dirEntries, err := filesystem.ReadDirWithRetry(outDir, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to list output directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !IsImageName(name) || IsThumbnailName(name) {
			continue
		}

		info, err := filesystem.StatWithRetry(filepath.Join(outDir, name), retry)
		if err != nil {
			logging.Warn("Leaving %s out of the manifest: %v", name, err)
			continue
		}

		entry := NewEntry(name, info.ModTime())
		metrics.ManifestDateSource.WithLabelValues(string(entry.Date.Source)).Inc()
		if entry.Date.Source == SourceModTime {
			logging.Debug("%s: using modification time (%s)", name, entry.Date.Reason)
		}

		thumbExists, err := filesystem.Exists(filepath.Join(outDir, entry.Thumbnail), retry)
		if err != nil {
			logging.Warn("Could not check thumbnail %s: %v", entry.Thumbnail, err)
		} else if !thumbExists {
			logging.Warn("Thumbnail %s missing for %s", entry.Thumbnail, name)
			metrics.ManifestMissingThumbnails.Inc()
		}

		entries = append(entries, entry)
	}

	Sort(entries)
	return entries, nil
}

// Sort orders entries newest first. Entries with equal timestamps keep
// their relative order.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Time.After(entries[j].Date.Time)
	})
}

// Marshal renders entries as a JSON array indented by two spaces. Non-ASCII
// characters are written as \u escapes and there is no trailing newline.
func Marshal(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}

	return escapeNonASCII(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// escapeNonASCII replaces every non-ASCII rune with \uXXXX escapes, using
// surrogate pairs above the BMP. Valid JSON only carries such runes inside
// strings, so the replacement is safe on the whole document.
func escapeNonASCII(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, r := range string(data) {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		if r > 0xffff {
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}

// Write replaces the manifest in outDir with entries. The file is written
// to a temporary name first and renamed into place.
func Write(outDir string, entries []Entry) error {
	data, err := Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(outDir, "."+ManifestName+".*")
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(outDir, ManifestName)); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	metrics.ManifestEntries.Set(float64(len(entries)))
	return nil
}
