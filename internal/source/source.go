// Package source implements input file discovery and schema normalization.
// It maps heterogeneous telemetry export files (CSV with sub-second
// timestamps, XLSX with whole seconds) onto the canonical event schema.
package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/eventmill/eventmill/pkg/types"
)

// InputFile is one discovered telemetry export file.
type InputFile struct {
	// Path is the absolute or input-dir-relative path
	Path string

	// Name is the base filename, the manifest key
	Name string

	// ExtractedDate is the _YYYY_MM_DD filename suffix date; zero when absent
	ExtractedDate time.Time

	// HasDate reports whether the filename carried a date suffix
	HasDate bool

	// ModTime is the filesystem modification time, the ordering fallback
	ModTime time.Time
}

// OrderingDate returns the date that drives processing order: the filename
// suffix when present, the modification time otherwise.
func (f InputFile) OrderingDate() time.Time {
	if f.HasDate {
		return f.ExtractedDate
	}
	return f.ModTime
}

// ParseResult is the outcome of normalizing one file.
type ParseResult struct {
	// Events are the normalized rows in file order
	Events []*types.CanonicalEvent

	// DroppedColumns are source headers with no canonical mapping and no
	// custom-property prefix; their values were discarded
	DroppedColumns []string

	// SkippedRows counts rows dropped for unparseable timestamps
	SkippedRows int

	// SubSecond reports whether any timestamp in the file carried
	// sub-second precision. Whole-second files degrade identity-tuple
	// fidelity; surfaced as a warning, not an error.
	SubSecond bool
}

var dateSuffixRe = regexp.MustCompile(`_(\d{4})_(\d{2})_(\d{2})$`)

// ExtractDate extracts the mandatory-by-convention _YYYY_MM_DD suffix from a
// filename. The extension is stripped before matching.
func ExtractDate(path string) (time.Time, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := dateSuffixRe.FindStringSubmatch(stem)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006_01_02", m[1]+"_"+m[2]+"_"+m[3], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Discover scans the input directory for export files and returns them in
// processing order: dated files ascending by extracted date (filename as the
// deterministic tiebreak), then undated files ascending by modification
// time. This ordering is load-bearing: the upsert's overlap semantics depend
// on later files overlaying earlier ones.
func Discover(inputDir string) ([]InputFile, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("source: failed to read input directory: %w", err)
	}

	var dated, undated []InputFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".csv" && ext != ".xlsx" && ext != ".xls" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("source: failed to stat %s: %w", entry.Name(), err)
		}

		file := InputFile{
			Path:    filepath.Join(inputDir, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
		}
		if d, ok := ExtractDate(entry.Name()); ok {
			file.ExtractedDate = d
			file.HasDate = true
			dated = append(dated, file)
		} else {
			undated = append(undated, file)
		}
	}

	sort.Slice(dated, func(i, j int) bool {
		if !dated[i].ExtractedDate.Equal(dated[j].ExtractedDate) {
			return dated[i].ExtractedDate.Before(dated[j].ExtractedDate)
		}
		return dated[i].Name < dated[j].Name
	})
	sort.Slice(undated, func(i, j int) bool {
		if !undated[i].ModTime.Equal(undated[j].ModTime) {
			return undated[i].ModTime.Before(undated[j].ModTime)
		}
		return undated[i].Name < undated[j].Name
	})

	return append(dated, undated...), nil
}

// HashFile returns the SHA-256 hex digest of a file's contents, used for
// delta detection against the manifest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("source: failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("source: failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Parse normalizes one export file, dispatching on its extension.
func Parse(path string) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(path)
	case ".xlsx", ".xls":
		return parseExcel(path)
	default:
		return nil, fmt.Errorf("source: unsupported file extension: %s", path)
	}
}
