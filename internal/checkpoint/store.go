// Package checkpoint persists named intermediate and final workflow
// results. Persistence failures are reported to callers so they can be
// logged as warnings; they must never abort a workflow.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/fsutil"
)

// JSONBackend stores one indented JSON file per checkpoint key inside the
// output directory, plus final reports under a reports/ subdirectory.
type JSONBackend struct {
	dir string
}

// NewJSONBackend creates a backend rooted at dir.
func NewJSONBackend(dir string) (*JSONBackend, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &JSONBackend{dir: dir}, nil
}

// Save serializes value to <dir>/<sanitized key>.json atomically.
func (b *JSONBackend) Save(key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint %s: %w", key, err)
	}
	path := filepath.Join(b.dir, SanitizeKey(key)+".json")
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing checkpoint %s: %w", key, err)
	}
	return nil
}

// SaveReport writes a final validation report artifact and returns its path.
func (b *JSONBackend) SaveReport(ideaName string, report any) (string, error) {
	reportsDir := filepath.Join(b.dir, "reports")
	if err := fsutil.EnsureDir(reportsDir); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := filepath.Join(reportsDir, ReportFilename(ideaName, time.Now()))
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Close implements core.CheckpointBackend; the JSON backend holds no
// resources.
func (b *JSONBackend) Close() error { return nil }

var _ core.CheckpointBackend = (*JSONBackend)(nil)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeKey makes a checkpoint key safe for use as a filename.
func SanitizeKey(key string) string {
	key = strings.ReplaceAll(key, string(filepath.Separator), "_")
	key = unsafeKeyChars.ReplaceAllString(key, "_")
	if key == "" {
		key = "checkpoint"
	}
	return key
}

// ReportFilename builds the canonical report artifact name:
// validation_report_<idea_name_lower_snake>_<YYYYMMDD_HHMMSS>.json
func ReportFilename(ideaName string, now time.Time) string {
	name := strings.ToLower(strings.ReplaceAll(ideaName, " ", "_"))
	name = unsafeKeyChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "idea"
	}
	return fmt.Sprintf("validation_report_%s_%s.json", name, now.Format("20060102_150405"))
}
