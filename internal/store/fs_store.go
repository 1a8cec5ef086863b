package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore implements Store on the filesystem. Reports are stored as
// <baseDir>/reports/<id>.json.
//
// Writes go through a temp file and a rename, so concurrent readers never
// see a partial report and no locks are needed.
type FSStore struct {
	baseDir string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a filesystem store rooted at baseDir, creating the
// directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "reports"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

func (fs *FSStore) reportsDir() string {
	return filepath.Join(fs.baseDir, "reports")
}

func (fs *FSStore) reportPath(id string) string {
	return filepath.Join(fs.reportsDir(), id+".json")
}

// checkID rejects IDs that would escape the report directory.
func checkID(id string) error {
	if id == "" {
		return fmt.Errorf("report id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid report id %q", id)
	}
	return nil
}

// SaveReport atomically saves a report.
func (fs *FSStore) SaveReport(report *Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if err := checkID(report.ID); err != nil {
		return err
	}
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	finalPath := fs.reportPath(report.ID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	slog.Debug("Report saved", "id", report.ID, "path", finalPath)
	return nil
}

// LoadReport retrieves a report by ID.
func (fs *FSStore) LoadReport(id string) (*Report, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	path := fs.reportPath(id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}

	slog.Debug("Report loaded", "id", id, "path", path)
	return &report, nil
}

// ListReports returns summaries of all readable reports, newest first.
// Corrupted files are logged and skipped.
func (fs *FSStore) ListReports() ([]ReportInfo, error) {
	entries, err := os.ReadDir(fs.reportsDir())
	if os.IsNotExist(err) {
		return []ReportInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	infos := []ReportInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		report, err := fs.LoadReport(strings.TrimSuffix(name, ".json"))
		if err != nil {
			slog.Warn("Failed to load report for listing", "file", name, "error", err)
			continue
		}
		infos = append(infos, report.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	slog.Debug("Listed reports", "count", len(infos))
	return infos, nil
}

// DeleteReport removes a report.
func (fs *FSStore) DeleteReport(id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	path := fs.reportPath(id)
	if err := os.Remove(path); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to remove report file: %w", err)
	}

	slog.Debug("Report deleted", "id", id, "path", path)
	return nil
}
