package store

// Store persists verification reports.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if a report doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveReport atomically writes the report under report.ID, replacing
	// any previous report with that ID.
	SaveReport(report *Report) error

	// LoadReport returns the report with the given ID, or ErrNotFound.
	LoadReport(id string) (*Report, error)

	// ListReports returns summaries of all stored reports, newest first.
	ListReports() ([]ReportInfo, error)

	// DeleteReport removes a report, or returns ErrNotFound.
	DeleteReport(id string) error
}

// ErrNotFound is returned when a requested report does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing report.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "report not found: " + e.ID
	}
	return "report not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
