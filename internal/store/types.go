package store

import (
	"time"
)

// RunConfig records how a verification sweep was run.
type RunConfig struct {
	Backend  string   `json:"backend"`
	Workers  int      `json:"workers"`
	Stride   int      `json:"stride"`
	MinSize  int      `json:"minSize"`
	MaxSize  int      `json:"maxSize"` // exclusive
	Patterns []string `json:"patterns"`
	Seed     int64    `json:"seed"`
}

// Mismatch is a sample where the backend disagreed with the reference.
type Mismatch struct {
	Pattern string `json:"pattern"`
	InPlace bool   `json:"inPlace"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Want    uint8  `json:"want"`
	Got     uint8  `json:"got"`
}

// Report is the outcome of one verification sweep.
type Report struct {
	ID         string        `json:"id"`
	Config     RunConfig     `json:"config"`
	Cases      int           `json:"cases"`
	Failed     int           `json:"failed"`
	Mismatches []Mismatch    `json:"mismatches,omitempty"` // first mismatch of each failed case
	Elapsed    time.Duration `json:"elapsed"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Passed reports whether every case matched the reference.
func (r *Report) Passed() bool {
	return r.Failed == 0
}

// ReportInfo is the listing summary of a report.
type ReportInfo struct {
	ID        string    `json:"id"`
	Backend   string    `json:"backend"`
	Cases     int       `json:"cases"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// ToInfo converts a full Report to its summary.
func (r *Report) ToInfo() ReportInfo {
	return ReportInfo{
		ID:        r.ID,
		Backend:   r.Config.Backend,
		Cases:     r.Cases,
		Failed:    r.Failed,
		Timestamp: r.Timestamp,
	}
}

// Validate checks that the report can be stored.
func (r *Report) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Cases < 0 {
		return &ValidationError{Field: "Cases", Reason: "cannot be negative"}
	}
	if r.Failed < 0 || r.Failed > r.Cases {
		return &ValidationError{Field: "Failed", Reason: "must be between 0 and Cases"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Stride <= 0 {
		return &ValidationError{Field: "Config.Stride", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
