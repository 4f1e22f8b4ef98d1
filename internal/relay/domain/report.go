package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

type ReportFormat string

const (
	ReportText  ReportFormat = "text"
	ReportTable ReportFormat = "table"
	ReportHTML  ReportFormat = "html"
	ReportJSON  ReportFormat = "json"
)

// ParseReportFormat normalizes the optional format argument. Unknown formats
// are kept as typed so the backend sees them; they are delivered as text.
func ParseReportFormat(raw string) ReportFormat {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		return ReportText
	}
	return ReportFormat(format)
}

type ReportRequest struct {
	Project string
	Format  ReportFormat
}

// ReportPayload is what the backend returns for a report: either a text blob
// or a list of records.
type ReportPayload struct {
	Text    string
	Records []json.RawMessage
}

func (p ReportPayload) HasRecords() bool {
	return p.Records != nil
}

type ElapsedRow struct {
	Task    string
	Minutes float64
}

type DiffRequest struct {
	Project string
	Base    string
	New     string
}

// Artifact is a staged file owned by a private directory.
type Artifact struct {
	Name string
	Path string
}

func (a Artifact) Cleanup() error {
	if a.Path == "" {
		return nil
	}
	return os.RemoveAll(filepath.Dir(a.Path))
}
