package internal

import (
	"encoding/json"
	"errors"
	"fmt"
)

type EventRequest struct {
	Task string `json:"task"`
	TS   string `json:"ts,omitempty"`
}

type SnapshotStatusRequest struct {
	Project    string `json:"project"`
	SnapshotID string `json:"snapshot_id"`
	Status     string `json:"status"`
}

type ResetRequest struct {
	Force bool `json:"force"`
}

type ElapsedRow struct {
	Task    *string  `json:"task"`
	Minutes *float64 `json:"minutes"`
}

type ElapsedResponse []ElapsedRow

func (r ElapsedResponse) Validate() error {
	for i, row := range r {
		if row.Task == nil || *row.Task == "" {
			return fmt.Errorf("row %d: task is required", i)
		}
		if row.Minutes == nil {
			return fmt.Errorf("row %d: minutes is required", i)
		}
	}
	return nil
}

type ReportResponse struct {
	Report  *string           `json:"report"`
	Records []json.RawMessage `json:"records"`
}

func (r ReportResponse) Validate() error {
	if r.Report == nil && r.Records == nil {
		return errors.New("either report or records is required")
	}
	return nil
}

type ProjectsResponse struct {
	Projects *[]string `json:"projects"`
}

func (r ProjectsResponse) Validate() error {
	if r.Projects == nil {
		return errors.New("projects is required")
	}
	return nil
}

type SnapshotsResponse struct {
	Snapshots *[]string `json:"snapshots"`
}

func (r SnapshotsResponse) Validate() error {
	if r.Snapshots == nil {
		return errors.New("snapshots is required")
	}
	return nil
}

type ImportResponse struct {
	Imported   *int   `json:"imported"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

func (r ImportResponse) Validate() error {
	if r.Imported == nil {
		return errors.New("imported is required")
	}
	if *r.Imported < 0 {
		return fmt.Errorf("imported must not be negative, got %d", *r.Imported)
	}
	return nil
}
