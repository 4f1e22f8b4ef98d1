package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"
)

func (fc *FeatureContext) records(task string, n int) ([]string, error) {
	deadline := time.Now().Add(replyTimeout)
	for {
		records, err := fc.app.EventLog.Records(context.Background(), task)
		if err != nil {
			return nil, err
		}
		if len(records) >= n || time.Now().After(deadline) {
			out := make([]string, len(records))
			for i, record := range records {
				out[i] = fmt.Sprintf("%s|%s|%s", record.Task, record.Kind, record.Timestamp)
			}
			return out, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (fc *FeatureContext) theLocalLogContainsRecordsFor(n int, task string) error {
	records, err := fc.records(task, n)
	if err != nil {
		return err
	}
	if len(records) != n {
		return fmt.Errorf("expected %d records for %s, got %d: %v", n, task, len(records), records)
	}
	return nil
}

func (fc *FeatureContext) theLocalLogHas(task, event, ts string) error {
	records, err := fc.records(task, 1)
	if err != nil {
		return err
	}
	expected := fmt.Sprintf("%s|%s|%s", task, event, ts)
	for _, record := range records {
		if record == expected {
			return nil
		}
	}
	return fmt.Errorf("expected %s in local log, got %v", expected, records)
}

func (fc *FeatureContext) theStatusEndpointReports(events, pending int) error {
	recorder := httptest.NewRecorder()
	fc.app.HTTPServer.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/status", nil))

	if recorder.Code != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", recorder.Code)
	}

	var body struct {
		PendingImports int `json:"pending_imports"`
		LocalEvents    int `json:"local_events"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		return err
	}
	if body.LocalEvents != events || body.PendingImports != pending {
		return fmt.Errorf("expected %d events and %d pending imports, got %+v", events, pending, body)
	}
	return nil
}
