package steps

import (
	"fmt"

	"github.com/cucumber/godog"
)

func (fc *FeatureContext) theBackendIsDown() error {
	fc.backend.SetDown(true)
	return nil
}

func (fc *FeatureContext) theBackendAnswersWithStatusAndBody(route string, status int, body *godog.DocString) error {
	fc.backend.Answer(route, status, body.Content)
	return nil
}

func (fc *FeatureContext) theBackendImportsRecords(n int) error {
	fc.backend.SetImported(n)
	return nil
}

func (fc *FeatureContext) theBackendReceivedCalls(n int, route string) error {
	calls := fc.backend.Calls(route)
	if len(calls) != n {
		return fmt.Errorf("expected %d %q calls, got %d", n, route, len(calls))
	}
	return nil
}

func (fc *FeatureContext) theBackendReceivedAnImportInto(project, content string) error {
	calls := fc.backend.Calls("POST /import")
	if len(calls) != 1 {
		return fmt.Errorf("expected exactly one import, got %d", len(calls))
	}
	if calls[0].Project != project {
		return fmt.Errorf("expected import into %q, got %q", project, calls[0].Project)
	}
	if calls[0].File != content {
		return fmt.Errorf("expected file content %q, got %q", content, calls[0].File)
	}
	return nil
}
