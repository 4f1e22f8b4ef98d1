package steps

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

func (fc *FeatureContext) theBotSendsTheFile(name string) error {
	files, err := fc.newFiles(1)
	if err != nil {
		return err
	}
	if files[0].Name != name {
		return fmt.Errorf("expected file %q, got %q", name, files[0].Name)
	}
	return nil
}

func (fc *FeatureContext) theFileIsAJSONArrayOf(name string, n int) error {
	for _, file := range fc.telegram.Files() {
		if file.Name != name {
			continue
		}
		var records []map[string]any
		if err := json.Unmarshal(file.Content, &records); err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		if len(records) != n {
			return fmt.Errorf("expected %d records, got %d", n, len(records))
		}
		if !strings.Contains(string(file.Content), "\n  ") {
			return fmt.Errorf("%s is not pretty printed", name)
		}
		return nil
	}
	return fmt.Errorf("file %q was not sent", name)
}

func (fc *FeatureContext) theBotSendsNoFile() error {
	// replies are delivered in order, so once the text arrived a file would have too
	if _, err := fc.newTexts(1); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	if files := fc.telegram.Files()[fc.fileMark:]; len(files) > 0 {
		return fmt.Errorf("expected no file, got %q", files[0].Name)
	}
	return nil
}
