package steps

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cfguard-bot/cmd/bot/wire"
	"cfguard-bot/cmd/config"
	"cfguard-bot/test/functional/driver"

	"github.com/cucumber/godog"
)

const replyTimeout = 5 * time.Second

type FeatureContext struct {
	backend  *driver.FakeBackend
	telegram *driver.FakeTelegram
	app      *wire.Application
	cleanup  func()
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// replies seen before the last message sent by the user
	textMark int
	fileMark int
	tempDir  string
}

func NewFeatureContext() *FeatureContext {
	return &FeatureContext{}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	ctx.Before(fc.startBot)
	ctx.After(fc.stopBot)

	// Backend steps
	ctx.Given(`^the backend is down$`, fc.theBackendIsDown)
	ctx.Given(`^the backend answers "([^"]*)" with status (\d+) and body:$`, fc.theBackendAnswersWithStatusAndBody)
	ctx.Given(`^the backend imports (\d+) records$`, fc.theBackendImportsRecords)
	ctx.Then(`^the backend received (\d+) "([^"]*)" calls?$`, fc.theBackendReceivedCalls)
	ctx.Then(`^the backend received an import into "([^"]*)" with content "([^"]*)"$`, fc.theBackendReceivedAnImportInto)

	// Chat steps
	ctx.When(`^I send "([^"]*)"$`, fc.iSend)
	ctx.When(`^I send the document "([^"]*)" with content "([^"]*)"$`, fc.iSendTheDocument)
	ctx.Then(`^the bot replies "([^"]*)"$`, fc.theBotReplies)
	ctx.Then(`^the bot replies with text containing "([^"]*)"$`, fc.theBotRepliesWithTextContaining)
	ctx.Then(`^the bot sends the file "([^"]*)"$`, fc.theBotSendsTheFile)
	ctx.Then(`^the file "([^"]*)" is a JSON array of (\d+) records?$`, fc.theFileIsAJSONArrayOf)
	ctx.Then(`^the bot sends no file$`, fc.theBotSendsNoFile)
	ctx.Then(`^the bot sends (\d+) messages? wrapped in code fences$`, fc.theBotSendsMessagesWrappedInCodeFences)

	// Local log steps
	ctx.Then(`^the local log contains (\d+) records? for "([^"]*)"$`, fc.theLocalLogContainsRecordsFor)
	ctx.Then(`^the local log has "([^"]*)" "([^"]*)" at "([^"]*)"$`, fc.theLocalLogHas)

	// Status steps
	ctx.Then(`^the status endpoint reports (\d+) local events? and (\d+) pending imports?$`, fc.theStatusEndpointReports)
}

func (fc *FeatureContext) startBot(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	fc.backend = driver.NewFakeBackend()
	fc.telegram = driver.NewFakeTelegram()
	fc.textMark, fc.fileMark = 0, 0

	tempDir, err := makeTempDir()
	if err != nil {
		return ctx, err
	}
	fc.tempDir = tempDir

	cfg := config.AppConfig{
		General: config.GeneralConfig{LogLevel: "error"},
		Telegram: config.TelegramConfig{
			Token:          driver.FakeToken,
			BaseURL:        fc.telegram.URL(),
			PollTimeout:    time.Second,
			AllowedChatIDs: []int64{driver.ChatID},
		},
		Backend: config.BackendConfig{
			URL:           fc.backend.URL(),
			EventTimeout:  time.Second,
			QueryTimeout:  2 * time.Second,
			UploadTimeout: 2 * time.Second,
		},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Reports:  config.ReportsConfig{StagingDir: tempDir, ChunkSize: 4000},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0"},
	}

	app, cleanup, err := wire.InitializeApplication(cfg)
	if err != nil {
		return ctx, fmt.Errorf("initializing application: %w", err)
	}
	fc.app = app
	fc.cleanup = cleanup

	workerCtx, cancel := context.WithCancel(context.Background())
	fc.cancel = cancel
	fc.wg.Add(1)
	go app.Worker.Run(workerCtx, fc.wg.Done)

	return ctx, nil
}

func (fc *FeatureContext) stopBot(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
	if fc.app != nil {
		fc.app.Worker.Shutdown()
		fc.cancel()
		fc.wg.Wait()
		fc.cleanup()
		fc.app = nil
	}
	fc.telegram.Close()
	fc.backend.Close()
	removeTempDir(fc.tempDir)
	return ctx, nil
}

func (fc *FeatureContext) iSend(text string) error {
	fc.mark()
	fc.telegram.SendText(text)
	return nil
}

func (fc *FeatureContext) iSendTheDocument(name, content string) error {
	fc.mark()
	fc.telegram.SendDocument(name, "", []byte(content))
	return nil
}

func (fc *FeatureContext) mark() {
	fc.textMark = len(fc.telegram.Texts())
	fc.fileMark = len(fc.telegram.Files())
}

// newTexts waits until at least n replies arrived after the last user message.
func (fc *FeatureContext) newTexts(n int) ([]string, error) {
	deadline := time.Now().Add(replyTimeout)
	for {
		texts := fc.telegram.Texts()[fc.textMark:]
		if len(texts) >= n {
			return texts, nil
		}
		if time.Now().After(deadline) {
			return texts, fmt.Errorf("expected %d replies, got %d: %q", n, len(texts), texts)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (fc *FeatureContext) newFiles(n int) ([]driver.SentFile, error) {
	deadline := time.Now().Add(replyTimeout)
	for {
		files := fc.telegram.Files()[fc.fileMark:]
		if len(files) >= n {
			return files, nil
		}
		if time.Now().After(deadline) {
			return files, fmt.Errorf("expected %d files, got %d", n, len(files))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (fc *FeatureContext) theBotReplies(expected string) error {
	texts, err := fc.newTexts(1)
	if err != nil {
		return err
	}
	if texts[0] != expected {
		return fmt.Errorf("expected reply %q, got %q", expected, texts[0])
	}
	return nil
}

func (fc *FeatureContext) theBotRepliesWithTextContaining(fragment string) error {
	texts, err := fc.newTexts(1)
	if err != nil {
		return err
	}
	if !strings.Contains(texts[0], fragment) {
		return fmt.Errorf("expected reply containing %q, got %q", fragment, texts[0])
	}
	return nil
}

func (fc *FeatureContext) theBotSendsMessagesWrappedInCodeFences(n int) error {
	texts, err := fc.newTexts(n)
	if err != nil {
		return err
	}
	if len(texts) != n {
		return fmt.Errorf("expected %d messages, got %d", n, len(texts))
	}
	for i, text := range texts {
		if !strings.HasPrefix(text, "```\n") || !strings.HasSuffix(text, "\n```") {
			return fmt.Errorf("message %d is not fenced: %q", i, text)
		}
	}
	return nil
}
