package wire

import (
	"fmt"
	"log/slog"

	"cfguard-bot/cmd/config"
	"cfguard-bot/internal/infra/async"
	"cfguard-bot/internal/infra/cache"
	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/infra/httpserver"
	"cfguard-bot/internal/infra/sql"
	"cfguard-bot/internal/infra/telegram"
	"cfguard-bot/internal/relay/chatapi"
	"cfguard-bot/internal/relay/communication"
	"cfguard-bot/internal/relay/httpapi"
	"cfguard-bot/internal/relay/persistence"
	"cfguard-bot/internal/relay/usecases"
)

// Application is every long lived component of the bot process.
type Application struct {
	Config     config.AppConfig
	Worker     *telegram.Worker
	HTTPServer *httpserver.StandardServer
	Dispatcher *async.KeyedDispatcher
	Store      *persistence.SimplePendingImportStore
	EventLog   *persistence.SQLEventLog
}

func provideDatabase(cfg config.AppConfig) (*sql.DB, func(), error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = sql.NewPosgreORM(cfg.Database.DSN)
	case config.DriverMemory:
		db, err = sql.NewMemoryORM()
	default:
		db, err = sql.NewSQLiteORM(cfg.Database.Path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s database: %w", cfg.Database.Driver, err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("closing database", slog.Any("error", err))
		}
	}
	return db, cleanup, nil
}

func providePendingImportStore(cfg config.AppConfig) *persistence.SimplePendingImportStore {
	return persistence.NewSimplePendingImportStore(cfg.Imports.PendingTTL)
}

func provideBackendConfig(cfg config.AppConfig) communication.BackendConfig {
	return communication.BackendConfig{
		BaseURL:       cfg.Backend.URL,
		EventTimeout:  cfg.Backend.EventTimeout,
		QueryTimeout:  cfg.Backend.QueryTimeout,
		UploadTimeout: cfg.Backend.UploadTimeout,
	}
}

func provideTelegramClientConfig(cfg config.AppConfig) telegram.ClientConfig {
	return telegram.ClientConfig{
		BaseURL:     cfg.Telegram.BaseURL,
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.Telegram.PollTimeout,
	}
}

func provideReportConfig(cfg config.AppConfig) usecases.ReportConfig {
	return usecases.ReportConfig{
		StagingDir: cfg.Reports.StagingDir,
		ChunkSize:  cfg.Reports.ChunkSize,
	}
}

func provideWorkerConfig(cfg config.AppConfig) telegram.WorkerConfig {
	return telegram.WorkerConfig{
		AllowedChatIDs: cfg.Telegram.AllowedChatIDs,
		OffsetFile:     cfg.Telegram.OffsetFile,
	}
}

// provideDispatcher closes the dispatcher on cleanup, so handlers in flight
// finish before the database goes away.
func provideDispatcher() (*async.KeyedDispatcher, func()) {
	dispatcher := async.NewKeyedDispatcher()
	return dispatcher, dispatcher.Close
}

func provideUpdateCache() (*cache.RistrettoCache, func(), error) {
	seen, err := cache.New(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating update cache: %w", err)
	}
	return seen, seen.Close, nil
}

func provideCommandMux(
	help *chatapi.HelpController,
	events *chatapi.TaskEventController,
	reports *chatapi.ReportController,
	imports *chatapi.ImportController,
	projects *chatapi.ProjectController,
) *chat.CommandMux {
	return chat.NewCommandMux(help, events, reports, imports, projects)
}

func provideHTTPServer(cfg config.AppConfig, status *httpapi.StatusController) *httpserver.StandardServer {
	return httpserver.NewServer(httpserver.ServerConfig{
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, status)
}
