//go:build wireinject
// +build wireinject

package wire

import (
	"cfguard-bot/cmd/config"
	"cfguard-bot/internal/infra/cache"
	"cfguard-bot/internal/infra/sql"
	"cfguard-bot/internal/infra/telegram"
	"cfguard-bot/internal/relay/chatapi"
	"cfguard-bot/internal/relay/communication"
	"cfguard-bot/internal/relay/httpapi"
	"cfguard-bot/internal/relay/persistence"
	"cfguard-bot/internal/relay/usecases"

	"github.com/google/wire"
)

var PersistenceSet = wire.NewSet(
	provideDatabase,
	wire.Bind(new(sql.ORM), new(*sql.DB)),
	persistence.NewSQLEventLog,
	wire.Bind(new(usecases.EventLog), new(*persistence.SQLEventLog)),
	providePendingImportStore,
	wire.Bind(new(usecases.PendingImportStore), new(*persistence.SimplePendingImportStore)),
)

var TransportSet = wire.NewSet(
	provideBackendConfig,
	communication.NewBackendClient,
	wire.Bind(new(usecases.Backend), new(*communication.BackendClient)),
	provideTelegramClientConfig,
	telegram.NewClient,
	wire.Bind(new(usecases.FileFetcher), new(*telegram.Client)),
	wire.Bind(new(telegram.Bot), new(*telegram.Client)),
)

var ServiceSet = wire.NewSet(
	usecases.NewTaskEventService,
	wire.Bind(new(usecases.TaskEventService), new(*usecases.SimpleTaskEventService)),
	provideReportConfig,
	usecases.NewReportService,
	wire.Bind(new(usecases.ReportService), new(*usecases.SimpleReportService)),
	usecases.NewImportService,
	wire.Bind(new(usecases.ImportService), new(*usecases.SimpleImportService)),
	usecases.NewProjectService,
	wire.Bind(new(usecases.ProjectService), new(*usecases.SimpleProjectService)),
)

var ControllerSet = wire.NewSet(
	chatapi.NewHelpController,
	chatapi.NewTaskEventController,
	chatapi.NewReportController,
	chatapi.NewImportController,
	chatapi.NewProjectController,
	provideCommandMux,
	httpapi.NewStatusController,
	provideHTTPServer,
)

func InitializeApplication(cfg config.AppConfig) (*Application, func(), error) {
	wire.Build(
		PersistenceSet,
		TransportSet,
		ServiceSet,
		ControllerSet,
		provideDispatcher,
		provideUpdateCache,
		wire.Bind(new(cache.Cache), new(*cache.RistrettoCache)),
		provideWorkerConfig,
		telegram.NewWorker,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
