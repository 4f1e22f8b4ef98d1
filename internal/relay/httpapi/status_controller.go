package httpapi

import (
	"log/slog"
	"net/http"

	"cfguard-bot/internal/infra/httpserver"
	"cfguard-bot/internal/infra/node"
	"cfguard-bot/internal/relay/httpapi/internal"
	"cfguard-bot/internal/relay/usecases"

	"go.opentelemetry.io/otel/attribute"
)

const getStatusErrMessage = "failed to read relay status"

func NewStatusController(store usecases.PendingImportStore, log usecases.EventLog) *StatusController {
	return &StatusController{
		store: store,
		log:   log,
	}
}

var _ httpserver.Controller = &StatusController{}

// StatusController exposes the relay state to operators. It never talks to
// the backend.
type StatusController struct {
	store usecases.PendingImportStore
	log   usecases.EventLog
}

func (c *StatusController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/status", c.getStatus())
}

func (c *StatusController) getStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		span := httpserver.GetSpanFromContext(r)
		span.SetAttributes(attribute.String("endpoint", "status"))

		count, err := c.log.Count(r.Context())
		if err != nil {
			slog.Error("counting local events", slog.String("error", err.Error()))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, getStatusErrMessage)
			return
		}

		response := internal.StatusResponse{
			Node:           internal.ToNodeResponse(node.GetNodeInfo()),
			PendingImports: c.store.Len(),
			LocalEvents:    count,
		}
		httpserver.ReplyJSONResponse(w, http.StatusOK, response)
	}
}
