package chatapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/relay/usecases"
)

func NewImportController(service usecases.ImportService) *ImportController {
	return &ImportController{
		service: service,
	}
}

var _ chat.Controller = &ImportController{}

type ImportController struct {
	service usecases.ImportService
}

func (c *ImportController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(c.begin(), "import")
	mux.Handle(c.cancel(), "cancel")
	mux.HandleDocument(c.ingest())
}

func (c *ImportController) begin() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		if len(req.Args) != 1 {
			return usage("/import <project>"), nil
		}

		project := req.Args[0]
		c.service.Begin(req.Session, project)

		return []chat.Reply{chat.Text(fmt.Sprintf(importPromptMessage, project))}, nil
	}
}

func (c *ImportController) cancel() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		if c.service.Cancel(req.Session) {
			return []chat.Reply{chat.Text(importCancelledMessage)}, nil
		}
		return []chat.Reply{chat.Text(noPendingImportMessage)}, nil
	}
}

func (c *ImportController) ingest() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		upload := usecases.Upload{
			FileID:   req.Document.FileID,
			FileName: req.Document.Name,
			Caption:  req.Document.Caption,
		}

		outcome, err := c.service.Ingest(ctx, req.Session, upload)
		if errors.Is(err, usecases.ErrNoPendingImport) {
			return nil, nil
		}
		if err != nil {
			text, ok := describeRejection(err)
			if !ok {
				text = err.Error()
			}
			return []chat.Reply{chat.Text("Import failed: " + text)}, nil
		}

		lines := []string{fmt.Sprintf("Imported %d records into %s", outcome.Result.Imported, outcome.Project)}
		if outcome.Result.SnapshotID != "" {
			lines = append(lines, "Snapshot: "+outcome.Result.SnapshotID)
		}
		if outcome.Status != "" {
			lines = append(lines, fmt.Sprintf("Status: %q", outcome.Status))
		}
		if outcome.StatusErr != nil {
			text, ok := describeRejection(outcome.StatusErr)
			if !ok {
				text = outcome.StatusErr.Error()
			}
			lines = append(lines, "Could not set status: "+text)
		}

		return []chat.Reply{chat.Text(strings.Join(lines, "\n"))}, nil
	}
}
