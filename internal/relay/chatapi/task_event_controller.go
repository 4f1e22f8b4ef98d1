package chatapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/usecases"
)

func NewTaskEventController(service usecases.TaskEventService) *TaskEventController {
	return &TaskEventController{
		service: service,
	}
}

var _ chat.Controller = &TaskEventController{}

type TaskEventController struct {
	service usecases.TaskEventService
}

func (c *TaskEventController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(c.record(domain.EventStart, "▶ Start", "/starttask <task_id> [datetime]"), "starttask")
	mux.Handle(c.record(domain.EventStop, "■ Stop", "/stoptask <task_id> [datetime]"), "stoptask")
}

func (c *TaskEventController) record(kind domain.EventKind, label, syntax string) chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		if len(req.Args) == 0 {
			return usage(syntax), nil
		}

		taskID := req.Args[0]
		rawTime := strings.Join(req.Args[1:], " ")

		recorded, err := c.service.Record(ctx, taskID, kind, rawTime)
		if errors.Is(err, usecases.ErrUnparseableTimestamp) {
			return []chat.Reply{chat.Text(fmt.Sprintf(unparseableTimeMessage, rawTime))}, nil
		}
		if err != nil {
			return nil, err
		}

		at := recorded.Event.Timestamp()
		if at == "" {
			at = "now"
		}

		return []chat.Reply{chat.Text(fmt.Sprintf("%s %s @ %s", label, recorded.Event.TaskID, at))}, nil
	}
}
