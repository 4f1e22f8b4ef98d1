package chatapi

import (
	"context"
	"fmt"
	"strings"

	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/usecases"
)

func NewReportController(service usecases.ReportService) *ReportController {
	return &ReportController{
		service: service,
	}
}

var _ chat.Controller = &ReportController{}

type ReportController struct {
	service usecases.ReportService
}

func (c *ReportController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(c.elapsed(), "elapsed")
	mux.Handle(c.report(), "report")
	mux.Handle(c.diff(), "diff")
}

func (c *ReportController) elapsed() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		report, err := c.service.Elapsed(ctx)
		if err != nil {
			return nil, err
		}

		if len(report.Rows) == 0 {
			if report.Degraded {
				return []chat.Reply{chat.Text(serverUnavailableMessage + "\n" + nothingTrackedMessage)}, nil
			}
			return []chat.Reply{chat.Text(nothingTrackedMessage)}, nil
		}

		lines := make([]string, 0, len(report.Rows)+1)
		if report.Degraded {
			lines = append(lines, degradedElapsedHeader)
		}
		for _, row := range report.Rows {
			lines = append(lines, fmt.Sprintf("%-12s %6s", row.Task, formatMinutes(row.Minutes)))
		}

		return []chat.Reply{chat.Text(strings.Join(lines, "\n"))}, nil
	}
}

func (c *ReportController) report() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		if len(req.Args) == 0 || len(req.Args) > 2 {
			return usage("/report <project> [table|html|json]"), nil
		}

		request := domain.ReportRequest{Project: req.Args[0], Format: domain.ReportText}
		if len(req.Args) == 2 {
			request.Format = domain.ParseReportFormat(req.Args[1])
		}

		delivery, err := c.service.Render(ctx, request)
		if err != nil {
			return failureReply(err)
		}

		if delivery.Artifact != nil {
			return []chat.Reply{fileReply(delivery.Artifact, fmt.Sprintf("%s report (%s)", request.Project, request.Format))}, nil
		}

		if len(delivery.Chunks) == 0 {
			return []chat.Reply{chat.Text(emptyReportMessage)}, nil
		}

		replies := make([]chat.Reply, 0, len(delivery.Chunks))
		for _, chunk := range delivery.Chunks {
			replies = append(replies, chat.Markdown("```\n"+chunk+"\n```"))
		}
		return replies, nil
	}
}

func (c *ReportController) diff() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		if len(req.Args) != 3 {
			return usage("/diff <project> <base> <new>"), nil
		}

		request := domain.DiffRequest{Project: req.Args[0], Base: req.Args[1], New: req.Args[2]}

		delivery, err := c.service.Diff(ctx, request)
		if err != nil {
			return rejectionReply(err)
		}

		caption := fmt.Sprintf("%s: %s vs %s", request.Project, request.Base, request.New)
		return []chat.Reply{fileReply(delivery.Artifact, caption)}, nil
	}
}

func fileReply(artifact *domain.Artifact, caption string) chat.Reply {
	return chat.File(&chat.Attachment{
		Name:    artifact.Name,
		Path:    artifact.Path,
		Caption: caption,
		Cleanup: artifact.Cleanup,
	})
}
