package chatapi

import (
	"context"
	"strings"

	"cfguard-bot/internal/infra/chat"
)

var helpLines = []string{
	"Commands:",
	"/starttask <task_id> [datetime]",
	"/stoptask <task_id> [datetime]",
	"/elapsed",
	"/report <project> [table|html|json]",
	"/diff <project> <base> <new>",
	"/import <project>, then send the file (caption sets the snapshot status)",
	"/cancel",
	"/projects",
	"/snapshots [--project <name>]",
	"/setstatus <project> <snapshot_id> <status text...>",
	"/reset [--force]",
}

func NewHelpController() *HelpController {
	return &HelpController{}
}

var _ chat.Controller = &HelpController{}

type HelpController struct{}

func (c *HelpController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(c.help(), "start", "help")
}

func (c *HelpController) help() chat.HandlerFunc {
	text := strings.Join(helpLines, "\n")
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		return []chat.Reply{chat.Text(text)}, nil
	}
}
