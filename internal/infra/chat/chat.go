package chat

import (
	"context"
	"time"
)

// Document is a file attached to an inbound message. The bytes stay with
// the transport until a handler downloads them by FileID.
type Document struct {
	FileID  string
	Name    string
	Caption string
	Size    int64
}

// Request is a single inbound command or document, consumed by exactly one handler.
type Request struct {
	ID         string
	Name       string
	Args       []string
	Session    string
	Document   *Document
	ReceivedAt time.Time
}

// Attachment is a staged file to deliver. Cleanup, when set, is called by
// the transport once the file was sent or abandoned.
type Attachment struct {
	Name    string
	Path    string
	Caption string
	Cleanup func() error
}

type Reply struct {
	Text     string
	Markdown bool
	File     *Attachment
}

type HandlerFunc func(ctx context.Context, req Request) ([]Reply, error)

type Controller interface {
	AddCommands(*CommandMux)
}

func Text(text string) Reply {
	return Reply{Text: text}
}

func Markdown(text string) Reply {
	return Reply{Text: text, Markdown: true}
}

func File(attachment *Attachment) Reply {
	return Reply{File: attachment}
}

// Release runs the cleanup of every attachment in replies.
func Release(replies []Reply) {
	for _, reply := range replies {
		if reply.File != nil && reply.File.Cleanup != nil {
			_ = reply.File.Cleanup()
		}
	}
}
