package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"cfguard-bot/internal/infra/async"
	"cfguard-bot/internal/infra/cache"
	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/infra/utils"
)

const (
	initialBackoff     = 2 * time.Second
	maxBackoff         = 15 * time.Second
	defaultDedupeTTL   = 10 * time.Minute
	unauthorizedReply  = "unauthorized chat"
	maxMessageRunes    = 4096
	updateCacheKeyTmpl = "telegram:update:%d"
)

// Bot is the part of the Bot API the worker needs.
type Bot interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, int64, error)
	SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error
	SendDocument(ctx context.Context, chatID int64, filePath, name, caption string) error
}

type WorkerConfig struct {
	AllowedChatIDs []int64
	OffsetFile     string
	DedupeTTL      time.Duration
}

func NewWorker(
	bot Bot,
	mux *chat.CommandMux,
	dispatcher *async.KeyedDispatcher,
	seen cache.Cache,
	config WorkerConfig,
) *Worker {
	allowed := make(map[int64]struct{}, len(config.AllowedChatIDs))
	for _, id := range config.AllowedChatIDs {
		allowed[id] = struct{}{}
	}

	ttl := config.DedupeTTL
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}

	return &Worker{
		bot:        bot,
		mux:        mux,
		dispatcher: dispatcher,
		seen:       seen,
		allowed:    allowed,
		offsetFile: config.OffsetFile,
		dedupeTTL:  ttl,
		sleep:      sleepOrCancel,
		stop:       make(chan struct{}),
	}
}

var _ async.Worker = &Worker{}

// Worker long-polls the Bot API and hands every update to the command mux.
// Updates of one chat are handled in arrival order, chats run concurrently.
type Worker struct {
	bot        Bot
	mux        *chat.CommandMux
	dispatcher *async.KeyedDispatcher
	seen       cache.Cache
	allowed    map[int64]struct{}
	offsetFile string
	dedupeTTL  time.Duration
	sleep      func(context.Context, time.Duration) error

	stopOnce sync.Once
	stop     chan struct{}
}

func (w *Worker) Run(ctx context.Context, done func()) {
	defer done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	offset, err := LoadOffset(w.offsetFile)
	if err != nil {
		slog.Error("loading telegram offset, starting from 0", slog.Any("error", err))
		offset = 0
	}

	slog.Info("telegram worker started",
		slog.Int64("offset", offset),
		slog.Int("allowed_chats", len(w.allowed)))

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			slog.Info("telegram worker stopped")
			return
		}

		updates, next, err := w.bot.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Warn("telegram getUpdates failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
			if w.sleep(ctx, backoff) != nil {
				continue
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		for _, update := range updates {
			w.accept(ctx, update)
		}

		if next > offset {
			offset = next
			if err := SaveOffset(w.offsetFile, offset); err != nil {
				slog.Warn("saving telegram offset", slog.Any("error", err))
			}
		}
	}
}

// Shutdown stops polling. Handlers already dispatched keep running until the
// dispatcher is closed.
func (w *Worker) Shutdown() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

func (w *Worker) accept(ctx context.Context, update Update) {
	if w.isDuplicate(ctx, update.UpdateID) {
		slog.Debug("skipping duplicate update", slog.Int64("update_id", update.UpdateID))
		return
	}

	message := update.Message
	if message == nil || message.Chat.ID == 0 {
		return
	}
	chatID := message.Chat.ID

	if !w.isAllowed(chatID) {
		slog.Warn("update from unauthorized chat", slog.Int64("chat_id", chatID))
		if err := w.bot.SendMessage(ctx, chatID, unauthorizedReply, false); err != nil {
			slog.Warn("replying to unauthorized chat", slog.Any("error", err))
		}
		return
	}

	req, ok := toRequest(message)
	if !ok {
		return
	}

	// handlers must outlive the polling context so shutdown can drain them
	handlerCtx := context.WithoutCancel(ctx)
	submitted := w.dispatcher.Submit(req.Session, func() {
		replies := w.mux.Dispatch(handlerCtx, req)
		w.deliver(handlerCtx, chatID, replies)
	})
	if !submitted {
		slog.Warn("dispatcher closed, dropping update", slog.Int64("update_id", update.UpdateID))
	}
}

func (w *Worker) isDuplicate(ctx context.Context, updateID int64) bool {
	if w.seen == nil {
		return false
	}
	key := fmt.Sprintf(updateCacheKeyTmpl, updateID)
	if _, found := w.seen.Get(ctx, key); found {
		return true
	}
	w.seen.Set(ctx, key, true, w.dedupeTTL)
	return false
}

func (w *Worker) isAllowed(chatID int64) bool {
	if len(w.allowed) == 0 {
		return true
	}
	_, ok := w.allowed[chatID]
	return ok
}

func (w *Worker) deliver(ctx context.Context, chatID int64, replies []chat.Reply) {
	defer chat.Release(replies)

	for _, reply := range replies {
		if reply.File != nil {
			file := reply.File
			if err := w.bot.SendDocument(ctx, chatID, file.Path, file.Name, file.Caption); err != nil {
				slog.Error("sending document", slog.Int64("chat_id", chatID), slog.String("name", file.Name), slog.Any("error", err))
				w.sendText(ctx, chatID, "Error: could not send "+file.Name, false)
			}
			continue
		}
		w.sendText(ctx, chatID, reply.Text, reply.Markdown)
	}
}

func (w *Worker) sendText(ctx context.Context, chatID int64, text string, markdown bool) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, part := range splitMessage(text, maxMessageRunes) {
		if err := w.bot.SendMessage(ctx, chatID, part, markdown); err != nil {
			slog.Error("sending message", slog.Int64("chat_id", chatID), slog.Any("error", err))
			return
		}
	}
}

func toRequest(message *Message) (chat.Request, bool) {
	req := chat.Request{
		ID:         utils.GenerateUUID(),
		Session:    strconv.FormatInt(message.Chat.ID, 10),
		ReceivedAt: time.Unix(message.Date, 0).UTC(),
	}

	if message.Document != nil {
		req.Document = &chat.Document{
			FileID:  message.Document.FileID,
			Name:    message.Document.FileName,
			Caption: message.Caption,
			Size:    message.Document.FileSize,
		}
		return req, true
	}

	name, args, ok := chat.ParseCommandLine(message.Text)
	if !ok {
		return chat.Request{}, false
	}
	req.Name = name
	req.Args = args
	return req, true
}

// splitMessage keeps every part within the Bot API message limit.
func splitMessage(text string, maxRunes int) []string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return []string{text}
	}

	parts := make([]string, 0, len(runes)/maxRunes+1)
	for start := 0; start < len(runes); start += maxRunes {
		end := min(start+maxRunes, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

func sleepOrCancel(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
