package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"cfguard-bot/internal/infra/async"
	"cfguard-bot/internal/infra/chat"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sentMessage struct {
	ChatID   int64
	Text     string
	Markdown bool
}

type fakeBot struct {
	mu       sync.Mutex
	failures int
	batches  [][]Update
	polls    []int64
	messages []sentMessage
	docs     []string
}

func (b *fakeBot) GetUpdates(ctx context.Context, offset int64) ([]Update, int64, error) {
	b.mu.Lock()
	b.polls = append(b.polls, offset)
	if b.failures > 0 {
		b.failures--
		b.mu.Unlock()
		return nil, offset, errors.New("connection refused")
	}
	if len(b.batches) > 0 {
		batch := b.batches[0]
		b.batches = b.batches[1:]
		b.mu.Unlock()
		next := offset
		for _, update := range batch {
			next = max(next, update.UpdateID+1)
		}
		return batch, next, nil
	}
	b.mu.Unlock()

	<-ctx.Done()
	return nil, offset, ctx.Err()
}

func (b *fakeBot) SendMessage(_ context.Context, chatID int64, text string, markdown bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sentMessage{ChatID: chatID, Text: text, Markdown: markdown})
	return nil
}

func (b *fakeBot) SendDocument(_ context.Context, _ int64, _ string, name, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = append(b.docs, name)
	return nil
}

func (b *fakeBot) sent() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMessage(nil), b.messages...)
}

func (b *fakeBot) documents() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.docs...)
}

type mapCache struct {
	mu     sync.Mutex
	values map[string]any
}

func (c *mapCache) Get(_ context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return true
}

func (c *mapCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

type echoController struct {
	mu       sync.Mutex
	requests []chat.Request
	released int
}

func (c *echoController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(func(_ context.Context, req chat.Request) ([]chat.Reply, error) {
		c.record(req)
		return []chat.Reply{chat.Text("echo " + req.Args[0])}, nil
	}, "echo")
	mux.Handle(func(_ context.Context, req chat.Request) ([]chat.Reply, error) {
		c.record(req)
		return []chat.Reply{chat.File(&chat.Attachment{
			Name: "demo_report.json",
			Path: "/tmp/demo_report.json",
			Cleanup: func() error {
				c.mu.Lock()
				defer c.mu.Unlock()
				c.released++
				return nil
			},
		})}, nil
	}, "file")
	mux.HandleDocument(func(_ context.Context, req chat.Request) ([]chat.Reply, error) {
		c.record(req)
		return nil, nil
	})
}

func (c *echoController) record(req chat.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
}

func (c *echoController) seen() []chat.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Request(nil), c.requests...)
}

func textUpdate(id, chatID int64, text string) Update {
	return Update{UpdateID: id, Message: &Message{MessageID: id, Chat: Chat{ID: chatID}, Text: text}}
}

var _ = Describe("Worker", func() {
	var (
		bot        *fakeBot
		controller *echoController
		dispatcher *async.KeyedDispatcher
		config     WorkerConfig
		stopped    chan struct{}
		worker     *Worker
	)

	start := func() {
		worker = NewWorker(bot, chat.NewCommandMux(controller), dispatcher, &mapCache{values: map[string]any{}}, config)
		stopped = make(chan struct{})
		go worker.Run(context.Background(), func() { close(stopped) })
	}

	stop := func() {
		worker.Shutdown()
		Eventually(stopped).Should(BeClosed())
		dispatcher.Close()
	}

	BeforeEach(func() {
		bot = &fakeBot{}
		controller = &echoController{}
		dispatcher = async.NewKeyedDispatcher()
		config = WorkerConfig{OffsetFile: filepath.Join(GinkgoT().TempDir(), "offset")}
	})

	It("should dispatch commands and reply to their chat", func() {
		bot.batches = [][]Update{{textUpdate(10, 42, "/echo@cfguard_bot hi"), textUpdate(11, 42, "plain text")}}

		start()
		Eventually(bot.sent).Should(Equal([]sentMessage{{ChatID: 42, Text: "echo hi"}}))
		stop()

		requests := controller.seen()
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Session).To(Equal("42"))
		Expect(requests[0].ID).NotTo(BeEmpty())

		offset, err := LoadOffset(config.OffsetFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(offset).To(Equal(int64(12)))
	})

	It("should resume from the persisted offset", func() {
		Expect(SaveOffset(config.OffsetFile, 77)).To(Succeed())

		start()
		Eventually(func() []int64 {
			bot.mu.Lock()
			defer bot.mu.Unlock()
			return append([]int64(nil), bot.polls...)
		}).Should(ContainElement(int64(77)))
		stop()
	})

	It("should turn away chats that are not allowed", func() {
		config.AllowedChatIDs = []int64{1}
		bot.batches = [][]Update{{textUpdate(10, 42, "/echo hi")}}

		start()
		Eventually(bot.sent).Should(Equal([]sentMessage{{ChatID: 42, Text: "unauthorized chat"}}))
		stop()

		Expect(controller.seen()).To(BeEmpty())
	})

	It("should handle a redelivered update once", func() {
		bot.batches = [][]Update{{textUpdate(10, 42, "/echo one")}, {textUpdate(10, 42, "/echo one")}}

		start()
		Eventually(bot.sent).Should(HaveLen(1))
		Consistently(bot.sent, 100*time.Millisecond).Should(HaveLen(1))
		stop()
	})

	It("should route documents with their caption", func() {
		bot.batches = [][]Update{{{
			UpdateID: 5,
			Message: &Message{
				Chat:     Chat{ID: 42},
				Caption:  "baseline",
				Document: &Document{FileID: "f-1", FileName: "tasks.csv", FileSize: 3},
			},
		}}}

		start()
		Eventually(controller.seen).Should(HaveLen(1))
		stop()

		Expect(controller.seen()[0].Document).To(Equal(&chat.Document{FileID: "f-1", Name: "tasks.csv", Caption: "baseline", Size: 3}))
	})

	It("should send files and release them afterwards", func() {
		bot.batches = [][]Update{{textUpdate(10, 42, "/file")}}

		start()
		Eventually(bot.documents).Should(Equal([]string{"demo_report.json"}))
		stop()

		controller.mu.Lock()
		defer controller.mu.Unlock()
		Expect(controller.released).To(Equal(1))
	})

	It("should back off while polling fails", func() {
		bot.failures = 3
		var mu sync.Mutex
		var waits []time.Duration

		worker = NewWorker(bot, chat.NewCommandMux(controller), dispatcher, nil, config)
		worker.sleep = func(_ context.Context, d time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			waits = append(waits, d)
			return nil
		}
		stopped = make(chan struct{})
		go worker.Run(context.Background(), func() { close(stopped) })

		Eventually(func() []time.Duration {
			mu.Lock()
			defer mu.Unlock()
			return append([]time.Duration(nil), waits...)
		}).Should(Equal([]time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}))
		stop()
	})
})

var _ = Describe("splitMessage", func() {
	It("should keep short messages whole", func() {
		Expect(splitMessage("hello", 10)).To(Equal([]string{"hello"}))
	})

	It("should split long messages by runes", func() {
		Expect(splitMessage("ééééé", 2)).To(Equal([]string{"éé", "éé", "é"}))
	})
})
