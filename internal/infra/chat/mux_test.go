package chat_test

import (
	"context"
	"errors"

	"cfguard-bot/internal/infra/chat"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type echoController struct {
	calls []chat.Request
}

func (c *echoController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(c.echo, "echo", "/say")
}

func (c *echoController) echo(_ context.Context, req chat.Request) ([]chat.Reply, error) {
	c.calls = append(c.calls, req)
	return []chat.Reply{chat.Text(req.Name)}, nil
}

var _ = ginkgo.Describe("CommandMux", func() {
	var (
		ctx        context.Context
		controller *echoController
		mux        *chat.CommandMux
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		controller = &echoController{}
		mux = chat.NewCommandMux(controller)
	})

	ginkgo.It("should route by normalized name and aliases", func() {
		replies := mux.Dispatch(ctx, chat.Request{Name: "say@cfguard_bot", Session: "1"})

		gomega.Expect(replies).To(gomega.HaveLen(1))
		gomega.Expect(controller.calls).To(gomega.HaveLen(1))
		gomega.Expect(mux.Commands()).To(gomega.Equal([]string{"echo", "say"}))
	})

	ginkgo.It("should ignore unknown commands", func() {
		gomega.Expect(mux.Dispatch(ctx, chat.Request{Name: "nope"})).To(gomega.BeEmpty())
		gomega.Expect(controller.calls).To(gomega.BeEmpty())
	})

	ginkgo.It("should ignore documents when no document handler is registered", func() {
		replies := mux.Dispatch(ctx, chat.Request{Document: &chat.Document{FileID: "f1"}})
		gomega.Expect(replies).To(gomega.BeEmpty())
	})

	ginkgo.It("should route documents to the document handler", func() {
		var got *chat.Document
		mux.HandleDocument(func(_ context.Context, req chat.Request) ([]chat.Reply, error) {
			got = req.Document
			return nil, nil
		})

		mux.Dispatch(ctx, chat.Request{Name: "echo", Document: &chat.Document{FileID: "f1"}})

		gomega.Expect(got).NotTo(gomega.BeNil())
		gomega.Expect(got.FileID).To(gomega.Equal("f1"))
		gomega.Expect(controller.calls).To(gomega.BeEmpty())
	})

	ginkgo.It("should turn handler errors into one error reply and release staged files", func() {
		released := false
		mux.Handle(func(context.Context, chat.Request) ([]chat.Reply, error) {
			return []chat.Reply{chat.File(&chat.Attachment{Name: "a.txt", Cleanup: func() error {
				released = true
				return nil
			}})}, errors.New("backend exploded")
		}, "boom")

		replies := mux.Dispatch(ctx, chat.Request{Name: "boom"})

		gomega.Expect(replies).To(gomega.HaveLen(1))
		gomega.Expect(replies[0].Text).To(gomega.Equal("Error: backend exploded"))
		gomega.Expect(released).To(gomega.BeTrue())
	})

	ginkgo.It("should recover from panicking handlers", func() {
		mux.Handle(func(context.Context, chat.Request) ([]chat.Reply, error) {
			panic("nil map")
		}, "panic")

		var replies []chat.Reply
		gomega.Expect(func() {
			replies = mux.Dispatch(ctx, chat.Request{Name: "panic"})
		}).NotTo(gomega.Panic())
		gomega.Expect(replies).To(gomega.HaveLen(1))
		gomega.Expect(replies[0].Text).To(gomega.ContainSubstring("nil map"))
	})

	ginkgo.It("should reject duplicate registrations", func() {
		gomega.Expect(func() {
			mux.Handle(controller.echo, "ECHO")
		}).To(gomega.Panic())
	})
})
