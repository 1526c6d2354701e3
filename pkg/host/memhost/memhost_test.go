package memhost_test

import (
	"context"
	"encoding/json"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
	"github.com/papercomputeco/chatbridge/pkg/bridge/httpbridge"
	"github.com/papercomputeco/chatbridge/pkg/chat"
	"github.com/papercomputeco/chatbridge/pkg/host"
	"github.com/papercomputeco/chatbridge/pkg/host/memhost"
)

var _ = Describe("Store", func() {
	var (
		ctx    context.Context
		client *chat.Client
		srv    *host.Server
	)

	BeforeEach(func() {
		ctx = context.Background()

		router := host.NewRouter()
		memhost.NewStore(nil).Register(router)
		srv = host.New(host.Config{}, router, zap.NewNop())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() {
			_ = srv.RunWithListener(listener)
		}()

		b, err := httpbridge.New(httpbridge.Config{
			BaseURL: "http://" + listener.Addr().String(),
			Timeout: 5 * time.Second,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		client = chat.New(b)
	})

	AfterEach(func() {
		_ = srv.Shutdown()
	})

	It("numbers conversations from zero", func() {
		first, err := client.StartConversation(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(Equal(chat.NumberID(0)))

		second, err := client.StartConversation(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(chat.NumberID(1)))
	})

	It("accepts the numeric ids it issued", func() {
		id, err := client.StartConversation(ctx, nil)
		Expect(err).NotTo(HaveOccurred())

		title, err := client.Title(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(title).To(Equal("New conversation"))

		_, err = client.SetTitle(ctx, id, "Trip")
		Expect(err).NotTo(HaveOccurred())

		title, err = client.Title(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(title).To(Equal("Trip"))

		summaries, err := client.Conversations(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(summaries).To(HaveLen(1))
		Expect(summaries[0]).To(MatchJSON(`{"id":0,"title":"Trip"}`))
	})

	It("rejects string ids", func() {
		_, err := client.StartConversation(ctx, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = client.Title(ctx, chat.StringID("0"))
		var bErr *bridge.Error
		Expect(err).To(BeAssignableToTypeOf(bErr))
		Expect(err.(*bridge.Error).Status).To(Equal(400))
	})

	It("reports unknown conversations as not found", func() {
		_, err := client.Conversation(ctx, chat.NumberID(9))
		Expect(bridge.IsKind(err, bridge.KindBackend)).To(BeTrue())
		Expect(err.(*bridge.Error).Status).To(Equal(404))
	})

	It("echoes completions and stores the conversation", func() {
		hint := "travel"
		id, err := client.StartConversation(ctx, &hint)
		Expect(err).NotTo(HaveOccurred())

		messages := []chat.Message{
			{Role: chat.RoleSystem, Content: "be brief"},
			{Role: chat.RoleUser, Content: "plan a weekend in Lisbon with friends please"},
		}
		reply, err := client.Completion(ctx, id, messages)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(chat.Message{Role: chat.RoleAssistant, Content: messages[1].Content}))

		record, err := client.Conversation(ctx, id)
		Expect(err).NotTo(HaveOccurred())

		var conv memhost.Conversation
		Expect(json.Unmarshal(record, &conv)).To(Succeed())
		Expect(conv.Messages).To(HaveLen(3))
		Expect(*conv.Hint).To(Equal("travel"))

		suggested, err := client.SuggestTitle(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(suggested).To(Equal("plan a weekend in Lisbon with"))
	})

	It("serves the bundled prompts", func() {
		prompts, err := client.BundledPrompts(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(prompts).To(HaveLen(len(memhost.DefaultPrompts)))
	})

	It("refuses image generation", func() {
		_, err := client.GenerateImage(ctx, json.RawMessage(`{"prompt":"a cat"}`))
		Expect(bridge.IsKind(err, bridge.KindBackend)).To(BeTrue())
		Expect(err.(*bridge.Error).Status).To(Equal(501))
	})
})
