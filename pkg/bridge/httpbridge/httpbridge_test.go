package httpbridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
	"github.com/papercomputeco/chatbridge/pkg/bridge/httpbridge"
	"github.com/papercomputeco/chatbridge/pkg/chat"
	"github.com/papercomputeco/chatbridge/pkg/host"
)

var _ = Describe("HTTP Bridge", func() {
	var (
		ctx      context.Context
		addr     string
		received map[string]json.RawMessage
		mu       sync.Mutex
		cleanup  func()
	)

	record := func(procedure string, args json.RawMessage) {
		mu.Lock()
		defer mu.Unlock()
		received[procedure] = args
	}

	startServer := func(router *host.Router) (string, func()) {
		srv := host.New(host.Config{ListenAddr: ":0"}, router, zap.NewNop())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			_ = srv.RunWithListener(listener)
		}()

		return "http://" + listener.Addr().String(), func() {
			_ = srv.Shutdown()
		}
	}

	newBridge := func(baseURL string) *httpbridge.Bridge {
		b, err := httpbridge.New(httpbridge.Config{BaseURL: baseURL, Timeout: 5 * time.Second}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	BeforeEach(func() {
		ctx = context.Background()
		received = make(map[string]json.RawMessage)

		router := host.NewRouter()
		router.HandleRaw(chat.ProcGetTitle, func(_ context.Context, args json.RawMessage) (any, error) {
			record(chat.ProcGetTitle, args)
			var a chat.ConversationArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			if a.ID == chat.StringID("missing") {
				return nil, &host.StatusError{Status: 404, Code: "not_found", Message: "no such conversation"}
			}
			return "Title of " + a.ID.String(), nil
		})
		router.HandleRaw(chat.ProcSetTitle, func(_ context.Context, args json.RawMessage) (any, error) {
			record(chat.ProcSetTitle, args)
			return json.RawMessage(`{"ok":true}`), nil
		})
		router.HandleRaw(chat.ProcStartConversation, func(_ context.Context, args json.RawMessage) (any, error) {
			record(chat.ProcStartConversation, args)
			return "c-new", nil
		})
		router.HandleRaw(chat.ProcGetConversations, func(_ context.Context, args json.RawMessage) (any, error) {
			record(chat.ProcGetConversations, args)
			return json.RawMessage(`[{"id":"c1"},{"id":"c2"}]`), nil
		})
		router.HandleRaw(chat.ProcCompletion, func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("upstream model unavailable")
		})
		router.HandleRaw("slow", func(context.Context, json.RawMessage) (any, error) {
			time.Sleep(300 * time.Millisecond)
			return "done", nil
		})

		addr, cleanup = startServer(router)
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("New", func() {
		It("rejects URLs without an http scheme", func() {
			_, err := httpbridge.New(httpbridge.Config{BaseURL: "localhost:6061"}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("accepts a trailing slash", func() {
			b := newBridge(addr + "/")

			title, err := chat.New(b).Title(ctx, chat.StringID("c1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(title).To(Equal("Title of c1"))
		})
	})

	It("round-trips title operations through the host", func() {
		client := chat.New(newBridge(addr))

		title, err := client.Title(ctx, chat.StringID("c1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(title).To(Equal("Title of c1"))

		ack, err := client.SetTitle(ctx, chat.StringID("c1"), "My Chat")
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(MatchJSON(`{"ok":true}`))

		mu.Lock()
		defer mu.Unlock()
		Expect(received[chat.ProcGetTitle]).To(MatchJSON(`{"id":"c1"}`))
		Expect(received[chat.ProcSetTitle]).To(MatchJSON(`{"id":"c1","title":"My Chat"}`))
	})

	It("sends no hint key when starting a conversation without one", func() {
		id, err := chat.New(newBridge(addr)).StartConversation(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(chat.StringID("c-new")))

		mu.Lock()
		defer mu.Unlock()
		Expect(received[chat.ProcStartConversation]).To(MatchJSON(`{}`))
	})

	It("sends an empty mapping for argument-less procedures", func() {
		summaries, err := chat.New(newBridge(addr)).Conversations(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(summaries).To(HaveLen(2))

		mu.Lock()
		defer mu.Unlock()
		Expect(received[chat.ProcGetConversations]).To(MatchJSON(`{}`))
	})

	It("reports host rejections as backend failures", func() {
		_, err := newBridge(addr).Invoke(ctx, chat.ProcGetTitle, chat.ConversationArgs{ID: chat.StringID("missing")})
		Expect(err).To(HaveOccurred())

		var bErr *bridge.Error
		Expect(errors.As(err, &bErr)).To(BeTrue())
		Expect(bErr.Kind).To(Equal(bridge.KindBackend))
		Expect(bErr.Status).To(Equal(404))
		Expect(bErr.Message).To(Equal("no such conversation"))
		Expect(bErr.Procedure).To(Equal(chat.ProcGetTitle))
	})

	It("surfaces handler failures through the client unchanged", func() {
		_, err := chat.New(newBridge(addr)).Completion(ctx, chat.StringID("c1"), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
		Expect(bridge.IsKind(err, bridge.KindBackend)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("upstream model unavailable"))
	})

	It("reports unknown procedures as backend failures", func() {
		_, err := newBridge(addr).Invoke(ctx, "no_such_procedure", nil)

		var bErr *bridge.Error
		Expect(errors.As(err, &bErr)).To(BeTrue())
		Expect(bErr.Kind).To(Equal(bridge.KindBackend))
		Expect(bErr.Status).To(Equal(404))
	})

	It("reports unreachable hosts as transport failures", func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		deadAddr := "http://" + listener.Addr().String()
		Expect(listener.Close()).To(Succeed())

		_, err = newBridge(deadAddr).Invoke(ctx, chat.ProcGetTitle, chat.ConversationArgs{ID: chat.StringID("c1")})
		Expect(bridge.IsKind(err, bridge.KindTransport)).To(BeTrue())
	})

	It("reports unencodable arguments as serialization failures", func() {
		_, err := newBridge(addr).Invoke(ctx, chat.ProcGetTitle, map[string]any{"id": make(chan int)})
		Expect(bridge.IsKind(err, bridge.KindSerialization)).To(BeTrue())
	})

	It("honors the context deadline", func() {
		dctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := newBridge(addr).Invoke(dctx, "slow", nil)
		Expect(bridge.IsKind(err, bridge.KindTransport)).To(BeTrue())
		Expect(httpbridge.IsTimeout(err)).To(BeTrue())
	})
})
