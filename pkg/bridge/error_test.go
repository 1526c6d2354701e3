package bridge_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
)

var _ = Describe("Error", func() {
	It("prefers the host message over the wrapped error", func() {
		err := &bridge.Error{
			Procedure: "get_title",
			Kind:      bridge.KindBackend,
			Message:   "no such conversation",
			Err:       errors.New("status 404"),
		}

		Expect(err.Error()).To(Equal(`bridge backend error in "get_title": no such conversation`))
	})

	It("falls back to the wrapped error", func() {
		err := &bridge.Error{Procedure: "completion", Kind: bridge.KindTransport, Err: errors.New("connection refused")}

		Expect(err.Error()).To(ContainSubstring("connection refused"))
		Expect(err.Error()).To(ContainSubstring("transport"))
	})

	It("omits the procedure when unknown", func() {
		err := &bridge.Error{Kind: bridge.KindSerialization}

		Expect(err.Error()).To(Equal("bridge serialization error: failed"))
	})

	It("unwraps to the underlying error", func() {
		cause := errors.New("boom")
		err := &bridge.Error{Kind: bridge.KindTransport, Err: cause}

		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	Describe("IsKind", func() {
		It("matches wrapped bridge errors", func() {
			err := fmt.Errorf("calling host: %w", &bridge.Error{Kind: bridge.KindBackend})

			Expect(bridge.IsKind(err, bridge.KindBackend)).To(BeTrue())
			Expect(bridge.IsKind(err, bridge.KindTransport)).To(BeFalse())
		})

		It("is false for foreign errors", func() {
			Expect(bridge.IsKind(errors.New("other"), bridge.KindBackend)).To(BeFalse())
			Expect(bridge.IsKind(nil, bridge.KindBackend)).To(BeFalse())
		})
	})
})
