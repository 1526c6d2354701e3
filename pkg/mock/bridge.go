// Package mock provides test doubles for chatbridge interfaces using function fields.
package mock

import (
	"context"
	"encoding/json"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
)

// Interface compliance checks.
var _ bridge.Bridge = (*Bridge)(nil)

// Bridge is a test double for bridge.Bridge.
// Set InvokeFn before calling Invoke.
type Bridge struct {
	InvokeFn func(ctx context.Context, procedure string, args any) (json.RawMessage, error)
}

// Invoke delegates to InvokeFn.
func (b *Bridge) Invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error) {
	return b.InvokeFn(ctx, procedure, args)
}
