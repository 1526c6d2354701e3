package journal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
)

// Interface compliance check.
var _ bridge.Bridge = (*Recorder)(nil)

// Recorder is a bridge.Bridge that journals every invocation it forwards.
// Results and errors are returned exactly as the wrapped bridge produced
// them; a journal write failure is logged and never fails the call.
type Recorder struct {
	next   bridge.Bridge
	storer Storer
	logger *zap.Logger

	mu   sync.Mutex
	head *Node
}

// NewRecorder creates a Recorder forwarding to next. The chain continues from
// the most recent leaf already present in storer.
func NewRecorder(ctx context.Context, next bridge.Bridge, storer Storer, logger *zap.Logger) (*Recorder, error) {
	r := &Recorder{
		next:   next,
		storer: storer,
		logger: logger,
	}

	leaves, err := storer.Leaves(ctx)
	if err != nil {
		return nil, err
	}
	if len(leaves) > 0 {
		r.head = leaves[len(leaves)-1]
	}

	return r, nil
}

// Invoke forwards the call to the wrapped bridge and journals it.
func (r *Recorder) Invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error) {
	startTime := time.Now()
	result, err := r.next.Invoke(ctx, procedure, args)

	entry := Entry{
		Procedure:  procedure,
		Result:     append(json.RawMessage(nil), result...),
		StartedAt:  startTime.UTC(),
		DurationMS: time.Since(startTime).Milliseconds(),
	}
	if args != nil {
		encoded, encErr := json.Marshal(args)
		if encErr != nil {
			r.logger.Warn("could not encode arguments for journal",
				zap.String("procedure", procedure),
				zap.Error(encErr),
			)
		} else {
			entry.Args = encoded
		}
	}
	if err != nil {
		entry.Result = nil
		entry.Error = err.Error()
		var bErr *bridge.Error
		if errors.As(err, &bErr) {
			entry.ErrorKind = string(bErr.Kind)
		}
	}

	// Journal with a context that outlives a cancelled caller.
	r.append(context.WithoutCancel(ctx), entry)

	return result, err
}

// Head returns the hash of the most recently recorded node, or "" when the
// journal is empty.
func (r *Recorder) Head() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.head == nil {
		return ""
	}
	return r.head.Hash
}

func (r *Recorder) append(ctx context.Context, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(entry.Result) > 0 && !json.Valid(entry.Result) {
		// Keep the chain encodable; the caller still gets the raw result.
		quoted, _ := json.Marshal(string(entry.Result))
		entry.Result = quoted
	}

	node := NewNode(entry, r.head)
	if err := r.storer.Put(ctx, node); err != nil {
		r.logger.Error("failed to journal invocation",
			zap.String("procedure", entry.Procedure),
			zap.Error(err),
		)
		return
	}

	r.logger.Debug("journaled invocation",
		zap.String("procedure", entry.Procedure),
		zap.String("hash", truncate(node.Hash, 16)),
	)
	r.head = node
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
