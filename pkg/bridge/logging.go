package bridge

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type loggingBridge struct {
	next   Bridge
	logger *zap.Logger
}

// WithLogger wraps next so every invocation is logged. Results and errors
// are returned exactly as next produced them.
func WithLogger(next Bridge, logger *zap.Logger) Bridge {
	return &loggingBridge{next: next, logger: logger}
}

func (b *loggingBridge) Invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error) {
	startTime := time.Now()

	b.logger.Debug("invoking procedure", zap.String("procedure", procedure))

	result, err := b.next.Invoke(ctx, procedure, args)
	if err != nil {
		b.logger.Warn("procedure failed",
			zap.String("procedure", procedure),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
		return result, err
	}

	b.logger.Debug("procedure completed",
		zap.String("procedure", procedure),
		zap.Int("result_size", len(result)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return result, nil
}
