package market

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dlmmScope/internal/metrics"
)

// Guard bounds collaborator calls made while assembling market signals.
type Guard struct {
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// TryFetch runs fn under the guard's timeout. Errors and panics are logged at warn level with the
// signal name and reported as a zero value with ok=false; they never reach the caller.
func TryFetch[T any](ctx context.Context, g Guard, signal string, fn func(context.Context) (T, error)) (result T, ok bool) {
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, ok = zero, false
			logger.Warn("signal fetch panicked", zap.String("signal", signal), zap.Error(fmt.Errorf("panic: %v", r)))
			g.Metrics.ContextSignal(signal, false)
		}
	}()

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	v, err := fn(ctx)
	if err != nil {
		logger.Warn("signal unavailable", zap.String("signal", signal), zap.Error(err))
		g.Metrics.ContextSignal(signal, false)
		var zero T
		return zero, false
	}
	g.Metrics.ContextSignal(signal, true)
	return v, true
}
