package extensions

import (
	"context"
	"log/slog"
	"time"

	"github.com/pumped-fn/canopy"
)

// LoggingExtension logs all lifecycle operations
type LoggingExtension struct {
	canopy.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension. A nil logger logs to
// slog.Default().
func NewLoggingExtension(logger *slog.Logger) *LoggingExtension {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingExtension{
		BaseExtension: canopy.NewBaseExtension("logging"),
		logger:        logger,
	}
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func() error, op *canopy.Operation) error {
	start := time.Now()
	e.logger.DebugContext(ctx, "operation starting",
		"ext", e.Name(),
		"op", string(op.Kind),
		"node", NodeName(nil, op.Node),
	)
	err := next()

	duration := time.Since(start)
	if err != nil {
		e.logger.ErrorContext(ctx, "operation failed",
			"ext", e.Name(),
			"op", string(op.Kind),
			"node", NodeName(nil, op.Node),
			"duration", duration,
			"error", err,
		)
	} else {
		e.logger.InfoContext(ctx, "operation completed",
			"ext", e.Name(),
			"op", string(op.Kind),
			"node", NodeName(nil, op.Node),
			"from", op.From.String(),
			"to", op.To.String(),
			"duration", duration,
		)
	}

	return err
}
