package tierarena

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug and carries per-block events
// (carve, reuse, free).
const LevelTrace = slog.Level(-8)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// trace emits a block-level event. No record is built when tracing is off.
func trace(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
}

func debug(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
