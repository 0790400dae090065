package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

// statusEventLog appends audit entries for load status changes.
//
// Appends run after the load transaction commits and are best-effort: a
// failed append is logged as a partial-write warning and counted, never
// retried and never rolled back. The load mutation stands regardless, a
// deliberate tradeoff favoring availability over perfect auditability.
type statusEventLog struct {
	events  ports.StatusEventRepository
	logger  *slog.Logger
	metrics ports.EngineMetrics
}

func newStatusEventLog(
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) statusEventLog {
	return statusEventLog{
		events:  events,
		logger:  logger,
		metrics: metrics,
	}
}

// append records one status change. Failures are swallowed after logging.
func (l statusEventLog) append(
	ctx context.Context,
	loadID kernel.UUID,
	from load.Status,
	to load.Status,
	actor string,
	reason string,
	position *kernel.GeoPoint,
) {
	event, err := load.NewStatusEvent(
		kernel.NewUUID(), loadID, from, to, actor, reason, position, time.Now().UTC(),
	)
	if err != nil {
		l.warn(ctx, loadID, from, to, err)
		return
	}

	if err := l.events.Add(ctx, event); err != nil {
		l.warn(ctx, loadID, from, to, err)
	}
}

func (l statusEventLog) warn(ctx context.Context, loadID kernel.UUID, from, to load.Status, err error) {
	l.metrics.EventAppendFailed()
	l.logger.WarnContext(ctx, "partial write: load mutated but status event append failed",
		"load_id", loadID.String(),
		"from", from.String(),
		"to", to.String(),
		"error", err,
	)
}
