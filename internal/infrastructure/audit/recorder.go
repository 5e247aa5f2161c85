package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ZapRecorder records mutation snapshots to the operational log. The
// real audit trail lives in a separate service; this implementation
// satisfies the boundary so the core can call it unconditionally.
type ZapRecorder struct {
	logger *zap.Logger
}

// NewZapRecorder creates a new ZapRecorder
func NewZapRecorder(logger *zap.Logger) *ZapRecorder {
	return &ZapRecorder{logger: logger.Named("audit")}
}

// Record logs one before/after snapshot pair
func (r *ZapRecorder) Record(_ context.Context, tenantID uuid.UUID, action string, before, after map[string]any) {
	r.logger.Info("mutation recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("action", action),
		zap.Any("before", before),
		zap.Any("after", after),
	)
}
