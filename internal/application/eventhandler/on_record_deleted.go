package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON RECORD DELETED HANDLER
// Drops the cached record collections after an administrator removes a
// record, so the deleted row never lingers in a list view.
// ═══════════════════════════════════════════════════════════════════════════

// OnRecordDeletedHandler handles the record.deleted event.
type OnRecordDeletedHandler struct {
	cache  record.Cache
	logger *slog.Logger
}

// NewOnRecordDeletedHandler creates a new handler.
func NewOnRecordDeletedHandler(cache record.Cache, logger *slog.Logger) *OnRecordDeletedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnRecordDeletedHandler{
		cache:  cache,
		logger: logger.With("handler", "on_record_deleted"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnRecordDeletedHandler) Handle(event shared.Event) error {
	if event.EventType() != shared.EventRecordDeleted {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	if h.cache == nil {
		return nil
	}

	if err := h.cache.Invalidate(context.Background()); err != nil {
		return fmt.Errorf("invalidate record cache: %w", err)
	}

	h.logger.Info("record cache invalidated after delete",
		"record_id", event.AggregateID(),
		"class_id", payloadString(event, "class_id"),
	)

	return nil
}

// EventType returns the event type this handler processes.
func (h *OnRecordDeletedHandler) EventType() shared.EventType {
	return shared.EventRecordDeleted
}
