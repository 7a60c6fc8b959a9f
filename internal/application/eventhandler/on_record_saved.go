// Package eventhandler contains the subscribers that react to domain events.
package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON RECORD SAVED HANDLER
// Reacts to every persisted record (manual entry or bulk synthesis):
// 1. Drops the cached record collections so list views never go stale
// 2. Requests a narrative from the external generator and attaches it
//
// The narrative is best-effort. A generation failure is logged and the
// record stays readable without it; the dispatcher's retry and dead
// letter queue cover transient outages.
// ═══════════════════════════════════════════════════════════════════════════

// OnRecordSavedHandler handles the record.saved event.
type OnRecordSavedHandler struct {
	recordRepo record.Repository
	cache      record.Cache
	generator  record.NarrativeGenerator
	eventBus   shared.EventPublisher
	logger     *slog.Logger
	config     RecordSavedConfig
}

// RecordSavedConfig contains configuration for the handler.
type RecordSavedConfig struct {
	// GenerateNarrative enables the external narrative call.
	GenerateNarrative bool

	// SkipSynthesized skips narrative generation for bulk-synthesized
	// records. A bulk run can save dozens of records in seconds and the
	// generation API is quota-metered.
	SkipSynthesized bool

	// NarrativeMode is the horizon requested from the generator.
	NarrativeMode record.NarrativeMode

	// NarrativeTimeout bounds the generation call.
	NarrativeTimeout time.Duration

	// NarrativeGate decides per class whether to generate, typically
	// backed by a feature flag with a rollout percentage. Nil allows
	// every class.
	NarrativeGate func(className string) bool
}

// DefaultRecordSavedConfig returns the default configuration.
func DefaultRecordSavedConfig() RecordSavedConfig {
	return RecordSavedConfig{
		GenerateNarrative: true,
		SkipSynthesized:   true,
		NarrativeMode:     record.NarrativeDaily,
		NarrativeTimeout:  90 * time.Second,
	}
}

// NewOnRecordSavedHandler creates a new handler. The cache, generator,
// and event bus may be nil; the corresponding step is skipped.
func NewOnRecordSavedHandler(
	recordRepo record.Repository,
	cache record.Cache,
	generator record.NarrativeGenerator,
	eventBus shared.EventPublisher,
	logger *slog.Logger,
	config RecordSavedConfig,
) *OnRecordSavedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnRecordSavedHandler{
		recordRepo: recordRepo,
		cache:      cache,
		generator:  generator,
		eventBus:   eventBus,
		logger:     logger.With("handler", "on_record_saved"),
		config:     config,
	}
}

// Handle implements shared.EventHandler.
//
// Events arriving over the Redis bridge are payload maps, not typed
// structs, so everything here reads from AggregateID and Payload.
func (h *OnRecordSavedHandler) Handle(event shared.Event) error {
	if event.EventType() != shared.EventRecordSaved {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()
	recordID := event.AggregateID()

	h.logger.Info("processing record saved event",
		"record_id", recordID,
		"class_id", payloadString(event, "class_id"),
	)

	if err := h.invalidateCache(ctx); err != nil {
		h.logger.Error("failed to invalidate record cache",
			"record_id", recordID,
			"error", err,
		)
		// Lists served from cache are at most one TTL stale; keep going.
	}

	if !h.shouldGenerateNarrative(event) {
		return nil
	}

	if err := h.attachNarrative(ctx, recordID); err != nil {
		h.logger.Error("failed to attach narrative",
			"record_id", recordID,
			"error", err,
		)
		return fmt.Errorf("attach narrative: %w", err)
	}

	return nil
}

// EventType returns the event type this handler processes.
func (h *OnRecordSavedHandler) EventType() shared.EventType {
	return shared.EventRecordSaved
}

func (h *OnRecordSavedHandler) invalidateCache(ctx context.Context) error {
	if h.cache == nil {
		return nil
	}
	return h.cache.Invalidate(ctx)
}

func (h *OnRecordSavedHandler) shouldGenerateNarrative(event shared.Event) bool {
	if !h.config.GenerateNarrative || h.generator == nil {
		return false
	}
	if h.config.SkipSynthesized && payloadBool(event, "synthesized") {
		return false
	}
	if h.config.NarrativeGate != nil && !h.config.NarrativeGate(payloadString(event, "class_id")) {
		return false
	}
	return true
}

// attachNarrative generates the narrative text and stores it on the record.
func (h *OnRecordSavedHandler) attachNarrative(ctx context.Context, recordID string) error {
	rec, err := h.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Deleted between save and dispatch; nothing to annotate.
			return nil
		}
		return fmt.Errorf("load record: %w", err)
	}

	// A narrative survives overwrites of the same record.
	if rec.AIAnalysis != "" {
		h.logger.Debug("record already has narrative", "record_id", recordID)
		return nil
	}

	genCtx, cancel := context.WithTimeout(ctx, h.config.NarrativeTimeout)
	defer cancel()

	text, err := h.generator.Generate(genCtx, record.NarrativeRequest{
		Record: rec,
		Mode:   h.config.NarrativeMode,
	})
	if err != nil {
		return fmt.Errorf("generate narrative: %w", err)
	}

	rec.AttachAnalysis(text)
	if err := h.recordRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save narrative: %w", err)
	}

	// The cached copy predates the narrative.
	if err := h.invalidateCache(ctx); err != nil {
		h.logger.Warn("failed to invalidate cache after narrative", "error", err)
	}

	if h.eventBus != nil {
		generated := shared.NewNarrativeGeneratedEvent(recordID, string(h.config.NarrativeMode), len(text))
		if err := h.eventBus.Publish(generated); err != nil {
			h.logger.Warn("failed to publish narrative event", "error", err)
		}
	}

	h.logger.Info("narrative attached",
		"record_id", recordID,
		"mode", string(h.config.NarrativeMode),
		"chars", len(text),
	)

	return nil
}

// payloadString reads a string field from the event payload.
func payloadString(event shared.Event, key string) string {
	if v, ok := event.Payload()[key].(string); ok {
		return v
	}
	return ""
}

// payloadBool reads a bool field from the event payload.
func payloadBool(event shared.Event, key string) bool {
	v, ok := event.Payload()[key].(bool)
	return ok && v
}
