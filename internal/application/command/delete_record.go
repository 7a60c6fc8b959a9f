package command

import (
	"context"
	"fmt"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE RECORD COMMAND
// Administrative removal of one record. Normal application flow never
// deletes; saved sessions are immutable apart from overwrite-by-id.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteRecordCommand identifies the record to remove.
type DeleteRecordCommand struct {
	RecordID string

	// Role of the caller. Only admins may delete.
	Role shared.Role

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c DeleteRecordCommand) Validate() error {
	if _, err := shared.NewRecordID(c.RecordID); err != nil {
		return shared.ErrInvalidRecordID
	}
	if !c.Role.CanManage() {
		return shared.NewDomainError("record", "Delete", shared.ErrForbidden, "only admins may delete records")
	}
	return nil
}

// DeleteRecordResult contains the result of the deletion.
type DeleteRecordResult struct {
	RecordID  string
	ClassID   string
	DeletedAt time.Time
	Events    []shared.Event
}

// DeleteRecordHandler handles the DeleteRecordCommand.
type DeleteRecordHandler struct {
	recordRepo     record.Repository
	eventPublisher shared.EventPublisher
}

// NewDeleteRecordHandler creates a new DeleteRecordHandler.
func NewDeleteRecordHandler(recordRepo record.Repository, eventPublisher shared.EventPublisher) *DeleteRecordHandler {
	return &DeleteRecordHandler{
		recordRepo:     recordRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the delete record command.
func (h *DeleteRecordHandler) Handle(ctx context.Context, cmd DeleteRecordCommand) (*DeleteRecordResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("delete_record: validation failed: %w", err)
	}

	rec, err := h.recordRepo.GetByID(ctx, cmd.RecordID)
	if err != nil {
		return nil, fmt.Errorf("delete_record: %w", err)
	}

	if err := h.recordRepo.Delete(ctx, cmd.RecordID); err != nil {
		return nil, fmt.Errorf("delete_record: failed to delete: %w", err)
	}

	event := shared.NewRecordDeletedEvent(rec.ID, rec.ClassID)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	return &DeleteRecordResult{
		RecordID:  rec.ID,
		ClassID:   rec.ClassID,
		DeletedAt: time.Now().UTC(),
		Events:    []shared.Event{event},
	}, nil
}
