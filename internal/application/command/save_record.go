// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE RECORD COMMAND
// Persists one completed monitoring session, either a fresh submission or
// an overwrite of an existing record (upsert by id).
// ══════════════════════════════════════════════════════════════════════════════

// SaveRecordCommand contains the data of a completed monitoring form.
type SaveRecordCommand struct {
	// RecordID, when set, overwrites an existing record. When empty a new
	// id is generated.
	RecordID string

	// Date of the session, YYYY-MM-DD.
	Date string

	// ClassName is the roster's display name. Records store the display
	// name, not the roster's internal id.
	ClassName string

	TeacherName string

	// Subject may be left empty to derive it from the date's weekday.
	Subject string

	StudentScores   []record.StudentScore
	TeacherAnalysis string
	Recommendations record.Recommendations

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SaveRecordCommand) Validate() error {
	if !record.IsValidDate(c.Date) {
		return shared.ErrInvalidRecordDate
	}
	if c.ClassName == "" {
		return shared.ErrInvalidClassName
	}
	if c.Subject != "" && !record.IsKnownSubject(c.Subject) {
		return shared.ErrUnknownSubject
	}
	if len(c.StudentScores) == 0 {
		return shared.ErrEmptyRoster
	}
	return nil
}

// SaveRecordResult contains the result of the save.
type SaveRecordResult struct {
	// RecordID is the id of the persisted record.
	RecordID string

	// Subject is the effective subject after weekday derivation.
	Subject record.Subject

	// Overwrote reports whether an existing record was replaced.
	Overwrote bool

	// SavedAt is when the record was persisted.
	SavedAt time.Time

	// Events contains domain events generated by the save.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SaveRecordHandler handles the SaveRecordCommand.
type SaveRecordHandler struct {
	recordRepo     record.Repository
	registry       roster.Registry
	eventPublisher shared.EventPublisher
}

// NewSaveRecordHandler creates a new SaveRecordHandler.
func NewSaveRecordHandler(
	recordRepo record.Repository,
	registry roster.Registry,
	eventPublisher shared.EventPublisher,
) *SaveRecordHandler {
	return &SaveRecordHandler{
		recordRepo:     recordRepo,
		registry:       registry,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the save record command.
func (h *SaveRecordHandler) Handle(ctx context.Context, cmd SaveRecordCommand) (*SaveRecordResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("save_record: validation failed: %w", err)
	}

	class, err := h.registry.GetByName(ctx, cmd.ClassName)
	if err != nil {
		return nil, fmt.Errorf("save_record: failed to resolve class: %w", err)
	}
	if !class.IsScorable() {
		return nil, shared.ErrEmptyRoster
	}
	if len(cmd.StudentScores) != class.Size() {
		return nil, shared.ErrScoreCountMismatch
	}

	subject := record.Subject(cmd.Subject)
	if cmd.Subject == "" {
		date, _ := shared.DateString(cmd.Date).Time()
		subject = record.SubjectForDate(date)
	}

	recordID := cmd.RecordID
	overwrote := false
	if recordID == "" {
		recordID = uuid.NewString()
	} else {
		if _, err := h.recordRepo.GetByID(ctx, recordID); err == nil {
			overwrote = true
		} else if !shared.IsNotFound(err) {
			return nil, fmt.Errorf("save_record: failed to check existing record: %w", err)
		}
	}

	// Absentees never carry performance scores.
	scores := make([]record.StudentScore, len(cmd.StudentScores))
	copy(scores, cmd.StudentScores)
	for i := range scores {
		if !scores[i].Attendance.IsAttending() {
			scores[i].ClearPerformance()
		}
	}

	rec, err := record.NewRecord(record.NewRecordParams{
		ID:              recordID,
		Date:            shared.DateString(cmd.Date),
		ClassID:         cmd.ClassName,
		TeacherName:     cmd.TeacherName,
		Subject:         subject,
		StudentScores:   scores,
		TeacherAnalysis: cmd.TeacherAnalysis,
		Recommendations: cmd.Recommendations,
	})
	if err != nil {
		return nil, fmt.Errorf("save_record: failed to assemble record: %w", err)
	}
	if !record.IsCompleteRecord(rec, class.Size()) {
		return nil, shared.ErrScoreCountMismatch
	}

	if err := h.recordRepo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save_record: failed to persist record: %w", err)
	}

	event := shared.NewRecordSavedEvent(rec.ID, rec.ClassID, rec.Date.String(), rec.Subject.String(), len(rec.StudentScores), false)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}

	result := &SaveRecordResult{
		RecordID:  rec.ID,
		Subject:   subject,
		Overwrote: overwrote,
		SavedAt:   time.Now().UTC(),
		Events:    []shared.Event{event},
	}

	if h.eventPublisher != nil {
		// Publish failures never fail the save; the record is durable.
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
