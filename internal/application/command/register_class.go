package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER CLASS COMMAND
// Appends a teacher-created class to the custom registry. The registry is
// append-only; classes are never edited or removed afterwards.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterClassCommand contains the new class data.
type RegisterClassCommand struct {
	Name            string
	HomeroomTeacher string

	// StudentNames in roster order. Student ids are derived from the
	// class name and position.
	StudentNames []string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RegisterClassCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.ErrInvalidClassName
	}
	if len(c.StudentNames) == 0 {
		return shared.ErrEmptyRoster
	}
	for _, name := range c.StudentNames {
		if strings.TrimSpace(name) == "" {
			return shared.NewDomainError("roster", "Register", shared.ErrInvalidInput, "student name cannot be empty")
		}
	}
	return nil
}

// RegisterClassResult contains the result of the registration.
type RegisterClassResult struct {
	ClassID      string
	ClassName    string
	StudentCount int
	RegisteredAt time.Time
	Events       []shared.Event
}

// RegisterClassHandler handles the RegisterClassCommand.
type RegisterClassHandler struct {
	registry       roster.Registry
	eventPublisher shared.EventPublisher
}

// NewRegisterClassHandler creates a new RegisterClassHandler.
func NewRegisterClassHandler(registry roster.Registry, eventPublisher shared.EventPublisher) *RegisterClassHandler {
	return &RegisterClassHandler{
		registry:       registry,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register class command.
func (h *RegisterClassHandler) Handle(ctx context.Context, cmd RegisterClassCommand) (*RegisterClassResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_class: validation failed: %w", err)
	}

	name := strings.TrimSpace(cmd.Name)
	prefix := studentIDPrefix(name)
	students := make([]roster.Student, 0, len(cmd.StudentNames))
	for i, studentName := range cmd.StudentNames {
		students = append(students, roster.Student{
			ID:   fmt.Sprintf("%s-%d", prefix, i+1),
			Name: strings.TrimSpace(studentName),
		})
	}

	class, err := roster.NewClassRoster(roster.NewClassParams{
		ID:              uuid.NewString(),
		Name:            name,
		HomeroomTeacher: cmd.HomeroomTeacher,
		Students:        students,
	})
	if err != nil {
		return nil, fmt.Errorf("register_class: %w", err)
	}

	if err := h.registry.Register(ctx, class); err != nil {
		return nil, fmt.Errorf("register_class: %w", err)
	}

	event := shared.NewClassRegisteredEvent(class.ID, class.Name, class.HomeroomTeacher, class.Size())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	return &RegisterClassResult{
		ClassID:      class.ID,
		ClassName:    class.Name,
		StudentCount: class.Size(),
		RegisteredAt: time.Now().UTC(),
		Events:       []shared.Event{event},
	}, nil
}

// studentIDPrefix condenses a class name into an id prefix, mirroring the
// seed convention ("4 - A" students carry "4A-1", "4A-2", ...).
func studentIDPrefix(className string) string {
	var b strings.Builder
	for _, r := range className {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "CLS"
	}
	return b.String()
}
