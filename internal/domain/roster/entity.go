// Package roster contains the class roster domain model: the teaching
// units whose students get scored every morning, and the append-only
// registry of teacher-created classes.
package roster

import (
	"fmt"
	"strings"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// Student is one roster member. Names are copied into records at scoring
// time, so later roster edits never rewrite history.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassRoster is a teaching unit. Rosters are immutable once created;
// teacher-created classes live in an append-only custom registry that is
// merged with the built-in seed list at load time.
type ClassRoster struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	HomeroomTeacher string    `json:"homeroomTeacher"`
	Students        []Student `json:"students"`

	// Custom marks rosters registered at runtime, as opposed to the
	// built-in seed list.
	Custom bool `json:"custom,omitempty"`
}

// NewClassParams contains parameters for registering a new class.
type NewClassParams struct {
	ID              string
	Name            string
	HomeroomTeacher string
	Students        []Student
}

// NewClassRoster creates a custom class roster with validation.
// A roster that will ever be scored must have at least one student.
func NewClassRoster(params NewClassParams) (*ClassRoster, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.ErrInvalidClassName
	}
	if params.ID == "" {
		return nil, shared.NewDomainError("roster", "NewClassRoster", shared.ErrInvalidID, "class id is required")
	}
	if len(params.Students) == 0 {
		return nil, shared.ErrEmptyRoster
	}

	seen := make(map[string]struct{}, len(params.Students))
	students := make([]Student, 0, len(params.Students))
	for _, st := range params.Students {
		studentName := strings.TrimSpace(st.Name)
		if st.ID == "" || studentName == "" {
			return nil, shared.NewDomainError("roster", "NewClassRoster", shared.ErrInvalidInput, "student id and name are required")
		}
		if _, dup := seen[st.ID]; dup {
			return nil, shared.NewDomainError("roster", "NewClassRoster", shared.ErrInvalidInput,
				fmt.Sprintf("duplicate student id %q", st.ID))
		}
		seen[st.ID] = struct{}{}
		students = append(students, Student{ID: st.ID, Name: studentName})
	}

	return &ClassRoster{
		ID:              params.ID,
		Name:            name,
		HomeroomTeacher: strings.TrimSpace(params.HomeroomTeacher),
		Students:        students,
		Custom:          true,
	}, nil
}

// Size returns the number of students in the roster.
func (c *ClassRoster) Size() int {
	return len(c.Students)
}

// IsScorable reports whether this roster can back a monitoring session.
func (c *ClassRoster) IsScorable() bool {
	return len(c.Students) > 0
}

// String returns a compact representation for logging.
func (c *ClassRoster) String() string {
	return fmt.Sprintf("ClassRoster{ID: %s, Name: %s, Students: %d}", c.ID, c.Name, len(c.Students))
}

// Clone creates a deep copy of the roster.
func (c *ClassRoster) Clone() *ClassRoster {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Students = make([]Student, len(c.Students))
	copy(clone.Students, c.Students)
	return &clone
}
