// Package postgres implements the PostgreSQL persistence layer for the
// monitoring hub.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER REGISTRY IMPLEMENTATION
// The seed classes live in code; only classes registered at runtime hit
// the database. Reads merge both sources, seed first.
// ══════════════════════════════════════════════════════════════════════════════

// RosterRegistry implements roster.Registry for PostgreSQL.
type RosterRegistry struct {
	conn *Connection
}

// NewRosterRegistry creates a new RosterRegistry.
func NewRosterRegistry(conn *Connection) *RosterRegistry {
	return &RosterRegistry{conn: conn}
}

// ListClasses returns the seed classes plus every registered custom class.
func (r *RosterRegistry) ListClasses(ctx context.Context) ([]*roster.ClassRoster, error) {
	classes := roster.SeedClasses()

	custom, err := r.listCustom(ctx)
	if err != nil {
		return nil, err
	}

	return append(classes, custom...), nil
}

// GetByName returns one class by display name.
func (r *RosterRegistry) GetByName(ctx context.Context, name string) (*roster.ClassRoster, error) {
	for _, class := range roster.SeedClasses() {
		if class.Name == name {
			return class, nil
		}
	}

	query := `
		SELECT id, name, homeroom_teacher, students
		FROM custom_classes
		WHERE name = $1
	`
	class, err := r.scanClass(r.conn.QueryRow(ctx, query, name))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrClassNotFound
		}
		return nil, shared.WrapError("roster", "GetByName", shared.ErrStorage, "failed to load class", err)
	}
	return class, nil
}

// Register persists a new custom class. The registry is append-only;
// a name collision with a seed or custom class is rejected.
func (r *RosterRegistry) Register(ctx context.Context, class *roster.ClassRoster) error {
	for _, seeded := range roster.SeedClasses() {
		if seeded.Name == class.Name {
			return shared.ErrClassAlreadyExists
		}
	}

	studentsJSON, err := json.Marshal(class.Students)
	if err != nil {
		return shared.WrapError("roster", "Register", shared.ErrStorage, "failed to marshal students", err)
	}

	query := `
		INSERT INTO custom_classes (id, name, homeroom_teacher, students)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.conn.Exec(ctx, query, class.ID, class.Name, class.HomeroomTeacher, studentsJSON)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrClassAlreadyExists
		}
		return shared.WrapError("roster", "Register", shared.ErrStorage, "failed to register class", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *RosterRegistry) listCustom(ctx context.Context) ([]*roster.ClassRoster, error) {
	query := `
		SELECT id, name, homeroom_teacher, students
		FROM custom_classes
		ORDER BY created_at ASC
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("roster", "ListClasses", shared.ErrStorage, "failed to query classes", err)
	}
	defer rows.Close()

	classes := make([]*roster.ClassRoster, 0)
	for rows.Next() {
		class, err := r.scanClass(rows)
		if err != nil {
			return nil, shared.WrapError("roster", "ListClasses", shared.ErrStorage, "failed to scan class", err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

func (r *RosterRegistry) scanClass(row pgx.Row) (*roster.ClassRoster, error) {
	var (
		class        roster.ClassRoster
		studentsJSON []byte
	)

	if err := row.Scan(&class.ID, &class.Name, &class.HomeroomTeacher, &studentsJSON); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(studentsJSON, &class.Students); err != nil {
		return nil, fmt.Errorf("failed to unmarshal students: %w", err)
	}
	class.Custom = true

	return &class, nil
}
