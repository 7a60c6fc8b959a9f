// Package postgres implements the PostgreSQL persistence layer for the
// monitoring hub.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RecordRepository implements record.Repository for PostgreSQL.
type RecordRepository struct {
	conn *Connection
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(conn *Connection) *RecordRepository {
	return &RecordRepository{conn: conn}
}

const recordColumns = `id, record_date, class_id, teacher_name, subject,
	   student_scores, teacher_analysis, recommendations, ai_analysis, created_at`

// Save upserts a record by id.
func (r *RecordRepository) Save(ctx context.Context, rec *record.DailyRecord) error {
	query := `
		INSERT INTO daily_records (
			id, record_date, class_id, teacher_name, subject,
			student_scores, teacher_analysis, recommendations, ai_analysis, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			record_date = EXCLUDED.record_date,
			class_id = EXCLUDED.class_id,
			teacher_name = EXCLUDED.teacher_name,
			subject = EXCLUDED.subject,
			student_scores = EXCLUDED.student_scores,
			teacher_analysis = EXCLUDED.teacher_analysis,
			recommendations = EXCLUDED.recommendations,
			ai_analysis = EXCLUDED.ai_analysis
	`

	scoresJSON, err := json.Marshal(rec.StudentScores)
	if err != nil {
		return shared.WrapError("record", "Save", shared.ErrStorage, "failed to marshal student scores", err)
	}
	recsJSON, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return shared.WrapError("record", "Save", shared.ErrStorage, "failed to marshal recommendations", err)
	}

	recordDate, err := rec.Date.Time()
	if err != nil {
		return shared.ErrInvalidRecordDate
	}

	_, err = r.conn.Exec(ctx, query,
		rec.ID,
		recordDate,
		rec.ClassID,
		rec.TeacherName,
		string(rec.Subject),
		scoresJSON,
		rec.TeacherAnalysis,
		recsJSON,
		rec.AIAnalysis,
		rec.CreatedAt,
	)
	if err != nil {
		return shared.WrapError("record", "Save", shared.ErrStorage, "failed to save record", err)
	}

	return nil
}

// GetByID returns one record by id.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*record.DailyRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_records WHERE id = $1", recordColumns)

	rec, err := r.scanRecord(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRecordNotFound
		}
		return nil, shared.WrapError("record", "GetByID", shared.ErrStorage, "failed to load record", err)
	}
	return rec, nil
}

// ListAll returns every stored record.
func (r *RecordRepository) ListAll(ctx context.Context) ([]*record.DailyRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_records ORDER BY record_date DESC, created_at DESC", recordColumns)
	return r.queryRecords(ctx, "ListAll", query)
}

// ListByClass returns records for one class.
func (r *RecordRepository) ListByClass(ctx context.Context, classID string) ([]*record.DailyRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM daily_records WHERE class_id = $1 ORDER BY record_date DESC, created_at DESC",
		recordColumns,
	)
	return r.queryRecords(ctx, "ListByClass", query, classID)
}

// ListByDate returns records for one calendar date.
func (r *RecordRepository) ListByDate(ctx context.Context, date string) ([]*record.DailyRecord, error) {
	recordDate, err := time.Parse(shared.DateLayout, date)
	if err != nil {
		return nil, shared.ErrInvalidRecordDate
	}
	query := fmt.Sprintf(
		"SELECT %s FROM daily_records WHERE record_date = $1 ORDER BY created_at DESC",
		recordColumns,
	)
	return r.queryRecords(ctx, "ListByDate", query, recordDate)
}

// Delete removes one record.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM daily_records WHERE id = $1", id)
	if err != nil {
		return shared.WrapError("record", "Delete", shared.ErrStorage, "failed to delete record", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of stored records.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM daily_records").Scan(&count); err != nil {
		return 0, shared.WrapError("record", "Count", shared.ErrStorage, "failed to count records", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *RecordRepository) queryRecords(ctx context.Context, op, query string, args ...interface{}) ([]*record.DailyRecord, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError("record", op, shared.ErrStorage, "failed to query records", err)
	}
	defer rows.Close()

	records := make([]*record.DailyRecord, 0)
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, shared.WrapError("record", op, shared.ErrStorage, "failed to scan record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("record", op, shared.ErrStorage, "rows iteration error", err)
	}

	return records, nil
}

func (r *RecordRepository) scanRecord(row pgx.Row) (*record.DailyRecord, error) {
	var (
		rec        record.DailyRecord
		recordDate time.Time
		subject    string
		scoresJSON []byte
		recsJSON   []byte
	)

	err := row.Scan(
		&rec.ID,
		&recordDate,
		&rec.ClassID,
		&rec.TeacherName,
		&subject,
		&scoresJSON,
		&rec.TeacherAnalysis,
		&recsJSON,
		&rec.AIAnalysis,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Date = shared.DateOf(recordDate)
	rec.Subject = record.Subject(subject)
	if err := json.Unmarshal(scoresJSON, &rec.StudentScores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal student scores: %w", err)
	}
	if len(recsJSON) > 0 {
		if err := json.Unmarshal(recsJSON, &rec.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
	}

	return &rec, nil
}
