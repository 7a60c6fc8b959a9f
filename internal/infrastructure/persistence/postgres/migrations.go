// Package postgres implements the PostgreSQL persistence layer for the
// monitoring hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE DAILY RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create daily_records table
-- Version: 001

-- One row per class session. The full score sheet is embedded as JSONB
-- so a record saves and loads as a single unit; the app never updates
-- individual student rows in place.
CREATE TABLE IF NOT EXISTS daily_records (
    id UUID PRIMARY KEY,
    record_date DATE NOT NULL,
    class_id TEXT NOT NULL,
    teacher_name TEXT NOT NULL DEFAULT '',
    subject VARCHAR(50) NOT NULL,
    student_scores JSONB NOT NULL DEFAULT '[]'::jsonb,
    teacher_analysis TEXT NOT NULL DEFAULT '',
    recommendations JSONB NOT NULL DEFAULT '{}'::jsonb,
    ai_analysis TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_subject CHECK (subject IN (
        'Tilawati', 'Literasi', 'Bimbingan Ibadah', 'Konsultasi & Evaluasi', 'Umum'
    ))
);

-- Listing is always newest-first, per class or per date.
CREATE INDEX IF NOT EXISTS idx_daily_records_date ON daily_records(record_date DESC);
CREATE INDEX IF NOT EXISTS idx_daily_records_class ON daily_records(class_id);
CREATE INDEX IF NOT EXISTS idx_daily_records_class_date ON daily_records(class_id, record_date DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS daily_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE CUSTOM CLASSES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create custom_classes table
-- Version: 002

-- The seed roster ships in code; only classes registered at runtime are
-- persisted. The registry is append-only: no UPDATE or DELETE paths.
CREATE TABLE IF NOT EXISTS custom_classes (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    homeroom_teacher TEXT NOT NULL DEFAULT '',
    students JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_custom_classes_name ON custom_classes(name);
`

const migration002Down = `
DROP TABLE IF EXISTS custom_classes;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_daily_records",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_custom_classes",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
