package query

import (
	"context"
	"fmt"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BUILD EXPORT QUERY
// Projects one record into a printable table. Column layout follows the
// subject, and numeric scores are rendered through the same label tables
// the entry form uses, so export and entry never disagree.
// ══════════════════════════════════════════════════════════════════════════════

// BuildExportQuery identifies the record to export.
type BuildExportQuery struct {
	RecordID string

	// IncludeNarrative appends the stored narrative text when present.
	IncludeNarrative bool
}

// ExportTable is a subject-shaped tabular projection of one record.
type ExportTable struct {
	Title       string     `json:"title"`
	ClassName   string     `json:"class_name"`
	TeacherName string     `json:"teacher_name"`
	Subject     string     `json:"subject"`
	Date        string     `json:"date"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`

	TeacherAnalysis   string `json:"teacher_analysis,omitempty"`
	SpecialAttention  string `json:"special_attention,omitempty"`
	MethodImprovement string `json:"method_improvement,omitempty"`
	NextWeekPlan      string `json:"next_week_plan,omitempty"`
	Narrative         string `json:"narrative,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// BuildExportHandler handles the BuildExportQuery.
type BuildExportHandler struct {
	recordRepo record.Repository
}

// NewBuildExportHandler creates a new BuildExportHandler.
func NewBuildExportHandler(recordRepo record.Repository) *BuildExportHandler {
	return &BuildExportHandler{recordRepo: recordRepo}
}

// Handle executes the export query.
func (h *BuildExportHandler) Handle(ctx context.Context, query BuildExportQuery) (*ExportTable, error) {
	if _, err := shared.NewRecordID(query.RecordID); err != nil {
		return nil, shared.ErrInvalidRecordID
	}

	rec, err := h.recordRepo.GetByID(ctx, query.RecordID)
	if err != nil {
		return nil, err
	}

	table := BuildExportTable(rec)
	if !query.IncludeNarrative {
		table.Narrative = ""
	}
	return table, nil
}

// BuildExportTable projects a record into its subject-shaped table.
func BuildExportTable(rec *record.DailyRecord) *ExportTable {
	table := &ExportTable{
		Title:             fmt.Sprintf("Laporan Harian %s", rec.Subject),
		ClassName:         rec.ClassID,
		TeacherName:       rec.TeacherName,
		Subject:           string(rec.Subject),
		Date:              rec.Date.String(),
		Columns:           exportColumns(rec.Subject),
		Rows:              make([][]string, 0, len(rec.StudentScores)),
		TeacherAnalysis:   rec.TeacherAnalysis,
		SpecialAttention:  rec.Recommendations.SpecialAttention,
		MethodImprovement: rec.Recommendations.MethodImprovement,
		NextWeekPlan:      rec.Recommendations.NextWeekPlan,
		Narrative:         rec.AIAnalysis,
		GeneratedAt:       time.Now().UTC(),
	}

	for i, s := range rec.StudentScores {
		table.Rows = append(table.Rows, exportRow(rec.Subject, i+1, s))
	}
	return table
}

// exportColumns returns the header row for a subject.
func exportColumns(subject record.Subject) []string {
	base := []string{"No", "Nama Siswa", "Kehadiran"}
	switch subject {
	case record.SubjectTilawati:
		return append(base,
			"Jilid", "Halaman",
			record.FieldLabel(subject, record.FieldFluency),
			record.FieldLabel(subject, record.FieldTajwid),
			record.FieldLabel(subject, record.FieldAdab),
			"Catatan")
	case record.SubjectLiterasi:
		return append(base,
			record.FieldLabel(subject, record.FieldInvolvement),
			"Jumlah Soal", "Benar", "Salah", "Nilai",
			record.FieldLabel(subject, record.FieldAdab),
			"Catatan")
	case record.SubjectKonsultasi:
		return append(base,
			record.FieldLabel(subject, record.FieldInvolvement),
			record.FieldLabel(subject, record.FieldFluency),
			record.FieldLabel(subject, record.FieldTajwid),
			record.FieldLabel(subject, record.FieldAdab),
			"Catatan")
	default:
		return append(base,
			record.FieldLabel(subject, record.FieldInvolvement),
			record.FieldLabel(subject, record.FieldFluency),
			record.FieldLabel(subject, record.FieldTajwid),
			record.FieldLabel(subject, record.FieldAdab),
			"Catatan")
	}
}

// exportRow renders one student row in the subject layout. Scores of
// non-attending students render as dashes rather than zero labels.
func exportRow(subject record.Subject, no int, s record.StudentScore) []string {
	row := []string{fmt.Sprint(no), s.StudentName, s.Attendance.Label()}
	attending := s.Attendance.IsAttending()

	scale := func(field record.ScoreField, value int) string {
		if !attending {
			return "-"
		}
		return record.ScaleLabel(subject, field, value)
	}
	text := func(v string) string {
		if !attending {
			return "-"
		}
		return v
	}

	switch subject {
	case record.SubjectTilawati:
		row = append(row,
			text(s.Jilid), text(s.Page),
			scale(record.FieldFluency, s.Fluency),
			scale(record.FieldTajwid, s.Tajwid),
			scale(record.FieldAdab, s.Adab),
			s.Notes)
	case record.SubjectLiterasi:
		row = append(row,
			scale(record.FieldInvolvement, s.ActiveInvolvement),
			number(attending, s.LiteracyTotalQuestions),
			number(attending, s.LiteracyCorrect),
			number(attending, s.LiteracyWrong),
			number(attending, s.LiteracyScore),
			scale(record.FieldAdab, s.Adab),
			s.Notes)
	default:
		row = append(row,
			scale(record.FieldInvolvement, s.ActiveInvolvement),
			scale(record.FieldFluency, s.Fluency),
			scale(record.FieldTajwid, s.Tajwid),
			scale(record.FieldAdab, s.Adab),
			s.Notes)
	}
	return row
}

func number(attending bool, v int) string {
	if !attending {
		return "-"
	}
	return fmt.Sprint(v)
}
