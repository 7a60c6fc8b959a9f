// Package record contains the daily monitoring record domain model:
// attendance, per-subject observation scores, derived literacy fields,
// and the scoring rules that keep them consistent.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Attendance is one student's presence state for the session.
// The short codes are persisted and exported; they are a data contract,
// not display labels.
type Attendance string

const (
	AttendancePresent    Attendance = "H"
	AttendanceLate       Attendance = "TL"
	AttendanceSick       Attendance = "S"
	AttendancePermission Attendance = "I"
	AttendanceAbsent     Attendance = "A"
)

// AllAttendance lists every attendance state in display order.
var AllAttendance = []Attendance{
	AttendancePresent,
	AttendanceLate,
	AttendanceSick,
	AttendancePermission,
	AttendanceAbsent,
}

// IsValid checks if the attendance code is known.
func (a Attendance) IsValid() bool {
	switch a {
	case AttendancePresent, AttendanceLate, AttendanceSick, AttendancePermission, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// IsAttending reports whether the student took part in the session.
// Present and Late both count as attending for scoring purposes.
func (a Attendance) IsAttending() bool {
	return a == AttendancePresent || a == AttendanceLate
}

// Label returns the Indonesian display label for the attendance code.
func (a Attendance) Label() string {
	switch a {
	case AttendancePresent:
		return "Hadir"
	case AttendanceLate:
		return "Terlambat"
	case AttendanceSick:
		return "Sakit"
	case AttendancePermission:
		return "Izin"
	case AttendanceAbsent:
		return "Alpa"
	default:
		return string(a)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT SCORE
// ══════════════════════════════════════════════════════════════════════════════

// StudentScore is one student's entry within a DailyRecord.
//
// The four 1..4 fields are stored uniformly for every subject and
// reinterpreted per subject (see FieldLabel). Non-attending students carry
// zeroes in all four fields. Literacy fields form a derived group that is
// only ever updated together through ApplyLiteracyCounts.
type StudentScore struct {
	StudentID   string     `json:"studentId"`
	StudentName string     `json:"studentName"`
	Attendance  Attendance `json:"attendance"`

	ActiveInvolvement int `json:"activeInvolvement"`
	Fluency           int `json:"fluency"`
	Tajwid            int `json:"tajwid"`
	Adab              int `json:"adab"`

	// Tilawati only.
	Jilid string `json:"jilid,omitempty"`
	Page  string `json:"page,omitempty"`

	// Literasi only.
	LiteracyTotalQuestions int `json:"literacyTotalQuestions,omitempty"`
	LiteracyCorrect        int `json:"literacyCorrect,omitempty"`
	LiteracyWrong          int `json:"literacyWrong,omitempty"`
	LiteracyScore          int `json:"literacyScore,omitempty"`

	Notes string `json:"notes"`
}

// Field returns the value of one of the four generic scale fields.
func (s StudentScore) Field(f ScoreField) int {
	switch f {
	case FieldInvolvement:
		return s.ActiveInvolvement
	case FieldFluency:
		return s.Fluency
	case FieldTajwid:
		return s.Tajwid
	case FieldAdab:
		return s.Adab
	default:
		return 0
	}
}

// setField assigns one of the four generic scale fields.
func (s *StudentScore) setField(f ScoreField, value int) {
	switch f {
	case FieldInvolvement:
		s.ActiveInvolvement = value
	case FieldFluency:
		s.Fluency = value
	case FieldTajwid:
		s.Tajwid = value
	case FieldAdab:
		s.Adab = value
	}
}

// ClearPerformance zeroes every performance field. Applied to students who
// did not attend the session, so averages never mix in phantom scores.
func (s *StudentScore) ClearPerformance() {
	s.ActiveInvolvement = 0
	s.Fluency = 0
	s.Tajwid = 0
	s.Adab = 0
	s.LiteracyCorrect = 0
	s.LiteracyWrong = s.LiteracyTotalQuestions
	s.LiteracyScore = 0
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: DAILY RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Recommendations holds the teacher's follow-up plan sections.
type Recommendations struct {
	SpecialAttention  string `json:"specialAttention"`
	MethodImprovement string `json:"methodImprovement"`
	NextWeekPlan      string `json:"nextWeekPlan"`
}

// DailyRecord is one completed monitoring session for a class.
//
// ClassID stores the roster's display name rather than its internal id.
// This denormalization is deliberate: exports and narrative prompts read
// the class name straight off the record.
type DailyRecord struct {
	ID              string             `json:"id"`
	Date            shared.DateString  `json:"date"`
	ClassID         string             `json:"classId"`
	TeacherName     string             `json:"teacherName"`
	Subject         Subject            `json:"subject"`
	StudentScores   []StudentScore     `json:"studentScores"`
	TeacherAnalysis string             `json:"teacherAnalysis"`
	Recommendations Recommendations    `json:"recommendations"`
	AIAnalysis      string             `json:"aiAnalysis,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewRecordParams contains parameters for assembling a new daily record.
type NewRecordParams struct {
	ID              string
	Date            shared.DateString
	ClassID         string
	TeacherName     string
	Subject         Subject
	StudentScores   []StudentScore
	TeacherAnalysis string
	Recommendations Recommendations
}

// NewRecord assembles a daily record with validation of all fields.
func NewRecord(params NewRecordParams) (*DailyRecord, error) {
	if _, err := shared.NewRecordID(params.ID); err != nil {
		return nil, shared.ErrInvalidRecordID
	}
	if !params.Date.IsValid() {
		return nil, shared.ErrInvalidRecordDate
	}
	if !params.Subject.IsValid() {
		return nil, shared.ErrUnknownSubject
	}
	if strings.TrimSpace(params.ClassID) == "" {
		return nil, shared.ErrInvalidClassName
	}
	for i := range params.StudentScores {
		if !params.StudentScores[i].Attendance.IsValid() {
			return nil, shared.ErrUnknownAttendance
		}
	}

	return &DailyRecord{
		ID:              params.ID,
		Date:            params.Date,
		ClassID:         params.ClassID,
		TeacherName:     strings.TrimSpace(params.TeacherName),
		Subject:         params.Subject,
		StudentScores:   params.StudentScores,
		TeacherAnalysis: params.TeacherAnalysis,
		Recommendations: params.Recommendations,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// IsValidDate reports whether the string is a real YYYY-MM-DD calendar date.
func IsValidDate(value string) bool {
	return shared.DateString(value).IsValid()
}

// IsKnownSubject reports whether the string is one of the closed subjects.
func IsKnownSubject(value string) bool {
	return Subject(value).IsValid()
}

// IsCompleteRecord checks that a record covers its roster exactly: one
// score entry per roster student, in roster order, with the subject's
// required fields present.
func IsCompleteRecord(r *DailyRecord, rosterSize int) bool {
	if r == nil {
		return false
	}
	if !r.Date.IsValid() || !r.Subject.IsValid() {
		return false
	}
	if len(r.StudentScores) != rosterSize {
		return false
	}
	for i := range r.StudentScores {
		s := &r.StudentScores[i]
		if s.StudentID == "" || !s.Attendance.IsValid() {
			return false
		}
		switch r.Subject {
		case SubjectTilawati:
			if s.Attendance.IsAttending() && s.Jilid == "" {
				return false
			}
		case SubjectLiterasi:
			if s.LiteracyTotalQuestions < 0 {
				return false
			}
		}
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// AttachAnalysis stores the narrative text produced by the external
// generator. A failed narrative call simply never reaches this point.
func (r *DailyRecord) AttachAnalysis(text string) {
	r.AIAnalysis = text
}

// StudentCount returns the number of scored students.
func (r *DailyRecord) StudentCount() int {
	return len(r.StudentScores)
}

// AttendingCount returns how many students were present or late.
func (r *DailyRecord) AttendingCount() int {
	n := 0
	for i := range r.StudentScores {
		if r.StudentScores[i].Attendance.IsAttending() {
			n++
		}
	}
	return n
}

// String returns a compact representation for logging.
func (r *DailyRecord) String() string {
	return fmt.Sprintf(
		"DailyRecord{ID: %s, Date: %s, Class: %s, Subject: %s, Students: %d}",
		r.ID, r.Date, r.ClassID, r.Subject, len(r.StudentScores),
	)
}

// Clone creates a deep copy of the record, including the score slice.
func (r *DailyRecord) Clone() *DailyRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.StudentScores = make([]StudentScore, len(r.StudentScores))
	copy(clone.StudentScores, r.StudentScores)
	return &clone
}

// Equal reports deep structural equality of two records, including the
// nested score slices in order.
func (r *DailyRecord) Equal(other *DailyRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.ID != other.ID || r.Date != other.Date || r.ClassID != other.ClassID ||
		r.TeacherName != other.TeacherName || r.Subject != other.Subject ||
		r.TeacherAnalysis != other.TeacherAnalysis ||
		r.Recommendations != other.Recommendations ||
		r.AIAnalysis != other.AIAnalysis {
		return false
	}
	if len(r.StudentScores) != len(other.StudentScores) {
		return false
	}
	for i := range r.StudentScores {
		if r.StudentScores[i] != other.StudentScores[i] {
			return false
		}
	}
	return true
}
