package record

import (
	"math"
	"strings"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE SHEET INITIALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRef is the minimal roster projection the scoring engine needs.
// Names are copied into scores at creation time and never live-update.
type StudentRef struct {
	ID   string
	Name string
}

// Defaults for a fresh score sheet. Every observation field starts at
// "Baik" except adab, which starts at "Sangat Baik".
const (
	defaultScaleValue      = 3
	defaultAdabValue       = 4
	defaultLiteracyTotal   = 10
	defaultLiteracyCorrect = 0
)

// InitializeScores produces one score entry per roster student with
// subject-appropriate defaults: everyone Present, scale fields at 3,
// adab at 4, a 10-question literacy baseline, and the first jilid level.
func InitializeScores(students []StudentRef, subject Subject) []StudentScore {
	scores := make([]StudentScore, 0, len(students))
	for _, st := range students {
		score := StudentScore{
			StudentID:         st.ID,
			StudentName:       st.Name,
			Attendance:        AttendancePresent,
			ActiveInvolvement: defaultScaleValue,
			Fluency:           defaultScaleValue,
			Tajwid:            defaultScaleValue,
			Adab:              defaultAdabValue,
			Notes:             "",
		}
		switch subject {
		case SubjectTilawati:
			score.Jilid = DefaultJilid
		case SubjectLiterasi:
			score = applyLiteracyCounts(score, defaultLiteracyTotal, defaultLiteracyCorrect)
		}
		scores = append(scores, score)
	}
	return scores
}

// ══════════════════════════════════════════════════════════════════════════════
// FIELD UPDATES
// ══════════════════════════════════════════════════════════════════════════════

// UpdateScale returns a copy of the score with one generic scale field set.
// Values outside 1..4 are rejected, not clamped; the caller decides how
// to recover.
func UpdateScale(score StudentScore, field ScoreField, value int) (StudentScore, error) {
	if !field.IsValid() {
		return score, shared.ErrUnknownScoreField
	}
	if _, err := shared.NewScaleScore(value); err != nil {
		return score, shared.ErrScoreOutOfRange
	}
	score.setField(field, value)
	return score, nil
}

// UpdateAttendance returns a copy with the attendance state set.
// Moving a student to a non-attending state zeroes their performance
// fields so that averages and exports never show scores for absentees.
func UpdateAttendance(score StudentScore, attendance Attendance) (StudentScore, error) {
	if !attendance.IsValid() {
		return score, shared.ErrUnknownAttendance
	}
	score.Attendance = attendance
	if !attendance.IsAttending() {
		score.ClearPerformance()
	}
	return score, nil
}

// UpdateLiteracyTotal returns a copy with the question total set and the
// derived fields recomputed. The correct count is re-clamped against the
// new total.
func UpdateLiteracyTotal(score StudentScore, total int) (StudentScore, error) {
	if total < 0 {
		return score, shared.ErrNegativeCount
	}
	return applyLiteracyCounts(score, total, score.LiteracyCorrect), nil
}

// UpdateLiteracyCorrect returns a copy with the correct count set and the
// derived fields recomputed.
func UpdateLiteracyCorrect(score StudentScore, correct int) (StudentScore, error) {
	if correct < 0 {
		return score, shared.ErrNegativeCount
	}
	return applyLiteracyCounts(score, score.LiteracyTotalQuestions, correct), nil
}

// applyLiteracyCounts recomputes the derived literacy group. The three
// derived values always move together:
//
//	correct is clamped to [0, total]
//	wrong   = total - correct
//	score   = round(100 * correct / total), or 0 when total is 0
func applyLiteracyCounts(score StudentScore, total, correct int) StudentScore {
	if total < 0 {
		total = 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}

	score.LiteracyTotalQuestions = total
	score.LiteracyCorrect = correct
	score.LiteracyWrong = total - correct
	if total > 0 {
		score.LiteracyScore = int(math.Round(100 * float64(correct) / float64(total)))
	} else {
		score.LiteracyScore = 0
	}
	return score
}

// ══════════════════════════════════════════════════════════════════════════════
// PERFORMANCE CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// PerformanceLevel is the bucket a student's session falls into.
// It selects which note-template pool is offered.
type PerformanceLevel string

const (
	PerformanceHigh   PerformanceLevel = "HIGH"
	PerformanceMedium PerformanceLevel = "MEDIUM"
	PerformanceLow    PerformanceLevel = "LOW"
)

// Keywords in a Konsultasi note that always flag the student LOW,
// regardless of their numeric scores.
var flaggedConsultationKeywords = []string{"Bullying", "Keuangan"}

// ClassifyPerformance buckets a score under the subject's rule:
//
//	Tilawati:   avg(fluency, tajwid, adab) >= 3.5 HIGH, < 2.5 LOW
//	Literasi:   literacyScore >= 85 HIGH, < 60 LOW
//	Konsultasi: LOW when health <= 2, responsiveness <= 2, or the notes
//	            mention a flagged topic; HIGH when grooming and uniform
//	            are both 4
//	others:     avg(involvement, adab) >= 3.5 HIGH, < 2.5 LOW
func ClassifyPerformance(score StudentScore, subject Subject) PerformanceLevel {
	switch subject {
	case SubjectTilawati:
		avg := float64(score.Fluency+score.Tajwid+score.Adab) / 3.0
		if avg >= 3.5 {
			return PerformanceHigh
		}
		if avg < 2.5 {
			return PerformanceLow
		}
		return PerformanceMedium

	case SubjectLiterasi:
		if score.LiteracyScore >= 85 {
			return PerformanceHigh
		}
		if score.LiteracyScore < 60 {
			return PerformanceLow
		}
		return PerformanceMedium

	case SubjectKonsultasi:
		if score.Tajwid <= 2 || score.Adab <= 2 || hasFlaggedKeyword(score.Notes) {
			return PerformanceLow
		}
		if score.ActiveInvolvement == 4 && score.Fluency == 4 {
			return PerformanceHigh
		}
		return PerformanceMedium

	default:
		avg := float64(score.ActiveInvolvement+score.Adab) / 2.0
		if avg >= 3.5 {
			return PerformanceHigh
		}
		if avg < 2.5 {
			return PerformanceLow
		}
		return PerformanceMedium
	}
}

func hasFlaggedKeyword(notes string) bool {
	for _, kw := range flaggedConsultationKeywords {
		if strings.Contains(notes, kw) {
			return true
		}
	}
	return false
}
