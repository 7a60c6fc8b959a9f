package query

import (
	"context"
	"math"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATISTICS QUERY
// Aggregates attendance counts and score averages over a set of records,
// optionally scoped to one class and a date range.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatisticsQuery contains the aggregation scope.
type GetStatisticsQuery struct {
	// ClassName scopes to one class. Empty means all classes.
	ClassName string

	// FromDate and ToDate bound the range, inclusive, YYYY-MM-DD.
	// Either may be empty for an open end.
	FromDate string
	ToDate   string
}

// Validate validates the query.
func (q GetStatisticsQuery) Validate() error {
	if q.FromDate != "" && !record.IsValidDate(q.FromDate) {
		return shared.ErrInvalidRecordDate
	}
	if q.ToDate != "" && !record.IsValidDate(q.ToDate) {
		return shared.ErrInvalidRecordDate
	}
	return nil
}

// AttendanceBreakdown counts students per attendance code.
type AttendanceBreakdown struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Sick    int `json:"sick"`
	Excused int `json:"excused"`
	Absent  int `json:"absent"`
}

// Total is the number of counted student rows.
func (b AttendanceBreakdown) Total() int {
	return b.Present + b.Late + b.Sick + b.Excused + b.Absent
}

// AttendanceRate is the share of attending students (present or late),
// in [0, 1]. Zero rows yield zero.
func (b AttendanceBreakdown) AttendanceRate() float64 {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return float64(b.Present+b.Late) / float64(total)
}

// ScoreAverages holds arithmetic means over attending students only.
// All fields are zero when no attending rows exist.
type ScoreAverages struct {
	Involvement   float64 `json:"involvement"`
	Fluency       float64 `json:"fluency"`
	Tajwid        float64 `json:"tajwid"`
	Adab          float64 `json:"adab"`
	LiteracyScore float64 `json:"literacy_score"`
}

// GetStatisticsResult contains the aggregated view.
type GetStatisticsResult struct {
	RecordCount  int                 `json:"record_count"`
	StudentRows  int                 `json:"student_rows"`
	Attendance   AttendanceBreakdown `json:"attendance"`
	Averages     ScoreAverages       `json:"averages"`
	SubjectCount map[string]int      `json:"subject_count"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// GetStatisticsHandler handles the GetStatisticsQuery.
type GetStatisticsHandler struct {
	recordRepo record.Repository
}

// NewGetStatisticsHandler creates a new GetStatisticsHandler.
func NewGetStatisticsHandler(recordRepo record.Repository) *GetStatisticsHandler {
	return &GetStatisticsHandler{recordRepo: recordRepo}
}

// Handle executes the statistics query.
func (h *GetStatisticsHandler) Handle(ctx context.Context, query GetStatisticsQuery) (*GetStatisticsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStatistics", shared.ErrValidation, "invalid query", err)
	}

	var (
		records []*record.DailyRecord
		err     error
	)
	if query.ClassName != "" {
		records, err = h.recordRepo.ListByClass(ctx, query.ClassName)
	} else {
		records, err = h.recordRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, shared.WrapError("query", "GetStatistics", shared.ErrStorage, "failed to load records", err)
	}

	records = filterByRange(records, query.FromDate, query.ToDate)
	result := ComputeStatistics(records)
	return result, nil
}

// filterByRange keeps records whose date falls within [from, to].
// Dates compare lexicographically because of the fixed layout.
func filterByRange(records []*record.DailyRecord, from, to string) []*record.DailyRecord {
	if from == "" && to == "" {
		return records
	}
	out := records[:0]
	for _, rec := range records {
		d := rec.Date.String()
		if from != "" && d < from {
			continue
		}
		if to != "" && d > to {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// ComputeStatistics aggregates a record set. Empty input yields an
// all-zero result rather than NaN averages.
func ComputeStatistics(records []*record.DailyRecord) *GetStatisticsResult {
	result := &GetStatisticsResult{
		RecordCount:  len(records),
		SubjectCount: make(map[string]int),
		GeneratedAt:  time.Now().UTC(),
	}

	var (
		sumInvolvement, sumFluency, sumTajwid, sumAdab int
		attendingRows                                  int
		sumLiteracy, literacyRows                      int
	)

	for _, rec := range records {
		result.SubjectCount[string(rec.Subject)]++
		for _, s := range rec.StudentScores {
			result.StudentRows++
			switch s.Attendance {
			case record.AttendancePresent:
				result.Attendance.Present++
			case record.AttendanceLate:
				result.Attendance.Late++
			case record.AttendanceSick:
				result.Attendance.Sick++
			case record.AttendancePermission:
				result.Attendance.Excused++
			case record.AttendanceAbsent:
				result.Attendance.Absent++
			}
			if !s.Attendance.IsAttending() {
				continue
			}
			attendingRows++
			sumInvolvement += s.ActiveInvolvement
			sumFluency += s.Fluency
			sumTajwid += s.Tajwid
			sumAdab += s.Adab
			if s.LiteracyTotalQuestions > 0 {
				sumLiteracy += s.LiteracyScore
				literacyRows++
			}
		}
	}

	if attendingRows > 0 {
		n := float64(attendingRows)
		result.Averages.Involvement = round2(float64(sumInvolvement) / n)
		result.Averages.Fluency = round2(float64(sumFluency) / n)
		result.Averages.Tajwid = round2(float64(sumTajwid) / n)
		result.Averages.Adab = round2(float64(sumAdab) / n)
	}
	if literacyRows > 0 {
		result.Averages.LiteracyScore = round2(float64(sumLiteracy) / float64(literacyRows))
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
