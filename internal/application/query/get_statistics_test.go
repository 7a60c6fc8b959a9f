package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

func TestComputeStatistics_EmptyInputYieldsZeros(t *testing.T) {
	result := ComputeStatistics(nil)

	assert.Equal(t, 0, result.RecordCount)
	assert.Equal(t, 0, result.StudentRows)
	assert.Equal(t, 0, result.Attendance.Total())
	assert.Zero(t, result.Attendance.AttendanceRate())
	assert.Zero(t, result.Averages.Involvement)
	assert.Zero(t, result.Averages.Fluency)
	assert.Zero(t, result.Averages.Tajwid)
	assert.Zero(t, result.Averages.Adab)
	assert.Zero(t, result.Averages.LiteracyScore)
}

func TestComputeStatistics_CountsAndAverages(t *testing.T) {
	rec := testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)
	rec.StudentScores[0].Attendance = record.AttendancePresent
	rec.StudentScores[0].ActiveInvolvement = 4
	rec.StudentScores[0].Adab = 4
	rec.StudentScores[0].LiteracyTotalQuestions = 10
	rec.StudentScores[0].LiteracyScore = 80

	rec.StudentScores[1].Attendance = record.AttendanceAbsent
	rec.StudentScores[1].ClearPerformance()

	result := ComputeStatistics([]*record.DailyRecord{rec})

	assert.Equal(t, 1, result.RecordCount)
	assert.Equal(t, 2, result.StudentRows)
	assert.Equal(t, 1, result.Attendance.Present)
	assert.Equal(t, 1, result.Attendance.Absent)
	assert.InDelta(t, 0.5, result.Attendance.AttendanceRate(), 1e-9)

	// Averages cover the one attending student only; absentee zeroes
	// never drag the mean down.
	assert.InDelta(t, 4.0, result.Averages.Involvement, 1e-9)
	assert.InDelta(t, 4.0, result.Averages.Adab, 1e-9)
	assert.InDelta(t, 80.0, result.Averages.LiteracyScore, 1e-9)

	assert.Equal(t, 1, result.SubjectCount[string(record.SubjectLiterasi)])
}

func TestComputeStatistics_LiteracyAverageSkipsNonLiteracyRows(t *testing.T) {
	rec := testRecord("2025-06-03", "5 - B", record.SubjectTilawati)
	// Tilawati rows carry no literacy quiz; both students attend.
	rec.StudentScores[0].LiteracyTotalQuestions = 0
	rec.StudentScores[1].LiteracyTotalQuestions = 0

	result := ComputeStatistics([]*record.DailyRecord{rec})
	assert.Zero(t, result.Averages.LiteracyScore)
	assert.Positive(t, result.Averages.Fluency)
}

func TestGetStatisticsHandler_ScopesByClassAndRange(t *testing.T) {
	repo := newMemoryRecordRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testRecord("2025-06-01", "5 - B", record.SubjectUmum)))
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)))
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-05", "6 - C", record.SubjectLiterasi)))

	handler := NewGetStatisticsHandler(repo)

	scoped, err := handler.Handle(ctx, GetStatisticsQuery{ClassName: "5 - B"})
	require.NoError(t, err)
	assert.Equal(t, 2, scoped.RecordCount)

	ranged, err := handler.Handle(ctx, GetStatisticsQuery{FromDate: "2025-06-02", ToDate: "2025-06-05"})
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.RecordCount)

	_, err = handler.Handle(ctx, GetStatisticsQuery{FromDate: "bad"})
	assert.ErrorIs(t, err, shared.ErrInvalidDate)
}
