package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

func sampleRecordParams() NewRecordParams {
	return NewRecordParams{
		ID:          uuid.NewString(),
		Date:        "2025-06-03",
		ClassID:     "4 - A",
		TeacherName: "Padlin, M.Pd",
		Subject:     SubjectTilawati,
		StudentScores: InitializeScores([]StudentRef{
			{ID: "4A-1", Name: "Abharina Azzuhra"},
			{ID: "4A-2", Name: "Adila Naura Putri"},
			{ID: "4A-3", Name: "Adzkia Putri Syahira"},
		}, SubjectTilawati),
		TeacherAnalysis: "Kegiatan berjalan lancar.",
		Recommendations: Recommendations{
			SpecialAttention:  "Pendampingan makhraj untuk beberapa siswa.",
			MethodImprovement: "Tambah sesi drill tajwid.",
			NextWeekPlan:      "Lanjut ke halaman berikutnya.",
		},
	}
}

func TestNewRecord(t *testing.T) {
	params := sampleRecordParams()
	rec, err := NewRecord(params)
	require.NoError(t, err)

	assert.Equal(t, params.ID, rec.ID)
	assert.Equal(t, shared.DateString("2025-06-03"), rec.Date)
	assert.Len(t, rec.StudentScores, 3)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestNewRecord_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewRecordParams)
		want   error
	}{
		{"bad id", func(p *NewRecordParams) { p.ID = "rec-1718000000000" }, shared.ErrInvalidID},
		{"bad date", func(p *NewRecordParams) { p.Date = "2025-02-30" }, shared.ErrInvalidDate},
		{"bad subject", func(p *NewRecordParams) { p.Subject = "Olahraga" }, shared.ErrInvalidInput},
		{"empty class", func(p *NewRecordParams) { p.ClassID = "  " }, shared.ErrInvalidInput},
		{"bad attendance", func(p *NewRecordParams) { p.StudentScores[0].Attendance = "Z" }, shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := sampleRecordParams()
			tt.mutate(&params)
			_, err := NewRecord(params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsCompleteRecord(t *testing.T) {
	rec, err := NewRecord(sampleRecordParams())
	require.NoError(t, err)

	assert.True(t, IsCompleteRecord(rec, 3))
	assert.False(t, IsCompleteRecord(rec, 4), "score count must match roster size")
	assert.False(t, IsCompleteRecord(nil, 3))

	// Attending Tilawati students need a jilid level.
	broken := rec.Clone()
	broken.StudentScores[1].Jilid = ""
	assert.False(t, IsCompleteRecord(broken, 3))

	// Absent students are exempt from the jilid requirement.
	broken.StudentScores[1].Attendance = AttendanceAbsent
	assert.True(t, IsCompleteRecord(broken, 3))
}

func TestAttendance_Codes(t *testing.T) {
	// The short codes are a persisted contract.
	assert.Equal(t, "H", string(AttendancePresent))
	assert.Equal(t, "TL", string(AttendanceLate))
	assert.Equal(t, "S", string(AttendanceSick))
	assert.Equal(t, "I", string(AttendancePermission))
	assert.Equal(t, "A", string(AttendanceAbsent))
}

func TestAttendance_IsAttending(t *testing.T) {
	assert.True(t, AttendancePresent.IsAttending())
	assert.True(t, AttendanceLate.IsAttending())
	assert.False(t, AttendanceSick.IsAttending())
	assert.False(t, AttendancePermission.IsAttending())
	assert.False(t, AttendanceAbsent.IsAttending())
}

func TestDailyRecord_CloneAndEqual(t *testing.T) {
	rec, err := NewRecord(sampleRecordParams())
	require.NoError(t, err)

	clone := rec.Clone()
	assert.True(t, rec.Equal(clone))
	assert.Empty(t, cmp.Diff(rec, clone, cmpopts.EquateApproxTime(0)))

	// Mutating the clone's score slice must not leak into the original.
	clone.StudentScores[0].Fluency = 1
	assert.Equal(t, 3, rec.StudentScores[0].Fluency)
	assert.False(t, rec.Equal(clone))

	other := rec.Clone()
	other.AIAnalysis = "Ringkasan AI."
	assert.False(t, rec.Equal(other))
}

func TestDailyRecord_AttendingCount(t *testing.T) {
	rec, err := NewRecord(sampleRecordParams())
	require.NoError(t, err)
	assert.Equal(t, 3, rec.AttendingCount())

	rec.StudentScores[0].Attendance = AttendanceSick
	rec.StudentScores[1].Attendance = AttendanceLate
	assert.Equal(t, 2, rec.AttendingCount())
	assert.Equal(t, 3, rec.StudentCount())
}

func TestSortByDateDesc(t *testing.T) {
	recs := []*DailyRecord{
		{ID: "a", Date: "2025-06-01"},
		{ID: "b", Date: "2025-06-15"},
		{ID: "c", Date: "2025-06-08"},
	}
	SortByDateDesc(recs)
	assert.Equal(t, []string{"b", "c", "a"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})
}
