package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

func TestBuildExportTable_TilawatiLayout(t *testing.T) {
	rec := testRecord("2025-06-03", "5 - B", record.SubjectTilawati)
	rec.StudentScores[0].Fluency = 4
	rec.StudentScores[0].Jilid = "Jilid 3"
	rec.StudentScores[0].Page = "Halaman 12"

	table := BuildExportTable(rec)

	assert.Equal(t, []string{
		"No", "Nama Siswa", "Kehadiran",
		"Jilid", "Halaman",
		"Kelancaran (Fashohah)", "Tajwid", "Adab",
		"Catatan",
	}, table.Columns)

	require.Len(t, table.Rows, 2)
	row := table.Rows[0]
	require.Len(t, row, len(table.Columns))
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "Ahmad Fauzi", row[1])
	assert.Equal(t, "Hadir", row[2])
	assert.Equal(t, "Jilid 3", row[3])
	assert.Equal(t, "Halaman 12", row[4])
	// Numeric scores render through the entry label tables.
	assert.Equal(t, record.ScaleLabel(record.SubjectTilawati, record.FieldFluency, 4), row[5])
}

func TestBuildExportTable_LiterasiLayout(t *testing.T) {
	rec := testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)
	rec.StudentScores[0].LiteracyTotalQuestions = 10
	rec.StudentScores[0].LiteracyCorrect = 8
	rec.StudentScores[0].LiteracyWrong = 2
	rec.StudentScores[0].LiteracyScore = 80

	table := BuildExportTable(rec)

	assert.Contains(t, table.Columns, "Jumlah Soal")
	assert.Contains(t, table.Columns, "Nilai")

	row := table.Rows[0]
	assert.Equal(t, "10", row[4])
	assert.Equal(t, "8", row[5])
	assert.Equal(t, "2", row[6])
	assert.Equal(t, "80", row[7])
}

func TestBuildExportTable_KonsultasiUsesRelabeledColumns(t *testing.T) {
	rec := testRecord("2025-06-07", "5 - B", record.SubjectKonsultasi)
	table := BuildExportTable(rec)

	assert.Contains(t, table.Columns, "Kerapian")
	assert.Contains(t, table.Columns, "Atribut/Seragam")
	assert.Contains(t, table.Columns, "Kesehatan/Fisik")
	assert.Contains(t, table.Columns, "Respon Konseling")
}

func TestBuildExportTable_AbsenteesRenderAsDashes(t *testing.T) {
	rec := testRecord("2025-06-03", "5 - B", record.SubjectTilawati)
	rec.StudentScores[1].Attendance = record.AttendanceSick
	rec.StudentScores[1].ClearPerformance()

	table := BuildExportTable(rec)
	row := table.Rows[1]

	assert.Equal(t, "Sakit", row[2])
	assert.Equal(t, "-", row[3], "jilid")
	assert.Equal(t, "-", row[5], "fluency")
	assert.Equal(t, "-", row[7], "adab")
}

func TestBuildExportHandler(t *testing.T) {
	repo := newMemoryRecordRepo()
	ctx := context.Background()

	rec := testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)
	rec.AIAnalysis = "Narasi mingguan kelas."
	require.NoError(t, repo.Save(ctx, rec))

	handler := NewBuildExportHandler(repo)

	withNarrative, err := handler.Handle(ctx, BuildExportQuery{RecordID: rec.ID, IncludeNarrative: true})
	require.NoError(t, err)
	assert.Equal(t, "Narasi mingguan kelas.", withNarrative.Narrative)
	assert.Equal(t, "Laporan Harian Literasi", withNarrative.Title)

	withoutNarrative, err := handler.Handle(ctx, BuildExportQuery{RecordID: rec.ID})
	require.NoError(t, err)
	assert.Empty(t, withoutNarrative.Narrative)

	_, err = handler.Handle(ctx, BuildExportQuery{RecordID: "nope"})
	assert.ErrorIs(t, err, shared.ErrInvalidRecordID)
}
