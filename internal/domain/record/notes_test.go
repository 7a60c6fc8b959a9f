package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotePool_ExhaustiveOverSubjectsAndLevels(t *testing.T) {
	levels := []PerformanceLevel{PerformanceHigh, PerformanceMedium, PerformanceLow}

	for _, subject := range AllSubjects {
		for _, level := range levels {
			pool := NotePool(subject, level)
			require.NotEmpty(t, pool, "empty pool for %s/%s", subject, level)
			for _, note := range pool {
				assert.NotEmpty(t, note)
			}
		}
	}
}

func TestNotePool_SubjectSpecificPools(t *testing.T) {
	assert.Contains(t, NotePool(SubjectTilawati, PerformanceHigh), "Bacaan sangat tartil dan fashohah baik.")
	assert.Contains(t, NotePool(SubjectLiterasi, PerformanceLow), "Kosakata masih terbatas.")
	assert.Contains(t, NotePool(SubjectKonsultasi, PerformanceLow), "Terindikasi masalah bullying/sosial dikelas.")
}

func TestNotePool_GenericFallback(t *testing.T) {
	// Umum and Bimbingan Ibadah have no pools of their own.
	for _, subject := range []Subject{SubjectUmum, SubjectIbadah} {
		assert.Equal(t, genericNotes[PerformanceHigh], NotePool(subject, PerformanceHigh))
		assert.Equal(t, genericNotes[PerformanceMedium], NotePool(subject, PerformanceMedium))
		assert.Equal(t, genericNotes[PerformanceLow], NotePool(subject, PerformanceLow))
	}
}

func TestSuggestNotes_FollowsClassification(t *testing.T) {
	high := StudentScore{Fluency: 4, Tajwid: 4, Adab: 4}
	assert.Equal(t, tilawatiNotes[PerformanceHigh], SuggestNotes(high, SubjectTilawati))

	weak := StudentScore{LiteracyScore: 40}
	assert.Equal(t, literasiNotes[PerformanceLow], SuggestNotes(weak, SubjectLiterasi))
}
