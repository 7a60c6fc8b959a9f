package command

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

func newTestSynthesizer(repo *memoryRecordRepo, publisher shared.EventPublisher, progress ProgressFunc) *SynthesizeRecordsHandler {
	return NewSynthesizeRecordsHandler(repo, &memoryRegistry{}, publisher, SynthesizeRecordsHandlerConfig{
		Rand:       rand.New(rand.NewSource(42)),
		Progress:   progress,
		YieldDelay: 0, // no pacing in tests
	})
}

func TestPickWeighted_DegenerateDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	choices := []weightedChoice[record.Attendance]{{record.AttendancePresent, 1.0}}

	for i := 0; i < 1000; i++ {
		assert.Equal(t, record.AttendancePresent, pickWeighted(rng, choices))
	}
}

func TestPickWeighted_FallsBackToFirstOnDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	// Weights deliberately sum well below 1.0; draws above the cumulative
	// sum must land on the first option, never fail.
	choices := []weightedChoice[string]{{"a", 0.1}, {"b", 0.1}}

	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		seen[pickWeighted(rng, choices)]++
	}
	assert.Equal(t, 1000, seen["a"]+seen["b"])
	assert.Greater(t, seen["a"], seen["b"], "drift falls back to the first option")
}

func TestSynthesizeRecords_ShapeIsDeterministic(t *testing.T) {
	repo := newMemoryRecordRepo()
	handler := newTestSynthesizer(repo, nil, nil)

	classNames := []string{"5 - B", "1-Intensif Putra", "6 - C"}
	result, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-07", // Saturday
		DocsPerClass: 3,
		ClassNames:   classNames,
		SubjectMode:  SubjectModePerDate,
	})
	require.NoError(t, err)

	// |C| * k records, every weekly date exactly once per class.
	assert.Equal(t, 9, result.SavedCount)
	assert.Equal(t, 9, result.TotalCount)
	require.Len(t, result.Records, 9)

	wantDates := []string{"2025-06-07", "2025-05-31", "2025-05-24"}
	perClass := make(map[string]map[string]int)
	for _, rec := range result.Records {
		if perClass[rec.ClassID] == nil {
			perClass[rec.ClassID] = make(map[string]int)
		}
		perClass[rec.ClassID][rec.Date.String()]++
	}
	require.Len(t, perClass, 3)
	for _, name := range classNames {
		for _, date := range wantDates {
			assert.Equal(t, 1, perClass[name][date], "class %s date %s", name, date)
		}
	}
}

func TestSynthesizeRecords_PerDateSubjectDerivation(t *testing.T) {
	repo := newMemoryRecordRepo()
	handler := newTestSynthesizer(repo, nil, nil)

	// Saturdays seven days apart all derive Konsultasi.
	result, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-07",
		DocsPerClass: 2,
		ClassNames:   []string{"5 - B"},
		SubjectMode:  SubjectModePerDate,
	})
	require.NoError(t, err)
	for _, rec := range result.Records {
		assert.Equal(t, record.SubjectKonsultasi, rec.Subject)
	}
}

func TestSynthesizeRecords_FixedSubjectMode(t *testing.T) {
	repo := newMemoryRecordRepo()
	handler := newTestSynthesizer(repo, nil, nil)

	result, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-07",
		DocsPerClass: 2,
		ClassNames:   []string{"5 - B"},
		SubjectMode:  SubjectModeFixed,
		FixedSubject: "Literasi",
	})
	require.NoError(t, err)

	for _, rec := range result.Records {
		assert.Equal(t, record.SubjectLiterasi, rec.Subject)
		for _, s := range rec.StudentScores {
			if s.Attendance.IsAttending() {
				assert.Equal(t, 10, s.LiteracyTotalQuestions)
				assert.Equal(t, s.LiteracyTotalQuestions-s.LiteracyCorrect, s.LiteracyWrong)
				assert.GreaterOrEqual(t, s.LiteracyCorrect, 6, "sampling is biased toward 6-10 correct")
				assert.NotEmpty(t, s.Notes)
			} else {
				assert.Equal(t, 0, s.LiteracyScore)
			}
		}
	}
}

func TestSynthesizeRecords_ScoresStayInRange(t *testing.T) {
	repo := newMemoryRecordRepo()
	handler := newTestSynthesizer(repo, nil, nil)

	result, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-03", // Tuesday, Tilawati
		DocsPerClass: 4,
		ClassNames:   []string{"4 - A", "6 - B"},
		SubjectMode:  SubjectModePerDate,
	})
	require.NoError(t, err)

	for _, rec := range result.Records {
		assert.Equal(t, record.SubjectTilawati, rec.Subject)
		for _, s := range rec.StudentScores {
			if s.Attendance.IsAttending() {
				assert.Contains(t, record.JilidOptions, s.Jilid)
				assert.NotEmpty(t, s.Page)
				for _, f := range record.ScaleFields {
					v := s.Field(f)
					assert.GreaterOrEqual(t, v, 1)
					assert.LessOrEqual(t, v, 4)
				}
				assert.GreaterOrEqual(t, s.Adab, 2, "adab distribution never draws below 2")
			} else {
				for _, f := range record.ScaleFields {
					assert.Equal(t, 0, s.Field(f), "non-attending students carry zeroes")
				}
			}
		}
	}
}

func TestSynthesizeRecords_ProgressReporting(t *testing.T) {
	repo := newMemoryRecordRepo()

	type tick struct {
		processed, total int
		label            string
	}
	var ticks []tick
	handler := newTestSynthesizer(repo, nil, func(processed, total int, label string) {
		ticks = append(ticks, tick{processed, total, label})
	})

	_, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-05",
		DocsPerClass: 2,
		ClassNames:   []string{"5 - B", "6 - C"},
		SubjectMode:  SubjectModePerDate,
	})
	require.NoError(t, err)

	require.Len(t, ticks, 4)
	for i, tk := range ticks {
		assert.Equal(t, i+1, tk.processed)
		assert.Equal(t, 4, tk.total)
	}
	assert.Equal(t, "5 - B", ticks[0].label)
	assert.Equal(t, "6 - C", ticks[3].label)
}

func TestSynthesizeRecords_AbortsOnStorageFailure(t *testing.T) {
	repo := newMemoryRecordRepo()
	repo.failAfter = 3
	publisher := &capturingPublisher{}
	handler := newTestSynthesizer(repo, publisher, nil)

	result, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-05",
		DocsPerClass: 3,
		ClassNames:   []string{"5 - B", "6 - C"},
		SubjectMode:  SubjectModePerDate,
	})

	// A single storage failure is fatal to the remaining batch.
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAborted)
	assert.ErrorIs(t, err, shared.ErrStorage)

	// The caller learns exactly how many records were durably saved;
	// those records stay visible, no rollback.
	require.NotNil(t, result)
	assert.Equal(t, 3, result.SavedCount)
	assert.Equal(t, 6, result.TotalCount)
	assert.Len(t, result.Records, 3)

	count, _ := repo.Count(context.Background())
	assert.Equal(t, 3, count)

	assert.True(t, containsType(publisher.typesSeen(), shared.EventSynthesisFailed))
}

func TestSynthesizeRecords_Validation(t *testing.T) {
	handler := newTestSynthesizer(newMemoryRecordRepo(), nil, nil)
	ctx := context.Background()

	valid := SynthesizeRecordsCommand{
		BaseDate:     "2025-06-05",
		DocsPerClass: 2,
		ClassNames:   []string{"5 - B"},
		SubjectMode:  SubjectModePerDate,
	}

	tooMany := valid
	tooMany.DocsPerClass = 5
	_, err := handler.Handle(ctx, tooMany)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	noClasses := valid
	noClasses.ClassNames = nil
	_, err = handler.Handle(ctx, noClasses)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	badMode := valid
	badMode.SubjectMode = "random"
	_, err = handler.Handle(ctx, badMode)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	unknownClass := valid
	unknownClass.ClassNames = []string{"9 - Z"}
	_, err = handler.Handle(ctx, unknownClass)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSynthesizeRecords_EmitsCompletionEvent(t *testing.T) {
	publisher := &capturingPublisher{}
	handler := newTestSynthesizer(newMemoryRecordRepo(), publisher, nil)

	result, err := handler.Handle(context.Background(), SynthesizeRecordsCommand{
		BaseDate:     "2025-06-05",
		DocsPerClass: 1,
		ClassNames:   []string{"5 - B"},
		SubjectMode:  SubjectModePerDate,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.True(t, containsType(publisher.typesSeen(), shared.EventSynthesisCompleted))
}
