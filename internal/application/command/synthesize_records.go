package command

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNTHESIZE RECORDS COMMAND
// Bulk-generates plausible historical records for selected classes, going
// back in 7-day steps from a base date. Used to fill the store for
// demonstrations without any per-student input.
// ══════════════════════════════════════════════════════════════════════════════

// SubjectMode controls how the subject is chosen per generated record.
type SubjectMode string

const (
	// SubjectModeFixed uses one subject for the whole batch.
	SubjectModeFixed SubjectMode = "fixed"
	// SubjectModePerDate derives the subject from each date's weekday.
	SubjectModePerDate SubjectMode = "per-date"
)

// Bounds on the batch size.
const (
	MinDocsPerClass = 1
	MaxDocsPerClass = 4
)

// SynthesizeRecordsCommand contains the bulk-generation parameters.
type SynthesizeRecordsCommand struct {
	// BaseDate is the most recent generated date, YYYY-MM-DD. Earlier
	// records step back one week at a time.
	BaseDate string

	// DocsPerClass is the number of weekly records per class (1-4).
	DocsPerClass int

	// ClassNames selects the classes to generate for.
	ClassNames []string

	// SubjectMode picks fixed-subject or per-date derivation.
	SubjectMode SubjectMode

	// FixedSubject is the subject used when SubjectMode is fixed. When
	// empty, the base date's weekday subject is used for the whole batch.
	FixedSubject string

	// TeacherName is stamped on every generated record.
	TeacherName string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SynthesizeRecordsCommand) Validate() error {
	if !record.IsValidDate(c.BaseDate) {
		return shared.ErrInvalidRecordDate
	}
	if c.DocsPerClass < MinDocsPerClass || c.DocsPerClass > MaxDocsPerClass {
		return shared.ErrInvalidDocsPerClass
	}
	if len(c.ClassNames) == 0 {
		return shared.ErrNoClassesSelected
	}
	switch c.SubjectMode {
	case SubjectModeFixed, SubjectModePerDate:
	default:
		return shared.NewDomainError("synthesis", "Validate", shared.ErrInvalidInput, "subject mode must be fixed or per-date")
	}
	if c.FixedSubject != "" && !record.IsKnownSubject(c.FixedSubject) {
		return shared.ErrUnknownSubject
	}
	return nil
}

// ProgressFunc receives progress after every persisted record.
type ProgressFunc func(processed, total int, currentLabel string)

// SynthesizeRecordsResult contains the outcome of the bulk run.
type SynthesizeRecordsResult struct {
	// RunID identifies this generation run.
	RunID string

	// Records holds the newly created records in creation order. On an
	// aborted run it holds only the records persisted before the failure.
	Records []*record.DailyRecord

	// SavedCount is the number of durably persisted records. Partial
	// batches stay visible on the next load, so this is reported even on
	// failure.
	SavedCount int

	// TotalCount is len(ClassNames) * DocsPerClass.
	TotalCount int

	Duration    time.Duration
	StartedAt   time.Time
	CompletedAt time.Time

	// Events contains domain events generated by the run.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHTED RANDOM SAMPLING
// ══════════════════════════════════════════════════════════════════════════════

// weightedChoice pairs a value with its sampling weight.
type weightedChoice[T any] struct {
	value  T
	weight float64
}

// pickWeighted draws from a discrete distribution: accumulate weights in
// list order and return the first value whose cumulative weight reaches a
// uniform draw. Floating-point drift can leave the draw above the final
// cumulative sum; in that case the first option wins rather than failing.
func pickWeighted[T any](rng *rand.Rand, choices []weightedChoice[T]) T {
	r := rng.Float64()
	cum := 0.0
	for _, c := range choices {
		cum += c.weight
		if r <= cum {
			return c.value
		}
	}
	return choices[0].value
}

// Sampling distributions. The exact splits are tunable constants, fixed
// here and kept consistent across the whole implementation.
var (
	attendanceWeights = []weightedChoice[record.Attendance]{
		{record.AttendancePresent, 0.92},
		{record.AttendanceLate, 0.04},
		{record.AttendanceSick, 0.02},
		{record.AttendancePermission, 0.01},
		{record.AttendanceAbsent, 0.01},
	}

	// Generic 1-4 fields, biased toward 3-4.
	scaleWeights = []weightedChoice[int]{
		{4, 0.35},
		{3, 0.50},
		{2, 0.10},
		{1, 0.05},
	}

	// Adab runs noticeably higher than the other fields.
	adabWeights = []weightedChoice[int]{
		{4, 0.80},
		{3, 0.15},
		{2, 0.05},
	}

	// Correct answers out of 10, biased toward 7-10.
	literacyCorrectWeights = []weightedChoice[int]{
		{10, 0.30},
		{9, 0.30},
		{8, 0.20},
		{7, 0.10},
		{6, 0.10},
	}
)

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SynthesizeRecordsHandler handles the SynthesizeRecordsCommand.
type SynthesizeRecordsHandler struct {
	recordRepo     record.Repository
	registry       roster.Registry
	eventPublisher shared.EventPublisher

	rng        *rand.Rand
	progress   ProgressFunc
	yieldDelay time.Duration
}

// SynthesizeRecordsHandlerConfig contains configuration for the handler.
type SynthesizeRecordsHandlerConfig struct {
	// Rand is the random source. Defaults to a time-seeded source;
	// tests inject a fixed seed.
	Rand *rand.Rand

	// Progress is called after every persisted record.
	Progress ProgressFunc

	// YieldDelay is the cooperative pause between records so callers can
	// repaint progress. The loop also checks context cancellation here.
	YieldDelay time.Duration
}

// DefaultSynthesizeRecordsHandlerConfig returns default configuration.
func DefaultSynthesizeRecordsHandlerConfig() SynthesizeRecordsHandlerConfig {
	return SynthesizeRecordsHandlerConfig{
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		YieldDelay: 10 * time.Millisecond,
	}
}

// NewSynthesizeRecordsHandler creates a new SynthesizeRecordsHandler.
func NewSynthesizeRecordsHandler(
	recordRepo record.Repository,
	registry roster.Registry,
	eventPublisher shared.EventPublisher,
	config SynthesizeRecordsHandlerConfig,
) *SynthesizeRecordsHandler {
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SynthesizeRecordsHandler{
		recordRepo:     recordRepo,
		registry:       registry,
		eventPublisher: eventPublisher,
		rng:            config.Rand,
		progress:       config.Progress,
		yieldDelay:     config.YieldDelay,
	}
}

// Handle executes the bulk generation.
//
// Records are persisted one save at a time; there is no batch transaction.
// A storage failure aborts the remaining batch immediately - records are
// never silently skipped - and the result reports how many records were
// durably saved before the failure. Already-saved records are not rolled
// back; the caller will see them on the next load.
func (h *SynthesizeRecordsHandler) Handle(ctx context.Context, cmd SynthesizeRecordsCommand) (*SynthesizeRecordsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("synthesize_records: validation failed: %w", err)
	}

	classes, err := h.resolveClasses(ctx, cmd.ClassNames)
	if err != nil {
		return nil, fmt.Errorf("synthesize_records: %w", err)
	}

	baseDate, _ := shared.DateString(cmd.BaseDate).Time()
	fixedSubject := record.Subject(cmd.FixedSubject)
	if cmd.SubjectMode == SubjectModeFixed && cmd.FixedSubject == "" {
		fixedSubject = record.SubjectForDate(baseDate)
	}

	result := &SynthesizeRecordsResult{
		RunID:      uuid.NewString(),
		TotalCount: len(classes) * cmd.DocsPerClass,
		Records:    make([]*record.DailyRecord, 0, len(classes)*cmd.DocsPerClass),
		StartedAt:  time.Now().UTC(),
	}

	for _, class := range classes {
		for j := 0; j < cmd.DocsPerClass; j++ {
			specificDate := baseDate.AddDate(0, 0, -7*j)

			subject := fixedSubject
			if cmd.SubjectMode == SubjectModePerDate {
				subject = record.SubjectForDate(specificDate)
			}

			rec, err := h.synthesizeRecord(class, specificDate, subject, cmd.TeacherName)
			if err != nil {
				return h.abort(ctx, result, cmd, err)
			}

			if err := h.recordRepo.Save(ctx, rec); err != nil {
				return h.abort(ctx, result, cmd, fmt.Errorf("failed to save record for %s: %w", class.Name, err))
			}

			result.Records = append(result.Records, rec)
			result.SavedCount++

			if h.progress != nil {
				h.progress(result.SavedCount, result.TotalCount, class.Name)
			}

			// Cooperative yield between records so a host UI can repaint
			// and cancellation is observed. Saved records stay durable on
			// cancellation; there is no rollback.
			if err := h.yield(ctx); err != nil {
				return h.abort(ctx, result, cmd, err)
			}
		}
	}

	result.CompletedAt = time.Now().UTC()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	event := shared.NewSynthesisCompletedEvent(result.RunID, result.SavedCount, len(classes), cmd.DocsPerClass)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}

// resolveClasses loads and checks every selected class before any record
// is generated, so an unknown class never leaves a half-written batch.
func (h *SynthesizeRecordsHandler) resolveClasses(ctx context.Context, names []string) ([]*roster.ClassRoster, error) {
	classes := make([]*roster.ClassRoster, 0, len(names))
	for _, name := range names {
		class, err := h.registry.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if !class.IsScorable() {
			return nil, shared.ErrEmptyRoster
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// abort finalizes a failed run: the error is wrapped with the saved count
// so callers can tell the user exactly how much real data the partial
// batch left behind.
func (h *SynthesizeRecordsHandler) abort(ctx context.Context, result *SynthesizeRecordsResult, cmd SynthesizeRecordsCommand, cause error) (*SynthesizeRecordsResult, error) {
	result.CompletedAt = time.Now().UTC()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	event := shared.NewSynthesisFailedEvent(result.RunID, result.SavedCount, result.TotalCount, cause.Error())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)
	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(event)
	}

	return result, shared.WrapError("synthesis", "Generate", shared.ErrAborted,
		fmt.Sprintf("aborted after %d/%d records", result.SavedCount, result.TotalCount), cause)
}

func (h *SynthesizeRecordsHandler) yield(ctx context.Context) error {
	if h.yieldDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(h.yieldDelay):
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD SYNTHESIS
// ══════════════════════════════════════════════════════════════════════════════

// synthesizeRecord generates one plausible record for a class and date.
func (h *SynthesizeRecordsHandler) synthesizeRecord(class *roster.ClassRoster, date time.Time, subject record.Subject, teacherName string) (*record.DailyRecord, error) {
	if teacherName == "" {
		teacherName = class.HomeroomTeacher
	}

	scores := make([]record.StudentScore, 0, class.Size())
	for _, st := range class.Students {
		scores = append(scores, h.synthesizeScore(st, subject))
	}

	return record.NewRecord(record.NewRecordParams{
		ID:              uuid.NewString(),
		Date:            shared.DateOf(date),
		ClassID:         class.Name,
		TeacherName:     teacherName,
		Subject:         subject,
		StudentScores:   scores,
		TeacherAnalysis: "Kegiatan Jam Ke-0 berjalan lancar dan tertib.",
		Recommendations: record.Recommendations{
			SpecialAttention:  "Pendampingan siswa dengan capaian rendah.",
			MethodImprovement: "Variasi metode agar siswa lebih aktif.",
			NextWeekPlan:      "Melanjutkan materi sesuai jadwal.",
		},
	})
}

// synthesizeScore draws one student's entry from the weighted
// distributions. Non-attending students keep zeroed performance fields.
func (h *SynthesizeRecordsHandler) synthesizeScore(st roster.Student, subject record.Subject) record.StudentScore {
	score := record.StudentScore{
		StudentID:   st.ID,
		StudentName: st.Name,
		Attendance:  pickWeighted(h.rng, attendanceWeights),
	}

	if !score.Attendance.IsAttending() {
		score.Notes = fmt.Sprintf("Tidak hadir (%s).", score.Attendance.Label())
		if subject == record.SubjectLiterasi {
			score.LiteracyTotalQuestions = 10
			score.LiteracyWrong = 10
		}
		if subject == record.SubjectTilawati {
			score.Jilid = record.DefaultJilid
		}
		return score
	}

	score.ActiveInvolvement = pickWeighted(h.rng, scaleWeights)
	score.Fluency = pickWeighted(h.rng, scaleWeights)
	score.Tajwid = pickWeighted(h.rng, scaleWeights)
	score.Adab = pickWeighted(h.rng, adabWeights)

	switch subject {
	case record.SubjectTilawati:
		score.Jilid = record.JilidOptions[h.rng.Intn(len(record.JilidOptions))]
		score.Page = fmt.Sprintf("%d", 1+h.rng.Intn(40))

	case record.SubjectLiterasi:
		correct := pickWeighted(h.rng, literacyCorrectWeights)
		var err error
		score, err = record.UpdateLiteracyTotal(score, 10)
		if err == nil {
			score, _ = record.UpdateLiteracyCorrect(score, correct)
		}

	case record.SubjectKonsultasi:
		// Flag a minor-infraction topic when a threshold field came out
		// low; otherwise the session was uneventful.
		if record.ClassifyPerformance(score, record.SubjectKonsultasi) == record.PerformanceLow {
			topics := record.ConsultationTopics[1:]
			score.Notes = fmt.Sprintf("Perlu tindak lanjut: %s.", topics[h.rng.Intn(len(topics))])
			return score
		}
		score.Notes = record.ConsultationTopics[0]
		return score
	}

	score.Notes = h.pickNote(score, subject)
	return score
}

// pickNote draws a random note from the pool matching the student's
// performance bucket.
func (h *SynthesizeRecordsHandler) pickNote(score record.StudentScore, subject record.Subject) string {
	pool := record.SuggestNotes(score, subject)
	return pool[h.rng.Intn(len(pool))]
}
