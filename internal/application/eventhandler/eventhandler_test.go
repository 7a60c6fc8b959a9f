package eventhandler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// TEST DOUBLES
// ═══════════════════════════════════════════════════════════════════════════

type stubRepo struct {
	records map[string]*record.DailyRecord
	saves   int
	saveErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[string]*record.DailyRecord)}
}

func (r *stubRepo) Save(ctx context.Context, rec *record.DailyRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records[rec.ID] = rec.Clone()
	r.saves++
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id string) (*record.DailyRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (r *stubRepo) ListAll(ctx context.Context) ([]*record.DailyRecord, error) { return nil, nil }
func (r *stubRepo) ListByClass(ctx context.Context, classID string) ([]*record.DailyRecord, error) {
	return nil, nil
}
func (r *stubRepo) ListByDate(ctx context.Context, date string) ([]*record.DailyRecord, error) {
	return nil, nil
}
func (r *stubRepo) Delete(ctx context.Context, id string) error { return nil }
func (r *stubRepo) Count(ctx context.Context) (int, error)      { return len(r.records), nil }

type stubCache struct {
	invalidations int
}

func (c *stubCache) GetAll(ctx context.Context) ([]*record.DailyRecord, error) {
	return nil, shared.ErrNotFound
}
func (c *stubCache) SetAll(ctx context.Context, records []*record.DailyRecord, ttl time.Duration) error {
	return nil
}
func (c *stubCache) GetByClass(ctx context.Context, classID string) ([]*record.DailyRecord, error) {
	return nil, shared.ErrNotFound
}
func (c *stubCache) SetByClass(ctx context.Context, classID string, records []*record.DailyRecord, ttl time.Duration) error {
	return nil
}
func (c *stubCache) Invalidate(ctx context.Context) error {
	c.invalidations++
	return nil
}

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, req record.NarrativeRequest) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

type stubPublisher struct {
	events []shared.Event
}

func (p *stubPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func storedRecord(t *testing.T, repo *stubRepo) *record.DailyRecord {
	t.Helper()

	rec, err := record.NewRecord(record.NewRecordParams{
		ID:      uuid.NewString(),
		Date:    shared.DateString("2025-06-03"),
		ClassID: "5 - B",
		Subject: record.SubjectUmum,
		StudentScores: []record.StudentScore{
			{StudentID: "T-1", StudentName: "Ahmad Fauzi", Attendance: record.AttendancePresent},
		},
	})
	require.NoError(t, err)
	repo.records[rec.ID] = rec
	return rec
}

// ═══════════════════════════════════════════════════════════════════════════
// ON RECORD SAVED
// ═══════════════════════════════════════════════════════════════════════════

func TestOnRecordSaved_AttachesNarrative(t *testing.T) {
	repo := newStubRepo()
	cache := &stubCache{}
	gen := &stubGenerator{text: "Hari ini kelas 5 - B belajar dengan baik."}
	bus := &stubPublisher{}

	rec := storedRecord(t, repo)
	handler := NewOnRecordSavedHandler(repo, cache, gen, bus, nil, DefaultRecordSavedConfig())

	event := shared.NewRecordSavedEvent(rec.ID, rec.ClassID, string(rec.Date), string(rec.Subject), 1, false)
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, gen.text, repo.records[rec.ID].AIAnalysis)
	// Invalidated once on save and again after the narrative write.
	assert.Equal(t, 2, cache.invalidations)

	require.Len(t, bus.events, 1)
	assert.Equal(t, shared.EventNarrativeGenerated, bus.events[0].EventType())
	assert.Equal(t, rec.ID, bus.events[0].AggregateID())
}

func TestOnRecordSaved_SkipsSynthesizedRecords(t *testing.T) {
	repo := newStubRepo()
	cache := &stubCache{}
	gen := &stubGenerator{text: "never used"}

	rec := storedRecord(t, repo)
	handler := NewOnRecordSavedHandler(repo, cache, gen, nil, nil, DefaultRecordSavedConfig())

	event := shared.NewRecordSavedEvent(rec.ID, rec.ClassID, string(rec.Date), string(rec.Subject), 1, true)
	require.NoError(t, handler.Handle(event))

	assert.Zero(t, gen.calls)
	assert.Empty(t, repo.records[rec.ID].AIAnalysis)
	assert.Equal(t, 1, cache.invalidations)
}

func TestOnRecordSaved_NarrativeGateSkipsClass(t *testing.T) {
	repo := newStubRepo()
	cache := &stubCache{}
	gen := &stubGenerator{text: "never used"}

	rec := storedRecord(t, repo)
	cfg := DefaultRecordSavedConfig()
	cfg.NarrativeGate = func(className string) bool { return className != rec.ClassID }

	handler := NewOnRecordSavedHandler(repo, cache, gen, nil, nil, cfg)
	event := shared.NewRecordSavedEvent(rec.ID, rec.ClassID, string(rec.Date), string(rec.Subject), 1, false)
	require.NoError(t, handler.Handle(event))

	assert.Zero(t, gen.calls)
	assert.Empty(t, repo.records[rec.ID].AIAnalysis)
	assert.Equal(t, 1, cache.invalidations)
}

func TestOnRecordSaved_KeepsExistingNarrative(t *testing.T) {
	repo := newStubRepo()
	gen := &stubGenerator{text: "new text"}

	rec := storedRecord(t, repo)
	repo.records[rec.ID].AIAnalysis = "narasi lama"

	handler := NewOnRecordSavedHandler(repo, &stubCache{}, gen, nil, nil, DefaultRecordSavedConfig())
	event := shared.NewRecordSavedEvent(rec.ID, rec.ClassID, string(rec.Date), string(rec.Subject), 1, false)
	require.NoError(t, handler.Handle(event))

	assert.Zero(t, gen.calls)
	assert.Equal(t, "narasi lama", repo.records[rec.ID].AIAnalysis)
}

func TestOnRecordSaved_GeneratorFailureLeavesRecordIntact(t *testing.T) {
	repo := newStubRepo()
	gen := &stubGenerator{err: shared.ErrNarrativeUnavailable}

	rec := storedRecord(t, repo)
	handler := NewOnRecordSavedHandler(repo, &stubCache{}, gen, nil, nil, DefaultRecordSavedConfig())

	event := shared.NewRecordSavedEvent(rec.ID, rec.ClassID, string(rec.Date), string(rec.Subject), 1, false)
	err := handler.Handle(event)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	assert.Empty(t, repo.records[rec.ID].AIAnalysis)
	assert.Zero(t, repo.saves)
}

func TestOnRecordSaved_MissingRecordIsNotAnError(t *testing.T) {
	repo := newStubRepo()
	gen := &stubGenerator{text: "unused"}

	handler := NewOnRecordSavedHandler(repo, &stubCache{}, gen, nil, nil, DefaultRecordSavedConfig())
	event := shared.NewRecordSavedEvent(uuid.NewString(), "5 - B", "2025-06-03", "Umum", 1, false)

	require.NoError(t, handler.Handle(event))
	assert.Zero(t, repo.saves)
}

func TestOnRecordSaved_IgnoresOtherEventTypes(t *testing.T) {
	gen := &stubGenerator{}
	handler := NewOnRecordSavedHandler(newStubRepo(), &stubCache{}, gen, nil, nil, DefaultRecordSavedConfig())

	event := shared.NewRecordDeletedEvent(uuid.NewString(), "5 - B")
	require.NoError(t, handler.Handle(event))
	assert.Zero(t, gen.calls)
}

// ═══════════════════════════════════════════════════════════════════════════
// ON RECORD DELETED
// ═══════════════════════════════════════════════════════════════════════════

func TestOnRecordDeleted_InvalidatesCache(t *testing.T) {
	cache := &stubCache{}
	handler := NewOnRecordDeletedHandler(cache, nil)

	event := shared.NewRecordDeletedEvent(uuid.NewString(), "5 - B")
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, 1, cache.invalidations)
}

func TestOnRecordDeleted_NilCacheIsNoop(t *testing.T) {
	handler := NewOnRecordDeletedHandler(nil, nil)
	event := shared.NewRecordDeletedEvent(uuid.NewString(), "5 - B")
	require.NoError(t, handler.Handle(event))
}

func TestOnRecordDeleted_IgnoresOtherEventTypes(t *testing.T) {
	cache := &stubCache{}
	handler := NewOnRecordDeletedHandler(cache, nil)

	event := shared.NewRecordSavedEvent(uuid.NewString(), "5 - B", "2025-06-03", "Umum", 1, false)
	require.NoError(t, handler.Handle(event))
	assert.Equal(t, 0, cache.invalidations)
}
