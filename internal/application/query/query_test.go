package query

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────
// In-memory fakes shared by the query tests.
// ─────────────────────────────────────────────────────────────────────────

type memoryRecordRepo struct {
	mu      sync.Mutex
	records map[string]*record.DailyRecord
	order   []string
	reads   int
}

func newMemoryRecordRepo() *memoryRecordRepo {
	return &memoryRecordRepo{records: make(map[string]*record.DailyRecord)}
}

func (m *memoryRecordRepo) Save(_ context.Context, rec *record.DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *memoryRecordRepo) GetByID(_ context.Context, id string) (*record.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (m *memoryRecordRepo) ListAll(_ context.Context) ([]*record.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	out := make([]*record.DailyRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Clone())
	}
	return out, nil
}

func (m *memoryRecordRepo) ListByClass(ctx context.Context, classID string) ([]*record.DailyRecord, error) {
	all, _ := m.ListAll(ctx)
	out := make([]*record.DailyRecord, 0)
	for _, rec := range all {
		if rec.ClassID == classID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRecordRepo) ListByDate(ctx context.Context, date string) ([]*record.DailyRecord, error) {
	all, _ := m.ListAll(ctx)
	out := make([]*record.DailyRecord, 0)
	for _, rec := range all {
		if rec.Date.String() == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRecordRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return shared.ErrRecordNotFound
	}
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryRecordRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

type memoryCache struct {
	mu      sync.Mutex
	all     []*record.DailyRecord
	byClass map[string][]*record.DailyRecord
}

func newMemoryCache() *memoryCache {
	return &memoryCache{byClass: make(map[string][]*record.DailyRecord)}
}

func (c *memoryCache) GetAll(_ context.Context) ([]*record.DailyRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.all == nil {
		return nil, shared.ErrNotFound
	}
	return c.all, nil
}

func (c *memoryCache) SetAll(_ context.Context, records []*record.DailyRecord, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = records
	return nil
}

func (c *memoryCache) GetByClass(_ context.Context, className string) ([]*record.DailyRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, ok := c.byClass[className]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return records, nil
}

func (c *memoryCache) SetByClass(_ context.Context, className string, records []*record.DailyRecord, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byClass[className] = records
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = nil
	c.byClass = make(map[string][]*record.DailyRecord)
	return nil
}

// testRecord builds a valid record with two attending students.
func testRecord(date, className string, subject record.Subject) *record.DailyRecord {
	students := []record.StudentRef{
		{ID: "T-1", Name: "Ahmad Fauzi"},
		{ID: "T-2", Name: "Budi Hartono"},
	}
	rec, err := record.NewRecord(record.NewRecordParams{
		ID:            uuid.NewString(),
		Date:          shared.DateString(date),
		ClassID:       className,
		TeacherName:   "Ust. Hasan",
		Subject:       subject,
		StudentScores: record.InitializeScores(students, subject),
	})
	if err != nil {
		panic(err)
	}
	return rec
}
