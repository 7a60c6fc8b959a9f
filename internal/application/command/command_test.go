package command

import (
	"context"
	"strings"
	"sync"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────
// In-memory fakes shared by the command tests.
// ─────────────────────────────────────────────────────────────────────────

type memoryRecordRepo struct {
	mu      sync.Mutex
	records map[string]*record.DailyRecord
	order   []string

	// failAfter makes Save fail once the store holds this many records.
	// Zero disables the failure.
	failAfter int
}

func newMemoryRecordRepo() *memoryRecordRepo {
	return &memoryRecordRepo{records: make(map[string]*record.DailyRecord)}
}

func (m *memoryRecordRepo) Save(_ context.Context, rec *record.DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && len(m.records) >= m.failAfter {
		return shared.WrapError("record", "Save", shared.ErrStorage, "quota exceeded", nil)
	}
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

type memoryRegistry struct {
	mu     sync.Mutex
	custom []*roster.ClassRoster
}

func (m *memoryRegistry) ListClasses(_ context.Context) ([]*roster.ClassRoster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(roster.SeedClasses(), m.custom...), nil
}

func (m *memoryRegistry) GetByName(ctx context.Context, name string) (*roster.ClassRoster, error) {
	classes, _ := m.ListClasses(ctx)
	for _, c := range classes {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrClassNotFound
}

func (m *memoryRegistry) Register(ctx context.Context, class *roster.ClassRoster) error {
	if existing, err := m.GetByName(ctx, class.Name); err == nil && existing != nil {
		return shared.ErrClassAlreadyExists
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custom = append(m.custom, class.Clone())
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, string(e.EventType()))
	}
	return types
}

func containsType(types []string, want shared.EventType) bool {
	for _, t := range types {
		if strings.EqualFold(t, string(want)) {
			return true
		}
	}
	return false
}
