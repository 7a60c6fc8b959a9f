package record

import (
	"context"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the persistence contract for daily records.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the persistence gateway for daily records.
//
// Save has upsert semantics: re-saving an existing id replaces the stored
// record instead of duplicating it. No operation spans more than one
// record; bulk callers issue one Save per record and must tolerate partial
// completion.
type Repository interface {
	// Save upserts a record by id. Storage errors are propagated to the
	// caller, never swallowed.
	Save(ctx context.Context, rec *DailyRecord) error

	// GetByID returns one record by id.
	// Returns shared.ErrRecordNotFound if the record does not exist.
	GetByID(ctx context.Context, id string) (*DailyRecord, error)

	// ListAll returns every stored record, unordered. Callers sort;
	// by convention displays use descending date order.
	ListAll(ctx context.Context) ([]*DailyRecord, error)

	// ListByClass returns records for one class (by display name).
	// Must yield the same set as filtering ListAll by ClassID.
	ListByClass(ctx context.Context, classID string) ([]*DailyRecord, error)

	// ListByDate returns records for one calendar date.
	ListByDate(ctx context.Context, date string) ([]*DailyRecord, error)

	// Delete removes one record. Administrative use only, no cascades.
	// Returns shared.ErrRecordNotFound if the record does not exist.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)
}

// Cache holds read-side copies of record collections.
type Cache interface {
	// GetAll retrieves the cached full record list.
	GetAll(ctx context.Context) ([]*DailyRecord, error)

	// SetAll caches the full record list.
	SetAll(ctx context.Context, records []*DailyRecord, ttl time.Duration) error

	// GetByClass retrieves the cached per-class list.
	GetByClass(ctx context.Context, classID string) ([]*DailyRecord, error)

	// SetByClass caches the per-class list.
	SetByClass(ctx context.Context, classID string, records []*DailyRecord, ttl time.Duration) error

	// Invalidate drops all cached record collections. Called after any
	// write so reads never serve a stale list.
	Invalidate(ctx context.Context) error
}

// SortByDateDesc orders records newest-first in place, the conventional
// display order. Same-date records fall back to creation time.
func SortByDateDesc(records []*DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[j].Date.Before(records[i].Date)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
