// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST RECORDS QUERY
// Returns stored records, newest first, optionally filtered by class or
// date. Reads go through the cache when one is wired.
// ══════════════════════════════════════════════════════════════════════════════

// ListRecordsQuery contains the list parameters.
type ListRecordsQuery struct {
	// ClassName filters by class display name. Empty means all classes.
	ClassName string

	// Date filters by one calendar date, YYYY-MM-DD. Empty means all.
	Date string

	// Limit caps the number of returned records. Zero means no cap.
	Limit int
}

// Validate validates the query.
func (q ListRecordsQuery) Validate() error {
	if q.Date != "" && !record.IsValidDate(q.Date) {
		return shared.ErrInvalidRecordDate
	}
	if q.Limit < 0 {
		return shared.NewDomainError("query", "ListRecords", shared.ErrNegativeValue, "limit cannot be negative")
	}
	return nil
}

// ListRecordsResult contains the result of the list query.
type ListRecordsResult struct {
	Records     []*record.DailyRecord `json:"records"`
	TotalCount  int                   `json:"total_count"`
	FromCache   bool                  `json:"from_cache"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// ListRecordsHandler handles the ListRecordsQuery.
type ListRecordsHandler struct {
	recordRepo record.Repository
	cache      record.Cache
	cacheTTL   time.Duration
}

// DefaultListCacheTTL is how long cached record lists stay fresh. Writes
// invalidate the cache anyway; the TTL only bounds staleness after missed
// invalidations.
const DefaultListCacheTTL = 5 * time.Minute

// NewListRecordsHandler creates a new ListRecordsHandler. The cache is
// optional; pass nil to read straight from the repository.
func NewListRecordsHandler(recordRepo record.Repository, cache record.Cache) *ListRecordsHandler {
	return &ListRecordsHandler{
		recordRepo: recordRepo,
		cache:      cache,
		cacheTTL:   DefaultListCacheTTL,
	}
}

// Handle executes the list records query.
func (h *ListRecordsHandler) Handle(ctx context.Context, query ListRecordsQuery) (*ListRecordsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	records, fromCache, err := h.load(ctx, query)
	if err != nil {
		return nil, shared.WrapError("query", "ListRecords", shared.ErrStorage, "failed to load records", err)
	}

	if query.Date != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Date.String() == query.Date {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	record.SortByDateDesc(records)
	if query.Limit > 0 && len(records) > query.Limit {
		records = records[:query.Limit]
	}

	return &ListRecordsResult{
		Records:     records,
		TotalCount:  len(records),
		FromCache:   fromCache,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// load fetches the record set for the query scope, cache first.
func (h *ListRecordsHandler) load(ctx context.Context, query ListRecordsQuery) ([]*record.DailyRecord, bool, error) {
	if query.ClassName != "" {
		if h.cache != nil {
			if cached, err := h.cache.GetByClass(ctx, query.ClassName); err == nil {
				return cached, true, nil
			}
		}
		records, err := h.recordRepo.ListByClass(ctx, query.ClassName)
		if err != nil {
			return nil, false, err
		}
		if h.cache != nil {
			_ = h.cache.SetByClass(ctx, query.ClassName, records, h.cacheTTL)
		}
		return records, false, nil
	}

	if h.cache != nil {
		if cached, err := h.cache.GetAll(ctx); err == nil {
			return cached, true, nil
		}
	}
	records, err := h.recordRepo.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	if h.cache != nil {
		_ = h.cache.SetAll(ctx, records, h.cacheTTL)
	}
	return records, false, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET RECORD QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetRecordQuery identifies one record.
type GetRecordQuery struct {
	RecordID string
}

// GetRecordHandler handles the GetRecordQuery.
type GetRecordHandler struct {
	recordRepo record.Repository
}

// NewGetRecordHandler creates a new GetRecordHandler.
func NewGetRecordHandler(recordRepo record.Repository) *GetRecordHandler {
	return &GetRecordHandler{recordRepo: recordRepo}
}

// Handle executes the get record query.
func (h *GetRecordHandler) Handle(ctx context.Context, query GetRecordQuery) (*record.DailyRecord, error) {
	if _, err := shared.NewRecordID(query.RecordID); err != nil {
		return nil, shared.ErrInvalidRecordID
	}
	return h.recordRepo.GetByID(ctx, query.RecordID)
}
