package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

func TestListRecordsHandler_NewestFirst(t *testing.T) {
	repo := newMemoryRecordRepo()
	ctx := context.Background()

	// Inserted out of order on purpose.
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-03", "5 - B", record.SubjectTilawati)))
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-07", "5 - B", record.SubjectKonsultasi)))
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-05", "6 - C", record.SubjectLiterasi)))

	handler := NewListRecordsHandler(repo, nil)
	result, err := handler.Handle(ctx, ListRecordsQuery{})
	require.NoError(t, err)

	require.Equal(t, 3, result.TotalCount)
	assert.Equal(t, "2025-06-07", result.Records[0].Date.String())
	assert.Equal(t, "2025-06-05", result.Records[1].Date.String())
	assert.Equal(t, "2025-06-03", result.Records[2].Date.String())
	assert.False(t, result.FromCache)
}

func TestListRecordsHandler_Filters(t *testing.T) {
	repo := newMemoryRecordRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)))
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-05", "6 - C", record.SubjectLiterasi)))
	require.NoError(t, repo.Save(ctx, testRecord("2025-06-06", "5 - B", record.SubjectIbadah)))

	handler := NewListRecordsHandler(repo, nil)

	byClass, err := handler.Handle(ctx, ListRecordsQuery{ClassName: "5 - B"})
	require.NoError(t, err)
	assert.Equal(t, 2, byClass.TotalCount)
	for _, rec := range byClass.Records {
		assert.Equal(t, "5 - B", rec.ClassID)
	}

	byDate, err := handler.Handle(ctx, ListRecordsQuery{Date: "2025-06-05"})
	require.NoError(t, err)
	assert.Equal(t, 2, byDate.TotalCount)

	limited, err := handler.Handle(ctx, ListRecordsQuery{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 1, limited.TotalCount)
	assert.Equal(t, "2025-06-06", limited.Records[0].Date.String())
}

func TestListRecordsHandler_CacheRoundTrip(t *testing.T) {
	repo := newMemoryRecordRepo()
	cache := newMemoryCache()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)))

	handler := NewListRecordsHandler(repo, cache)

	first, err := handler.Handle(ctx, ListRecordsQuery{})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := handler.Handle(ctx, ListRecordsQuery{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, repo.reads, "second read is served from cache")

	// Per-class scope keeps its own cache entry.
	byClass, err := handler.Handle(ctx, ListRecordsQuery{ClassName: "5 - B"})
	require.NoError(t, err)
	assert.False(t, byClass.FromCache)
	byClassAgain, err := handler.Handle(ctx, ListRecordsQuery{ClassName: "5 - B"})
	require.NoError(t, err)
	assert.True(t, byClassAgain.FromCache)
}

func TestListRecordsHandler_Validation(t *testing.T) {
	handler := NewListRecordsHandler(newMemoryRecordRepo(), nil)
	ctx := context.Background()

	_, err := handler.Handle(ctx, ListRecordsQuery{Date: "05-06-2025"})
	assert.ErrorIs(t, err, shared.ErrInvalidDate)

	_, err = handler.Handle(ctx, ListRecordsQuery{Limit: -1})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}

func TestGetRecordHandler(t *testing.T) {
	repo := newMemoryRecordRepo()
	ctx := context.Background()

	rec := testRecord("2025-06-05", "5 - B", record.SubjectLiterasi)
	require.NoError(t, repo.Save(ctx, rec))

	handler := NewGetRecordHandler(repo)

	got, err := handler.Handle(ctx, GetRecordQuery{RecordID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = handler.Handle(ctx, GetRecordQuery{RecordID: "not-a-uuid"})
	assert.ErrorIs(t, err, shared.ErrInvalidRecordID)
}
