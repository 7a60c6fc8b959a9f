package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/application/command"
	"github.com/pantau-kelas/monitoring-hub/internal/application/query"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/persistence/projections"
	"github.com/pantau-kelas/monitoring-hub/internal/interface/http/handlers"
)

// ═══════════════════════════════════════════════════════════════════════════
// TEST DOUBLES
// ═══════════════════════════════════════════════════════════════════════════

type memRepo struct {
	mu      sync.Mutex
	records map[string]*record.DailyRecord
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]*record.DailyRecord)}
}

func (r *memRepo) Save(ctx context.Context, rec *record.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec.Clone()
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*record.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (r *memRepo) ListAll(ctx context.Context) ([]*record.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*record.DailyRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (r *memRepo) ListByClass(ctx context.Context, classID string) ([]*record.DailyRecord, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, rec := range all {
		if rec.ClassID == classID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) ListByDate(ctx context.Context, date string) ([]*record.DailyRecord, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, rec := range all {
		if rec.Date.String() == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return shared.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records), nil
}

type memRegistry struct {
	mu      sync.Mutex
	classes []*roster.ClassRoster
}

func newMemRegistry(classes ...*roster.ClassRoster) *memRegistry {
	return &memRegistry{classes: classes}
}

func (r *memRegistry) ListClasses(ctx context.Context) ([]*roster.ClassRoster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*roster.ClassRoster, len(r.classes))
	for i, c := range r.classes {
		out[i] = c.Clone()
	}
	return out, nil
}

func (r *memRegistry) GetByName(ctx context.Context, name string) (*roster.ClassRoster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.classes {
		if c.Name == name {
			return c.Clone(), nil
		}
	}
	return nil, shared.ErrClassNotFound
}

func (r *memRegistry) Register(ctx context.Context, class *roster.ClassRoster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.classes {
		if c.Name == class.Name {
			return shared.ErrClassAlreadyExists
		}
	}
	r.classes = append(r.classes, class.Clone())
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TEST SERVER SETUP
// ═══════════════════════════════════════════════════════════════════════════

const testAdminPassword = "rahasia-guru"

func testClass(t *testing.T) *roster.ClassRoster {
	t.Helper()
	class, err := roster.NewClassRoster(roster.NewClassParams{
		ID:   "class-5b",
		Name: "5 - B",
		Students: []roster.Student{
			{ID: "5B-1", Name: "Ahmad Fauzi"},
			{ID: "5B-2", Name: "Budi Hartono"},
		},
	})
	require.NoError(t, err)
	return class
}

type testEnv struct {
	server   *Server
	ts       *httptest.Server
	repo     *memRepo
	registry *memRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemRepo()
	registry := newMemRegistry(testClass(t))

	hash, err := handlers.HashPassword(testAdminPassword)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	cfg.AdminPasswordHash = hash

	deps := Dependencies{
		SaveRecordHandler:    command.NewSaveRecordHandler(repo, registry, nil),
		DeleteRecordHandler:  command.NewDeleteRecordHandler(repo, nil),
		RegisterClassHandler: command.NewRegisterClassHandler(registry, nil),
		SynthesizeHandler: command.NewSynthesizeRecordsHandler(repo, registry, nil,
			command.SynthesizeRecordsHandlerConfig{YieldDelay: 0}),
		ListRecordsHandler:   query.NewListRecordsHandler(repo, nil),
		GetRecordHandler:     query.NewGetRecordHandler(repo),
		GetStatisticsHandler: query.NewGetStatisticsHandler(repo),
		BuildExportHandler:   query.NewBuildExportHandler(repo),
		ExportView:           projections.NewExportView(),
		Registry:             registry,
	}

	server := NewServer(cfg, deps)
	ts := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: server, ts: ts, repo: repo, registry: registry}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, admin bool) (*http.Response, JSONResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin-Password", testAdminPassword)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope JSONResponse
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func saveRecordBody() map[string]any {
	return map[string]any{
		"date":        "2025-06-03",
		"className":   "5 - B",
		"teacherName": "Ust. Hasan",
		"subject":     string(record.SubjectTilawati),
		"studentScores": []map[string]any{
			{
				"studentId":         "5B-1",
				"studentName":       "Ahmad Fauzi",
				"attendance":        string(record.AttendancePresent),
				"activeInvolvement": 4,
				"fluency":           3,
				"tajwid":            3,
				"adab":              4,
				"jilid":             "3",
				"page":              "12",
			},
			{
				"studentId":   "5B-2",
				"studentName": "Budi Hartono",
				"attendance":  string(record.AttendanceSick),
				"notes":       "Demam",
			},
		},
		"teacherAnalysis": "Kelas kondusif.",
	}
}

func dataField[T any](t *testing.T, envelope JSONResponse, key string) T {
	t.Helper()
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object: %#v", envelope.Data)
	value, ok := data[key].(T)
	require.True(t, ok, "data[%q] missing or wrong type: %#v", key, data[key])
	return value
}

// ═══════════════════════════════════════════════════════════════════════════
// RECORD ENDPOINTS
// ═══════════════════════════════════════════════════════════════════════════

func TestServer_SaveAndGetRecord(t *testing.T) {
	env := newTestEnv(t)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)

	recordID := dataField[string](t, envelope, "record_id")
	assert.Equal(t, string(record.SubjectTilawati), dataField[string](t, envelope, "subject"))

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/records/"+recordID, nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "5 - B", data["classId"])
	assert.Equal(t, "2025-06-03", data["date"])
}

func TestServer_SaveRecord_Overwrite(t *testing.T) {
	env := newTestEnv(t)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	recordID := dataField[string](t, envelope, "record_id")

	body := saveRecordBody()
	body["id"] = recordID
	resp, envelope = env.do(t, http.MethodPost, "/api/v1/records", body, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dataField[bool](t, envelope, "overwrote"))

	count, err := env.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestServer_SaveRecord_ValidationFailed(t *testing.T) {
	env := newTestEnv(t)

	body := saveRecordBody()
	delete(body, "date")

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/records", body, false)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "validation_failed", envelope.Error.Code)
}

func TestServer_SaveRecord_UnknownClass(t *testing.T) {
	env := newTestEnv(t)

	body := saveRecordBody()
	body["className"] = "9 - Z"

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/records", body, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "not_found", envelope.Error.Code)
}

func TestServer_ListRecords(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/records?class=5%20-%20B", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 1, envelope.Meta.TotalCount)
}

func TestServer_GetRecord_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/records/3f2a7b9c-0000-4000-8000-000000000000", nil, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "not_found", envelope.Error.Code)
}

func TestServer_DeleteRecord_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, envelope := env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)
	recordID := dataField[string](t, envelope, "record_id")

	resp, _ := env.do(t, http.MethodDelete, "/api/v1/records/"+recordID, nil, false)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/records/"+recordID, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/records/"+recordID, nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ExportRecord(t *testing.T) {
	env := newTestEnv(t)

	_, envelope := env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)
	recordID := dataField[string](t, envelope, "record_id")

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/api/v1/records/"+recordID+"/export", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/msword")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "laporan_5___B_2025-06-03.doc")
}

func TestServer_ExportRecord_JSONFormat(t *testing.T) {
	env := newTestEnv(t)

	_, envelope := env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)
	recordID := dataField[string](t, envelope, "record_id")

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/records/"+recordID+"/export?format=json", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "5 - B", data["class_name"])
	assert.NotEmpty(t, data["columns"])
}

// ═══════════════════════════════════════════════════════════════════════════
// STATISTICS AND CLASSES
// ═══════════════════════════════════════════════════════════════════════════

func TestServer_Statistics(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/v1/records", saveRecordBody(), false)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/statistics?class=5%20-%20B", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
}

func TestServer_ListClasses(t *testing.T) {
	env := newTestEnv(t)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/classes", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 1, envelope.Meta.TotalCount)
}

func TestServer_RegisterClass(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"name":            "6 - A",
		"homeroomTeacher": "Usth. Fatimah",
		"studentNames":    []string{"Citra Ayu", "Dewi Lestari"},
	}

	resp, _ := env.do(t, http.MethodPost, "/api/v1/classes", body, false)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/classes", body, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "6 - A", dataField[string](t, envelope, "class_name"))

	// Duplicate registration conflicts.
	resp, envelope = env.do(t, http.MethodPost, "/api/v1/classes", body, true)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "already_exists", envelope.Error.Code)
}

// ═══════════════════════════════════════════════════════════════════════════
// ADMINISTRATION
// ═══════════════════════════════════════════════════════════════════════════

func TestServer_Synthesize(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"baseDate":     "2025-06-03",
		"docsPerClass": 2,
		"classNames":   []string{"5 - B"},
		"teacherName":  "Ust. Hasan",
	}

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/admin/synthesize", body, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), dataField[float64](t, envelope, "saved_count"))

	count, err := env.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestServer_Synthesize_InvalidDocsPerClass(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"baseDate":     "2025-06-03",
		"docsPerClass": 9,
		"classNames":   []string{"5 - B"},
	}

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/admin/synthesize", body, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "validation_failed", envelope.Error.Code)
}

func TestServer_AdminLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{"password": "salah"}, false)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{"password": testAdminPassword}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(shared.RoleAdmin), dataField[string](t, envelope, "role"))
}

func TestServer_AdminDisabledWithoutHash(t *testing.T) {
	repo := newMemRepo()
	registry := newMemRegistry()

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	cfg.AdminPasswordHash = ""

	server := NewServer(cfg, Dependencies{
		DeleteRecordHandler: command.NewDeleteRecordHandler(repo, nil),
		Registry:            registry,
	})
	ts := httptest.NewServer(server.httpServer.Handler)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/records/abc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ═══════════════════════════════════════════════════════════════════════════
// HEALTH AND PLUMBING
// ═══════════════════════════════════════════════════════════════════════════

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t)

	resp, envelope := env.do(t, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
}

func TestServer_RequestIDPropagated(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-abc-123", resp.Header.Get("X-Request-ID"))
}

func TestServer_RateLimit(t *testing.T) {
	repo := newMemRepo()
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 2

	server := NewServer(cfg, Dependencies{GetRecordHandler: query.NewGetRecordHandler(repo)})
	ts := httptest.NewServer(server.httpServer.Handler)
	defer ts.Close()

	var lastStatus int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(fmt.Sprintf("%s/health", ts.URL))
		require.NoError(t, err)
		resp.Body.Close()
		lastStatus = resp.StatusCode
	}

	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}
