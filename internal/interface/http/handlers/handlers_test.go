package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ═══════════════════════════════════════════════════════════════════════════
// ADMIN AUTH
// ═══════════════════════════════════════════════════════════════════════════

func TestAdminAuth_Verify(t *testing.T) {
	hash, err := HashPassword("rahasia-guru")
	require.NoError(t, err)

	auth := NewAdminAuth(hash)

	assert.True(t, auth.Verify("rahasia-guru"))
	assert.False(t, auth.Verify("salah"))
	assert.False(t, auth.Verify(""))
}

func TestAdminAuth_EmptyHashRejectsEverything(t *testing.T) {
	auth := NewAdminAuth("")
	assert.False(t, auth.Verify("anything"))
}

func TestAdminAuth_Authorize(t *testing.T) {
	hash, err := HashPassword("rahasia-guru")
	require.NoError(t, err)
	auth := NewAdminAuth(hash)

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/records/abc", nil)
	assert.False(t, auth.Authorize(r))

	r.Header.Set("X-Admin-Password", "rahasia-guru")
	assert.True(t, auth.Authorize(r))

	r = httptest.NewRequest(http.MethodDelete, "/api/v1/records/abc", nil)
	r.Header.Set("Authorization", "Bearer rahasia-guru")
	assert.True(t, auth.Authorize(r))
}

func TestAdminAuth_Middleware(t *testing.T) {
	hash, err := HashPassword("rahasia-guru")
	require.NoError(t, err)
	auth := NewAdminAuth(hash)

	called := false
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Password", "rahasia-guru")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

// ═══════════════════════════════════════════════════════════════════════════
// HEALTH CHECKS
// ═══════════════════════════════════════════════════════════════════════════

type pinger struct {
	err error
}

func (p pinger) Ping(ctx context.Context) error { return p.err }

func TestCompositeHealthChecker_AllHealthy(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("database", NewDatabaseCheck(pinger{}))
	checker.AddCheck("cache", NewCacheCheck(pinger{}))

	status := checker.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Len(t, status.Checks, 2)
	assert.Equal(t, "v1", status.Version)
}

func TestCompositeHealthChecker_FailingCheck(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("database", NewDatabaseCheck(pinger{}))
	checker.AddCheck("cache", NewCacheCheck(pinger{err: errors.New("connection refused")}))

	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.False(t, status.Ready)
	assert.Contains(t, status.Message, "cache")
	assert.True(t, status.Checks["database"].Healthy)
	assert.False(t, status.Checks["cache"].Healthy)
	assert.Contains(t, status.Checks["cache"].Message, "connection refused")
}

func TestCompositeHealthChecker_NoChecks(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	status := checker.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.Equal(t, "No health checks registered", status.Message)
}

func TestCompositeHealthChecker_RemoveCheck(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("database", NewDatabaseCheck(pinger{err: errors.New("down")}))
	checker.RemoveCheck("database")

	status := checker.Check(context.Background())
	assert.True(t, status.Healthy)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.SetTimeout(20 * time.Millisecond)
	checker.AddCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	status := checker.Check(context.Background())
	assert.False(t, status.Healthy)
}

func TestNewNarrativeCheck(t *testing.T) {
	open := false
	check := NewNarrativeCheck(func() bool { return open })

	assert.NoError(t, check(context.Background()))

	open = true
	assert.Error(t, check(context.Background()))
}

func TestNoopHealthChecker(t *testing.T) {
	checker := NewNoopHealthChecker()
	status := checker.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
}

// ═══════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ═══════════════════════════════════════════════════════════════════════════

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 100
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := ChainHandler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { order = append(order, "handler") }),
		mk("first"), mk("second"),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
