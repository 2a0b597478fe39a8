package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/quality-control/internal/storage"
)

func TestLoggingMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	var called bool
	handler := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
}

func TestLoggingMiddlewareLevelFollowsStatus(t *testing.T) {
	cases := []struct {
		status  int
		level   zapcore.Level
		message string
	}{
		{http.StatusCreated, zapcore.InfoLevel, "request completed"},
		{http.StatusConflict, zapcore.WarnLevel, "request rejected"},
		{http.StatusInternalServerError, zapcore.ErrorLevel, "request failed"},
	}
	for _, tc := range cases {
		core, logs := observer.New(zapcore.DebugLevel)
		handler := loggingMiddleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte("body"))
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/pieces", nil))

		entries := logs.AllUntimed()
		if len(entries) != 1 {
			t.Fatalf("expected one log entry, got %d", len(entries))
		}
		if entries[0].Level != tc.level || entries[0].Message != tc.message {
			t.Fatalf("status %d: got %s %q", tc.status, entries[0].Level, entries[0].Message)
		}
		if got := entries[0].ContextMap()["bytes"]; got != int64(4) {
			t.Fatalf("expected 4 bytes logged, got %v", got)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	supplied := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("X-Request-ID", supplied)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != supplied || rec.Header().Get("X-Request-ID") != supplied {
		t.Fatalf("expected supplied request id %s to be kept, got %s", supplied, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("X-Request-ID", "not a uuid")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if _, err := uuid.Parse(seen); err != nil || seen == "not a uuid" {
		t.Fatalf("expected generated uuid, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected response header to echo generated id")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := recoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestRecoveryMiddlewareLogsStack(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := recoveryMiddleware(zap.New(core), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("ledger exploded")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/pieces/P1", nil))

	entries := logs.FilterMessage("panic recovered").AllUntimed()
	if len(entries) != 1 {
		t.Fatalf("expected one panic log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/pieces/P1" || fields["stack"] == nil {
		t.Fatalf("expected path and stack fields, got %v", fields)
	}
}

func TestResponseRecorderWriteHeader(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &responseRecorder{ResponseWriter: underlying}
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusTeapot {
		t.Fatalf("expected status to be recorded")
	}
	if underlying.Code != http.StatusTeapot {
		t.Fatalf("expected status to propagate to ResponseWriter")
	}
}

func TestWithRateLimiterOptionAppliesLimiter(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}))

	req := httptest.NewRequest(http.MethodPost, "/api/pieces", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block request, got %d", rec.Code)
	}
}

func TestWithRateLimitDisablesLimiterWhenZero(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}), WithRateLimit(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
	}
}

func TestWithRateLimitEnforcesLimit(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req.Clone(req.Context()))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block second request, got %d", rec2.Code)
	}
}

func newTestRouter(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage()
	handler := NewHandler(store)
	logger := zaptest.NewLogger(t)
	return NewRouter(handler, logger, opts...)
}
