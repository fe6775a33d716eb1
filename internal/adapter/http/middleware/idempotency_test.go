package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type stubIdempotencyStore struct {
	mu        sync.Mutex
	responses map[string][]byte
	checks    int
	updates   int
	lastTTL   time.Duration
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{responses: make(map[string][]byte)}
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	s.lastTTL = ttl
	if resp, ok := s.responses[key]; ok {
		return true, resp, nil
	}
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	s.lastTTL = ttl
	s.responses[key] = response
	return nil
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	store := newStubIdempotencyStore()
	m := NewIdempotencyMiddleware(store, 0)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"mov-1"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if store.updates != 1 {
		t.Fatalf("expected response stored once, got %d updates", store.updates)
	}
}

func TestIdempotencyMiddleware_ReplaysStatusAndBody(t *testing.T) {
	store := newStubIdempotencyStore()
	store.responses["key-1"] = []byte(`{"status":201,"body":{"id":"mov-1"}}`)

	handlerCalled := false
	m := NewIdempotencyMiddleware(store, 0)
	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if handlerCalled {
		t.Fatal("handler must not run on replay")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("replay must carry the original status, got %d", rec.Code)
	}
	if rec.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatal("expected replay marker header")
	}
	if rec.Body.String() != `{"id":"mov-1"}` {
		t.Fatalf("expected stored body, got %s", rec.Body.String())
	}
}

func TestIdempotencyMiddleware_InFlightKeyConflicts(t *testing.T) {
	store := newStubIdempotencyStore()
	store.responses["key-1"] = []byte(processingMarker)

	handlerCalled := false
	m := NewIdempotencyMiddleware(store, 0)
	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if handlerCalled {
		t.Fatal("handler must not run while the first attempt is in flight")
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for in-flight key, got %d", rec.Code)
	}
	if store.updates != 0 {
		t.Fatalf("nothing should be stored, got %d updates", store.updates)
	}
}

func TestIdempotencyMiddleware_FailedResponseNotStored(t *testing.T) {
	store := newStubIdempotencyStore()
	m := NewIdempotencyMiddleware(store, 0)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"insufficient funds"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if store.updates != 0 {
		t.Fatalf("failed responses must not be stored, got %d updates", store.updates)
	}
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKey(t *testing.T) {
	store := newStubIdempotencyStore()
	m := NewIdempotencyMiddleware(store, 0)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	get := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	get.Header.Set(IdempotencyKeyHeader, "key-1")
	handler.ServeHTTP(httptest.NewRecorder(), get)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	handler.ServeHTTP(httptest.NewRecorder(), post)

	if store.checks != 0 {
		t.Fatalf("store must not be consulted, got %d checks", store.checks)
	}
}

func TestIdempotencyMiddleware_UsesConfiguredTTL(t *testing.T) {
	store := newStubIdempotencyStore()
	m := NewIdempotencyMiddleware(store, 15*time.Minute)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"mov-1"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if store.lastTTL != 15*time.Minute {
		t.Fatalf("expected configured ttl to reach the store, got %s", store.lastTTL)
	}

	m = NewIdempotencyMiddleware(store, 0)
	handler = m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"mov-2"}`))
	}))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if store.lastTTL != defaultIdempotencyTTL {
		t.Fatalf("expected default ttl fallback, got %s", store.lastTTL)
	}
}
