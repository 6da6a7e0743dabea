package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(_ context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func newTestIdempotency(store *fakeIdempotencyStore) *IdempotencyMiddleware {
	return NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())
}

func postRebuild(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/rebuild", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}

	rr := httptest.NewRecorder()
	newTestIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postRebuild("key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}

	rr := httptest.NewRecorder()
	newTestIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})).ServeHTTP(rr, postRebuild("key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.released) != 1 || store.released[0] != "POST /api/v1/employees/rebuild key-fail" {
		t.Fatalf("expected scoped key to be released, got %v", store.released)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatalf("store should not be consulted for GET")
			return false, nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/E1/balance", nil)
	req.Header.Set(IdempotencyKeyHeader, "ignored")
	rr := httptest.NewRecorder()

	called := false
	newTestIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	stored, _ := json.Marshal(storedResponse{Status: http.StatusAccepted, Body: []byte(`{"cached":true}`)})
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, stored, nil
		},
	}

	rr := httptest.NewRecorder()
	newTestIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, postRebuild("key-123"))

	if rr.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected %s header to be set", IdempotencyReplayHeader)
	}
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected replayed status 202, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != `{"cached":true}` {
		t.Fatalf("unexpected cached body: %s", got)
	}
}

func TestIdempotencyMiddleware_InProgressConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(pendingMarker), nil
		},
	}

	rr := httptest.NewRecorder()
	newTestIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the key is in progress")
	})).ServeHTTP(rr, postRebuild("key-busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var updated []byte
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = append([]byte(nil), response...)
			return nil
		},
	}

	rr := httptest.NewRecorder()
	newTestIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})).ServeHTTP(rr, postRebuild("key-456"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}

	var stored storedResponse
	if err := json.Unmarshal(updated, &stored); err != nil {
		t.Fatalf("expected stored record to be JSON: %v", err)
	}
	if stored.Status != http.StatusCreated || string(stored.Body) != `{"ok":true}` {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
}
