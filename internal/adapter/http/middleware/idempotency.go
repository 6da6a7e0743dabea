package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a replayed response.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	pendingMarker = "processing"
)

// storedResponse is what the store keeps for a completed request.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays completed mutating requests that carry the
// same Idempotency-Key.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		scoped := r.Method + " " + r.URL.Path + " " + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), scoped, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("idempotency_key", key).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if len(cached) == 0 || string(cached) == pendingMarker {
				writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}

			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "corrupt idempotency record")
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyReplayHeader, "true")
			w.WriteHeader(stored.Status)
			_, _ = w.Write(stored.Body)
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			// Failed requests may be retried with the same key.
			if err := m.store.Release(r.Context(), scoped); err != nil {
				m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status: recorder.statusCode,
			Body:   recorder.body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(r.Context(), scoped, payload, m.ttl)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
