package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/ledgerreplay/internal/adapter/http/dto"
	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/infrastructure/eventbus"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status mapped from it.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapDomainError(err)
	message := http.StatusText(status)
	if status == http.StatusInternalServerError {
		writeError(w, status, message, "")
		return
	}
	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSubjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidIDFormat),
		errors.Is(err, domain.ErrInvalidSourceChange),
		errors.Is(err, domain.ErrUnknownSourceType),
		errors.Is(err, domain.ErrUnknownSubjectKind),
		errors.Is(err, usecase.ErrSubjectKindMismatch):
		return http.StatusBadRequest
	case errors.Is(err, eventbus.ErrNoSubscriber):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	val := strings.TrimSpace(r.URL.Query().Get(key))
	if val == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// requireDateQuery parses a mandatory YYYY-MM-DD query parameter.
func requireDateQuery(r *http.Request, key string) (time.Time, error) {
	t, err := parseDateQuery(r, key)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, errMissingParam(key)
	}
	return *t, nil
}

// parseBoolQuery parses an optional boolean query parameter.
func parseBoolQuery(r *http.Request, key string) (*bool, error) {
	val := strings.TrimSpace(r.URL.Query().Get(key))
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, errInvalidParam(key)
	}
	return &b, nil
}

type paramError struct {
	key    string
	reason string
}

func (e *paramError) Error() string {
	return e.key + " " + e.reason
}

func errMissingParam(key string) error {
	return &paramError{key: key, reason: "is required"}
}

func errInvalidParam(key string) error {
	return &paramError{key: key, reason: "is invalid"}
}
