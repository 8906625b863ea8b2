package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/classbridge/portal/internal/cbt"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Retry bool   `json:"retry,omitempty"`
}

// writeEngineError maps engine error kinds onto HTTP statuses. Everything
// here is caller-recoverable; already_submitted is informational rather than
// a failure, and store trouble is the only retryable kind.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		status = http.StatusInternalServerError
		kind   = "internal"
		retry  = false
	)
	switch {
	case errors.Is(err, cbt.ErrNotEligible):
		status, kind = http.StatusForbidden, "not_eligible"
	case errors.Is(err, cbt.ErrNotStarted):
		status, kind = http.StatusForbidden, "not_started"
	case errors.Is(err, cbt.ErrClosed):
		status, kind = http.StatusGone, "closed"
	case errors.Is(err, cbt.ErrTimeExpired):
		status, kind = http.StatusGone, "time_expired"
	case errors.Is(err, cbt.ErrAlreadySubmitted):
		status, kind = http.StatusConflict, "already_submitted"
	case errors.Is(err, cbt.ErrNoQuestions):
		status, kind = http.StatusUnprocessableEntity, "no_questions"
	case errors.Is(err, cbt.ErrAttemptMismatch):
		status, kind = http.StatusForbidden, "attempt_mismatch"
	case errors.Is(err, cbt.ErrStoreUnavailable):
		status, kind, retry = http.StatusServiceUnavailable, "store_unavailable", true
	}
	msg := err.Error()
	if kind == "internal" {
		msg = "internal error"
	}
	writeJSON(w, status, errBody{Error: msg, Kind: kind, Retry: retry})
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
