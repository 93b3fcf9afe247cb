package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-auth-nosql/internal/domain"
)

// Envelope statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusPending = "PENDING"
	StatusFailed  = "FAILED"
)

// Envelope is the response wrapper for every JSON endpoint.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SignInData is returned by a successful sign-in.
type SignInData struct {
	User   *domain.User `json:"user"`
	Bearer string       `json:"bearer,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, msg string, data interface{}) {
	writeJSON(w, status, Envelope{Status: StatusSuccess, Message: msg, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Status: StatusFailed, Message: msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

var kindStatus = map[string]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindExpired:      http.StatusGone,
	domain.KindMismatch:     http.StatusBadRequest,
	domain.KindPolicy:       http.StatusForbidden,
	domain.KindConflict:     http.StatusConflict,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindDependency:   http.StatusInternalServerError,
}

// httpError maps a domain error to its status code and a client-safe message.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "err", err)
	}
	writeError(w, status, publicMessage(err))
}

var sentinels = []error{
	domain.ErrBadRequest, domain.ErrNotFound, domain.ErrExpired, domain.ErrMismatch,
	domain.ErrPolicy, domain.ErrConflict, domain.ErrUnauthorized,
}

// publicMessage strips the sentinel suffix from classified errors and hides
// the cause of dependency failures.
func publicMessage(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			msg := strings.TrimSuffix(err.Error(), ": "+s.Error())
			if msg == "" {
				return s.Error()
			}
			return msg
		}
	}
	return "an internal error occurred, please try again later"
}
