package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koustreak/sqlgate/internal/errs"
)

// errorBody is the JSON shape of every failed call.
type errorBody struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error"`
	Kind     errs.ErrKind  `json:"kind"`
	Category errs.Category `json:"category"`
	Hint     string        `json:"hint,omitempty"`
	Query    string        `json:"query,omitempty"`
	Table    string        `json:"table,omitempty"`
}

// statusFor maps an error kind to an HTTP status.
func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	case errs.ErrKindQueryFailed:
		return http.StatusUnprocessableEntity
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// newErrorBody renders err. Errors that are not *errs.Error are reported as
// internal without their text.
func newErrorBody(err error) errorBody {
	var e *errs.Error
	if !errors.As(err, &e) {
		return errorBody{Error: "internal error", Kind: errs.ErrKindInternal}
	}

	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return errorBody{
		Error:    msg,
		Kind:     e.Kind,
		Category: e.Category,
		Hint:     e.Hint,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, body errorBody) {
	writeJSON(w, statusFor(body.Kind), body)
}
