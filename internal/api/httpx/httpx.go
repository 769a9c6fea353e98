package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/validate"
)

const (
	RequestIDHeader = "X-Request-Id"

	MsgAuthenticate = "Please authenticate using a valid token"
	MsgServerError  = "Server error"
	MsgConflict     = "Too many concurrent updates, please try again."
)

// M is a response body; OK adds success=true.
type M map[string]any

type APIError struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Details validate.Errs `json:"errors,omitempty"`
}

// serverErrorBody is written when a response cannot be encoded.
var serverErrorBody = []byte(`{"success":false,"error":"` + MsgServerError + `"}` + "\n")

// WriteJSON encodes v before touching the response, so an unencodable value
// becomes a logged 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err != nil {
		slog.Error("encode response",
			"status", status,
			"request_id", w.Header().Get(RequestIDHeader),
			"err", err,
		)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(serverErrorBody)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func OK(w http.ResponseWriter, body M) {
	if body == nil {
		body = M{}
	}
	body["success"] = true
	WriteJSON(w, http.StatusOK, body)
}

func WriteError(w http.ResponseWriter, status int, msg string, details validate.Errs) {
	WriteJSON(w, status, APIError{Error: msg, Details: details})
}

// Errors turns service errors into responses. Unexpected errors are logged
// and, in production, answered without their message.
type Errors struct {
	Log  *slog.Logger
	Prod bool
}

func (e Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, details := Classify(err)
	if status == http.StatusInternalServerError {
		e.Log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(RequestIDHeader),
			"err", err,
		)
		if e.Prod {
			msg = MsgServerError
		}
	}
	WriteError(w, status, msg, details)
}

// Classify maps an error to its HTTP status, client message and field details.
func Classify(err error) (int, string, validate.Errs) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error(), ve.Fields
	case errors.Is(err, apperr.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already exists", nil
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid email or password", nil
	case apperr.IsAuth(err):
		return http.StatusUnauthorized, MsgAuthenticate, nil
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "Access denied. Admin privileges required.", nil
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, notFoundMessage(err), nil
	case errors.Is(err, apperr.ErrConflict):
		// the write lost every retry to concurrent writers; safe to resend
		return http.StatusConflict, MsgConflict, nil
	}
	return http.StatusInternalServerError, err.Error(), nil
}

func notFoundMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Not found"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
