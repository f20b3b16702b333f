package web

// errors.go provides unified error response handling for the web layer.
//
// Every failure goes through respondError, which:
//  1. maps the error via core.MapError to a user message and code
//  2. picks the HTTP status from the code
//  3. logs the technical error once, with request and session ids
//  4. writes the JSON body {error, message, action, code}

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/JonMunkholm/tabclean/internal/logging"
)

var (
	errNoFile      = errors.New("no file provided")
	errRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  []ValidationError `json:"fields,omitempty"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case "SES001":
		return http.StatusNotFound
	case "FILE001":
		return http.StatusRequestEntityTooLarge
	case "UPL002", "RATE001":
		return http.StatusTooManyRequests
	case "ERR000":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondError logs err and writes the user-facing JSON error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := statusFor(msg.Code)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	if status >= http.StatusInternalServerError {
		// Internal details stay in the log.
		resp.Error = msg.Message
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = verrs
	}

	writeJSON(w, r, status, resp)
}
