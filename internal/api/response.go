package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/tracker"
)

// errorBody is the shape of every non-2xx response.
type errorBody struct {
	Success bool      `json:"success"`
	Error   errorInfo `json:"error"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorInfo{Code: code, Message: message}})
}

// writeServiceError maps tracker errors to status codes. Unexpected errors
// are logged and hidden behind a generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *tracker.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorInfo{
			Code: "VALIDATION_ERROR", Message: ve.Error(), Field: ve.Field,
		}})
	case errors.Is(err, tracker.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, tracker.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		s.log.Error("Request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
	}
}

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}
