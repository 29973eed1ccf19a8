package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/logging"
	"github.com/ginjaninja78/po-export/internal/supplier"
	"github.com/ginjaninja78/po-export/internal/validation"
	"github.com/ginjaninja78/po-export/internal/xlsxparser"
)

// errBadRequest marks malformed form input.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		maxBytes *http.MaxBytesError
		decode   *xlsxparser.DecodeError
		schema   *validation.SchemaError
		norm     *converter.NormalizationError
		ser      *csvwriter.SerializationError
	)

	switch {
	case errors.As(err, &maxBytes), errors.Is(err, xlsxparser.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, supplier.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &decode),
		errors.Is(err, xlsxparser.ErrEmptyData),
		errors.Is(err, validation.ErrNoRows),
		errors.As(err, &schema),
		errors.As(err, &norm),
		errors.As(err, &ser),
		errors.Is(err, converter.ErrNoDocument),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with the request id and writes the JSON error reply.
// Messages of unexpected errors are not sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(w, status, message)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
