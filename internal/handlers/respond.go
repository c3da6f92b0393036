package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/camera"
	"github.com/ovalhq/pavilion/internal/metrics"
	"github.com/ovalhq/pavilion/internal/store"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error.Printf("Failed to encode JSON response: %v", err)
	}
}

func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, errorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// WriteError maps domain errors onto HTTP statuses. Anything unrecognized
// is an internal error: logged with full context, opaque to the client.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrValidation):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNoSession), errors.Is(err, app.ErrInvalidCredentials):
		ErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrForbidden):
		ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrConflict):
		ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, camera.ErrUpstream):
		ErrorResponse(w, http.StatusServiceUnavailable, "camera unavailable")
	default:
		logger.Error.Printf("Internal error: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithMetrics wraps a handler with request logging and a duration metric.
func WithMetrics(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(recorder, r)

		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(recorder.status),
		).Observe(duration)
		logger.Debug.Printf("%s %s -> %d (%.3fs)", r.Method, r.URL.Path, recorder.status, duration)
	}
}
