package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"portfolio-service/logger"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var log = logger.NewNop()

// SetLogger replaces the logger used by ErrorHandler and RequestLogger.
func SetLogger(l *logger.Logger) {
	if l != nil {
		log = l
	}
}

// AppHandler is a handler that reports failures by returning them.
type AppHandler func(http.ResponseWriter, *http.Request) error

// AppError carries the status and the client-facing message for a failure.
// Err stays server-side.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

const internalErrorMessage = "Internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

// trackingWriter remembers whether the handler already committed a response.
type trackingWriter struct {
	http.ResponseWriter
	committed bool
}

func (tw *trackingWriter) WriteHeader(statusCode int) {
	tw.committed = true
	tw.ResponseWriter.WriteHeader(statusCode)
}

func (tw *trackingWriter) Write(b []byte) (int, error) {
	tw.committed = true
	return tw.ResponseWriter.Write(b)
}

// ErrorHandler adapts an AppHandler to http.HandlerFunc. Returned errors and
// recovered panics become a JSON error body unless the handler already wrote
// a response.
func ErrorHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingWriter{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered", "method", r.Method, "path", r.URL.Path, "panic", recovered)
				markSpan(r, http.StatusInternalServerError, nil)
				if !tw.committed {
					writeErrorResponse(tw, http.StatusInternalServerError, internalErrorMessage)
				}
			}
		}()

		if err := handler(tw, r); err != nil {
			handleError(tw, r, err)
		}
	}
}

func handleError(w *trackingWriter, r *http.Request, err error) {
	status, message := describe(err)
	markSpan(r, status, err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "reason", message)
	}

	if w.committed {
		return
	}
	writeErrorResponse(w, status, message)
}

// describe maps err to a status and a message safe to show the client.
func describe(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Message == "" {
			return appErr.Status, http.StatusText(appErr.Status)
		}
		return appErr.Status, appErr.Message
	}
	return http.StatusInternalServerError, internalErrorMessage
}

// markSpan flags server-side failures on the request span set up by otelhttp.
func markSpan(r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	span := trace.SpanFromContext(r.Context())
	if !span.IsRecording() {
		return
	}
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(codes.Error, http.StatusText(status))
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
