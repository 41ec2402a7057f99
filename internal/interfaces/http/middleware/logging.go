package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged.
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged at Warn.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips the probe and metrics endpoints.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// wrappedResponseWriter captures the status code and bytes written.
type wrappedResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newWrappedResponseWriter(w http.ResponseWriter) *wrappedResponseWriter {
	return &wrappedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *wrappedResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *wrappedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Hijack implements http.Hijacker for the WebSocket stream.
func (w *wrappedResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func (w *wrappedResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// RequestLogging returns middleware that logs one line per request: 5xx at
// Error, 4xx and slow requests at Warn, everything else at Info.  Handlers
// find the request-scoped logger through logging.FromContext.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger
			if id := chimw.GetReqID(r.Context()); id != "" {
				reqLogger = logger.With(logging.String("request_id", id))
			}
			r = r.WithContext(logging.WithContext(r.Context(), reqLogger))

			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			duration := time.Since(start)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapped.statusCode),
				logging.Duration("duration", duration),
				logging.Int64("bytes", wrapped.bytesWritten),
				logging.String("remote_addr", r.RemoteAddr),
			}

			switch {
			case wrapped.statusCode >= 500:
				reqLogger.Error("HTTP request completed with server error", fields...)
			case wrapped.statusCode >= 400:
				reqLogger.Warn("HTTP request completed with client error", fields...)
			case config.SlowThreshold > 0 && duration >= config.SlowThreshold:
				reqLogger.Warn("HTTP request completed (slow)", fields...)
			default:
				reqLogger.Info("HTTP request completed", fields...)
			}
		})
	}
}

//Personal.AI order the ending
