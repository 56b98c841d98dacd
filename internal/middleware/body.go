package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fake-webhook-api/internal/contextkeys"
)

// MaxBodyBytes caps inbound request bodies.
const MaxBodyBytes = 1 << 20

// CaptureBody reads the request body once, stores it in the context under
// contextkeys.RequestBodyKey together with the arrival time, and restores it
// for the next handler.
func CaptureBody(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedAt := time.Now()

			bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					logger.Warn("Request body too large", "limit", tooLarge.Limit)
					writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
					return
				}
				logger.Error("Failed to read request body", "error", err)
				writeJSONError(w, http.StatusBadRequest, "Cannot read request body")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			ctx := context.WithValue(r.Context(), contextkeys.RequestBodyKey, bodyBytes)
			ctx = context.WithValue(ctx, contextkeys.ReceivedAtKey, receivedAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
