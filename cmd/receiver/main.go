// Command receiver is a local callback endpoint for trying the fake webhook API.
// It logs every webhook it receives and optionally checks the X-API-Key header.
package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"fake-webhook-api/internal/dispatch"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, continuing with environment variables")
	}

	addr := ":" + os.Getenv("RECEIVER_PORT")
	if addr == ":" {
		addr = ":9999"
	}

	router := chi.NewRouter()
	router.Post("/webhook", handleWebhook(logger, os.Getenv("RECEIVER_API_KEY")))

	logger.Info("Receiver listening", "address", addr, "path", "/webhook")
	if err := http.ListenAndServe(addr, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Receiver failed", "error", err)
		os.Exit(1)
	}
}

// handleWebhook logs callbacks. When expectedKey is set, callbacks carrying a
// different API key are refused with 401.
func handleWebhook(logger *slog.Logger, expectedKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Cannot read request body", http.StatusBadRequest)
			return
		}

		if expectedKey != "" && r.Header.Get(dispatch.APIKeyHeader) != expectedKey {
			logger.Warn("Webhook refused: API key mismatch", "id", r.Header.Get(dispatch.IDHeader))
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return
		}

		var event struct {
			EventType string `json:"eventType"`
		}
		json.Unmarshal(body, &event)

		logger.Info("Webhook received",
			"id", r.Header.Get(dispatch.IDHeader),
			"event_type", event.EventType,
			"body", string(body),
		)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"received"}`))
	}
}
