package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fake-webhook-api/internal/contextkeys"
	"fake-webhook-api/internal/metrics"
	"fake-webhook-api/internal/models"
	"fake-webhook-api/internal/payload"
)

// LivenessMessage is the body served on GET /.
const LivenessMessage = "Fake webhook API is running ✅"

var supportedTypes = []string{
	string(models.EventGeneric),
	string(models.EventAssessment),
	string(models.EventBackgroundCheck),
}

// Scheduler runs a job once after delay without blocking the caller.
type Scheduler interface {
	Schedule(job models.Job, delay time.Duration)
}

// Handler contains dependencies for the fake event HTTP handlers.
type Handler struct {
	Logger             *slog.Logger
	Scheduler          Scheduler
	DefaultCallbackURL string
	Delay              time.Duration
	Metrics            metrics.Sink
	newID              func() string
	now                func() time.Time
}

// NewHandler creates a new instance of the fake event Handler.
func NewHandler(logger *slog.Logger, scheduler Scheduler, defaultCallbackURL string, delay time.Duration, sink metrics.Sink) *Handler {
	return &Handler{
		Logger:             logger,
		Scheduler:          scheduler,
		DefaultCallbackURL: defaultCallbackURL,
		Delay:              delay,
		Metrics:            sink,
		newID:              NewCorrelationID,
		now:                time.Now,
	}
}

// HandleRoot answers liveness probes.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(LivenessMessage))
}

// HandleFakeAPI accepts a generic demo event. The acknowledgment carries no type.
func (h *Handler) HandleFakeAPI(w http.ResponseWriter, r *http.Request) {
	h.accept(w, r, models.EventGeneric, false)
}

// HandleTypedFakeAPI accepts an event whose type is taken from the route.
func (h *Handler) HandleTypedFakeAPI(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "type")
	eventType, ok := models.ParseEventType(raw)
	if !ok {
		h.reject(w, invalidType(raw, supportedTypes))
		return
	}
	h.accept(w, r, eventType, true)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request, eventType models.EventType, typedRoute bool) {
	bodyBytes, ok := r.Context().Value(contextkeys.RequestBodyKey).([]byte)
	if !ok {
		h.Logger.Error("Could not retrieve request body from context")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	receivedAt, ok := r.Context().Value(contextkeys.ReceivedAtKey).(time.Time)
	if !ok {
		receivedAt = h.now()
	}

	req, err := h.parse(eventType, bodyBytes)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			h.reject(w, vErr)
			return
		}
		h.Logger.Error("Unexpected error while parsing request", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	id := h.newID()
	ack := models.Ack{
		Status:     "accepted",
		ID:         id,
		ReceivedAt: receivedAt.UTC().Format(payload.TimeFormat),
	}
	if typedRoute {
		ack.Type = eventType
	}
	writeJSON(w, http.StatusOK, ack)

	now := h.now()
	h.Scheduler.Schedule(models.Job{
		ID:          id,
		Request:     req,
		ScheduledAt: now,
		FireAt:      now.Add(h.Delay),
	}, h.Delay)

	h.Metrics.RequestAccepted(string(eventType))
	h.Logger.Info("Event accepted, webhook scheduled",
		"delivery_id", id,
		"event_type", eventType,
		"callback_url", req.CallbackURL,
		"delay", h.Delay,
	)
}

// parse validates the body in order: callback URL, then API key.
func (h *Handler) parse(eventType models.EventType, bodyBytes []byte) (models.DeliveryRequest, error) {
	body := map[string]any{}
	if len(bytes.TrimSpace(bodyBytes)) > 0 {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			return models.DeliveryRequest{}, invalidBody(err)
		}
		if body == nil {
			body = map[string]any{}
		}
	}

	callbackURL := stringField(body, "callbackUrl")
	if callbackURL == "" {
		callbackURL = h.DefaultCallbackURL
	}
	if callbackURL == "" {
		return models.DeliveryRequest{}, missingCallbackURL()
	}

	apiKey := stringField(body, "apiKey")
	if apiKey == "" {
		return models.DeliveryRequest{}, missingAPIKey()
	}

	return models.DeliveryRequest{
		Type:        eventType,
		CallbackURL: callbackURL,
		APIKey:      apiKey,
		CandidateID: stringField(body, "candidateId"),
		RawBody:     body,
	}, nil
}

func (h *Handler) reject(w http.ResponseWriter, err *ValidationError) {
	h.Metrics.RequestRejected(err.Code)
	h.Logger.Warn("Rejected fake event request", "code", err.Code, "error", err.Message)
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Message, Code: err.Code})
}

// stringField returns body[key] when it is a non-blank string.
func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return strings.TrimSpace(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
