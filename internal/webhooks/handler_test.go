package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"fake-webhook-api/internal/metrics"
	"fake-webhook-api/internal/models"
)

type fakeScheduler struct {
	mu     sync.Mutex
	jobs   []models.Job
	delays []time.Duration
}

func (f *fakeScheduler) Schedule(job models.Job, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	f.delays = append(f.delays, delay)
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

func TestHandleFakeAPI(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	testCases := []struct {
		name               string
		path               string
		requestBody        string
		defaultCallbackURL string
		expectedStatusCode int
		expectedErrorCode  string
		expectedAckType    models.EventType
		expectScheduled    bool
		expectedRequest    models.DeliveryRequest
	}{
		{
			name:               "Success - Generic event",
			path:               "/fake-api",
			requestBody:        `{"callbackUrl":"http://client.test/hook","apiKey":"k1","foo":"bar"}`,
			expectedStatusCode: http.StatusOK,
			expectScheduled:    true,
			expectedRequest: models.DeliveryRequest{
				Type:        models.EventGeneric,
				CallbackURL: "http://client.test/hook",
				APIKey:      "k1",
			},
		},
		{
			name:               "Success - Assessment via route",
			path:               "/fake-api/assessment",
			requestBody:        `{"callbackUrl":"http://client.test/hook","apiKey":"k2","candidateId":"CAND-999"}`,
			expectedStatusCode: http.StatusOK,
			expectedAckType:    models.EventAssessment,
			expectScheduled:    true,
			expectedRequest: models.DeliveryRequest{
				Type:        models.EventAssessment,
				CallbackURL: "http://client.test/hook",
				APIKey:      "k2",
				CandidateID: "CAND-999",
			},
		},
		{
			name:               "Success - Background check falls back to default callback",
			path:               "/fake-api/background_check",
			requestBody:        `{"apiKey":"k3"}`,
			defaultCallbackURL: "http://default.test/hook",
			expectedStatusCode: http.StatusOK,
			expectedAckType:    models.EventBackgroundCheck,
			expectScheduled:    true,
			expectedRequest: models.DeliveryRequest{
				Type:        models.EventBackgroundCheck,
				CallbackURL: "http://default.test/hook",
				APIKey:      "k3",
			},
		},
		{
			name:               "Success - Body callback wins over default",
			path:               "/fake-api",
			requestBody:        `{"callbackUrl":"http://body.test/hook","apiKey":"k4"}`,
			defaultCallbackURL: "http://default.test/hook",
			expectedStatusCode: http.StatusOK,
			expectScheduled:    true,
			expectedRequest: models.DeliveryRequest{
				Type:        models.EventGeneric,
				CallbackURL: "http://body.test/hook",
				APIKey:      "k4",
			},
		},
		{
			name:               "Failure - Invalid type",
			path:               "/fake-api/payroll",
			requestBody:        `{"callbackUrl":"http://client.test/hook","apiKey":"k"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeInvalidType,
		},
		{
			name:               "Failure - Invalid type wins over missing fields",
			path:               "/fake-api/payroll",
			requestBody:        `{}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeInvalidType,
		},
		{
			name:               "Failure - Missing callback URL and no default",
			path:               "/fake-api",
			requestBody:        `{"apiKey":"k"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeMissingCallbackURL,
		},
		{
			name:               "Failure - Missing callback URL checked before API key",
			path:               "/fake-api/assessment",
			requestBody:        `{}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeMissingCallbackURL,
		},
		{
			name:               "Failure - Missing API key",
			path:               "/fake-api/assessment",
			requestBody:        `{"callbackUrl":"http://client.test/hook"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeMissingAPIKey,
		},
		{
			name:               "Failure - Non-string API key",
			path:               "/fake-api",
			requestBody:        `{"callbackUrl":"http://client.test/hook","apiKey":42}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeMissingAPIKey,
		},
		{
			name:               "Failure - Empty body",
			path:               "/fake-api",
			requestBody:        ``,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeMissingCallbackURL,
		},
		{
			name:               "Failure - Invalid JSON",
			path:               "/fake-api",
			requestBody:        `{"invalid-json`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeInvalidBody,
		},
		{
			name:               "Failure - JSON array body",
			path:               "/fake-api",
			requestBody:        `[1,2,3]`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  CodeInvalidBody,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scheduler := &fakeScheduler{}
			handler := NewHandler(logger, scheduler, tc.defaultCallbackURL, 30*time.Second, metrics.NewNoopSink())
			handler.newID = func() string { return "fixedid1" }

			req := httptest.NewRequest(http.MethodPost, tc.path, bytes.NewBufferString(tc.requestBody))
			rr := httptest.NewRecorder()
			newTestRouter(handler).ServeHTTP(rr, req)

			if status := rr.Code; status != tc.expectedStatusCode {
				t.Fatalf("handler returned wrong status code: got %v want %v (body: %s)", status, tc.expectedStatusCode, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			if tc.expectScheduled != (len(scheduler.jobs) == 1) {
				t.Fatalf("scheduled jobs = %d, want scheduled=%v", len(scheduler.jobs), tc.expectScheduled)
			}

			if !tc.expectScheduled {
				var resp models.ErrorResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("error body is not JSON: %v", err)
				}
				if resp.Code != tc.expectedErrorCode || resp.Error == "" {
					t.Errorf("error response = %+v, want code %q with a message", resp, tc.expectedErrorCode)
				}
				return
			}

			var ack map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &ack); err != nil {
				t.Fatalf("ack is not JSON: %v", err)
			}
			if ack["status"] != "accepted" || ack["id"] != "fixedid1" {
				t.Errorf("unexpected ack: %v", ack)
			}
			if _, err := time.Parse(time.RFC3339, ack["receivedAt"].(string)); err != nil {
				t.Errorf("receivedAt %v is not an ISO timestamp: %v", ack["receivedAt"], err)
			}
			gotType, hasType := ack["type"]
			if tc.expectedAckType == "" && hasType {
				t.Errorf("generic ack must not carry a type, got %v", gotType)
			}
			if tc.expectedAckType != "" && gotType != string(tc.expectedAckType) {
				t.Errorf("ack type = %v, want %q", gotType, tc.expectedAckType)
			}

			job := scheduler.jobs[0]
			if scheduler.delays[0] != 30*time.Second {
				t.Errorf("scheduled delay = %s, want 30s", scheduler.delays[0])
			}
			if job.ID != "fixedid1" {
				t.Errorf("job id = %q, want the acknowledged id", job.ID)
			}
			got := job.Request
			want := tc.expectedRequest
			if got.Type != want.Type || got.CallbackURL != want.CallbackURL || got.APIKey != want.APIKey || got.CandidateID != want.CandidateID {
				t.Errorf("scheduled request = %+v, want %+v", got, want)
			}
			if got.RawBody == nil {
				t.Error("raw body was not captured")
			}
			if !job.FireAt.Equal(job.ScheduledAt.Add(30 * time.Second)) {
				t.Errorf("FireAt %v is not ScheduledAt+delay", job.FireAt)
			}
		})
	}
}

func TestHandleFakeAPIMissingBodyInContext(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	scheduler := &fakeScheduler{}
	handler := NewHandler(logger, scheduler, "", time.Second, metrics.NewNoopSink())

	rr := httptest.NewRecorder()
	handler.HandleFakeAPI(rr, httptest.NewRequest(http.MethodPost, "/fake-api", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusInternalServerError)
	}
	if len(scheduler.jobs) != 0 {
		t.Error("nothing should be scheduled without a captured body")
	}
}

func TestHandleRoot(t *testing.T) {
	handler := NewHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), &fakeScheduler{}, "", time.Second, metrics.NewNoopSink())

	rr := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != LivenessMessage {
		t.Errorf("GET / = %d %q", rr.Code, rr.Body.String())
	}
}

func TestValidationErrorIs(t *testing.T) {
	if !errors.Is(missingAPIKey(), ErrMissingAPIKey) {
		t.Error("missingAPIKey() should match ErrMissingAPIKey")
	}
	if errors.Is(missingAPIKey(), ErrMissingCallbackURL) {
		t.Error("missingAPIKey() should not match ErrMissingCallbackURL")
	}
	if !errors.Is(invalidType("x", supportedTypes), ErrInvalidType) {
		t.Error("invalidType() should match ErrInvalidType")
	}
}

func TestNewCorrelationID(t *testing.T) {
	seen := make(map[string]bool)
	for n := 0; n < 1000; n++ {
		id := NewCorrelationID()
		if len(id) != 8 {
			t.Fatalf("id %q has length %d, want 8", id, len(id))
		}
		seen[id] = true
	}
	// Best-effort uniqueness: a handful of collisions in 1000 draws of 32 bits would be suspicious.
	if len(seen) < 995 {
		t.Errorf("only %d distinct ids out of 1000", len(seen))
	}
}
