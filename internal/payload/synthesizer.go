// Package payload builds the canned event bodies sent to callback URLs.
package payload

import (
	"fmt"
	"time"

	"fake-webhook-api/internal/models"
)

// TimeFormat matches JavaScript's Date.toISOString, which most webhook
// consumers of this demo expect.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// PlaceholderCandidateID is used when a request does not name a candidate.
const PlaceholderCandidateID = "CAND-DEMO-001"

// Generic is the payload for the generic demo event.
type Generic struct {
	EventType       string         `json:"eventType"`
	ID              string         `json:"id"`
	OriginalPayload map[string]any `json:"originalPayload"`
	ProcessedAt     string         `json:"processedAt"`
}

type CompetencyScore struct {
	Competency string `json:"competency"`
	Score      int    `json:"score"`
}

type Assessment struct {
	AssessmentID string            `json:"assessmentId"`
	CandidateID  string            `json:"candidateId"`
	Status       string            `json:"status"`
	OverallScore int               `json:"overallScore"`
	Percentile   int               `json:"percentile"`
	Results      []CompetencyScore `json:"results"`
	CompletedAt  string            `json:"completedAt"`
}

type AssessmentCompleted struct {
	EventType  string     `json:"eventType"`
	Assessment Assessment `json:"assessment"`
}

type Checks struct {
	Criminal   string `json:"criminal"`
	Employment string `json:"employment"`
	Education  string `json:"education"`
}

type BackgroundCheck struct {
	CheckID      string `json:"checkId"`
	CandidateID  string `json:"candidateId"`
	Status       string `json:"status"`
	Adjudication string `json:"adjudication"`
	Checks       Checks `json:"checks"`
	CompletedAt  string `json:"completedAt"`
}

type BackgroundCheckCompleted struct {
	EventType       string          `json:"eventType"`
	BackgroundCheck BackgroundCheck `json:"backgroundCheck"`
}

// Synthesize builds the payload for req. now must be the delivery time, not
// the time the request was received.
func Synthesize(eventType models.EventType, id string, req models.DeliveryRequest, now time.Time) (any, error) {
	ts := now.UTC().Format(TimeFormat)

	switch eventType {
	case models.EventGeneric:
		return Generic{
			EventType:       "demo.webhook",
			ID:              id,
			OriginalPayload: req.RawBody,
			ProcessedAt:     ts,
		}, nil

	case models.EventAssessment:
		return AssessmentCompleted{
			EventType: "assessment.completed",
			Assessment: Assessment{
				AssessmentID: id,
				CandidateID:  candidateOrPlaceholder(req.CandidateID),
				Status:       "completed",
				OverallScore: 82,
				Percentile:   76,
				Results: []CompetencyScore{
					{Competency: "Problem Solving", Score: 85},
					{Competency: "Communication", Score: 78},
					{Competency: "Culture Fit", Score: 90},
				},
				CompletedAt: ts,
			},
		}, nil

	case models.EventBackgroundCheck:
		return BackgroundCheckCompleted{
			EventType: "background_check.completed",
			BackgroundCheck: BackgroundCheck{
				CheckID:      id,
				CandidateID:  candidateOrPlaceholder(req.CandidateID),
				Status:       "clear",
				Adjudication: "eligible",
				Checks: Checks{
					Criminal:   "clear",
					Employment: "verified",
					Education:  "verified",
				},
				CompletedAt: ts,
			},
		}, nil
	}

	return nil, fmt.Errorf("unsupported event type %q", eventType)
}

func candidateOrPlaceholder(id string) string {
	if id == "" {
		return PlaceholderCandidateID
	}
	return id
}
