package metrics

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Sink records request and delivery metrics.
// Implementations must not block and must never fail the caller.
type Sink interface {
	RequestAccepted(eventType string)
	RequestRejected(code string)
	DeliveryScheduled()
	DeliveryCompleted(eventType, statusClass string, duration time.Duration)
	DeliveryAbandoned()
}

// Outcome labels for delivery results.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// Status classes for delivery attempts.
const (
	StatusClass2xx             = "2xx"
	StatusClass3xx             = "3xx"
	StatusClass4xx             = "4xx"
	StatusClass5xx             = "5xx"
	StatusClassTimeout         = "timeout"
	StatusClassConnectionError = "connection_error"
	StatusClassOtherError      = "other_error"
)

// ClassifyStatus maps a delivery result to a status class. A non-nil err
// takes precedence over statusCode.
func ClassifyStatus(statusCode int, err error) string {
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return StatusClassTimeout
		}
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
			strings.Contains(msg, "network is unreachable") || strings.Contains(msg, "dial") {
			return StatusClassConnectionError
		}
		if statusCode == 0 {
			return StatusClassOtherError
		}
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return StatusClass2xx
	case statusCode >= 300 && statusCode < 400:
		return StatusClass3xx
	case statusCode >= 400 && statusCode < 500:
		return StatusClass4xx
	case statusCode >= 500:
		return StatusClass5xx
	default:
		return StatusClassOtherError
	}
}

// OutcomeFor reports whether a status class counts as delivered.
func OutcomeFor(statusClass string) string {
	if statusClass == StatusClass2xx {
		return OutcomeDelivered
	}
	return OutcomeFailed
}
