package metrics

import "time"

// NoopSink discards everything. Used when metrics are disabled and in tests.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (NoopSink) RequestAccepted(eventType string)                                        {}
func (NoopSink) RequestRejected(code string)                                             {}
func (NoopSink) DeliveryScheduled()                                                      {}
func (NoopSink) DeliveryCompleted(eventType, statusClass string, duration time.Duration) {}
func (NoopSink) DeliveryAbandoned()                                                      {}
