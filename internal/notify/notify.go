// Package notify holds the engine's outbound alert sinks: a log sink for
// development and a Kafka publisher that downstream consumers (email relay,
// dashboards) drain.
package notify

import (
	"context"
	"log"
	"strings"
	"time"
)

// LogSink writes notifications to the process log instead of delivering them.
// It is the default sink when no brokers are configured.
type LogSink struct{}

func (LogSink) Send(_ context.Context, subject, body string, recipients []string) error {
	log.Printf("[notify] to=%s subject=%q body=%d bytes", strings.Join(recipients, ","), subject, len(body))
	return nil
}

// Notification is the wire shape produced onto the alert topic.
type Notification struct {
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	SentAt     time.Time `json:"sentAt"`
}
