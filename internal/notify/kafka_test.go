package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	failures int
	calls    int
	messages []kafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestNewKafkaPublisherValidation(t *testing.T) {
	if _, err := NewKafkaPublisher(KafkaPublisherConfig{Topic: "alerts"}); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewKafkaPublisher(KafkaPublisherConfig{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Error("expected error without topic")
	}
}

func TestSendProducesNotification(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, maxAttempts: 3}

	err := p.Send(context.Background(), "SUPPLY RISK ALERT - Wheat", "body text", []string{"ops@example.com"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(w.messages))
	}

	msg := w.messages[0]
	if string(msg.Key) != "SUPPLY RISK ALERT - Wheat" {
		t.Errorf("key = %q, want the subject", msg.Key)
	}
	var n Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if n.Body != "body text" || len(n.Recipients) != 1 {
		t.Errorf("notification = %+v", n)
	}
	if n.SentAt.IsZero() {
		t.Error("SentAt not set")
	}
}

func TestSendRetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := &KafkaPublisher{writer: w, maxAttempts: 3}

	if err := p.Send(context.Background(), "subj", "body", nil); err != nil {
		t.Fatalf("Send after retries: %v", err)
	}
	if w.calls != 3 {
		t.Errorf("writer called %d times, want 3", w.calls)
	}
}

func TestSendGivesUpAfterMaxAttempts(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := &KafkaPublisher{writer: w, maxAttempts: 2}

	start := time.Now()
	err := p.Send(context.Background(), "subj", "body", nil)
	if err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	if w.calls != 2 {
		t.Errorf("writer called %d times, want 2", w.calls)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("backoff took %v, too long for 2 attempts", elapsed)
	}
}
