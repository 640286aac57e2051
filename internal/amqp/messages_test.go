package amqp

import (
	"testing"
	"time"
)

func TestRecomputeMessageRoundTrip(t *testing.T) {
	msg := NewRecomputeMessage("trip-42", ReasonExpenseCreated)
	if msg.Timestamp.IsZero() {
		t.Fatal("NewRecomputeMessage should stamp the message")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := RecomputeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("RecomputeMessageFromJSON() error = %v", err)
	}
	if decoded.TripID != "trip-42" {
		t.Errorf("TripID = %q, want trip-42", decoded.TripID)
	}
	if decoded.Reason != ReasonExpenseCreated {
		t.Errorf("Reason = %q, want %q", decoded.Reason, ReasonExpenseCreated)
	}
	if !decoded.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestRecomputeMessageFromJSONInvalid(t *testing.T) {
	if _, err := RecomputeMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
