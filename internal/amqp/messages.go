package amqp

import (
	"encoding/json"
	"time"
)

// Recompute reasons, carried for observability only; the worker always
// recomputes from the current snapshot.
const (
	ReasonExpenseCreated   = "expense_created"
	ReasonExpenseDeleted   = "expense_deleted"
	ReasonBudgetChanged    = "budget_changed"
	ReasonMemberAdded      = "member_added"
	ReasonPlannedCostAdded = "planned_cost_added"
)

// RecomputeMessage asks the worker to rebuild the ledger report for one
// trip. It is deliberately lightweight: the worker fetches the snapshot
// itself, so a stale message can never overwrite fresher data.
type RecomputeMessage struct {
	TripID    string    `json:"trip_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecomputeMessage(tripID, reason string) *RecomputeMessage {
	return &RecomputeMessage{
		TripID:    tripID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *RecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecomputeMessageFromJSON(data []byte) (*RecomputeMessage, error) {
	var msg RecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
