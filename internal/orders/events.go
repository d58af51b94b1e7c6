package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderDelivered = "OrderDelivered"
	EventOrderCancelled = "OrderCancelled"
	EventReturnResolved = "ReturnResolved"
)

const (
	TopicOrderCreated   = "order.created"
	TopicOrderDelivered = "order.delivered"
	TopicOrderCancelled = "order.cancelled"
	TopicReturnResolved = "order.return.resolved"
)

// PartitionKey keeps all events of one order on one partition so they
// stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	TotalPrice  float64 `json:"total_price"`
	TotalCarbon float64 `json:"total_carbon"`
	TotalItems  int     `json:"total_items"`
}

// OrderDeliveredPayload carries the eco score movement so downstream
// projections (leaderboard) need no extra queries.
type OrderDeliveredPayload struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ScoreAward  int    `json:"score_award"`
	NewEcoScore int    `json:"new_eco_score"`
}

type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type ReturnResolvedPayload struct {
	OrderID     string       `json:"order_id"`
	UserID      string       `json:"user_id"`
	Resolution  ReturnStatus `json:"resolution"` // APPROVED | REJECTED
	ScoreReturn int          `json:"score_return,omitempty"`
	NewEcoScore int          `json:"new_eco_score,omitempty"`
}
