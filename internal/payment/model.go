package payment

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
	MethodUPI  Method = "upi"
)

// Payment records the rounded, post-adjustment amount actually
// collected. Created once per completed checkout; immutable afterwards
// except for status correction.
type Payment struct {
	ID            uint    `json:"id"`
	OrderID       uint    `json:"order_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod Method  `json:"payment_method"`
	PaymentStatus Status  `json:"payment_status"`
	TransactionID string  `json:"transaction_id"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}
