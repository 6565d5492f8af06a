package order

import (
	"time"

	"restopos/internal/policy"
)

type Order struct {
	ID        uint               `json:"id,omitempty"`
	OrderType policy.OrderType   `json:"order_type"`
	Status    policy.OrderStatus `json:"status"`
	TableID   *uint              `json:"table_id,omitempty"`
	Items     []OrderItem        `json:"items"`

	// Derived amounts; never hand-set once items exist.
	SubTotal    float64 `json:"sub_total"`
	SGSTRate    float64 `json:"sgst_rate"`
	CGSTRate    float64 `json:"cgst_rate"`
	SGSTAmount  float64 `json:"sgst_amount"`
	CGSTAmount  float64 `json:"cgst_amount"`
	TotalAmount float64 `json:"total_amount"`

	PaymentMethod string `json:"payment_method,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`

	TokenNumber int       `json:"token_number,omitempty"`
	Server      string    `json:"server,omitempty"`
	StaffID     uint      `json:"staff_id,omitempty"`
	OrderTime   time.Time `json:"order_time"`

	// Advisory hint from the server; the local policy still runs.
	AllowedNextStates []policy.OrderStatus `json:"allowed_next_states,omitempty"`
}

type OrderItem struct {
	ID         uint `json:"id,omitempty"`
	OrderID    uint `json:"order_id,omitempty"`
	MenuItemID uint `json:"menu_item_id"`

	// Name and price are snapshots taken at order time, not live menu
	// references; historical orders stay stable across price changes.
	Name  string  `json:"name"`
	Price float64 `json:"price"`

	Quantity     int               `json:"quantity"`
	Status       policy.ItemStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	IncludeInGST bool              `json:"include_in_gst"`

	AllowedNextStates []policy.ItemStatus `json:"allowed_next_states,omitempty"`
}

func (o *Order) EntityID() uint { return o.ID }

func (o *Order) Clone() *Order {
	cp := *o
	if o.TableID != nil {
		tid := *o.TableID
		cp.TableID = &tid
	}
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.AllowedNextStates = append([]policy.OrderStatus(nil), o.AllowedNextStates...)
	for i := range cp.Items {
		cp.Items[i].AllowedNextStates = append([]policy.ItemStatus(nil), o.Items[i].AllowedNextStates...)
	}
	return &cp
}

// Item returns the index of the item with the given id, or -1.
func (o *Order) Item(itemID uint) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
