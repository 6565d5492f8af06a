package policy

type OrderType string

const (
	OrderDineIn    OrderType = "dine-in"
	OrderTakeaway  OrderType = "takeaway"
	OrderQuickBill OrderType = "quick-bill"
)

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderPreparing OrderStatus = "preparing"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"

	// OrderPartiallyCancelled exists in the schema but has no wired
	// transitions; every query involving it answers false.
	OrderPartiallyCancelled OrderStatus = "partially-cancelled"
)

type ItemStatus string

const (
	ItemPlaced    ItemStatus = "placed"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemServed    ItemStatus = "served"
	ItemCancelled ItemStatus = "cancelled"
)

// Mode selects between the two variants of each status graph. With
// tracking disabled the kitchen-facing statuses (preparing/served for
// orders, preparing/ready/served for items) are not legal targets.
type Mode struct {
	TrackingEnabled bool
}

// orderEdges is the tracking-enabled progression graph, cancellation
// excluded (cancellation is gated per order type, not per edge).
var orderEdges = map[OrderStatus]OrderStatus{
	OrderPlaced:    OrderPreparing,
	OrderPreparing: OrderServed,
	OrderServed:    OrderPaid,
}

var itemEdges = map[ItemStatus]ItemStatus{
	ItemPlaced:    ItemPreparing,
	ItemPreparing: ItemReady,
	ItemReady:     ItemServed,
}

// OrderTransitionAllowed reports whether an order of the given type may
// move from one status to another under this mode. Callers must consult
// it even when the server supplied an allowed_next_states hint; the hint
// is advisory and may be stale.
func (m Mode) OrderTransitionAllowed(orderType OrderType, from, to OrderStatus) bool {
	if from == to || from == OrderPartiallyCancelled || to == OrderPartiallyCancelled {
		return false
	}

	if to == OrderCancelled {
		return m.orderCancellationAllowed(orderType, from)
	}

	// Payment is reachable from any editable status: counter flows
	// (takeaway, quick bill) collect before the kitchen ever touches
	// the order.
	if to == OrderPaid {
		return Editable(from)
	}

	if !m.TrackingEnabled {
		// Legal set collapses to placed/paid/cancelled.
		return false
	}

	return orderEdges[from] == to
}

func (m Mode) orderCancellationAllowed(orderType OrderType, from OrderStatus) bool {
	if from == OrderCancelled {
		return false
	}
	if orderType == OrderDineIn {
		// Dine-in may only be cancelled before the kitchen starts, and
		// never once paid.
		return from == OrderPlaced
	}
	// Takeaway and quick-bill allow refund-style cancellation from any
	// status, including paid.
	return true
}

// ItemTransitionAllowed reports whether a single order item may move
// between statuses under this mode.
func (m Mode) ItemTransitionAllowed(from, to ItemStatus) bool {
	if from == to {
		return false
	}

	if to == ItemCancelled {
		if !m.TrackingEnabled {
			return from == ItemPlaced
		}
		return from == ItemPlaced || from == ItemPreparing
	}

	if !m.TrackingEnabled {
		// Legal set collapses to placed/cancelled.
		return false
	}

	return itemEdges[from] == to
}

// Editable reports whether an order's items and prices may still change.
func Editable(status OrderStatus) bool {
	return status != OrderPaid && status != OrderCancelled
}

// NextOrderStatuses lists the statuses an order may move to, for UI
// action enablement. Order matters: progression first, cancellation last.
func (m Mode) NextOrderStatuses(orderType OrderType, from OrderStatus) []OrderStatus {
	candidates := []OrderStatus{OrderPreparing, OrderServed, OrderPaid, OrderCancelled}

	var next []OrderStatus
	for _, to := range candidates {
		if m.OrderTransitionAllowed(orderType, from, to) {
			next = append(next, to)
		}
	}
	return next
}
