package realtime

import (
	"encoding/json"
	"fmt"

	"restopos/internal/apperr"
	"restopos/internal/menu"
	"restopos/internal/order"
	"restopos/internal/policy"
	"restopos/internal/table"
)

type EventType string

const (
	EventTableUpdate     EventType = "table_update"
	EventOrderUpdate     EventType = "order_update"
	EventMenuItemUpdate  EventType = "menu_item_update"
	EventOrderItemStatus EventType = "order_item_status_update"
)

// envelope is the single inbound message shape of the push channel.
type envelope struct {
	Type         EventType       `json:"type"`
	Data         json.RawMessage `json:"data"`
	RestaurantID uint            `json:"restaurant_id"`
}

// Event is the decoded tagged union: exactly one of the variant fields
// is set. Decoding happens once here, at the channel boundary, instead
// of ad hoc type checks at every call site.
type Event struct {
	Type         EventType
	RestaurantID uint

	// Deletion-marker variant: set when data carried deleted=true.
	Deleted *Deletion

	Order      *order.Order
	Table      *table.Table
	MenuItem   *menu.Item
	ItemStatus *ItemStatusUpdate
}

type Deletion struct {
	ID uint
}

type ItemStatusUpdate struct {
	ID      uint              `json:"id"`
	OrderID uint              `json:"order_id"`
	Status  policy.ItemStatus `json:"status"`
}

// DecodeEvent parses a raw push message into its variant.
func DecodeEvent(raw []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed push message: %v", apperr.ErrValidation, err)
	}

	ev := &Event{Type: env.Type, RestaurantID: env.RestaurantID}

	var marker struct {
		ID      uint `json:"id"`
		Deleted bool `json:"deleted"`
	}
	if err := json.Unmarshal(env.Data, &marker); err != nil {
		return nil, fmt.Errorf("%w: malformed event data: %v", apperr.ErrValidation, err)
	}
	if marker.Deleted {
		ev.Deleted = &Deletion{ID: marker.ID}
		return ev, nil
	}

	switch env.Type {
	case EventOrderUpdate:
		var o order.Order
		if err := json.Unmarshal(env.Data, &o); err != nil {
			return nil, fmt.Errorf("%w: malformed order event: %v", apperr.ErrValidation, err)
		}
		ev.Order = &o

	case EventTableUpdate:
		var t table.Table
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return nil, fmt.Errorf("%w: malformed table event: %v", apperr.ErrValidation, err)
		}
		ev.Table = &t

	case EventMenuItemUpdate:
		var item menu.Item
		if err := json.Unmarshal(env.Data, &item); err != nil {
			return nil, fmt.Errorf("%w: malformed menu event: %v", apperr.ErrValidation, err)
		}
		ev.MenuItem = &item

	case EventOrderItemStatus:
		var upd ItemStatusUpdate
		if err := json.Unmarshal(env.Data, &upd); err != nil {
			return nil, fmt.Errorf("%w: malformed item status event: %v", apperr.ErrValidation, err)
		}
		ev.ItemStatus = &upd

	default:
		return nil, fmt.Errorf("%w: unknown event type %q", apperr.ErrValidation, env.Type)
	}

	return ev, nil
}
