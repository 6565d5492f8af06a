package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"restopos/internal/auth"
	"restopos/internal/logger"
	"restopos/internal/menu"
	"restopos/internal/notify"
	"restopos/internal/order"
	"restopos/internal/policy"
	"restopos/internal/store"
	"restopos/internal/table"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Narrow store surfaces: the reconciler applies pushed state locally and
// never calls back into the persistence API.
type OrderStore interface {
	Get(orderID uint) (*order.Order, bool)
	ApplyRemote(o *order.Order) bool
	RemoveLocal(orderID uint) bool
	ApplyItemUpdate(orderID, itemID uint, status policy.ItemStatus) (*order.Order, bool)
	Local() []*order.Order
}

type TableStore interface {
	Get(id uint) (*table.Table, bool)
	ApplyRemote(t *table.Table) bool
	RemoveLocal(id uint) bool
	Local() []*table.Table
}

type MenuStore interface {
	ApplyRemote(item *menu.Item) bool
	RemoveLocal(id uint) bool
	Local() []*menu.Item
}

// Conn is the subset of the websocket connection the reconciler uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

// Dialer opens the push channel. Injectable for tests.
type Dialer func(ctx context.Context, url string, header http.Header) (Conn, error)

func gorillaDialer(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

const (
	defaultMaxRetries = 5
	defaultRetryDelay = 3 * time.Second
)

// Reconciler maintains the websocket subscription and folds pushed
// entity state into the local stores. Remote state always wins over
// whatever this client holds.
type Reconciler struct {
	url          string
	token        string
	restaurantID uint

	orders OrderStore
	tables TableStore
	menus  MenuStore
	log    *notify.Log
	cache  *store.Cache

	dial       Dialer
	wait       func(ctx context.Context, d time.Duration)
	maxRetries int
	retryDelay time.Duration
	onState    func(online bool)

	mu     sync.Mutex
	online bool
	resume chan struct{}
}

type Option func(*Reconciler)

func WithDialer(d Dialer) Option {
	return func(r *Reconciler) { r.dial = d }
}

func WithRetry(max int, delay time.Duration) Option {
	return func(r *Reconciler) {
		r.maxRetries = max
		r.retryDelay = delay
	}
}

// WithWait replaces the inter-retry wait. Tests use it to run the
// reconnect loop without real delays.
func WithWait(fn func(ctx context.Context, d time.Duration)) Option {
	return func(r *Reconciler) { r.wait = fn }
}

// WithStateFunc registers a callback fired on every connectivity change.
func WithStateFunc(fn func(online bool)) Option {
	return func(r *Reconciler) { r.onState = fn }
}

func NewReconciler(url, token string, restaurantID uint, orders OrderStore, tables TableStore, menus MenuStore, log *notify.Log, cache *store.Cache, opts ...Option) *Reconciler {
	r := &Reconciler{
		url:          url,
		token:        token,
		restaurantID: restaurantID,
		orders:       orders,
		tables:       tables,
		menus:        menus,
		log:          log,
		cache:        cache,
		dial:         gorillaDialer,
		wait:         ctxWait,
		maxRetries:   defaultMaxRetries,
		retryDelay:   defaultRetryDelay,
		resume:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Online reports whether the push channel is currently connected.
func (r *Reconciler) Online() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online
}

// Reconnect resets the retry budget after it was exhausted and wakes the
// run loop. Safe to call at any time.
func (r *Reconciler) Reconnect() {
	select {
	case r.resume <- struct{}{}:
	default:
	}
}

// Run connects and processes pushed events until ctx is cancelled. After
// maxRetries consecutive failed connections it stops dialing and waits
// for an explicit Reconnect.
func (r *Reconciler) Run(ctx context.Context) error {
	log := logger.L().With(zap.String("component", "reconciler"))

	retries := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if retries >= r.maxRetries {
			log.Warn("retry budget exhausted, waiting for explicit reconnect",
				zap.Int("retries", retries))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.resume:
				retries = 0
			}
		}

		if err := auth.Validate(r.token, time.Now()); err != nil {
			// A rejected credential will not get better by retrying.
			log.Error("refusing to dial with invalid token", zap.Error(err))
			return err
		}

		header := http.Header{}
		header.Set("Authorization", "Bearer "+r.token)

		conn, err := r.dial(ctx, r.url, header)
		if err != nil {
			retries++
			log.Warn("push channel dial failed",
				zap.Error(err),
				zap.Int("attempt", retries),
			)
			r.wait(ctx, r.retryDelay)
			continue
		}

		retries = 0
		r.setOnline(true)
		log.Info("push channel connected", zap.String("url", r.url))

		err = r.readLoop(ctx, conn)
		r.setOnline(false)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("push channel closed", zap.Error(err))
		retries++
		r.wait(ctx, r.retryDelay)
	}
}

// ctxWait blocks for d or until ctx is cancelled, whichever comes first,
// so shutdown never waits out a backoff window.
func ctxWait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// readLoop consumes messages until the connection drops or ctx is
// cancelled. Cancellation closes the connection to unblock ReadMessage.
func (r *Reconciler) readLoop(ctx context.Context, conn Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		ev, err := DecodeEvent(raw)
		if err != nil {
			// A malformed message is the server's bug, not a reason to
			// drop the subscription.
			logger.L().Warn("dropping undecodable push message", zap.Error(err))
			continue
		}
		r.apply(ev)
	}
}

// apply folds one event into the stores and records exactly one
// notification for it.
func (r *Reconciler) apply(ev *Event) {
	log := logger.L().With(zap.String("component", "reconciler"))

	if ev.RestaurantID != 0 && ev.RestaurantID != r.restaurantID {
		log.Warn("event restaurant does not match session",
			zap.Uint("event_restaurant_id", ev.RestaurantID),
			zap.Uint("session_restaurant_id", r.restaurantID),
		)
	}

	switch ev.Type {
	case EventOrderUpdate:
		r.applyOrder(ev)
	case EventTableUpdate:
		r.applyTable(ev)
	case EventMenuItemUpdate:
		r.applyMenuItem(ev)
	case EventOrderItemStatus:
		r.applyItemStatus(ev)
	}
}

func (r *Reconciler) applyOrder(ev *Event) {
	if ev.Deleted != nil {
		r.orders.RemoveLocal(ev.Deleted.ID)
		r.cache.Put("orders", r.orders.Local())
		r.log.Add(notify.Notification{
			Type:     notify.TypeOrderUpdate,
			Message:  fmt.Sprintf("Order #%d removed", ev.Deleted.ID),
			EntityID: ev.Deleted.ID,
		})
		return
	}

	var details string
	if prev, ok := r.orders.Get(ev.Order.ID); ok && prev.Status != ev.Order.Status {
		details = fmt.Sprintf("%s → %s", prev.Status, ev.Order.Status)
	}

	added := r.orders.ApplyRemote(ev.Order)
	r.cache.Put("orders", r.orders.Local())

	msg := fmt.Sprintf("Order #%d updated", ev.Order.ID)
	if added {
		msg = fmt.Sprintf("New order #%d placed", ev.Order.ID)
	}
	r.log.Add(notify.Notification{
		Type:     notify.TypeOrderUpdate,
		Message:  msg,
		Details:  details,
		EntityID: ev.Order.ID,
	})
}

func (r *Reconciler) applyTable(ev *Event) {
	if ev.Deleted != nil {
		r.tables.RemoveLocal(ev.Deleted.ID)
		r.cache.Put("tables", r.tables.Local())
		r.log.Add(notify.Notification{
			Type:     notify.TypeTableUpdate,
			Message:  "Table removed",
			EntityID: ev.Deleted.ID,
		})
		return
	}

	var details string
	if prev, ok := r.tables.Get(ev.Table.ID); ok && prev.Status != ev.Table.Status {
		details = fmt.Sprintf("%s → %s", prev.Status, ev.Table.Status)
	}

	added := r.tables.ApplyRemote(ev.Table)
	r.cache.Put("tables", r.tables.Local())

	msg := fmt.Sprintf("Table %d updated", ev.Table.TableNumber)
	if added {
		msg = fmt.Sprintf("Table %d added", ev.Table.TableNumber)
	}
	r.log.Add(notify.Notification{
		Type:     notify.TypeTableUpdate,
		Message:  msg,
		Details:  details,
		EntityID: ev.Table.ID,
	})
}

func (r *Reconciler) applyMenuItem(ev *Event) {
	if ev.Deleted != nil {
		r.menus.RemoveLocal(ev.Deleted.ID)
		r.cache.Put("menu_items", r.menus.Local())
		r.log.Add(notify.Notification{
			Type:     notify.TypeMenuItemUpdate,
			Message:  "Menu item removed",
			EntityID: ev.Deleted.ID,
		})
		return
	}

	added := r.menus.ApplyRemote(ev.MenuItem)
	r.cache.Put("menu_items", r.menus.Local())

	msg := fmt.Sprintf("%s updated", ev.MenuItem.Name)
	if added {
		msg = fmt.Sprintf("%s added to the menu", ev.MenuItem.Name)
	}
	r.log.Add(notify.Notification{
		Type:     notify.TypeMenuItemUpdate,
		Message:  msg,
		EntityID: ev.MenuItem.ID,
	})
}

func (r *Reconciler) applyItemStatus(ev *Event) {
	if ev.Deleted != nil {
		// Item removals arrive as a full order_update snapshot; a bare
		// deletion marker on this event type has nothing to patch.
		logger.L().Warn("ignoring deletion marker on item status event",
			zap.Uint("item_id", ev.Deleted.ID),
		)
		return
	}

	upd := ev.ItemStatus

	var details string
	if prev, ok := r.orders.Get(upd.OrderID); ok {
		if idx := prev.Item(upd.ID); idx >= 0 && prev.Items[idx].Status != upd.Status {
			details = fmt.Sprintf("%s → %s", prev.Items[idx].Status, upd.Status)
		}
	}

	if _, ok := r.orders.ApplyItemUpdate(upd.OrderID, upd.ID, upd.Status); !ok {
		logger.L().Warn("item status for unknown order or item",
			zap.Uint("order_id", upd.OrderID),
			zap.Uint("item_id", upd.ID),
		)
		return
	}
	r.cache.Put("orders", r.orders.Local())

	r.log.Add(notify.Notification{
		Type:     notify.TypeOrderItemStatusUpdate,
		Message:  fmt.Sprintf("Order #%d: item is %s", upd.OrderID, upd.Status),
		Details:  details,
		EntityID: upd.OrderID,
	})
}

func (r *Reconciler) setOnline(v bool) {
	r.mu.Lock()
	changed := r.online != v
	r.online = v
	r.mu.Unlock()

	if changed && r.onState != nil {
		r.onState(v)
	}
}
