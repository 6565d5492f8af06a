package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restopos/internal/apperr"
	"restopos/internal/logger"
	"restopos/internal/notify"
	"restopos/internal/policy"
	"restopos/internal/restaurant"
	"restopos/internal/store"

	"go.uber.org/zap"
)

const cacheKey = "orders"

// Service owns the canonical in-memory order collection. Every mutation
// runs the transition policy and the tax engine before touching the
// persistence API, and the entity returned by the server is what lands
// in the collection; callers treat it as authoritative over any copy
// they hold.
type Service interface {
	Create(ctx context.Context, draft *Order) (*Order, error)
	UpdateItems(ctx context.Context, orderID uint, newItems []OrderItem) (*Order, error)
	SetStatus(ctx context.Context, orderID uint, status policy.OrderStatus) (*Order, error)
	SetItemStatus(ctx context.Context, orderID, itemID uint, status policy.ItemStatus) (*Order, error)
	Delete(ctx context.Context, orderID uint) error

	Get(orderID uint) (*Order, bool)
	List(ctx context.Context) ([]*Order, error)
	Refresh(ctx context.Context) error

	// Realtime hooks: local-only application of pushed state.
	ApplyRemote(o *Order) bool
	RemoveLocal(orderID uint) bool
	ApplyItemUpdate(orderID, itemID uint, status policy.ItemStatus) (*Order, bool)
	Local() []*Order
}

type service struct {
	repo     Repository
	settings restaurant.Provider
	reporter notify.Reporter
	coll     *store.Collection[*Order]
	cache    *store.Cache
}

func NewService(repo Repository, settings restaurant.Provider, reporter notify.Reporter, cache *store.Cache) Service {
	return &service{
		repo:     repo,
		settings: settings,
		reporter: reporter,
		coll:     store.NewCollection[*Order](),
		cache:    cache,
	}
}

func (s *service) Create(ctx context.Context, draft *Order) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(draft.Items)),
	)

	if len(draft.Items) == 0 {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, ErrEmptyDraft)
	}

	o := draft.Clone()
	if o.Status == "" {
		o.Status = policy.OrderPlaced
	}
	for i := range o.Items {
		if o.Items[i].Status == "" {
			o.Items[i].Status = policy.ItemPlaced
		}
	}
	if o.SGSTRate == 0 && o.CGSTRate == 0 {
		o.SGSTRate, o.CGSTRate = s.settings.DefaultRates()
	}
	if o.OrderTime.IsZero() {
		o.OrderTime = time.Now()
	}
	applyTotals(o)

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		s.reporter.Failure("Failed to create order")
		return nil, err
	}

	s.coll.Upsert(created)
	s.reporter.Success(fmt.Sprintf("Order #%d created", created.ID))
	log.Info("order created",
		zap.Uint("order_id", created.ID),
		zap.Float64("total_amount", created.TotalAmount),
	)
	return created.Clone(), nil
}

// UpdateItems merges the new lines into the order: an existing line for
// the same menu item gets its quantity incremented, a new line is
// appended. Totals are recomputed before persisting.
func (s *service) UpdateItems(ctx context.Context, orderID uint, newItems []OrderItem) (*Order, error) {
	current, err := s.resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !policy.Editable(current.Status) {
		s.reporter.Failure("Order can no longer be edited")
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidTransition, ErrNotEditable)
	}

	o := current.Clone()
	for _, incoming := range newItems {
		merged := false
		for i := range o.Items {
			if o.Items[i].MenuItemID == incoming.MenuItemID && o.Items[i].Status != policy.ItemCancelled {
				o.Items[i].Quantity += incoming.Quantity
				merged = true
				break
			}
		}
		if !merged {
			if incoming.Status == "" {
				incoming.Status = policy.ItemPlaced
			}
			incoming.OrderID = o.ID
			o.Items = append(o.Items, incoming)
		}
	}
	applyTotals(o)

	updated, err := s.repo.Update(ctx, o)
	if err != nil {
		s.onRepoError(ctx, err, "Failed to update order")
		return nil, err
	}

	s.coll.Upsert(updated)
	s.reporter.Success(fmt.Sprintf("Order #%d updated", updated.ID))
	return updated.Clone(), nil
}

func (s *service) SetStatus(ctx context.Context, orderID uint, status policy.OrderStatus) (*Order, error) {
	current, err := s.resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.settings.Mode().OrderTransitionAllowed(current.OrderType, current.Status, status) {
		msg := fmt.Sprintf("Cannot move %s order from %s to %s", current.OrderType, current.Status, status)
		s.reporter.Failure(msg)
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidTransition, msg)
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		s.onRepoError(ctx, err, "Failed to update order status")
		return nil, err
	}

	s.coll.Upsert(updated)
	s.reporter.Success(fmt.Sprintf("Order #%d is now %s", updated.ID, updated.Status))
	return updated.Clone(), nil
}

func (s *service) SetItemStatus(ctx context.Context, orderID, itemID uint, status policy.ItemStatus) (*Order, error) {
	current, err := s.resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}

	idx := current.Item(itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNotFound, ErrItemNotFound)
	}

	if !s.settings.Mode().ItemTransitionAllowed(current.Items[idx].Status, status) {
		msg := fmt.Sprintf("Cannot move item from %s to %s", current.Items[idx].Status, status)
		s.reporter.Failure(msg)
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidTransition, msg)
	}

	updated, err := s.repo.UpdateItemStatus(ctx, orderID, itemID, status)
	if err != nil {
		s.onRepoError(ctx, err, "Failed to update item status")
		return nil, err
	}

	// Cancelling a line changes the subtotal; recompute rather than
	// trusting a possibly older totals snapshot.
	if status == policy.ItemCancelled {
		updated = updated.Clone()
		applyTotals(updated)
	}

	s.coll.Upsert(updated)
	s.reporter.Success(fmt.Sprintf("Item marked %s", status))
	return updated.Clone(), nil
}

func (s *service) Delete(ctx context.Context, orderID uint) error {
	if err := s.repo.Delete(ctx, orderID); err != nil {
		s.onRepoError(ctx, err, "Failed to delete order")
		return err
	}
	s.coll.Remove(orderID)
	s.reporter.Success(fmt.Sprintf("Order #%d deleted", orderID))
	return nil
}

func (s *service) Get(orderID uint) (*Order, bool) {
	return s.coll.Get(orderID)
}

// List serves from the local collection when the reconciler has kept the
// cache fresh, reconciling with the server in the background; otherwise
// it fetches synchronously.
func (s *service) List(ctx context.Context) ([]*Order, error) {
	if _, _, ok := s.cache.Get(cacheKey); ok {
		go func() {
			if err := s.Refresh(context.Background()); err != nil {
				logger.L().Warn("background order refresh failed", zap.Error(err))
			}
		}()
		return s.coll.List(), nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.coll.List(), nil
}

func (s *service) Refresh(ctx context.Context) error {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	s.coll.Replace(orders)
	s.cache.Put(cacheKey, s.coll.List())
	return nil
}

func (s *service) ApplyRemote(o *Order) bool {
	return s.coll.Upsert(o)
}

func (s *service) RemoveLocal(orderID uint) bool {
	return s.coll.Remove(orderID)
}

// ApplyItemUpdate patches a single nested item copy-on-write, leaving
// every other field of the order untouched.
func (s *service) ApplyItemUpdate(orderID, itemID uint, status policy.ItemStatus) (*Order, bool) {
	current, ok := s.coll.Get(orderID)
	if !ok {
		return nil, false
	}

	idx := current.Item(itemID)
	if idx < 0 {
		return nil, false
	}

	patched := current.Clone()
	patched.Items[idx].Status = status
	s.coll.Upsert(patched)
	return patched.Clone(), true
}

func (s *service) Local() []*Order {
	return s.coll.List()
}

// resolve prefers the owned collection and falls back to the server for
// ids this client has not seen yet.
func (s *service) resolve(ctx context.Context, orderID uint) (*Order, error) {
	if o, ok := s.coll.Get(orderID); ok {
		return o, nil
	}

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		s.onRepoError(ctx, err, "Order not found")
		return nil, err
	}
	s.coll.Upsert(o)
	return o.Clone(), nil
}

// onRepoError reports the failure and, for stale local references,
// kicks off a background resync of the collection.
func (s *service) onRepoError(ctx context.Context, err error, msg string) {
	s.reporter.Failure(msg)
	if errors.Is(err, apperr.ErrNotFound) {
		logger.FromCtx(ctx).Warn("stale order reference, resyncing", zap.Error(err))
		go func() {
			if refreshErr := s.Refresh(context.Background()); refreshErr != nil {
				logger.L().Warn("order resync failed", zap.Error(refreshErr))
			}
		}()
	}
}
