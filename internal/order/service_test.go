package order

import (
	"context"
	"testing"

	"restopos/internal/apperr"
	"restopos/internal/payment"
	"restopos/internal/policy"
	"restopos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id uint) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, o *Order) (*Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, o *Order) (*Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uint, status policy.OrderStatus) (*Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) UpdateItemStatus(ctx context.Context, orderID, itemID uint, status policy.ItemStatus) (*Order, error) {
	args := m.Called(ctx, orderID, itemID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock for the payment repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id uint, status payment.Status) (*payment.Payment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

// stubProvider is a fixed tenant configuration
type stubProvider struct {
	tracking   bool
	sgst, cgst float64
}

func (p stubProvider) Mode() policy.Mode                { return policy.Mode{TrackingEnabled: p.tracking} }
func (p stubProvider) DefaultRates() (float64, float64) { return p.sgst, p.cgst }

type nopReporter struct{}

func (nopReporter) Success(string) {}
func (nopReporter) Failure(string) {}

func newTestService(repo Repository, provider stubProvider) Service {
	return NewService(repo, provider, nopReporter{}, store.NewCache())
}

func draftWithItems() *Order {
	return &Order{
		OrderType: policy.OrderTakeaway,
		Items: []OrderItem{
			{MenuItemID: 1, Name: "Paneer Tikka", Price: 100, Quantity: 2, IncludeInGST: true},
			{MenuItemID: 2, Name: "Bottled Water", Price: 50, Quantity: 1, IncludeInGST: false},
		},
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Defaults and totals applied", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true, sgst: 2.5, cgst: 2.5})

		mockRepo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.Status == policy.OrderPlaced &&
				o.SGSTRate == 2.5 && o.CGSTRate == 2.5 &&
				o.SubTotal == 250 && o.SGSTAmount == 5 && o.CGSTAmount == 5 &&
				o.TotalAmount == 260
		})).Return(&Order{ID: 12, Status: policy.OrderPlaced, TotalAmount: 260}, nil).Once()

		created, err := svc.Create(ctx, draftWithItems())

		assert.NoError(t, err)
		assert.Equal(t, uint(12), created.ID)
		got, ok := svc.Get(12)
		assert.True(t, ok)
		assert.Equal(t, uint(12), got.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Explicit rates win over defaults", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{sgst: 2.5, cgst: 2.5})

		draft := draftWithItems()
		draft.SGSTRate = 9
		draft.CGSTRate = 9

		mockRepo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.SGSTRate == 9 && o.CGSTRate == 9
		})).Return(&Order{ID: 13}, nil).Once()

		_, err := svc.Create(ctx, draft)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Empty draft rejected before any network call", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{})

		_, err := svc.Create(ctx, &Order{OrderType: policy.OrderDineIn})

		assert.ErrorIs(t, err, apperr.ErrValidation)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestService_UpdateItems(t *testing.T) {
	ctx := context.Background()

	existing := &Order{
		ID:        5,
		OrderType: policy.OrderDineIn,
		Status:    policy.OrderPlaced,
		SGSTRate:  2.5,
		CGSTRate:  2.5,
		Items: []OrderItem{
			{ID: 50, MenuItemID: 1, Name: "Paneer Tikka", Price: 100, Quantity: 2, Status: policy.ItemPlaced, IncludeInGST: true},
		},
	}

	t.Run("Success - Merge by menu item and append new", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		svc.ApplyRemote(existing.Clone())

		mockRepo.On("Update", ctx, mock.MatchedBy(func(o *Order) bool {
			return len(o.Items) == 2 &&
				o.Items[0].Quantity == 3 && // 2 + 1 merged
				o.Items[1].MenuItemID == 2 &&
				o.Items[1].Status == policy.ItemPlaced
		})).Return(existing.Clone(), nil).Once()

		_, err := svc.UpdateItems(ctx, 5, []OrderItem{
			{MenuItemID: 1, Name: "Paneer Tikka", Price: 100, Quantity: 1, IncludeInGST: true},
			{MenuItemID: 2, Name: "Lassi", Price: 60, Quantity: 1, IncludeInGST: true},
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Paid order is not editable", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		paid := existing.Clone()
		paid.Status = policy.OrderPaid
		svc.ApplyRemote(paid)

		_, err := svc.UpdateItems(ctx, 5, []OrderItem{{MenuItemID: 3, Quantity: 1}})

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		mockRepo.AssertNotCalled(t, "Update")
	})
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()

	seed := func(svc Service, orderType policy.OrderType, status policy.OrderStatus) {
		svc.ApplyRemote(&Order{ID: 5, OrderType: orderType, Status: status})
	}

	t.Run("Success - Served to paid", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		seed(svc, policy.OrderDineIn, policy.OrderServed)

		mockRepo.On("UpdateStatus", ctx, uint(5), policy.OrderPaid).
			Return(&Order{ID: 5, OrderType: policy.OrderDineIn, Status: policy.OrderPaid}, nil).Once()

		updated, err := svc.SetStatus(ctx, 5, policy.OrderPaid)

		assert.NoError(t, err)
		assert.Equal(t, policy.OrderPaid, updated.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Dine-in served cannot cancel", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		seed(svc, policy.OrderDineIn, policy.OrderServed)

		_, err := svc.SetStatus(ctx, 5, policy.OrderCancelled)

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		mockRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("Success - Takeaway paid can cancel", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		seed(svc, policy.OrderTakeaway, policy.OrderPaid)

		mockRepo.On("UpdateStatus", ctx, uint(5), policy.OrderCancelled).
			Return(&Order{ID: 5, OrderType: policy.OrderTakeaway, Status: policy.OrderCancelled}, nil).Once()

		_, err := svc.SetStatus(ctx, 5, policy.OrderCancelled)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Tracking disabled rejects preparing", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: false})
		seed(svc, policy.OrderDineIn, policy.OrderPlaced)

		_, err := svc.SetStatus(ctx, 5, policy.OrderPreparing)

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		mockRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("Error - Advisory hint does not bypass policy", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		svc.ApplyRemote(&Order{
			ID:                5,
			OrderType:         policy.OrderDineIn,
			Status:            policy.OrderServed,
			AllowedNextStates: []policy.OrderStatus{policy.OrderCancelled}, // stale hint
		})

		_, err := svc.SetStatus(ctx, 5, policy.OrderCancelled)

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		mockRepo.AssertNotCalled(t, "UpdateStatus")
	})
}

func TestService_SetItemStatus(t *testing.T) {
	ctx := context.Background()

	seeded := &Order{
		ID:        3,
		OrderType: policy.OrderDineIn,
		Status:    policy.OrderPlaced,
		SGSTRate:  2.5,
		CGSTRate:  2.5,
		Items: []OrderItem{
			{ID: 7, MenuItemID: 1, Price: 100, Quantity: 2, Status: policy.ItemPlaced, IncludeInGST: true},
			{ID: 8, MenuItemID: 2, Price: 50, Quantity: 1, Status: policy.ItemPlaced, IncludeInGST: true},
		},
	}

	t.Run("Success - Cancellation recomputes totals", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		svc.ApplyRemote(seeded.Clone())

		serverCopy := seeded.Clone()
		serverCopy.Items[0].Status = policy.ItemCancelled
		mockRepo.On("UpdateItemStatus", ctx, uint(3), uint(7), policy.ItemCancelled).
			Return(serverCopy, nil).Once()

		updated, err := svc.SetItemStatus(ctx, 3, 7, policy.ItemCancelled)

		assert.NoError(t, err)
		assert.Equal(t, 50.0, updated.SubTotal)
		assert.InDelta(t, 52.5, updated.TotalAmount, 1e-9)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Served item cannot cancel", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		served := seeded.Clone()
		served.Items[0].Status = policy.ItemServed
		svc.ApplyRemote(served)

		_, err := svc.SetItemStatus(ctx, 3, 7, policy.ItemCancelled)

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		mockRepo.AssertNotCalled(t, "UpdateItemStatus")
	})

	t.Run("Error - Unknown item", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{tracking: true})
		svc.ApplyRemote(seeded.Clone())

		_, err := svc.SetItemStatus(ctx, 3, 99, policy.ItemCancelled)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_ApplyItemUpdate(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := newTestService(mockRepo, stubProvider{tracking: true})

	other := &Order{ID: 4, Status: policy.OrderPlaced}
	svc.ApplyRemote(other.Clone())
	svc.ApplyRemote(&Order{
		ID:          3,
		Status:      policy.OrderPreparing,
		TotalAmount: 260,
		Items: []OrderItem{
			{ID: 7, Status: policy.ItemPreparing},
			{ID: 8, Status: policy.ItemPlaced},
		},
	})

	patched, ok := svc.ApplyItemUpdate(3, 7, policy.ItemReady)

	assert.True(t, ok)
	assert.Equal(t, policy.ItemReady, patched.Items[0].Status)
	// Everything else untouched
	assert.Equal(t, policy.ItemPlaced, patched.Items[1].Status)
	assert.Equal(t, policy.OrderPreparing, patched.Status)
	assert.Equal(t, 260.0, patched.TotalAmount)
	untouched, _ := svc.Get(4)
	assert.Equal(t, other.Status, untouched.Status)

	_, ok = svc.ApplyItemUpdate(3, 99, policy.ItemReady)
	assert.False(t, ok)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Cold cache fetches synchronously", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{})

		mockRepo.On("List", ctx).Return([]*Order{{ID: 1}, {ID: 2}}, nil).Once()

		orders, err := svc.List(ctx)

		assert.NoError(t, err)
		assert.Len(t, orders, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Fetch failure propagates", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo, stubProvider{})

		mockRepo.On("List", ctx).Return(nil, assert.AnError).Once()

		_, err := svc.List(ctx)

		assert.Error(t, err)
	})
}
