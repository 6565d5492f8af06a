package order

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"restopos/internal/apperr"
	"restopos/internal/logger"
	"restopos/internal/payment"
	"restopos/internal/policy"
	"restopos/internal/tax"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutSession manages the window between an assembled cart and a
// persisted order, for one payment dialog instance. It guarantees the
// order is created at most once no matter which of print-bill, pay, or
// print-then-pay the user triggers, and in what order.
type CheckoutSession struct {
	id       uuid.UUID
	orders   Service
	payments payment.Repository

	mu           sync.Mutex
	draft        *Order // cart not yet persisted, nil when opened on an existing order
	persisted    *Order // order that already existed when the dialog opened
	materialized *Order // single slot: the order this session created
}

type PayParams struct {
	Method payment.Method
	// CashGiven is the raw user input; validated before any network
	// call is made.
	CashGiven string
}

type PaymentResult struct {
	Order    *Order
	Payment  *payment.Payment
	Rounding tax.Rounding
}

// NewCheckoutSession opens a session over either a draft (nil persisted)
// or an already-persisted order (nil draft).
func NewCheckoutSession(orders Service, payments payment.Repository, draft, persisted *Order) *CheckoutSession {
	return &CheckoutSession{
		id:        uuid.New(),
		orders:    orders,
		payments:  payments,
		draft:     draft,
		persisted: persisted,
	}
}

// PrintBill returns the order whose data the receipt should render,
// materializing the draft first if nothing is persisted yet. The
// returned entity is the created one, not a rehydrated read.
func (cs *CheckoutSession) PrintBill(ctx context.Context) (*Order, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.materialized != nil {
		return cs.materialized.Clone(), nil
	}
	if cs.persisted != nil {
		return cs.persisted.Clone(), nil
	}
	return cs.materializeLocked(ctx)
}

// Pay charges the resolved order, creates the Payment record, and
// transitions the order to paid. The explicit argument lets a combined
// print-and-pay action hand the just-created order straight in without
// relying on this session's slot having been observed; that resolution
// order is what closes the duplicate-creation race. Errors are returned
// to the caller so the checkout dialog can stay open.
func (cs *CheckoutSession) Pay(ctx context.Context, explicit *Order, params PayParams) (*PaymentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("session_id", cs.id.String()),
		zap.String("method", string(params.Method)),
	)

	cashGiven, err := parseCash(params)
	if err != nil {
		return nil, err
	}

	o, err := cs.resolveOrder(ctx, explicit)
	if err != nil {
		return nil, err
	}

	rounding := tax.CheckoutRounding(o.TotalAmount, cashGiven)

	p, err := cs.payments.Create(ctx, &payment.Payment{
		OrderID:       o.ID,
		Amount:        rounding.RoundedAmount,
		PaymentMethod: params.Method,
		PaymentStatus: payment.StatusCompleted,
		TransactionID: uuid.NewString(),
	})
	if err != nil {
		log.Error("failed to record payment", zap.Error(err))
		return nil, err
	}

	paid, err := cs.orders.SetStatus(ctx, o.ID, policy.OrderPaid)
	if err != nil {
		log.Error("payment recorded but status change failed",
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("checkout completed",
		zap.Uint("order_id", paid.ID),
		zap.Float64("amount", p.Amount),
		zap.Float64("change", rounding.ChangeAmount),
	)

	return &PaymentResult{Order: paid, Payment: p, Rounding: rounding}, nil
}

// resolveOrder picks, in order of preference: the explicit order, the
// session's materialized slot, the pre-existing persisted order, and
// finally materialization from the draft.
func (cs *CheckoutSession) resolveOrder(ctx context.Context, explicit *Order) (*Order, error) {
	if explicit != nil && explicit.ID != 0 {
		return explicit, nil
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.materialized != nil {
		return cs.materialized.Clone(), nil
	}
	if cs.persisted != nil {
		return cs.persisted.Clone(), nil
	}
	return cs.materializeLocked(ctx)
}

func (cs *CheckoutSession) materializeLocked(ctx context.Context) (*Order, error) {
	if cs.draft == nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, ErrNoDraft)
	}

	created, err := cs.orders.Create(ctx, cs.draft)
	if err != nil {
		return nil, err
	}
	cs.materialized = created
	return created.Clone(), nil
}

func parseCash(params PayParams) (float64, error) {
	if params.Method != payment.MethodCash || params.CashGiven == "" {
		return 0, nil
	}

	cash, err := strconv.ParseFloat(params.CashGiven, 64)
	if err != nil || cash < 0 {
		return 0, fmt.Errorf("%w: invalid cash amount %q", apperr.ErrValidation, params.CashGiven)
	}
	return cash, nil
}
