package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/domain"
)

// Gate names of the refund sequence.
const (
	GateValidateOrder    = "validate_order"
	GateCheckEligibility = "check_eligibility"
	GateProcessRefund    = "process_refund"
)

// RefundRequest starts a refund run. UserID is empty for guest flows that
// only carry an order id.
type RefundRequest struct {
	OrderID string
	UserID  string
	Reason  string
}

// ValidatedOrder is the pass-output of validate_order.
type ValidatedOrder struct {
	Request RefundRequest
	Order   domain.Order
}

// EligibleOrder is the pass-output of check_eligibility. process_refund
// requires it as input, so an ineligible order can never be refunded.
type EligibleOrder struct {
	Validated ValidatedOrder
	Basis     string
}

// Receipt is the pass-output of a completed refund.
type Receipt struct {
	RefundID string `json:"refund_id"`
	OrderID  string `json:"order_id"`
}

// RefundWorkflow is the refund instantiation of the gated engine.
type RefundWorkflow struct {
	store        domain.RecordStore
	returnWindow time.Duration
	now          func() time.Time
}

func NewRefundWorkflow(store domain.RecordStore, returnWindow time.Duration) *RefundWorkflow {
	return &RefundWorkflow{
		store:        store,
		returnWindow: returnWindow,
		now:          time.Now,
	}
}

// Run executes validate_order → check_eligibility → process_refund.
// The receipt is nil when the run failed; the run record always carries
// per-gate outcomes.
func (w *RefundWorkflow) Run(ctx context.Context, req RefundRequest) (*Receipt, *Run) {
	steps := Then(
		Then(
			Gate(GateValidateOrder, w.validateOrder),
			Gate(GateCheckEligibility, w.checkEligibility),
		),
		Gate(GateProcessRefund, w.processRefund),
	)

	receipt, run := Execute(ctx, "refund:"+req.OrderID, steps, req)
	if run.Status == RunFailed {
		log.Warn().
			Str("workflow_id", run.WorkflowID).
			Str("gate", run.Gates[run.FailedGate].Name).
			Str("detail", run.Gates[run.FailedGate].Detail).
			Msg("refund workflow failed")
		return nil, run
	}

	log.Info().
		Str("workflow_id", run.WorkflowID).
		Str("refund_id", receipt.RefundID).
		Msg("refund workflow succeeded")
	return &receipt, run
}

func (w *RefundWorkflow) validateOrder(ctx context.Context, req RefundRequest) Outcome[ValidatedOrder] {
	if strings.TrimSpace(req.OrderID) == "" {
		return Fail[ValidatedOrder]("no order id provided")
	}

	var order domain.Order
	if err := w.store.GetByID(ctx, domain.CollectionOrders, req.OrderID, &order); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Fail[ValidatedOrder](fmt.Sprintf("order %s not found", req.OrderID))
		}
		return Fail[ValidatedOrder](fmt.Sprintf("order lookup failed: %v", err))
	}

	// Authenticated callers may only refund their own orders.
	if req.UserID != "" && order.CustomerID != req.UserID {
		return Fail[ValidatedOrder](fmt.Sprintf("order %s is not owned by the caller", req.OrderID))
	}

	// Idempotency: a second run for an already-refunded order terminates
	// here and never reaches process_refund again.
	if order.Status == domain.OrderRefunded {
		return Fail[ValidatedOrder](fmt.Sprintf("order %s has already been refunded", req.OrderID))
	}

	return Pass(ValidatedOrder{Request: req, Order: order}, "order exists and is refundable")
}

func (w *RefundWorkflow) checkEligibility(_ context.Context, vo ValidatedOrder) Outcome[EligibleOrder] {
	order := vo.Order

	switch order.Status {
	case domain.OrderProcessing:
		return Pass(EligibleOrder{Validated: vo, Basis: "order not yet shipped"}, "order not yet shipped")

	case domain.OrderShipped:
		return Fail[EligibleOrder]("order is in transit; refunds are available once it is delivered")

	case domain.OrderDelivered:
		if order.DeliveredAt == nil {
			return Fail[EligibleOrder]("delivery date unknown; cannot verify the return window")
		}
		elapsed := w.now().Sub(*order.DeliveredAt)
		if elapsed > w.returnWindow {
			days := int(w.returnWindow.Hours() / 24)
			return Fail[EligibleOrder](fmt.Sprintf("delivered %s ago, outside the %d-day return window",
				elapsed.Round(time.Hour), days))
		}
		return Pass(EligibleOrder{Validated: vo, Basis: "delivered within the return window"},
			"delivered within the return window")

	default:
		return Fail[EligibleOrder](fmt.Sprintf("order status %q is not refundable", order.Status))
	}
}

func (w *RefundWorkflow) processRefund(ctx context.Context, eo EligibleOrder) Outcome[Receipt] {
	req := eo.Validated.Request
	refundID := "REF-" + strings.TrimPrefix(req.OrderID, "ORD-")

	refund := domain.Refund{
		ID:        refundID,
		OrderID:   req.OrderID,
		Reason:    req.Reason,
		Status:    "pending",
		CreatedAt: w.now().UTC(),
	}
	if err := w.store.Insert(ctx, domain.CollectionRefunds, refund); err != nil {
		// Terminal: a partially applied refund must surface, never be
		// silently retried.
		return Fail[Receipt](fmt.Sprintf("refund could not be recorded: %v", err))
	}

	patch := map[string]any{"status": domain.OrderRefunded}
	if err := w.store.Update(ctx, domain.CollectionOrders, req.OrderID, patch); err != nil {
		return Fail[Receipt](fmt.Sprintf("refund %s recorded but order update failed: %v", refundID, err))
	}

	return Pass(Receipt{RefundID: refundID, OrderID: req.OrderID}, "refund submitted")
}
