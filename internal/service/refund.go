package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hollis/supportdesk/internal/workflow"
)

// RefundSpecialist bridges refund requests into the gated workflow and
// translates run outcomes into user-facing replies.
type RefundSpecialist struct {
	refunds *workflow.RefundWorkflow
}

func NewRefundSpecialist(refunds *workflow.RefundWorkflow) *RefundSpecialist {
	return &RefundSpecialist{refunds: refunds}
}

func (s *RefundSpecialist) Handle(ctx context.Context, req *TurnRequest) (string, error) {
	orderID := orderIDPattern.FindString(req.Message)
	if orderID == "" {
		return "I can help with that. Which order would you like refunded? Please give me the order ID (ORD-...).", nil
	}

	var receipt *workflow.Receipt
	var run *workflow.Run

	// The run record is the tool transcript for this turn.
	_, _ = req.Tools.Record("refund_workflow", orderID, func() (string, error) {
		receipt, run = s.refunds.Run(ctx, workflow.RefundRequest{
			OrderID: orderID,
			UserID:  req.UserID,
			Reason:  req.Message,
		})
		data, _ := json.Marshal(run)
		if err := run.Err(); err != nil {
			return string(data), err
		}
		return string(data), nil
	})

	if run.Status == workflow.RunSucceeded {
		return fmt.Sprintf("Your refund for order %s has been submitted (refund ID %s). You'll see the amount back on your original payment method within 5-7 business days.",
			receipt.OrderID, receipt.RefundID), nil
	}

	// Gate failures are business outcomes with specific reasons, not
	// internal errors; tell the user exactly which condition failed.
	failed := run.Gates[run.FailedGate]
	switch failed.Name {
	case workflow.GateValidateOrder:
		return fmt.Sprintf("I can't start that refund: %s.", failed.Detail), nil
	case workflow.GateCheckEligibility:
		return fmt.Sprintf("Order %s isn't eligible for a refund: %s.", orderID, failed.Detail), nil
	default:
		return fmt.Sprintf("Something went wrong while processing the refund for order %s: %s. Our team has been notified; please don't retry, we'll follow up.",
			orderID, failed.Detail), nil
	}
}
