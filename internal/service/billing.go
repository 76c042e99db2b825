package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
)

var invoiceIDPattern = regexp.MustCompile(`\bINV-[\w-]+\b`)

// BillingSpecialist handles invoices and payment status.
type BillingSpecialist struct {
	store     domain.RecordStore
	generator llm.Generator
}

func NewBillingSpecialist(store domain.RecordStore, generator llm.Generator) *BillingSpecialist {
	return &BillingSpecialist{store: store, generator: generator}
}

func (s *BillingSpecialist) Handle(ctx context.Context, req *TurnRequest) (string, error) {
	if id := invoiceIDPattern.FindString(req.Message); id != "" {
		return s.invoiceByID(ctx, req, id)
	}
	if id := orderIDPattern.FindString(req.Message); id != "" {
		return s.billingForOrder(ctx, req, id)
	}
	return "Could you give me the invoice ID (INV-...) or the order ID (ORD-...) you're asking about?", nil
}

func (s *BillingSpecialist) invoiceByID(ctx context.Context, req *TurnRequest, invoiceID string) (string, error) {
	out, err := req.Tools.Record("get_invoice", invoiceID, func() (string, error) {
		var invoice domain.Invoice
		if err := s.store.GetByID(ctx, domain.CollectionInvoices, invoiceID, &invoice); err != nil {
			return "", err
		}
		data, _ := json.Marshal(invoice)
		return string(data), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("I couldn't find an invoice with ID %s.", invoiceID), nil
		}
		return "", err
	}

	return s.compose(ctx, req, "Give the customer their invoice details.",
		[]string{out}, "Here is your invoice:\n"+out)
}

// billingForOrder answers "invoice for my order" and "did my payment go
// through" with whatever billing records exist for the order.
func (s *BillingSpecialist) billingForOrder(ctx context.Context, req *TurnRequest, orderID string) (string, error) {
	var outputs []string

	invOut, invErr := req.Tools.Record("get_invoice_by_order", orderID, func() (string, error) {
		var invoices []domain.Invoice
		if err := s.store.QueryByField(ctx, domain.CollectionInvoices, "order_id", orderID, &invoices); err != nil {
			return "", err
		}
		if len(invoices) == 0 {
			return "", fmt.Errorf("%w: invoice for order %s", domain.ErrNotFound, orderID)
		}
		data, _ := json.Marshal(invoices[0])
		return string(data), nil
	})
	if invErr == nil {
		outputs = append(outputs, invOut)
	} else if !errors.Is(invErr, domain.ErrNotFound) {
		return "", invErr
	}

	payOut, payErr := req.Tools.Record("check_payment_status", orderID, func() (string, error) {
		var payment domain.Payment
		if err := s.store.GetByID(ctx, domain.CollectionPayments, orderID, &payment); err != nil {
			return "", err
		}
		data, _ := json.Marshal(payment)
		return string(data), nil
	})
	if payErr == nil {
		outputs = append(outputs, payOut)
	} else if !errors.Is(payErr, domain.ErrNotFound) {
		return "", payErr
	}

	if len(outputs) == 0 {
		return fmt.Sprintf("I couldn't find billing records for order %s.", orderID), nil
	}

	return s.compose(ctx, req, "Summarize the invoice and payment status for the customer's order.",
		outputs, "Billing records for "+orderID+":\n"+strings.Join(outputs, "\n"))
}

func (s *BillingSpecialist) compose(ctx context.Context, req *TurnRequest, instruction string, outputs []string, fallback string) (string, error) {
	reply, err := s.generator.Generate(ctx, llm.BuildReplyPrompt(instruction, req.Message, outputs))
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Warn().Err(err).Msg("reply generation failed, using plain rendering")
		return fallback, nil
	}
	return reply, nil
}
