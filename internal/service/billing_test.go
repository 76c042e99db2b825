package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/repository/memstore"
)

func TestBillingSpecialist_InvoiceByID(t *testing.T) {
	records := newFakeRecords()
	records.invoices["INV-2025-001"] = domain.Invoice{
		ID: "INV-2025-001", OrderID: "ORD-12345", Amount: 1295.98, Status: "pending",
	}
	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", assert.AnError)

	s := NewBillingSpecialist(records, generator)
	req := turnRequest("conv-1", "show me invoice INV-2025-001", memstore.NewSessionStore())

	reply, err := s.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, reply, "INV-2025-001")

	invocations := req.Tools.Invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, "get_invoice", invocations[0].Name)
}

func TestBillingSpecialist_BillingForOrder(t *testing.T) {
	records := newFakeRecords()
	records.invoices["INV-2025-002"] = domain.Invoice{
		ID: "INV-2025-002", OrderID: "ORD-67890", Amount: 215.99, Status: "paid",
	}
	records.payments["ORD-67890"] = domain.Payment{
		OrderID: "ORD-67890", Method: "Credit Card (ending 4242)", Status: "completed", Amount: 215.99,
	}
	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", assert.AnError)

	s := NewBillingSpecialist(records, generator)
	req := turnRequest("conv-1", "did my payment for ORD-67890 go through", memstore.NewSessionStore())

	reply, err := s.Handle(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, reply, "INV-2025-002")
	assert.Contains(t, reply, "completed")

	invocations := req.Tools.Invocations()
	require.Len(t, invocations, 2)
	assert.Equal(t, "get_invoice_by_order", invocations[0].Name)
	assert.Equal(t, "check_payment_status", invocations[1].Name)
}

// An order can have a payment record but no invoice yet; the reply carries
// what exists instead of failing.
func TestBillingSpecialist_PartialRecords(t *testing.T) {
	records := newFakeRecords()
	records.payments["ORD-22222"] = domain.Payment{
		OrderID: "ORD-22222", Method: "Credit Card (ending 1881)", Status: "completed", Amount: 647.99,
	}
	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", assert.AnError)

	s := NewBillingSpecialist(records, generator)

	reply, err := s.Handle(context.Background(), turnRequest("conv-1", "billing for ORD-22222", memstore.NewSessionStore()))
	require.NoError(t, err)
	assert.Contains(t, reply, "completed")
}

func TestBillingSpecialist_NoRecords(t *testing.T) {
	s := NewBillingSpecialist(newFakeRecords(), new(MockGenerator))

	reply, err := s.Handle(context.Background(), turnRequest("conv-1", "billing for ORD-99999", memstore.NewSessionStore()))
	require.NoError(t, err)
	assert.Contains(t, reply, "couldn't find billing records")
}

func TestBillingSpecialist_NoIDAsks(t *testing.T) {
	s := NewBillingSpecialist(newFakeRecords(), new(MockGenerator))

	reply, err := s.Handle(context.Background(), turnRequest("conv-1", "I have a question about my bill", memstore.NewSessionStore()))
	require.NoError(t, err)
	assert.Contains(t, reply, "invoice ID")
}

func TestBillingSpecialist_UnknownInvoice(t *testing.T) {
	s := NewBillingSpecialist(newFakeRecords(), new(MockGenerator))

	reply, err := s.Handle(context.Background(), turnRequest("conv-1", "show me INV-0000", memstore.NewSessionStore()))
	require.NoError(t, err)
	assert.Contains(t, reply, "couldn't find an invoice")
}
