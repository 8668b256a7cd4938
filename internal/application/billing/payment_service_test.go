package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

func approvedInvoice(t *testing.T, env *billingTestEnv, tenantID uuid.UUID) *billing.Invoice {
	t.Helper()
	ctx := context.Background()
	inv, err := env.invoices.CreateDraft(ctx, CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemInput{
			{Description: "widget", Qty: dec(t, "2"), UnitPrice: dec(t, "100"), TaxRate: dec(t, "0.1")},
		},
	})
	require.NoError(t, err)
	approved, err := env.invoices.Approve(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	return approved
}

func approvedBill(t *testing.T, env *billingTestEnv, tenantID uuid.UUID) *billing.Bill {
	t.Helper()
	ctx := context.Background()
	bill, err := env.bills.CreateDraft(ctx, CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		IssueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items:      []BillItemInput{{Description: "misc", Qty: dec(t, "1"), UnitPrice: dec(t, "100")}},
	})
	require.NoError(t, err)
	approved, err := env.bills.Approve(ctx, tenantID, bill.ID)
	require.NoError(t, err)
	return approved
}

func TestCreatePaymentPartial(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	inv := approvedInvoice(t, env, tenantID)

	payment, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAR,
		DocumentID: inv.ID,
		Amount:     dec(t, "100"),
		PaidOn:     time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "RCT-000001", payment.ReceiptNo)
	assert.Equal(t, "100.00", payment.AppliedAmount.StringFixed(2))

	reloaded, err := env.invoices.GetInvoice(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPartiallyPaid, reloaded.Status)
	assert.Equal(t, "120.00", reloaded.Balance.StringFixed(2))

	// DR cash / CR receivable for the applied amount
	cash := env.systemAccount(t, tenantID, "1000")
	ar := env.systemAccount(t, tenantID, "1100")
	require.NotNil(t, payment.JournalEntryID)
	lines := env.journalLines(t, *payment.JournalEntryID)
	assert.Equal(t, "100.00", lineAmount(lines, cash.ID, true).StringFixed(2))
	assert.Equal(t, "100.00", lineAmount(lines, ar.ID, false).StringFixed(2))
}

func TestCreatePaymentFullSettlement(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	inv := approvedInvoice(t, env, tenantID)

	_, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAR,
		DocumentID: inv.ID,
		Amount:     dec(t, "220"),
		PaidOn:     time.Now(),
	})
	require.NoError(t, err)

	reloaded, err := env.invoices.GetInvoice(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, reloaded.Status)
	assert.True(t, reloaded.Balance.IsZero())
}

func TestCreatePaymentOverpaymentClamped(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	inv := approvedInvoice(t, env, tenantID)

	payment, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAR,
		DocumentID: inv.ID,
		Amount:     dec(t, "500"),
		PaidOn:     time.Now(),
	})
	require.NoError(t, err)

	// only the balance is absorbed by the document, but the cash entry
	// carries the full tendered amount
	assert.Equal(t, "500.00", payment.Amount.StringFixed(2))
	assert.Equal(t, "220.00", payment.AppliedAmount.StringFixed(2))

	cash := env.systemAccount(t, tenantID, "1000")
	ar := env.systemAccount(t, tenantID, "1100")
	require.NotNil(t, payment.JournalEntryID)
	lines := env.journalLines(t, *payment.JournalEntryID)
	assert.Equal(t, "500.00", lineAmount(lines, cash.ID, true).StringFixed(2))
	assert.Equal(t, "500.00", lineAmount(lines, ar.ID, false).StringFixed(2))
}

func TestCreatePaymentDefaultsRateToOne(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	inv := approvedInvoice(t, env, tenantID)

	payment, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAR,
		DocumentID: inv.ID,
		Amount:     dec(t, "100"),
		PaidOn:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", payment.FxRate.String())
}

func TestCreatePaymentPostsAtCallerRate(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	inv := approvedInvoice(t, env, tenantID)

	payment, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAR,
		DocumentID: inv.ID,
		Amount:     dec(t, "100"),
		FxRate:     dec(t, "1.5"),
		PaidOn:     time.Now(),
	})
	require.NoError(t, err)

	cash := env.systemAccount(t, tenantID, "1000")
	ar := env.systemAccount(t, tenantID, "1100")
	require.NotNil(t, payment.JournalEntryID)
	lines := env.journalLines(t, *payment.JournalEntryID)
	assert.Equal(t, "150.00", lineAmount(lines, cash.ID, true).StringFixed(2))
	assert.Equal(t, "150.00", lineAmount(lines, ar.ID, false).StringFixed(2))
}

func TestCreatePaymentAP(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	bill := approvedBill(t, env, tenantID)

	payment, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAP,
		DocumentID: bill.ID,
		Amount:     dec(t, "100"),
		PaidOn:     time.Now(),
	})
	require.NoError(t, err)

	reloaded, err := env.bills.GetBill(context.Background(), tenantID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, reloaded.Status)

	// DR payable / CR cash
	ap := env.systemAccount(t, tenantID, "2000")
	cash := env.systemAccount(t, tenantID, "1000")
	require.NotNil(t, payment.JournalEntryID)
	lines := env.journalLines(t, *payment.JournalEntryID)
	assert.Equal(t, "100.00", lineAmount(lines, ap.ID, true).StringFixed(2))
	assert.Equal(t, "100.00", lineAmount(lines, cash.ID, false).StringFixed(2))
}

func TestCreatePaymentRejectsDraftDocument(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		Items:        []InvoiceItemInput{{Description: "widget", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
	})
	require.NoError(t, err)

	_, err = env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirectionAR,
		DocumentID: inv.ID,
		Amount:     dec(t, "10"),
		PaidOn:     time.Now(),
	})
	assert.True(t, errors.Is(err, shared.ErrAlreadyProcessed))
}

func TestCreatePaymentRejectsInvalidDirection(t *testing.T) {
	env := setupBillingTestEnv(t)

	_, err := env.payments.CreatePayment(context.Background(), CreatePaymentCommand{
		TenantID:   uuid.New(),
		Direction:  billing.PaymentDirection("SIDEWAYS"),
		DocumentID: uuid.New(),
		Amount:     dec(t, "10"),
		PaidOn:     time.Now(),
	})
	assert.Error(t, err)
}

func TestListPaymentsForDocument(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	inv := approvedInvoice(t, env, tenantID)
	ctx := context.Background()

	for _, amount := range []string{"50", "70"} {
		_, err := env.payments.CreatePayment(ctx, CreatePaymentCommand{
			TenantID:   tenantID,
			Direction:  billing.PaymentDirectionAR,
			DocumentID: inv.ID,
			Amount:     dec(t, amount),
			PaidOn:     time.Now(),
		})
		require.NoError(t, err)
	}

	payments, err := env.payments.ListPaymentsForDocument(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "RCT-000001", payments[0].ReceiptNo)
	assert.Equal(t, "RCT-000002", payments[1].ReceiptNo)
}
