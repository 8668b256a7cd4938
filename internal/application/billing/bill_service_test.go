package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

func TestBillCreateDraft(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	bill, err := env.bills.CreateDraft(context.Background(), CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		Currency:   "usd",
		IssueDate:  time.Now(),
		Items: []BillItemInput{
			{Description: "packaging", Qty: dec(t, "100"), UnitPrice: dec(t, "1.50"), TaxRate: dec(t, "0.05")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, billing.StatusDraft, bill.Status)
	assert.Equal(t, "150.00", bill.Subtotal.StringFixed(2))
	assert.Equal(t, "7.50", bill.TaxTotal.StringFixed(2))
	assert.Equal(t, "157.50", bill.Total.StringFixed(2))
}

func TestBillApproveSplitsInventoryAndExpense(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	item := env.createProduct(t, tenantID, "flour")

	bill, err := env.bills.CreateDraft(context.Background(), CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		IssueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []BillItemInput{
			{ItemID: &item.ID, Description: "flour", Qty: dec(t, "20"), UnitPrice: dec(t, "5"), TaxRate: dec(t, "0.05")},
			{Description: "delivery fee", Qty: dec(t, "1"), UnitPrice: dec(t, "30")},
		},
	})
	require.NoError(t, err)

	approved, err := env.bills.Approve(context.Background(), tenantID, bill.ID)
	require.NoError(t, err)

	assert.Equal(t, billing.StatusApproved, approved.Status)
	assert.Equal(t, "BILL-000001", approved.BillNo)
	require.NotNil(t, approved.JournalEntryID)
	require.NotNil(t, approved.InventoryMoveID)

	// inventory 100, expense 30, input tax 5, payable 135
	inventoryAcct := env.systemAccount(t, tenantID, "1200")
	expense := env.systemAccount(t, tenantID, "5000")
	taxInput := env.systemAccount(t, tenantID, "1300")
	ap := env.systemAccount(t, tenantID, "2000")
	lines := env.journalLines(t, *approved.JournalEntryID)
	assert.Equal(t, "100.00", lineAmount(lines, inventoryAcct.ID, true).StringFixed(2))
	assert.Equal(t, "30.00", lineAmount(lines, expense.ID, true).StringFixed(2))
	assert.Equal(t, "5.00", lineAmount(lines, taxInput.ID, true).StringFixed(2))
	assert.Equal(t, "135.00", lineAmount(lines, ap.ID, false).StringFixed(2))

	// the purchase move received stock at the bill's unit cost
	var stocked inventory.Item
	require.NoError(t, env.db.First(&stocked, "id = ?", item.ID).Error)
	assert.Equal(t, "20", stocked.OnHand.String())
	assert.Equal(t, "5", stocked.AvgCost.String())

	var lot inventory.InventoryLot
	require.NoError(t, env.db.First(&lot, "item_id = ?", item.ID).Error)
	assert.Equal(t, "5", lot.UnitCost.String())
	assert.Equal(t, "20", lot.QtyRemaining.String())

	// the purchase move itself posts no second journal; the payable
	// entry above already carries the inventory value
	var move inventory.InventoryMove
	require.NoError(t, env.db.First(&move, "id = ?", *approved.InventoryMoveID).Error)
	assert.Nil(t, move.PostedJournalID)
}

func TestBillApproveExpenseOnly(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	bill, err := env.bills.CreateDraft(context.Background(), CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Utilities Co",
		IssueDate:  time.Now(),
		Items: []BillItemInput{
			{Description: "electricity", Qty: dec(t, "1"), UnitPrice: dec(t, "200")},
		},
	})
	require.NoError(t, err)

	approved, err := env.bills.Approve(context.Background(), tenantID, bill.ID)
	require.NoError(t, err)
	assert.Nil(t, approved.InventoryMoveID)

	expense := env.systemAccount(t, tenantID, "5000")
	ap := env.systemAccount(t, tenantID, "2000")
	lines := env.journalLines(t, *approved.JournalEntryID)
	assert.Len(t, lines, 2)
	assert.Equal(t, "200.00", lineAmount(lines, expense.ID, true).StringFixed(2))
	assert.Equal(t, "200.00", lineAmount(lines, ap.ID, false).StringFixed(2))
}

func TestBillApprovePostsAtDraftTimeRate(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := env.currency.SetRate(ctx, appaccounting.SetRateCommand{
		TenantID: tenantID, Quote: "EUR", Base: "USD",
		Rate: dec(t, "2"), AsOf: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	bill, err := env.bills.CreateDraft(ctx, CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Lieferant GmbH",
		Currency:   "EUR",
		IssueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items:      []BillItemInput{{Description: "freight", Qty: dec(t, "1"), UnitPrice: dec(t, "50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2", bill.FxRate.String())

	// a later observation must not change what the approval posts
	_, err = env.currency.SetRate(ctx, appaccounting.SetRateCommand{
		TenantID: tenantID, Quote: "EUR", Base: "USD",
		Rate: dec(t, "3"), AsOf: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	approved, err := env.bills.Approve(ctx, tenantID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", approved.FxRate.String())

	expense := env.systemAccount(t, tenantID, "5000")
	ap := env.systemAccount(t, tenantID, "2000")
	lines := env.journalLines(t, *approved.JournalEntryID)
	assert.Equal(t, "100.00", lineAmount(lines, expense.ID, true).StringFixed(2))
	assert.Equal(t, "100.00", lineAmount(lines, ap.ID, false).StringFixed(2))
}

func TestBillApproveTwiceFails(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	bill, err := env.bills.CreateDraft(context.Background(), CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		IssueDate:  time.Now(),
		Items:      []BillItemInput{{Description: "misc", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
	})
	require.NoError(t, err)

	_, err = env.bills.Approve(context.Background(), tenantID, bill.ID)
	require.NoError(t, err)
	_, err = env.bills.Approve(context.Background(), tenantID, bill.ID)
	assert.True(t, errors.Is(err, shared.ErrAlreadyProcessed))
}

func TestBillUpdateDraftLockedAfterApproval(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	bill, err := env.bills.CreateDraft(context.Background(), CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		IssueDate:  time.Now(),
		Items:      []BillItemInput{{Description: "misc", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
	})
	require.NoError(t, err)
	_, err = env.bills.Approve(context.Background(), tenantID, bill.ID)
	require.NoError(t, err)

	_, err = env.bills.UpdateDraft(context.Background(), UpdateBillCommand{
		TenantID:  tenantID,
		BillID:    bill.ID,
		IssueDate: time.Now(),
		Items:     []BillItemInput{{Description: "late edit", Qty: dec(t, "1"), UnitPrice: dec(t, "999")}},
	})
	assert.True(t, errors.Is(err, shared.ErrAlreadyProcessed))
}

func TestBillPurchaseThenFIFOSale(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	item := env.createProduct(t, tenantID, "flour")
	ctx := context.Background()

	bill, err := env.bills.CreateDraft(ctx, CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		IssueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []BillItemInput{
			{ItemID: &item.ID, Description: "flour", Qty: dec(t, "10"), UnitPrice: dec(t, "5")},
		},
	})
	require.NoError(t, err)
	_, err = env.bills.Approve(ctx, tenantID, bill.ID)
	require.NoError(t, err)

	// the invoice drains the lot the bill created
	inv, err := env.invoices.CreateDraft(ctx, CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemInput{
			{ItemID: &item.ID, Description: "flour", Qty: dec(t, "4"), UnitPrice: dec(t, "9")},
		},
	})
	require.NoError(t, err)
	approved, err := env.invoices.Approve(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.COGSJournalID)

	cogs := env.systemAccount(t, tenantID, "5100")
	cogsLines := env.journalLines(t, *approved.COGSJournalID)
	assert.Equal(t, "20.00", lineAmount(cogsLines, cogs.ID, true).StringFixed(2))

	var lot inventory.InventoryLot
	require.NoError(t, env.db.First(&lot, "item_id = ?", item.ID).Error)
	assert.Equal(t, "6", lot.QtyRemaining.String())
}

func TestBillJournalBalances(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	item := env.createProduct(t, tenantID, "flour")

	// odd quantities that force rounding on each component
	bill, err := env.bills.CreateDraft(context.Background(), CreateBillCommand{
		TenantID:   tenantID,
		VendorName: "Supplies Inc",
		IssueDate:  time.Now(),
		Items: []BillItemInput{
			{ItemID: &item.ID, Description: "flour", Qty: dec(t, "3"), UnitPrice: dec(t, "0.335"), TaxRate: dec(t, "0.05")},
			{Description: "fee", Qty: dec(t, "1"), UnitPrice: dec(t, "0.333"), TaxRate: dec(t, "0.05")},
		},
	})
	require.NoError(t, err)

	approved, err := env.bills.Approve(context.Background(), tenantID, bill.ID)
	require.NoError(t, err)

	var entry accounting.JournalEntry
	require.NoError(t, env.db.Preload("Lines").First(&entry, "id = ?", *approved.JournalEntryID).Error)
	assert.True(t, entry.TotalDebit().Equal(entry.TotalCredit()),
		"debit %s credit %s", entry.TotalDebit(), entry.TotalCredit())
}
