package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	appinventory "github.com/ledgerbook/backend/internal/application/inventory"
	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
)

type billingTestEnv struct {
	scope    *persistence.GormTransactionScope
	db       *gorm.DB
	currency *appaccounting.CurrencyService
	invoices *InvoiceService
	bills    *BillService
	payments *PaymentService
	expenses *ExpenseService
	opening  *OpeningService
	items    *appinventory.ItemService
	moves    *appinventory.MoveService
}

func setupBillingTestEnv(t *testing.T) *billingTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(persistence.Models()...))
	require.NoError(t, persistence.MigrateIndexes(db))

	scope := persistence.NewGormTransactionScope(db)
	logger := zap.NewNop()
	audit := appshared.NoopAuditSink{}
	currency := appaccounting.NewCurrencyService(scope, cache.NoopRateCache{}, logger)

	return &billingTestEnv{
		scope:    scope,
		db:       db,
		currency: currency,
		invoices: NewInvoiceService(scope, currency, audit, logger),
		bills:    NewBillService(scope, currency, audit, logger),
		payments: NewPaymentService(scope, audit, logger),
		expenses: NewExpenseService(scope, currency, audit, logger),
		opening:  NewOpeningService(scope, audit, logger),
		items:    appinventory.NewItemService(scope, logger),
		moves:    appinventory.NewMoveService(scope, audit, logger),
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func (env *billingTestEnv) createProduct(t *testing.T, tenantID uuid.UUID, name string) *inventory.Item {
	t.Helper()
	item, err := env.items.CreateItem(context.Background(), appinventory.CreateItemCommand{
		TenantID: tenantID, Name: name, SKU: name, Type: inventory.ItemTypeProduct,
	})
	require.NoError(t, err)
	return item
}

func (env *billingTestEnv) createService(t *testing.T, tenantID uuid.UUID, name string) *inventory.Item {
	t.Helper()
	item, err := env.items.CreateItem(context.Background(), appinventory.CreateItemCommand{
		TenantID: tenantID, Name: name, SKU: name, Type: inventory.ItemTypeService,
	})
	require.NoError(t, err)
	return item
}

func (env *billingTestEnv) receiveStock(t *testing.T, tenantID, itemID uuid.UUID, qty, unitCost string) {
	t.Helper()
	_, err := env.moves.CreateMove(context.Background(), appinventory.CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypePurchase,
		MovedOn:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Lines:    []inventory.MoveLineInput{{ItemID: itemID, Qty: dec(t, qty), UnitCost: dec(t, unitCost)}},
	})
	require.NoError(t, err)
}

func (env *billingTestEnv) systemAccount(t *testing.T, tenantID uuid.UUID, code string) accounting.Account {
	t.Helper()
	var acct accounting.Account
	require.NoError(t, env.db.First(&acct, "tenant_id = ? AND code = ?", tenantID, code).Error)
	return acct
}

func (env *billingTestEnv) journalLines(t *testing.T, journalID uuid.UUID) []accounting.JournalLine {
	t.Helper()
	var lines []accounting.JournalLine
	require.NoError(t, env.db.Where("journal_entry_id = ?", journalID).Find(&lines).Error)
	return lines
}

func lineAmount(lines []accounting.JournalLine, accountID uuid.UUID, debit bool) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.AccountID != accountID {
			continue
		}
		if debit {
			total = total.Add(l.Debit)
		} else {
			total = total.Add(l.Credit)
		}
	}
	return total
}

func TestInvoiceCreateDraft(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		Currency:     "usd",
		IssueDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemInput{
			{Description: "widget", Qty: dec(t, "2"), UnitPrice: dec(t, "100"), TaxRate: dec(t, "0.1")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, billing.StatusDraft, inv.Status)
	assert.Empty(t, inv.InvoiceNo)
	assert.Equal(t, "220.00", inv.Total.StringFixed(2))
	assert.Equal(t, "220.00", inv.Balance.StringFixed(2))

	// nothing is posted at draft time
	var count int64
	require.NoError(t, env.db.Model(&accounting.JournalEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInvoiceCreateDraftDefaultsCurrency(t *testing.T) {
	env := setupBillingTestEnv(t)

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     uuid.New(),
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		Items:        []InvoiceItemInput{{Description: "widget", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "1", inv.FxRate.String())
}

func TestInvoiceUpdateDraft(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		Items:        []InvoiceItemInput{{Description: "widget", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
	})
	require.NoError(t, err)

	updated, err := env.invoices.UpdateDraft(context.Background(), UpdateDraftCommand{
		TenantID:     tenantID,
		InvoiceID:    inv.ID,
		CustomerName: "Acme Holdings",
		IssueDate:    inv.IssueDate,
		Items: []InvoiceItemInput{
			{Description: "widget", Qty: dec(t, "3"), UnitPrice: dec(t, "10")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", updated.CustomerName)
	assert.Equal(t, "30.00", updated.Total.StringFixed(2))

	reloaded, err := env.invoices.GetInvoice(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 1)
	assert.Equal(t, "30.00", reloaded.Total.StringFixed(2))
}

func TestInvoiceApprove(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	item := env.createProduct(t, tenantID, "widget")
	env.receiveStock(t, tenantID, item.ID, "10", "40")

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemInput{
			{ItemID: &item.ID, Description: "widget", Qty: dec(t, "2"), UnitPrice: dec(t, "100"), TaxRate: dec(t, "0.1")},
		},
	})
	require.NoError(t, err)

	approved, err := env.invoices.Approve(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, billing.StatusApproved, approved.Status)
	assert.Equal(t, "INV-000001", approved.InvoiceNo)
	require.NotNil(t, approved.JournalEntryID)
	require.NotNil(t, approved.InventoryMoveID)
	require.NotNil(t, approved.COGSJournalID)

	// AR 220 / revenue 200 / tax payable 20
	ar := env.systemAccount(t, tenantID, "1100")
	revenue := env.systemAccount(t, tenantID, "4000")
	taxPayable := env.systemAccount(t, tenantID, "2100")
	lines := env.journalLines(t, *approved.JournalEntryID)
	assert.Equal(t, "220.00", lineAmount(lines, ar.ID, true).StringFixed(2))
	assert.Equal(t, "200.00", lineAmount(lines, revenue.ID, false).StringFixed(2))
	assert.Equal(t, "20.00", lineAmount(lines, taxPayable.ID, false).StringFixed(2))

	// COGS 80 against inventory for the 2 units at 40
	cogs := env.systemAccount(t, tenantID, "5100")
	inventoryAcct := env.systemAccount(t, tenantID, "1200")
	cogsLines := env.journalLines(t, *approved.COGSJournalID)
	assert.Equal(t, "80.00", lineAmount(cogsLines, cogs.ID, true).StringFixed(2))
	assert.Equal(t, "80.00", lineAmount(cogsLines, inventoryAcct.ID, false).StringFixed(2))

	var stocked inventory.Item
	require.NoError(t, env.db.First(&stocked, "id = ?", item.ID).Error)
	assert.Equal(t, "8", stocked.OnHand.String())
}

func TestInvoiceApproveServiceOnlyMovesNoStock(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	svc := env.createService(t, tenantID, "consulting")

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		Items: []InvoiceItemInput{
			{ItemID: &svc.ID, Description: "consulting", Qty: dec(t, "1"), UnitPrice: dec(t, "500")},
		},
	})
	require.NoError(t, err)

	approved, err := env.invoices.Approve(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, approved.InventoryMoveID)
	assert.Nil(t, approved.COGSJournalID)

	var count int64
	require.NoError(t, env.db.Model(&inventory.InventoryMove{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInvoiceApprovePostsAtDraftTimeRate(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := env.currency.SetRate(ctx, appaccounting.SetRateCommand{
		TenantID: tenantID, Quote: "EUR", Base: "USD",
		Rate: dec(t, "2"), AsOf: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	inv, err := env.invoices.CreateDraft(ctx, CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme GmbH",
		Currency:     "EUR",
		IssueDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items:        []InvoiceItemInput{{Description: "widget", Qty: dec(t, "1"), UnitPrice: dec(t, "100")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2", inv.FxRate.String())

	// a later observation must not change what the approval posts
	_, err = env.currency.SetRate(ctx, appaccounting.SetRateCommand{
		TenantID: tenantID, Quote: "EUR", Base: "USD",
		Rate: dec(t, "3"), AsOf: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	approved, err := env.invoices.Approve(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", approved.FxRate.String())

	ar := env.systemAccount(t, tenantID, "1100")
	revenue := env.systemAccount(t, tenantID, "4000")
	lines := env.journalLines(t, *approved.JournalEntryID)
	assert.Equal(t, "200.00", lineAmount(lines, ar.ID, true).StringFixed(2))
	assert.Equal(t, "200.00", lineAmount(lines, revenue.ID, false).StringFixed(2))
}

func TestInvoiceApproveTwiceFails(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		Items:        []InvoiceItemInput{{Description: "widget", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
	})
	require.NoError(t, err)

	_, err = env.invoices.Approve(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)

	_, err = env.invoices.Approve(context.Background(), tenantID, inv.ID)
	assert.True(t, errors.Is(err, shared.ErrAlreadyProcessed))
}

func TestInvoiceApproveInsufficientStockRollsBackEverything(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	item := env.createProduct(t, tenantID, "widget")
	env.receiveStock(t, tenantID, item.ID, "1", "40")

	inv, err := env.invoices.CreateDraft(context.Background(), CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		Items: []InvoiceItemInput{
			{ItemID: &item.ID, Description: "widget", Qty: dec(t, "5"), UnitPrice: dec(t, "100")},
		},
	})
	require.NoError(t, err)

	_, err = env.invoices.Approve(context.Background(), tenantID, inv.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	// the receivable journal from the failed approval is rolled back too
	var count int64
	require.NoError(t, env.db.Model(&accounting.JournalEntry{}).
		Where("ref_type = ?", accounting.RefTypeInvoice).Count(&count).Error)
	assert.Zero(t, count)

	reloaded, err := env.invoices.GetInvoice(context.Background(), tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusDraft, reloaded.Status)
}

func TestInvoiceSequenceNumbers(t *testing.T) {
	env := setupBillingTestEnv(t)
	tenantID := uuid.New()
	ctx := context.Background()

	for i, want := range []string{"INV-000001", "INV-000002"} {
		inv, err := env.invoices.CreateDraft(ctx, CreateInvoiceCommand{
			TenantID:     tenantID,
			CustomerName: "Acme Ltd",
			IssueDate:    time.Now(),
			Items:        []InvoiceItemInput{{Description: "widget", Qty: dec(t, "1"), UnitPrice: dec(t, "10")}},
		})
		require.NoError(t, err)
		approved, err := env.invoices.Approve(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, want, approved.InvoiceNo, "invoice %d", i+1)
	}
}
