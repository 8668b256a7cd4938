package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	appinventory "github.com/ledgerbook/backend/internal/application/inventory"
	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	domainshared "github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// BillService manages the bill lifecycle. Approval splits lines between
// inventory and expense, posts the payable and receives stock at the
// bill's landed cost; the costing engine never re-values purchase lines.
type BillService struct {
	scope    appshared.TransactionScope
	currency *appaccounting.CurrencyService
	audit    appshared.AuditSink
	logger   *zap.Logger
}

// NewBillService creates a bill service
func NewBillService(scope appshared.TransactionScope, currency *appaccounting.CurrencyService, audit appshared.AuditSink, logger *zap.Logger) *BillService {
	return &BillService{scope: scope, currency: currency, audit: audit, logger: logger}
}

// BillItemInput is one purchase line as submitted by the caller
type BillItemInput struct {
	ItemID      *uuid.UUID
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// CreateBillCommand describes a new draft bill
type CreateBillCommand struct {
	TenantID   uuid.UUID
	VendorName string
	Currency   string
	IssueDate  time.Time
	DueDate    *time.Time
	Memo       string
	Items      []BillItemInput
}

// CreateDraft creates a draft bill with computed totals
func (s *BillService) CreateDraft(ctx context.Context, cmd CreateBillCommand) (*billing.Bill, error) {
	var bill *billing.Bill
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		settings, err := repos.Settings().GetOrCreate(ctx, cmd.TenantID)
		if err != nil {
			return err
		}
		if cmd.Currency == "" {
			cmd.Currency = settings.BaseCurrency
		}
		fxRate, err := s.currency.ResolveRateWithRepos(ctx, repos, cmd.TenantID, cmd.Currency, settings.BaseCurrency)
		if err != nil {
			return err
		}
		bill, err = billing.NewBill(cmd.TenantID, cmd.VendorName, cmd.Currency, fxRate, cmd.IssueDate, cmd.DueDate, cmd.Memo)
		if err != nil {
			return err
		}
		if err := bill.ReplaceItems(buildBillItems(bill.ID, cmd.Items)); err != nil {
			return err
		}
		return repos.Bills().Create(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bill draft created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("total", bill.Total.String()),
	)
	return bill, nil
}

// UpdateBillCommand replaces a draft bill's header fields and items
type UpdateBillCommand struct {
	TenantID   uuid.UUID
	BillID     uuid.UUID
	VendorName string
	IssueDate  time.Time
	DueDate    *time.Time
	Memo       string
	Items      []BillItemInput
}

// UpdateDraft rewrites a draft bill. Approved bills reject edits.
func (s *BillService) UpdateDraft(ctx context.Context, cmd UpdateBillCommand) (*billing.Bill, error) {
	var bill *billing.Bill
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		bill, err = repos.Bills().FindByIDForTenant(ctx, cmd.TenantID, cmd.BillID)
		if err != nil {
			return err
		}
		if cmd.VendorName != "" {
			bill.VendorName = cmd.VendorName
		}
		bill.IssueDate = cmd.IssueDate
		bill.DueDate = cmd.DueDate
		bill.Memo = cmd.Memo
		if err := bill.ReplaceItems(buildBillItems(bill.ID, cmd.Items)); err != nil {
			return err
		}
		return repos.Bills().Save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Approve recomputes totals, posts the payable split across inventory,
// expense and input tax, and receives stock for product lines at the
// bill's unit cost converted to base currency
func (s *BillService) Approve(ctx context.Context, tenantID, billID uuid.UUID) (*billing.Bill, error) {
	var bill *billing.Bill
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		bill, err = repos.Bills().FindByIDForTenant(ctx, tenantID, billID)
		if err != nil {
			return err
		}
		if !bill.CanEdit() {
			return domainshared.NewAlreadyProcessedError("bill", string(bill.Status))
		}

		bill.Recalculate()

		settings, err := repos.Settings().GetOrCreate(ctx, tenantID)
		if err != nil {
			return err
		}
		// the rate was snapshotted when the draft was created or last
		// edited; approval posts at that snapshot
		fxRate := bill.FxRate

		inventoryLines, inventorySubtotal, expenseSubtotal, err := splitBillLines(ctx, repos, tenantID, bill)
		if err != nil {
			return err
		}

		accounts, err := appaccounting.EnsureSystemAccountsWithRepos(ctx, repos, tenantID)
		if err != nil {
			return err
		}

		// debit sides convert and round independently; the payable is
		// their sum so the entry balances by construction
		base := settings.BaseCurrencyCode()
		inventoryBase := valueobject.MoneyIn(inventorySubtotal, bill.Currency).Convert(fxRate, base).Amount()
		expenseBase := valueobject.MoneyIn(expenseSubtotal, bill.Currency).Convert(fxRate, base).Amount()
		taxBase := valueobject.MoneyIn(bill.TaxTotal, bill.Currency).Convert(fxRate, base).Amount()

		var lines []accounting.LineInput
		if inventoryBase.IsPositive() {
			lines = append(lines, accounting.Debit(accounts.Get(accounting.RoleInventory).ID, inventoryBase, bill.VendorName))
		}
		if expenseBase.IsPositive() {
			lines = append(lines, accounting.Debit(accounts.Get(accounting.RoleExpense).ID, expenseBase, bill.VendorName))
		}
		if taxBase.IsPositive() {
			lines = append(lines, accounting.Debit(accounts.Get(accounting.RoleTaxInput).ID, taxBase, "input tax"))
		}
		apBase := inventoryBase.Add(expenseBase).Add(taxBase)
		lines = append(lines, accounting.Credit(accounts.Get(accounting.RoleAP).ID, apBase, bill.VendorName))

		entry, err := appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
			TenantID: tenantID,
			RefType:  accounting.RefTypeBill,
			RefID:    &bill.ID,
			PostedOn: bill.IssueDate,
			Memo:     bill.Memo,
			Lines:    lines,
		})
		if err != nil {
			return err
		}

		var moveID *uuid.UUID
		if len(inventoryLines) > 0 {
			// the payable posting above already carries the inventory value
			move, err := appinventory.CreateMoveWithRepos(ctx, repos, appinventory.CreateMoveCommand{
				TenantID: tenantID,
				Type:     inventory.MoveTypePurchase,
				MovedOn:  bill.IssueDate,
				Memo:     "bill " + bill.VendorName,
				Lines:    inventoryLines,
			}, false)
			if err != nil {
				return err
			}
			moveID = &move.ID
		}

		billNo := settings.NextBillNumber()
		if err := repos.Settings().Save(ctx, settings); err != nil {
			return err
		}
		if err := bill.MarkApproved(billNo, entry.ID, moveID); err != nil {
			return err
		}
		return repos.Bills().Save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bill approved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_no", bill.BillNo),
		zap.String("total", bill.Total.String()),
	)
	s.audit.Record(ctx, appshared.NewAuditEntry(tenantID, "bill.approved", "bill", bill.ID, map[string]any{
		"bill_no": bill.BillNo,
		"total":   bill.Total.String(),
	}))
	return bill, nil
}

// splitBillLines partitions bill lines into stocked product lines, which
// become purchase move lines valued at unit price times the fx rate, and
// everything else, which is expensed. Subtotals are pre-tax and in the
// bill's currency.
func splitBillLines(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, bill *billing.Bill) ([]inventory.MoveLineInput, decimal.Decimal, decimal.Decimal, error) {
	var moveLines []inventory.MoveLineInput
	inventorySubtotal := decimal.Zero
	expenseSubtotal := decimal.Zero

	for _, item := range bill.Items {
		base := item.Qty.Mul(item.UnitPrice)
		if item.ItemID != nil {
			stocked, err := repos.Items().FindByIDForTenant(ctx, tenantID, *item.ItemID)
			if err != nil {
				return nil, decimal.Zero, decimal.Zero, err
			}
			if stocked.IsProduct() {
				moveLines = append(moveLines, inventory.MoveLineInput{
					ItemID:   *item.ItemID,
					Qty:      item.Qty,
					UnitCost: valueobject.Round6(item.UnitPrice.Mul(bill.FxRate)),
				})
				inventorySubtotal = inventorySubtotal.Add(base)
				continue
			}
		}
		expenseSubtotal = expenseSubtotal.Add(base)
	}

	return moveLines, valueobject.Round2(inventorySubtotal), valueobject.Round2(expenseSubtotal), nil
}

// GetBill loads a bill with its items
func (s *BillService) GetBill(ctx context.Context, tenantID, billID uuid.UUID) (*billing.Bill, error) {
	var bill *billing.Bill
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		bill, err = repos.Bills().FindByIDForTenant(ctx, tenantID, billID)
		return err
	})
	return bill, err
}

// ListBills lists recent bills for a tenant
func (s *BillService) ListBills(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.Bill, error) {
	var bills []billing.Bill
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		bills, err = repos.Bills().FindForTenant(ctx, tenantID, limit)
		return err
	})
	return bills, err
}

func buildBillItems(billID uuid.UUID, inputs []BillItemInput) []billing.BillItem {
	items := make([]billing.BillItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, billing.BillItem{
			BaseEntity:  domainshared.NewBaseEntity(),
			BillID:      billID,
			ItemID:      in.ItemID,
			Description: in.Description,
			Qty:         in.Qty,
			UnitPrice:   in.UnitPrice,
			TaxRate:     in.TaxRate,
		})
	}
	return items
}
