package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// BillItem is one purchase line. Lines that reference a stocked product
// feed inventory at approval; the rest are expensed directly.
type BillItem struct {
	shared.BaseEntity
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ItemID      *uuid.UUID      `gorm:"type:uuid;index" json:"item_id,omitempty"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(9,6);not null;default:0" json:"tax_rate"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"line_total"`
}

// TableName overrides the gorm table name
func (BillItem) TableName() string {
	return "bill_items"
}

func (i BillItem) amounts() (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	return i.Qty, i.UnitPrice, i.TaxRate
}

// Bill is an accounts-payable document mirroring Invoice on the purchase
// side
type Bill struct {
	shared.TenantAggregateRoot
	BillNo          string          `gorm:"size:40;index" json:"bill_no"`
	VendorName      string          `gorm:"size:255;not null" json:"vendor_name"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	FxRate          decimal.Decimal `gorm:"type:decimal(18,8);not null;default:1" json:"fx_rate"`
	IssueDate       time.Time       `gorm:"not null" json:"issue_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Status          DocumentStatus  `gorm:"size:20;not null;default:DRAFT" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	TaxTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_total"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	Balance         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	Memo            string          `gorm:"size:500" json:"memo"`
	JournalEntryID  *uuid.UUID      `gorm:"type:uuid" json:"journal_entry_id,omitempty"`
	InventoryMoveID *uuid.UUID      `gorm:"type:uuid" json:"inventory_move_id,omitempty"`
	Items           []BillItem      `gorm:"foreignKey:BillID" json:"items"`
}

// TableName overrides the gorm table name
func (Bill) TableName() string {
	return "bills"
}

// NewBill creates a draft bill
func NewBill(tenantID uuid.UUID, vendorName, currency string, fxRate decimal.Decimal, issueDate time.Time, dueDate *time.Time, memo string) (*Bill, error) {
	if vendorName == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "vendor name is required")
	}
	if !fxRate.GreaterThan(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "fx rate must be positive")
	}
	bill := &Bill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VendorName:          vendorName,
		Currency:            string(valueobject.NormalizeCurrency(currency)),
		FxRate:              fxRate,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Status:              StatusDraft,
		Subtotal:            decimal.Zero,
		TaxTotal:            decimal.Zero,
		Total:               decimal.Zero,
		Balance:             decimal.Zero,
		Memo:                memo,
	}
	return bill, nil
}

// CanEdit reports whether draft mutations are still allowed
func (b *Bill) CanEdit() bool {
	return b.Status == StatusDraft
}

// ReplaceItems swaps the draft's line set and recalculates totals
func (b *Bill) ReplaceItems(items []BillItem) error {
	if !b.CanEdit() {
		return shared.NewAlreadyProcessedError("bill", string(b.Status))
	}
	if len(items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "bill requires at least one item")
	}
	for i := range items {
		if items[i].Qty.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError(shared.CodeInvalidInput, "item qty must be positive")
		}
		if items[i].UnitPrice.IsNegative() || items[i].TaxRate.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, "item price and tax rate must not be negative")
		}
		items[i].BillID = b.ID
	}
	b.Items = items
	b.Recalculate()
	return nil
}

// Recalculate rewrites the money columns from the current items
func (b *Bill) Recalculate() {
	lines := make([]lineAmounts, len(b.Items))
	for i := range b.Items {
		lines[i] = b.Items[i]
	}
	totals := calcTotals(lines)
	for i := range b.Items {
		b.Items[i].LineTotal = totals.LineTotals[i]
	}
	b.Subtotal = totals.Subtotal
	b.TaxTotal = totals.TaxTotal
	b.Total = totals.Total
	b.Balance = totals.Total
	b.Touch()
}

// MarkApproved freezes the document and links the posting artifacts
func (b *Bill) MarkApproved(billNo string, journalID uuid.UUID, moveID *uuid.UUID) error {
	if b.Status != StatusDraft {
		return shared.NewAlreadyProcessedError("bill", string(b.Status))
	}
	b.BillNo = billNo
	b.Status = StatusApproved
	b.JournalEntryID = &journalID
	b.InventoryMoveID = moveID
	b.Touch()
	return nil
}

// ApplyPayment reduces the open balance, clamping at zero, and derives
// the resulting status
func (b *Bill) ApplyPayment(amount decimal.Decimal) (decimal.Decimal, error) {
	if !b.Status.IsOpen() {
		return decimal.Zero, shared.NewAlreadyProcessedError("bill", string(b.Status))
	}
	if !amount.GreaterThan(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "payment amount must be positive")
	}
	newBalance := valueobject.Round2(b.Balance.Sub(amount))
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}
	applied := b.Balance.Sub(newBalance)
	b.Balance = newBalance
	switch {
	case newBalance.IsZero():
		b.Status = StatusPaid
	case newBalance.Equal(b.Total):
		// nothing absorbed, the status stays where it was
	default:
		b.Status = StatusPartiallyPaid
	}
	b.Touch()
	return applied, nil
}
