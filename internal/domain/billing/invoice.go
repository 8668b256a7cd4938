package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// InvoiceItem is one sales line. Qty and unit price are the raw inputs;
// LineTotal is the rounded gross amount written back at recompute time.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemID      *uuid.UUID      `gorm:"type:uuid;index" json:"item_id,omitempty"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(9,6);not null;default:0" json:"tax_rate"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"line_total"`
}

// TableName overrides the gorm table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func (i InvoiceItem) amounts() (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	return i.Qty, i.UnitPrice, i.TaxRate
}

// Invoice is an accounts-receivable document. Money columns are caches
// recomputed from the items whenever the draft changes and once more at
// approval.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNo       string          `gorm:"size:40;index" json:"invoice_no"`
	CustomerName    string          `gorm:"size:255;not null" json:"customer_name"`
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
	COGSJournalID   *uuid.UUID      `gorm:"type:uuid" json:"cogs_journal_id,omitempty"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
}

// TableName overrides the gorm table name
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a draft invoice. Totals start at zero until
// Recalculate runs.
func NewInvoice(tenantID uuid.UUID, customerName, currency string, fxRate decimal.Decimal, issueDate time.Time, dueDate *time.Time, memo string) (*Invoice, error) {
	if customerName == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "customer name is required")
	}
	if !fxRate.GreaterThan(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "fx rate must be positive")
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerName:        customerName,
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
	return inv, nil
}

// CanEdit reports whether draft mutations are still allowed
func (inv *Invoice) CanEdit() bool {
	return inv.Status == StatusDraft
}

// ReplaceItems swaps the draft's line set and recalculates totals
func (inv *Invoice) ReplaceItems(items []InvoiceItem) error {
	if !inv.CanEdit() {
		return shared.NewAlreadyProcessedError("invoice", string(inv.Status))
	}
	if len(items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "invoice requires at least one item")
	}
	for i := range items {
		if items[i].Qty.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError(shared.CodeInvalidInput, "item qty must be positive")
		}
		if items[i].UnitPrice.IsNegative() || items[i].TaxRate.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, "item price and tax rate must not be negative")
		}
		items[i].InvoiceID = inv.ID
	}
	inv.Items = items
	inv.Recalculate()
	return nil
}

// Recalculate rewrites the money columns from the current items
func (inv *Invoice) Recalculate() {
	lines := make([]lineAmounts, len(inv.Items))
	for i := range inv.Items {
		lines[i] = inv.Items[i]
	}
	totals := calcTotals(lines)
	for i := range inv.Items {
		inv.Items[i].LineTotal = totals.LineTotals[i]
	}
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.Balance = totals.Total
	inv.Touch()
}

// MarkApproved freezes the document and links the posting artifacts
func (inv *Invoice) MarkApproved(invoiceNo string, journalID uuid.UUID, moveID, cogsJournalID *uuid.UUID) error {
	if inv.Status != StatusDraft {
		return shared.NewAlreadyProcessedError("invoice", string(inv.Status))
	}
	inv.InvoiceNo = invoiceNo
	inv.Status = StatusApproved
	inv.JournalEntryID = &journalID
	inv.InventoryMoveID = moveID
	inv.COGSJournalID = cogsJournalID
	inv.Touch()
	return nil
}

// ApplyPayment reduces the open balance, clamping at zero, and derives
// the resulting status. The applied amount is returned so the payment
// record can note what the document actually absorbed.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) (decimal.Decimal, error) {
	if !inv.Status.IsOpen() {
		return decimal.Zero, shared.NewAlreadyProcessedError("invoice", string(inv.Status))
	}
	if !amount.GreaterThan(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "payment amount must be positive")
	}
	newBalance := valueobject.Round2(inv.Balance.Sub(amount))
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}
	applied := inv.Balance.Sub(newBalance)
	inv.Balance = newBalance
	switch {
	case newBalance.IsZero():
		inv.Status = StatusPaid
	case newBalance.Equal(inv.Total):
		// nothing absorbed, the status stays where it was
	default:
		inv.Status = StatusPartiallyPaid
	}
	inv.Touch()
	return applied, nil
}
