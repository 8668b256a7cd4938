package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one manual journal line
type JournalLineRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// PostJournalRequest posts a manual journal entry
type PostJournalRequest struct {
	RefType  string               `json:"ref_type" binding:"required"`
	RefID    *uuid.UUID           `json:"ref_id"`
	PostedOn time.Time            `json:"posted_on" binding:"required"`
	Memo     string               `json:"memo"`
	Lines    []JournalLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SetRateRequest stores an FX rate observation
type SetRateRequest struct {
	Quote string          `json:"quote" binding:"required,currency"`
	Base  string          `json:"base" binding:"required,currency"`
	Rate  decimal.Decimal `json:"rate" binding:"required"`
	AsOf  time.Time       `json:"as_of" binding:"required"`
}

// CreateItemRequest adds a catalog item
type CreateItemRequest struct {
	Name string `json:"name" binding:"required"`
	SKU  string `json:"sku"`
	Type string `json:"type" binding:"required,oneof=PRODUCT SERVICE"`
}

// MoveLineRequest is one inventory movement line
type MoveLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Qty      decimal.Decimal `json:"qty" binding:"required"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CreateMoveRequest records a standalone inventory movement
type CreateMoveRequest struct {
	Type    string            `json:"type" binding:"required"`
	MovedOn time.Time         `json:"moved_on" binding:"required"`
	Memo    string            `json:"memo"`
	Lines   []MoveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DocumentItemRequest is one invoice or bill line
type DocumentItemRequest struct {
	ItemID      *uuid.UUID      `json:"item_id"`
	Description string          `json:"description" binding:"required"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest creates a draft invoice
type CreateInvoiceRequest struct {
	CustomerName string                `json:"customer_name" binding:"required"`
	Currency     string                `json:"currency" binding:"omitempty,currency"`
	IssueDate    time.Time             `json:"issue_date" binding:"required"`
	DueDate      *time.Time            `json:"due_date"`
	Memo         string                `json:"memo"`
	Items        []DocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest rewrites a draft invoice
type UpdateInvoiceRequest struct {
	CustomerName string                `json:"customer_name"`
	IssueDate    time.Time             `json:"issue_date" binding:"required"`
	DueDate      *time.Time            `json:"due_date"`
	Memo         string                `json:"memo"`
	Items        []DocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateBillRequest creates a draft bill
type CreateBillRequest struct {
	VendorName string                `json:"vendor_name" binding:"required"`
	Currency   string                `json:"currency" binding:"omitempty,currency"`
	IssueDate  time.Time             `json:"issue_date" binding:"required"`
	DueDate    *time.Time            `json:"due_date"`
	Memo       string                `json:"memo"`
	Items      []DocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateBillRequest rewrites a draft bill
type UpdateBillRequest struct {
	VendorName string                `json:"vendor_name"`
	IssueDate  time.Time             `json:"issue_date" binding:"required"`
	DueDate    *time.Time            `json:"due_date"`
	Memo       string                `json:"memo"`
	Items      []DocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreatePaymentRequest applies a settlement against a document
type CreatePaymentRequest struct {
	Direction  string          `json:"direction" binding:"required,oneof=AR AP"`
	DocumentID uuid.UUID       `json:"document_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	FxRate     decimal.Decimal `json:"fx_rate"`
	PaidOn     time.Time       `json:"paid_on" binding:"required"`
	Memo       string          `json:"memo"`
}

// CreateExpenseRequest records a cash expense
type CreateExpenseRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"omitempty,currency"`
	PaidOn   time.Time       `json:"paid_on" binding:"required"`
	Memo     string          `json:"memo"`
}

// OpeningAccountRequest is one opening account balance
type OpeningAccountRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// OpeningItemRequest is opening stock for one item
type OpeningItemRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Qty      decimal.Decimal `json:"qty" binding:"required"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ApplyOpeningRequest loads opening balances for a tenant
type ApplyOpeningRequest struct {
	AsOf     time.Time               `json:"as_of" binding:"required"`
	Accounts []OpeningAccountRequest `json:"accounts" binding:"dive"`
	Items    []OpeningItemRequest    `json:"items" binding:"dive"`
	Force    bool                    `json:"force"`
}
