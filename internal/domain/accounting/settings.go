package accounting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// TenantSettings carries per-tenant bookkeeping configuration and the
// document sequence counters. Counters are read-increment-write inside the
// same transaction as the document they number, so numbers are gapless as
// long as the transaction commits; a rollback leaves a gap, which is
// accepted.
type TenantSettings struct {
	shared.BaseEntity
	TenantID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"tenant_id"`
	BaseCurrency     string    `gorm:"size:10;not null;default:'USD'" json:"base_currency"`
	InventoryCosting string    `gorm:"size:10;not null;default:'FIFO'" json:"inventory_costing"`
	InvoicePrefix    string    `gorm:"size:20;not null;default:'INV-'" json:"invoice_prefix"`
	InvoiceNextNo    int       `gorm:"not null;default:1" json:"invoice_next_no"`
	BillPrefix       string    `gorm:"size:20;not null;default:'BILL-'" json:"bill_prefix"`
	BillNextNo       int       `gorm:"not null;default:1" json:"bill_next_no"`
	ReceiptPrefix    string    `gorm:"size:20;not null;default:'RCT-'" json:"receipt_prefix"`
	ReceiptNextNo    int       `gorm:"not null;default:1" json:"receipt_next_no"`
	OpeningSetOnce   bool      `gorm:"not null;default:false" json:"opening_set_once"`
}

// TableName overrides the gorm table name
func (TenantSettings) TableName() string {
	return "tenant_settings"
}

// NewTenantSettings creates settings with defaults for a tenant
func NewTenantSettings(tenantID uuid.UUID) *TenantSettings {
	return &TenantSettings{
		BaseEntity:       shared.NewBaseEntity(),
		TenantID:         tenantID,
		BaseCurrency:     string(valueobject.DefaultCurrency),
		InventoryCosting: "FIFO",
		InvoicePrefix:    "INV-",
		InvoiceNextNo:    1,
		BillPrefix:       "BILL-",
		BillNextNo:       1,
		ReceiptPrefix:    "RCT-",
		ReceiptNextNo:    1,
	}
}

// BaseCurrencyCode returns the normalized base currency
func (s *TenantSettings) BaseCurrencyCode() valueobject.Currency {
	if s.BaseCurrency == "" {
		return valueobject.DefaultCurrency
	}
	return valueobject.NormalizeCurrency(s.BaseCurrency)
}

func formatSequence(prefix string, n int) string {
	return fmt.Sprintf("%s%06d", prefix, n)
}

// NextInvoiceNumber consumes the invoice counter and returns the formatted
// number. The caller must persist the settings row in the same transaction.
func (s *TenantSettings) NextInvoiceNumber() string {
	no := formatSequence(s.InvoicePrefix, s.InvoiceNextNo)
	s.InvoiceNextNo++
	s.Touch()
	return no
}

// NextBillNumber consumes the bill counter
func (s *TenantSettings) NextBillNumber() string {
	no := formatSequence(s.BillPrefix, s.BillNextNo)
	s.BillNextNo++
	s.Touch()
	return no
}

// NextReceiptNumber consumes the receipt counter
func (s *TenantSettings) NextReceiptNumber() string {
	no := formatSequence(s.ReceiptPrefix, s.ReceiptNextNo)
	s.ReceiptNextNo++
	s.Touch()
	return no
}

// MarkOpeningApplied sets the one-way opening flag
func (s *TenantSettings) MarkOpeningApplied() {
	s.OpeningSetOnce = true
	s.Touch()
}
