package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// PaymentDirection says which side of the ledger the payment settles
type PaymentDirection string

const (
	// PaymentDirectionAR is cash received against an invoice
	PaymentDirectionAR PaymentDirection = "AR"
	// PaymentDirectionAP is cash paid against a bill
	PaymentDirectionAP PaymentDirection = "AP"
)

// IsValid checks whether the direction is supported
func (d PaymentDirection) IsValid() bool {
	return d == PaymentDirectionAR || d == PaymentDirectionAP
}

// Payment records one settlement against an invoice or bill. Payments
// are immutable once created.
type Payment struct {
	shared.TenantAggregateRoot
	ReceiptNo      string           `gorm:"size:40;index" json:"receipt_no"`
	Direction      PaymentDirection `gorm:"size:2;not null" json:"direction"`
	DocumentID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"document_id"`
	Amount         decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"amount"`
	AppliedAmount  decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"applied_amount"`
	Currency       string           `gorm:"size:3;not null" json:"currency"`
	FxRate         decimal.Decimal  `gorm:"type:decimal(18,8);not null;default:1" json:"fx_rate"`
	PaidOn         time.Time        `gorm:"not null" json:"paid_on"`
	Memo           string           `gorm:"size:500" json:"memo"`
	JournalEntryID *uuid.UUID       `gorm:"type:uuid" json:"journal_entry_id,omitempty"`
}

// TableName overrides the gorm table name
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record. AppliedAmount is what the target
// document actually absorbed after clamping; the overage, if any, is not
// posted.
func NewPayment(
	tenantID uuid.UUID,
	direction PaymentDirection,
	documentID uuid.UUID,
	amount, applied decimal.Decimal,
	currency string,
	fxRate decimal.Decimal,
	paidOn time.Time,
	memo string,
) (*Payment, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "payment direction must be AR or AP")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "payment amount must be positive")
	}
	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           direction,
		DocumentID:          documentID,
		Amount:              valueobject.Round2(amount),
		AppliedAmount:       valueobject.Round2(applied),
		Currency:            string(valueobject.NormalizeCurrency(currency)),
		FxRate:              fxRate,
		PaidOn:              paidOn,
		Memo:                memo,
	}
	return p, nil
}
