package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// Expense is a cash expense posted directly, with no payable in between
type Expense struct {
	shared.TenantAggregateRoot
	Category       string          `gorm:"size:100" json:"category"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency       string          `gorm:"size:3;not null" json:"currency"`
	FxRate         decimal.Decimal `gorm:"type:decimal(18,8);not null;default:1" json:"fx_rate"`
	PaidOn         time.Time       `gorm:"not null" json:"paid_on"`
	Memo           string          `gorm:"size:500" json:"memo"`
	JournalEntryID *uuid.UUID      `gorm:"type:uuid" json:"journal_entry_id,omitempty"`
}

// TableName overrides the gorm table name
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense creates an expense record
func NewExpense(tenantID uuid.UUID, category string, amount decimal.Decimal, currency string, fxRate decimal.Decimal, paidOn time.Time, memo string) (*Expense, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "expense amount must be positive")
	}
	if !fxRate.GreaterThan(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "fx rate must be positive")
	}
	e := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Category:            category,
		Amount:              valueobject.Round2(amount),
		Currency:            string(valueobject.NormalizeCurrency(currency)),
		FxRate:              fxRate,
		PaidOn:              paidOn,
		Memo:                memo,
	}
	return e, nil
}
