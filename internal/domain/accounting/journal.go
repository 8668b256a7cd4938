package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Reference types a journal entry can point back at.
const (
	RefTypeInvoice       = "INVOICE"
	RefTypeBill          = "BILL"
	RefTypePayment       = "PAYMENT"
	RefTypeExpense       = "EXPENSE"
	RefTypeInventoryMove = "INVENTORY_MOVE"
	RefTypeOpening       = "OPENING"
)

// JournalLine is a single debit or credit against an account. Callers
// produce lines with exactly one of debit/credit nonzero; the engine only
// requires both to be non-negative.
type JournalLine struct {
	shared.BaseEntity
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"journal_entry_id"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Debit          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"credit"`
	Memo           string          `gorm:"size:500" json:"memo"`
}

// TableName overrides the gorm table name
func (JournalLine) TableName() string {
	return "journal_lines"
}

// JournalEntry is an immutable double-entry posting. There is no update or
// delete path anywhere in the codebase; corrections are made by posting
// offsetting entries.
type JournalEntry struct {
	shared.TenantAggregateRoot
	RefType  string        `gorm:"size:40;index" json:"ref_type"`
	RefID    *uuid.UUID    `gorm:"type:uuid;index" json:"ref_id"`
	PostedOn time.Time     `gorm:"not null;index" json:"posted_on"`
	Memo     string        `gorm:"size:500" json:"memo"`
	Lines    []JournalLine `gorm:"foreignKey:JournalEntryID" json:"lines"`
}

// TableName overrides the gorm table name
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// LineInput is a candidate journal line before rounding and validation.
type LineInput struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// Debit builds a debit-side line input.
func Debit(accountID uuid.UUID, amount decimal.Decimal, memo string) LineInput {
	return LineInput{AccountID: accountID, Debit: amount, Memo: memo}
}

// Credit builds a credit-side line input.
func Credit(accountID uuid.UUID, amount decimal.Decimal, memo string) LineInput {
	return LineInput{AccountID: accountID, Credit: amount, Memo: memo}
}

// NewJournalEntry validates and assembles a balanced entry. Each line is
// rounded to cents before the zero-sum check; an imbalance after rounding is
// fatal and carries both sums.
func NewJournalEntry(
	tenantID uuid.UUID,
	refType string,
	refID *uuid.UUID,
	postedOn time.Time,
	memo string,
	inputs []LineInput,
) (*JournalEntry, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("EMPTY_JOURNAL", "Journal entry requires at least one line")
	}

	entry := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RefType:             refType,
		RefID:               refID,
		PostedOn:            postedOn,
		Memo:                memo,
		Lines:               make([]JournalLine, 0, len(inputs)),
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, in := range inputs {
		if in.AccountID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ACCOUNT", "Journal line requires an account")
		}
		if in.Debit.IsNegative() || in.Credit.IsNegative() {
			return nil, shared.NewDomainError("NEGATIVE_AMOUNT", "Journal line amounts cannot be negative")
		}
		debit := valueobject.Round2(in.Debit)
		credit := valueobject.Round2(in.Credit)
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)

		line := JournalLine{
			BaseEntity:     shared.NewBaseEntity(),
			JournalEntryID: entry.ID,
			AccountID:      in.AccountID,
			Debit:          debit,
			Credit:         credit,
			Memo:           in.Memo,
		}
		entry.Lines = append(entry.Lines, line)
	}

	totalDebit = valueobject.Round2(totalDebit)
	totalCredit = valueobject.Round2(totalCredit)
	if !totalDebit.Equal(totalCredit) {
		return nil, shared.NewUnbalancedEntryError(totalDebit, totalCredit)
	}

	return entry, nil
}

// TotalDebit sums the debit side of the entry.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit side of the entry.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}
