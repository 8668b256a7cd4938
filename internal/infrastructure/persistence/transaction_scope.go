package persistence

import (
	"context"

	"gorm.io/gorm"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/inventory"
)

// GormTransactionScope implements appshared.TransactionScope over a gorm
// database transaction. Every repository handed to the unit of work is
// bound to the same *gorm.DB transaction handle.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a transaction scope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a transaction, rolling back on error
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormRepositories(tx))
	})
}

// gormRepositories bundles all repositories over one transaction handle
type gormRepositories struct {
	accounts *GormAccountRepository
	journals *GormJournalEntryRepository
	rates    *GormCurrencyRateRepository
	settings *GormTenantSettingsRepository
	items    *GormItemRepository
	lots     *GormLotRepository
	moves    *GormMoveRepository
	invoices *GormInvoiceRepository
	bills    *GormBillRepository
	payments *GormPaymentRepository
	expenses *GormExpenseRepository
}

func newGormRepositories(tx *gorm.DB) *gormRepositories {
	return &gormRepositories{
		accounts: NewGormAccountRepository(tx),
		journals: NewGormJournalEntryRepository(tx),
		rates:    NewGormCurrencyRateRepository(tx),
		settings: NewGormTenantSettingsRepository(tx),
		items:    NewGormItemRepository(tx),
		lots:     NewGormLotRepository(tx),
		moves:    NewGormMoveRepository(tx),
		invoices: NewGormInvoiceRepository(tx),
		bills:    NewGormBillRepository(tx),
		payments: NewGormPaymentRepository(tx),
		expenses: NewGormExpenseRepository(tx),
	}
}

func (r *gormRepositories) Accounts() accounting.AccountRepository { return r.accounts }
func (r *gormRepositories) Journals() accounting.JournalEntryRepository { return r.journals }
func (r *gormRepositories) Rates() accounting.CurrencyRateRepository { return r.rates }
func (r *gormRepositories) Settings() accounting.TenantSettingsRepository { return r.settings }
func (r *gormRepositories) Items() inventory.ItemRepository { return r.items }
func (r *gormRepositories) Lots() inventory.LotRepository { return r.lots }
func (r *gormRepositories) Moves() inventory.MoveRepository { return r.moves }
func (r *gormRepositories) Invoices() billing.InvoiceRepository { return r.invoices }
func (r *gormRepositories) Bills() billing.BillRepository { return r.bills }
func (r *gormRepositories) Payments() billing.PaymentRepository { return r.payments }
func (r *gormRepositories) Expenses() billing.ExpenseRepository { return r.expenses }
