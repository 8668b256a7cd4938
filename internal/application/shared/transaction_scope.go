package shared

import (
	"context"

	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/inventory"
)

// Repositories is the bundle of tenant-scoped repositories handed to a
// transactional unit of work. Every repository in the bundle runs on the
// same database transaction.
type Repositories interface {
	Accounts() accounting.AccountRepository
	Journals() accounting.JournalEntryRepository
	Rates() accounting.CurrencyRateRepository
	Settings() accounting.TenantSettingsRepository
	Items() inventory.ItemRepository
	Lots() inventory.LotRepository
	Moves() inventory.MoveRepository
	Invoices() billing.InvoiceRepository
	Bills() billing.BillRepository
	Payments() billing.PaymentRepository
	Expenses() billing.ExpenseRepository
}

// TransactionScope runs a unit of work atomically. If fn returns an
// error the whole transaction rolls back, including any stock or
// sequence mutations made along the way.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
