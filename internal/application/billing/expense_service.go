package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// ExpenseService records cash expenses posted straight to the ledger
type ExpenseService struct {
	scope    appshared.TransactionScope
	currency *appaccounting.CurrencyService
	audit    appshared.AuditSink
	logger   *zap.Logger
}

// NewExpenseService creates an expense service
func NewExpenseService(scope appshared.TransactionScope, currency *appaccounting.CurrencyService, audit appshared.AuditSink, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{scope: scope, currency: currency, audit: audit, logger: logger}
}

// CreateExpenseCommand describes one cash expense
type CreateExpenseCommand struct {
	TenantID uuid.UUID
	Category string
	Amount   decimal.Decimal
	Currency string
	PaidOn   time.Time
	Memo     string
}

// CreateExpense records the expense and posts expense against cash in
// base currency
func (s *ExpenseService) CreateExpense(ctx context.Context, cmd CreateExpenseCommand) (*billing.Expense, error) {
	var expense *billing.Expense
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

		expense, err = billing.NewExpense(cmd.TenantID, cmd.Category, cmd.Amount, cmd.Currency, fxRate, cmd.PaidOn, cmd.Memo)
		if err != nil {
			return err
		}

		accounts, err := appaccounting.EnsureSystemAccountsWithRepos(ctx, repos, cmd.TenantID)
		if err != nil {
			return err
		}

		amountBase := valueobject.MoneyIn(expense.Amount, expense.Currency).Convert(fxRate, settings.BaseCurrencyCode()).Amount()
		entry, err := appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
			TenantID: cmd.TenantID,
			RefType:  accounting.RefTypeExpense,
			RefID:    &expense.ID,
			PostedOn: cmd.PaidOn,
			Memo:     cmd.Memo,
			Lines: []accounting.LineInput{
				accounting.Debit(accounts.Get(accounting.RoleExpense).ID, amountBase, cmd.Category),
				accounting.Credit(accounts.Get(accounting.RoleCash).ID, amountBase, cmd.Category),
			},
		})
		if err != nil {
			return err
		}
		expense.JournalEntryID = &entry.ID

		return repos.Expenses().Create(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("expense recorded",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("expense_id", expense.ID.String()),
		zap.String("amount", expense.Amount.String()),
	)
	s.audit.Record(ctx, appshared.NewAuditEntry(cmd.TenantID, "expense.recorded", "expense", expense.ID, map[string]any{
		"amount":   expense.Amount.String(),
		"category": cmd.Category,
	}))
	return expense, nil
}

// ListExpenses lists recent expenses for a tenant
func (s *ExpenseService) ListExpenses(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.Expense, error) {
	var expenses []billing.Expense
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		expenses, err = repos.Expenses().FindForTenant(ctx, tenantID, limit)
		return err
	})
	return expenses, err
}
