package accounting

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
)

// SystemAccountsService bootstraps the fixed chart of accounts a tenant
// needs before any posting can happen
type SystemAccountsService struct {
	scope  appshared.TransactionScope
	logger *zap.Logger
}

// NewSystemAccountsService creates a system accounts service
func NewSystemAccountsService(scope appshared.TransactionScope, logger *zap.Logger) *SystemAccountsService {
	return &SystemAccountsService{scope: scope, logger: logger}
}

// EnsureSystemAccounts creates any missing system accounts for the
// tenant and returns the full role map. Idempotent; existing accounts
// are returned as-is even if their names have been edited.
func (s *SystemAccountsService) EnsureSystemAccounts(ctx context.Context, tenantID uuid.UUID) (accounting.SystemAccounts, error) {
	var accounts accounting.SystemAccounts
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		accounts, err = EnsureSystemAccountsWithRepos(ctx, repos, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("system accounts ensured", zap.String("tenant_id", tenantID.String()))
	return accounts, nil
}

// EnsureSystemAccountsWithRepos runs the bootstrap on an already-open
// transaction so orchestrators can resolve role accounts mid-flow
func EnsureSystemAccountsWithRepos(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID) (accounting.SystemAccounts, error) {
	accounts := make(accounting.SystemAccounts, len(accounting.AllSystemAccountRoles()))
	for _, role := range accounting.AllSystemAccountRoles() {
		persisted, err := repos.Accounts().GetOrCreate(ctx, accounting.NewSystemAccount(tenantID, role))
		if err != nil {
			return nil, err
		}
		accounts[role] = persisted
	}
	return accounts, nil
}
