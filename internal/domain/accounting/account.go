package accounting

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// AccountType classifies an account within the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// Account is a tenant-scoped ledger account. The (tenant_id, code) pair is
// unique; system accounts are created once by the bootstrap and are never
// modified or deleted by document code.
type Account struct {
	shared.TenantAggregateRoot
	Code     string      `gorm:"size:20;not null;index" json:"code"`
	Name     string      `gorm:"size:200;not null" json:"name"`
	Type     AccountType `gorm:"size:20;not null" json:"type"`
	IsSystem bool        `gorm:"not null;default:false" json:"is_system"`
}

// TableName overrides the gorm table name
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new plain (non-system) account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}
	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
	}, nil
}

// NewSystemAccount creates an account for a well-known system role
func NewSystemAccount(tenantID uuid.UUID, role SystemAccountRole) *Account {
	def := role.Definition()
	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                def.Code,
		Name:                def.Name,
		Type:                def.Type,
		IsSystem:            true,
	}
}
