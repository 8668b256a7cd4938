package accounting

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository persists chart-of-accounts records
type AccountRepository interface {
	// FindByIDForTenant finds an account by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	// FindByIDs finds accounts by their IDs within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Account, error)
	// FindByCode finds an account by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	// GetOrCreate inserts the account unless the (tenant, code) pair already
	// exists, returning the persisted row either way. Safe under concurrent
	// bootstrap calls.
	GetOrCreate(ctx context.Context, account *Account) (*Account, error)
	// Create inserts a new account
	Create(ctx context.Context, account *Account) error
}

// JournalEntryRepository persists immutable journal entries. There is
// deliberately no update or delete operation.
type JournalEntryRepository interface {
	// Create inserts the entry with its lines atomically
	Create(ctx context.Context, entry *JournalEntry) error
	// FindByIDForTenant loads an entry with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
}

// CurrencyRateRepository reads stored FX rates
type CurrencyRateRepository interface {
	// FindLatest returns the most recent rate by as-of date for the pair, or
	// shared.ErrNotFound when none is stored
	FindLatest(ctx context.Context, tenantID uuid.UUID, quote, base string) (*CurrencyRate, error)
	// Create inserts a new stored rate
	Create(ctx context.Context, rate *CurrencyRate) error
}

// TenantSettingsRepository persists per-tenant configuration and counters
type TenantSettingsRepository interface {
	// GetOrCreate loads the settings row, creating defaults when missing
	GetOrCreate(ctx context.Context, tenantID uuid.UUID) (*TenantSettings, error)
	// Save persists counter and flag mutations
	Save(ctx context.Context, settings *TenantSettings) error
}
