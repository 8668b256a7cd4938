package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormAccountRepository implements accounting.AccountRepository
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new account repository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.Account, error) {
	var account accounting.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDs finds accounts by their IDs within a tenant
func (r *GormAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]accounting.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var accounts []accounting.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindByCode finds an account by its code within a tenant
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*accounting.Account, error) {
	var account accounting.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetOrCreate inserts the account unless the (tenant, code) pair already
// exists. The insert ignores conflicts on the unique index so concurrent
// bootstraps race safely; the read-back returns whichever row won.
func (r *GormAccountRepository) GetOrCreate(ctx context.Context, account *accounting.Account) (*accounting.Account, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(account).Error
	if err != nil {
		return nil, err
	}
	return r.FindByCode(ctx, account.TenantID, account.Code)
}

// Create inserts a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *accounting.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GormJournalEntryRepository implements accounting.JournalEntryRepository
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new journal entry repository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// Create inserts the entry with its lines atomically
func (r *GormJournalEntryRepository) Create(ctx context.Context, entry *accounting.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByIDForTenant loads an entry with its lines
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.JournalEntry, error) {
	var entry accounting.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// GormCurrencyRateRepository implements accounting.CurrencyRateRepository
type GormCurrencyRateRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRateRepository creates a new currency rate repository
func NewGormCurrencyRateRepository(db *gorm.DB) *GormCurrencyRateRepository {
	return &GormCurrencyRateRepository{db: db}
}

// FindLatest returns the most recent rate by as-of date for the pair
func (r *GormCurrencyRateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, quote, base string) (*accounting.CurrencyRate, error) {
	var rate accounting.CurrencyRate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND quote = ? AND base = ?", tenantID, quote, base).
		Order("as_of DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// Create inserts a new stored rate
func (r *GormCurrencyRateRepository) Create(ctx context.Context, rate *accounting.CurrencyRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// GormTenantSettingsRepository implements accounting.TenantSettingsRepository
type GormTenantSettingsRepository struct {
	db *gorm.DB
}

// NewGormTenantSettingsRepository creates a new tenant settings repository
func NewGormTenantSettingsRepository(db *gorm.DB) *GormTenantSettingsRepository {
	return &GormTenantSettingsRepository{db: db}
}

// GetOrCreate loads the settings row, creating defaults when missing
func (r *GormTenantSettingsRepository) GetOrCreate(ctx context.Context, tenantID uuid.UUID) (*accounting.TenantSettings, error) {
	var settings accounting.TenantSettings
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := accounting.NewTenantSettings(tenantID)
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save persists counter and flag mutations
func (r *GormTenantSettingsRepository) Save(ctx context.Context, settings *accounting.TenantSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
