package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CurrencyRate is a stored quote-to-base conversion rate as of a date.
// Documents snapshot a rate at creation time; stored rates are never used to
// revalue posted documents.
type CurrencyRate struct {
	shared.BaseEntity
	TenantID uuid.UUID       `gorm:"type:uuid;not null;index:idx_rates_lookup,priority:1" json:"tenant_id"`
	Quote    string          `gorm:"size:10;not null;index:idx_rates_lookup,priority:2" json:"quote"`
	Base     string          `gorm:"size:10;not null;index:idx_rates_lookup,priority:3" json:"base"`
	Rate     decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"rate"`
	AsOf     time.Time       `gorm:"not null;index" json:"as_of"`
}

// TableName overrides the gorm table name
func (CurrencyRate) TableName() string {
	return "currency_rates"
}

// NewCurrencyRate creates a stored rate record
func NewCurrencyRate(tenantID uuid.UUID, quote, base string, rate decimal.Decimal, asOf time.Time) (*CurrencyRate, error) {
	if quote == "" || base == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Quote and base currencies are required")
	}
	if !rate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate must be positive")
	}
	return &CurrencyRate{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Quote:      quote,
		Base:       base,
		Rate:       rate,
		AsOf:       asOf,
	}, nil
}
