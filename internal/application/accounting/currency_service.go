package accounting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// RateCache caches resolved FX rates. A miss returns found=false; cache
// failures are swallowed so resolution always falls through to storage.
type RateCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, quote, base string) (decimal.Decimal, bool)
	Set(ctx context.Context, tenantID uuid.UUID, quote, base string, rate decimal.Decimal)
	Invalidate(ctx context.Context, tenantID uuid.UUID, quote, base string)
}

// CurrencyService resolves and stores FX rates
type CurrencyService struct {
	scope  appshared.TransactionScope
	cache  RateCache
	logger *zap.Logger
}

// NewCurrencyService creates a currency service
func NewCurrencyService(scope appshared.TransactionScope, cache RateCache, logger *zap.Logger) *CurrencyService {
	return &CurrencyService{scope: scope, cache: cache, logger: logger}
}

// ResolveRate returns the rate converting quote currency into base
// currency: identity when the codes match, otherwise the latest stored
// rate, otherwise 1 so drafts never fail on a missing rate.
func (s *CurrencyService) ResolveRate(ctx context.Context, tenantID uuid.UUID, quote, base string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		rate, err = s.resolveWithRepos(ctx, repos, tenantID, quote, base)
		return err
	})
	return rate, err
}

// ResolveRateWithRepos resolves a rate on an already-open transaction
func (s *CurrencyService) ResolveRateWithRepos(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, quote, base string) (decimal.Decimal, error) {
	return s.resolveWithRepos(ctx, repos, tenantID, quote, base)
}

func (s *CurrencyService) resolveWithRepos(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, quote, base string) (decimal.Decimal, error) {
	q := string(valueobject.NormalizeCurrency(quote))
	b := string(valueobject.NormalizeCurrency(base))
	if q == b {
		return decimal.NewFromInt(1), nil
	}

	if cached, ok := s.cache.Get(ctx, tenantID, q, b); ok {
		return cached, nil
	}

	stored, err := repos.Rates().FindLatest(ctx, tenantID, q, b)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("no stored fx rate, falling back to 1",
				zap.String("tenant_id", tenantID.String()),
				zap.String("quote", q),
				zap.String("base", b),
			)
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, err
	}

	s.cache.Set(ctx, tenantID, q, b, stored.Rate)
	return stored.Rate, nil
}

// SetRateCommand stores a new FX rate observation
type SetRateCommand struct {
	TenantID uuid.UUID
	Quote    string
	Base     string
	Rate     decimal.Decimal
	AsOf     time.Time
}

// SetRate stores a rate and invalidates the cached value for the pair
func (s *CurrencyService) SetRate(ctx context.Context, cmd SetRateCommand) (*accounting.CurrencyRate, error) {
	q := string(valueobject.NormalizeCurrency(cmd.Quote))
	b := string(valueobject.NormalizeCurrency(cmd.Base))
	rate, err := accounting.NewCurrencyRate(cmd.TenantID, q, b, cmd.Rate, cmd.AsOf)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		return repos.Rates().Create(ctx, rate)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cmd.TenantID, q, b)
	return rate, nil
}
