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
	domainshared "github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// PaymentService applies settlements against open invoices and bills.
// The balance is clamped at zero on overpayment, but the cash journal
// always carries the tendered amount converted at the caller's rate.
type PaymentService struct {
	scope  appshared.TransactionScope
	audit  appshared.AuditSink
	logger *zap.Logger
}

// NewPaymentService creates a payment service
func NewPaymentService(scope appshared.TransactionScope, audit appshared.AuditSink, logger *zap.Logger) *PaymentService {
	return &PaymentService{scope: scope, audit: audit, logger: logger}
}

// CreatePaymentCommand describes one settlement. FxRate converts the
// tendered amount to base currency and defaults to 1 when unset.
type CreatePaymentCommand struct {
	TenantID   uuid.UUID
	Direction  billing.PaymentDirection
	DocumentID uuid.UUID
	Amount     decimal.Decimal
	FxRate     decimal.Decimal
	PaidOn     time.Time
	Memo       string
}

// CreatePayment applies the amount to the target document, records the
// payment with a sequenced receipt number and posts the cash journal
func (s *PaymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*billing.Payment, error) {
	if !cmd.Direction.IsValid() {
		return nil, domainshared.NewDomainError(domainshared.CodeInvalidInput, "payment direction must be AR or AP")
	}

	fxRate := cmd.FxRate
	if !fxRate.IsPositive() {
		fxRate = decimal.NewFromInt(1)
	}

	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var (
			applied  decimal.Decimal
			currency string
			err      error
		)

		if cmd.Direction == billing.PaymentDirectionAR {
			invoice, ferr := repos.Invoices().FindByIDForTenant(ctx, cmd.TenantID, cmd.DocumentID)
			if ferr != nil {
				return ferr
			}
			applied, err = invoice.ApplyPayment(cmd.Amount)
			if err != nil {
				return err
			}
			if err := repos.Invoices().Save(ctx, invoice); err != nil {
				return err
			}
			currency = invoice.Currency
		} else {
			bill, ferr := repos.Bills().FindByIDForTenant(ctx, cmd.TenantID, cmd.DocumentID)
			if ferr != nil {
				return ferr
			}
			applied, err = bill.ApplyPayment(cmd.Amount)
			if err != nil {
				return err
			}
			if err := repos.Bills().Save(ctx, bill); err != nil {
				return err
			}
			currency = bill.Currency
		}

		payment, err = billing.NewPayment(cmd.TenantID, cmd.Direction, cmd.DocumentID, cmd.Amount, applied, currency, fxRate, cmd.PaidOn, cmd.Memo)
		if err != nil {
			return err
		}

		settings, err := repos.Settings().GetOrCreate(ctx, cmd.TenantID)
		if err != nil {
			return err
		}
		payment.ReceiptNo = settings.NextReceiptNumber()
		if err := repos.Settings().Save(ctx, settings); err != nil {
			return err
		}

		entry, err := s.postCash(ctx, repos, cmd, payment, fxRate, settings.BaseCurrencyCode())
		if err != nil {
			return err
		}
		payment.JournalEntryID = &entry.ID

		return repos.Payments().Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment applied",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("receipt_no", payment.ReceiptNo),
		zap.String("direction", string(cmd.Direction)),
		zap.String("applied", payment.AppliedAmount.String()),
	)
	s.audit.Record(ctx, appshared.NewAuditEntry(cmd.TenantID, "payment.created", "payment", payment.ID, map[string]any{
		"receipt_no": payment.ReceiptNo,
		"direction":  string(cmd.Direction),
		"applied":    payment.AppliedAmount.String(),
	}))
	return payment, nil
}

// postCash books the settlement in base currency, converting the full
// tendered amount at the caller's rate. AR payments debit cash against
// the receivable; AP payments debit the payable against cash.
func (s *PaymentService) postCash(ctx context.Context, repos appshared.Repositories, cmd CreatePaymentCommand, payment *billing.Payment, fxRate decimal.Decimal, base valueobject.Currency) (*accounting.JournalEntry, error) {
	accounts, err := appaccounting.EnsureSystemAccountsWithRepos(ctx, repos, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	amountBase := valueobject.MoneyIn(cmd.Amount, payment.Currency).Convert(fxRate, base).Amount()
	var lines []accounting.LineInput
	if cmd.Direction == billing.PaymentDirectionAR {
		lines = []accounting.LineInput{
			accounting.Debit(accounts.Get(accounting.RoleCash).ID, amountBase, payment.ReceiptNo),
			accounting.Credit(accounts.Get(accounting.RoleAR).ID, amountBase, payment.ReceiptNo),
		}
	} else {
		lines = []accounting.LineInput{
			accounting.Debit(accounts.Get(accounting.RoleAP).ID, amountBase, payment.ReceiptNo),
			accounting.Credit(accounts.Get(accounting.RoleCash).ID, amountBase, payment.ReceiptNo),
		}
	}

	return appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
		TenantID: cmd.TenantID,
		RefType:  accounting.RefTypePayment,
		RefID:    &payment.ID,
		PostedOn: cmd.PaidOn,
		Memo:     cmd.Memo,
		Lines:    lines,
	})
}

// GetPayment loads one payment
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
		return err
	})
	return payment, err
}

// ListPaymentsForDocument lists the settlements applied to a document
func (s *PaymentService) ListPaymentsForDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		payments, err = repos.Payments().FindByDocument(ctx, tenantID, documentID)
		return err
	})
	return payments, err
}
