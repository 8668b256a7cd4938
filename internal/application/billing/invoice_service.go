package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	appinventory "github.com/ledgerbook/backend/internal/application/inventory"
	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	domainshared "github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// InvoiceService manages the invoice lifecycle: draft editing and the
// approval that posts revenue, moves stock and books cost of goods sold
// in one transaction
type InvoiceService struct {
	scope    appshared.TransactionScope
	currency *appaccounting.CurrencyService
	audit    appshared.AuditSink
	logger   *zap.Logger
}

// NewInvoiceService creates an invoice service
func NewInvoiceService(scope appshared.TransactionScope, currency *appaccounting.CurrencyService, audit appshared.AuditSink, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{scope: scope, currency: currency, audit: audit, logger: logger}
}

// InvoiceItemInput is one sales line as submitted by the caller
type InvoiceItemInput struct {
	ItemID      *uuid.UUID
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// CreateInvoiceCommand describes a new draft invoice
type CreateInvoiceCommand struct {
	TenantID     uuid.UUID
	CustomerName string
	Currency     string
	IssueDate    time.Time
	DueDate      *time.Time
	Memo         string
	Items        []InvoiceItemInput
}

// CreateDraft creates a draft invoice with computed totals. Nothing is
// posted until approval.
func (s *InvoiceService) CreateDraft(ctx context.Context, cmd CreateInvoiceCommand) (*billing.Invoice, error) {
	var invoice *billing.Invoice
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
		invoice, err = billing.NewInvoice(cmd.TenantID, cmd.CustomerName, cmd.Currency, fxRate, cmd.IssueDate, cmd.DueDate, cmd.Memo)
		if err != nil {
			return err
		}
		if err := invoice.ReplaceItems(buildInvoiceItems(invoice.ID, cmd.Items)); err != nil {
			return err
		}
		return repos.Invoices().Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice draft created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("total", invoice.Total.String()),
	)
	return invoice, nil
}

// UpdateDraftCommand replaces a draft invoice's header fields and items
type UpdateDraftCommand struct {
	TenantID     uuid.UUID
	InvoiceID    uuid.UUID
	CustomerName string
	IssueDate    time.Time
	DueDate      *time.Time
	Memo         string
	Items        []InvoiceItemInput
}

// UpdateDraft rewrites a draft invoice. Approved invoices reject edits.
func (s *InvoiceService) UpdateDraft(ctx context.Context, cmd UpdateDraftCommand) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		invoice, err = repos.Invoices().FindByIDForTenant(ctx, cmd.TenantID, cmd.InvoiceID)
		if err != nil {
			return err
		}
		if cmd.CustomerName != "" {
			invoice.CustomerName = cmd.CustomerName
		}
		invoice.IssueDate = cmd.IssueDate
		invoice.DueDate = cmd.DueDate
		invoice.Memo = cmd.Memo
		if err := invoice.ReplaceItems(buildInvoiceItems(invoice.ID, cmd.Items)); err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Approve recomputes totals from the stored items, posts the receivable
// journal, issues stock for product lines and books COGS. The whole
// orchestration is atomic; a costing failure rolls back the posting.
func (s *InvoiceService) Approve(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		invoice, err = repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !invoice.CanEdit() {
			return domainshared.NewAlreadyProcessedError("invoice", string(invoice.Status))
		}

		// totals always come from the items, never from the cached columns
		invoice.Recalculate()

		settings, err := repos.Settings().GetOrCreate(ctx, tenantID)
		if err != nil {
			return err
		}
		// the rate was snapshotted when the draft was created or last
		// edited; approval posts at that snapshot
		fxRate := invoice.FxRate

		accounts, err := appaccounting.EnsureSystemAccountsWithRepos(ctx, repos, tenantID)
		if err != nil {
			return err
		}

		// revenue and tax convert and round independently; the receivable
		// is their sum so the entry balances by construction
		base := settings.BaseCurrencyCode()
		revenueBase := valueobject.MoneyIn(invoice.Subtotal, invoice.Currency).Convert(fxRate, base).Amount()
		taxBase := valueobject.MoneyIn(invoice.TaxTotal, invoice.Currency).Convert(fxRate, base).Amount()
		arBase := revenueBase.Add(taxBase)

		lines := []accounting.LineInput{
			accounting.Debit(accounts.Get(accounting.RoleAR).ID, arBase, invoice.CustomerName),
			accounting.Credit(accounts.Get(accounting.RoleRevenue).ID, revenueBase, invoice.Memo),
		}
		if taxBase.IsPositive() {
			lines = append(lines, accounting.Credit(accounts.Get(accounting.RoleTaxPayable).ID, taxBase, "sales tax"))
		}

		entry, err := appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
			TenantID: tenantID,
			RefType:  accounting.RefTypeInvoice,
			RefID:    &invoice.ID,
			PostedOn: invoice.IssueDate,
			Memo:     invoice.Memo,
			Lines:    lines,
		})
		if err != nil {
			return err
		}

		moveID, cogsJournalID, err := s.issueStock(ctx, repos, tenantID, invoice, accounts)
		if err != nil {
			return err
		}

		invoiceNo := settings.NextInvoiceNumber()
		if err := repos.Settings().Save(ctx, settings); err != nil {
			return err
		}
		if err := invoice.MarkApproved(invoiceNo, entry.ID, moveID, cogsJournalID); err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice approved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("total", invoice.Total.String()),
	)
	s.audit.Record(ctx, appshared.NewAuditEntry(tenantID, "invoice.approved", "invoice", invoice.ID, map[string]any{
		"invoice_no": invoice.InvoiceNo,
		"total":      invoice.Total.String(),
	}))
	return invoice, nil
}

// issueStock synthesizes the SALE move for product lines and posts the
// cost of goods sold. Invoices with no product lines move no stock.
func (s *InvoiceService) issueStock(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, invoice *billing.Invoice, accounts accounting.SystemAccounts) (*uuid.UUID, *uuid.UUID, error) {
	var moveLines []inventory.MoveLineInput
	for _, item := range invoice.Items {
		if item.ItemID == nil {
			continue
		}
		stocked, err := repos.Items().FindByIDForTenant(ctx, tenantID, *item.ItemID)
		if err != nil {
			return nil, nil, err
		}
		if !stocked.IsProduct() {
			continue
		}
		moveLines = append(moveLines, inventory.MoveLineInput{ItemID: *item.ItemID, Qty: item.Qty})
	}
	if len(moveLines) == 0 {
		return nil, nil, nil
	}

	move, err := appinventory.CreateMoveWithRepos(ctx, repos, appinventory.CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeSale,
		MovedOn:  invoice.IssueDate,
		Memo:     "invoice " + invoice.CustomerName,
		Lines:    moveLines,
	}, false)
	if err != nil {
		return nil, nil, err
	}

	totalCost := move.TotalCost()
	if totalCost.IsZero() {
		return &move.ID, nil, nil
	}

	cogsEntry, err := appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
		TenantID: tenantID,
		RefType:  accounting.RefTypeInvoice,
		RefID:    &invoice.ID,
		PostedOn: invoice.IssueDate,
		Memo:     "cost of goods sold",
		Lines: []accounting.LineInput{
			accounting.Debit(accounts.Get(accounting.RoleCOGS).ID, totalCost, "cost of goods sold"),
			accounting.Credit(accounts.Get(accounting.RoleInventory).ID, totalCost, "cost of goods sold"),
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Moves().SetPostedJournal(ctx, move.ID, cogsEntry.ID); err != nil {
		return nil, nil, err
	}
	return &move.ID, &cogsEntry.ID, nil
}

// GetInvoice loads an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		invoice, err = repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		return err
	})
	return invoice, err
}

// ListInvoices lists recent invoices for a tenant
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		invoices, err = repos.Invoices().FindForTenant(ctx, tenantID, limit)
		return err
	})
	return invoices, err
}

func buildInvoiceItems(invoiceID uuid.UUID, inputs []InvoiceItemInput) []billing.InvoiceItem {
	items := make([]billing.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, billing.InvoiceItem{
			BaseEntity:  domainshared.NewBaseEntity(),
			InvoiceID:   invoiceID,
			ItemID:      in.ItemID,
			Description: in.Description,
			Qty:         in.Qty,
			UnitPrice:   in.UnitPrice,
			TaxRate:     in.TaxRate,
		})
	}
	return items
}
