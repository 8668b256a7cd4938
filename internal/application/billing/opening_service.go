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
	"github.com/ledgerbook/backend/internal/domain/inventory"
	domainshared "github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// OpeningService seeds a tenant's books: account balances, opening stock
// with its cost layers, and the equity plug that makes the opening entry
// balance. It runs once per tenant unless explicitly forced.
type OpeningService struct {
	scope  appshared.TransactionScope
	audit  appshared.AuditSink
	logger *zap.Logger
}

// NewOpeningService creates an opening balance service
func NewOpeningService(scope appshared.TransactionScope, audit appshared.AuditSink, logger *zap.Logger) *OpeningService {
	return &OpeningService{scope: scope, audit: audit, logger: logger}
}

// OpeningAccountLine is a caller-supplied opening balance for one account
type OpeningAccountLine struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// OpeningItemLine is opening stock for one item, valued at unit cost in
// base currency
type OpeningItemLine struct {
	ItemID   uuid.UUID
	Qty      decimal.Decimal
	UnitCost decimal.Decimal
}

// ApplyOpeningCommand describes a full opening balance load
type ApplyOpeningCommand struct {
	TenantID uuid.UUID
	AsOf     time.Time
	Accounts []OpeningAccountLine
	Items    []OpeningItemLine
	// Force reapplies the opening even if one was already recorded
	Force bool
}

// OpeningPreview is the computed opening entry before anything is written
type OpeningPreview struct {
	Lines       []accounting.LineInput
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	// EquityPlug is the amount posted to opening equity so the entry
	// balances; positive means a credit plug
	EquityPlug decimal.Decimal
}

// OpeningResult is the outcome of an applied opening load
type OpeningResult struct {
	JournalEntryID  uuid.UUID
	InventoryMoveID *uuid.UUID
	EquityPlug      decimal.Decimal
}

// Preview computes the opening entry, including the inventory debit and
// the equity plug, without writing anything
func (s *OpeningService) Preview(ctx context.Context, cmd ApplyOpeningCommand) (*OpeningPreview, error) {
	var preview *OpeningPreview
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		preview, _, err = s.buildEntry(ctx, repos, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return preview, nil
}

// Apply writes the opening balances: one journal entry, one OPENING
// inventory move with a lot per item line, and the applied-once flag
func (s *OpeningService) Apply(ctx context.Context, cmd ApplyOpeningCommand) (*OpeningResult, error) {
	var result OpeningResult
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		settings, err := repos.Settings().GetOrCreate(ctx, cmd.TenantID)
		if err != nil {
			return err
		}
		if settings.OpeningSetOnce && !cmd.Force {
			return domainshared.ErrAlreadyApplied
		}

		preview, _, err := s.buildEntry(ctx, repos, cmd)
		if err != nil {
			return err
		}

		entry, err := appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
			TenantID: cmd.TenantID,
			RefType:  accounting.RefTypeOpening,
			PostedOn: cmd.AsOf,
			Memo:     "opening balances",
			Lines:    preview.Lines,
		})
		if err != nil {
			return err
		}
		result.JournalEntryID = entry.ID
		result.EquityPlug = preview.EquityPlug

		if len(cmd.Items) > 0 {
			moveLines := make([]inventory.MoveLineInput, 0, len(cmd.Items))
			for _, item := range cmd.Items {
				moveLines = append(moveLines, inventory.MoveLineInput{
					ItemID:   item.ItemID,
					Qty:      item.Qty,
					UnitCost: valueobject.Round6(item.UnitCost),
				})
			}
			// the opening journal already carries the inventory debit
			move, err := appinventory.CreateMoveWithRepos(ctx, repos, appinventory.CreateMoveCommand{
				TenantID: cmd.TenantID,
				Type:     inventory.MoveTypeOpening,
				MovedOn:  cmd.AsOf,
				Memo:     "opening stock",
				Lines:    moveLines,
			}, false)
			if err != nil {
				return err
			}
			result.InventoryMoveID = &move.ID
		}

		settings.MarkOpeningApplied()
		return repos.Settings().Save(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("opening balances applied",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("journal_id", result.JournalEntryID.String()),
		zap.String("equity_plug", result.EquityPlug.String()),
		zap.Bool("forced", cmd.Force),
	)
	s.audit.Record(ctx, appshared.NewAuditEntry(cmd.TenantID, "opening.applied", "journal_entry", result.JournalEntryID, map[string]any{
		"equity_plug": result.EquityPlug.String(),
		"forced":      cmd.Force,
	}))
	return &result, nil
}

// buildEntry assembles the opening lines: the caller's account balances,
// the inventory debit derived from opening stock, and the opening equity
// plug that absorbs whatever imbalance remains
func (s *OpeningService) buildEntry(ctx context.Context, repos appshared.Repositories, cmd ApplyOpeningCommand) (*OpeningPreview, accounting.SystemAccounts, error) {
	accounts, err := appaccounting.EnsureSystemAccountsWithRepos(ctx, repos, cmd.TenantID)
	if err != nil {
		return nil, nil, err
	}

	var lines []accounting.LineInput
	for _, line := range cmd.Accounts {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return nil, nil, domainshared.NewDomainError(domainshared.CodeInvalidInput, "opening amounts cannot be negative")
		}
		lines = append(lines, accounting.LineInput{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Memo:      "opening balance",
		})
	}

	inventoryValue := decimal.Zero
	for _, item := range cmd.Items {
		if !item.Qty.IsPositive() || item.UnitCost.IsNegative() {
			return nil, nil, domainshared.NewDomainError(domainshared.CodeInvalidInput, "opening stock requires positive qty and non-negative cost")
		}
		inventoryValue = inventoryValue.Add(valueobject.Round2(item.Qty.Mul(item.UnitCost)))
	}
	if inventoryValue.IsPositive() {
		lines = append(lines, accounting.Debit(accounts.Get(accounting.RoleInventory).ID, inventoryValue, "opening stock"))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(valueobject.Round2(line.Debit))
		totalCredit = totalCredit.Add(valueobject.Round2(line.Credit))
	}

	plug := valueobject.Round2(totalDebit.Sub(totalCredit))
	equityID := accounts.Get(accounting.RoleOpeningEquity).ID
	switch {
	case plug.IsPositive():
		lines = append(lines, accounting.Credit(equityID, plug, "opening equity"))
		totalCredit = totalCredit.Add(plug)
	case plug.IsNegative():
		lines = append(lines, accounting.Debit(equityID, plug.Neg(), "opening equity"))
		totalDebit = totalDebit.Add(plug.Neg())
	}

	return &OpeningPreview{
		Lines:       lines,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		EquityPlug:  plug,
	}, accounts, nil
}
