package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// MoveService creates inventory moves, runs the costing engine over them
// and posts the resulting cost journal
type MoveService struct {
	scope  appshared.TransactionScope
	audit  appshared.AuditSink
	logger *zap.Logger
}

// NewMoveService creates a move service
func NewMoveService(scope appshared.TransactionScope, audit appshared.AuditSink, logger *zap.Logger) *MoveService {
	return &MoveService{scope: scope, audit: audit, logger: logger}
}

// CreateMoveCommand describes a standalone inventory movement
type CreateMoveCommand struct {
	TenantID uuid.UUID
	Type     inventory.MoveType
	MovedOn  time.Time
	Memo     string
	Lines    []inventory.MoveLineInput
}

// CreateMove creates and costs a move in one transaction, posting its
// cost journal when the move has financial effect
func (s *MoveService) CreateMove(ctx context.Context, cmd CreateMoveCommand) (*inventory.InventoryMove, error) {
	var move *inventory.InventoryMove
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		move, err = CreateMoveWithRepos(ctx, repos, cmd, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("inventory move created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("move_id", move.ID.String()),
		zap.String("type", string(cmd.Type)),
		zap.String("total_cost", move.TotalCost().String()),
	)
	s.audit.Record(ctx, appshared.NewAuditEntry(cmd.TenantID, "inventory.move.created", "inventory_move", move.ID, map[string]any{
		"type":       string(cmd.Type),
		"total_cost": move.TotalCost().String(),
	}))
	return move, nil
}

// GetMove loads a move with its lines
func (s *MoveService) GetMove(ctx context.Context, tenantID, moveID uuid.UUID) (*inventory.InventoryMove, error) {
	var move *inventory.InventoryMove
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		move, err = repos.Moves().FindByIDForTenant(ctx, tenantID, moveID)
		return err
	})
	return move, err
}

// ListMoves lists recent moves for a tenant
func (s *MoveService) ListMoves(ctx context.Context, tenantID uuid.UUID, limit int) ([]inventory.InventoryMove, error) {
	var moves []inventory.InventoryMove
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		moves, err = repos.Moves().FindForTenant(ctx, tenantID, limit)
		return err
	})
	return moves, err
}

// CreateMoveWithRepos creates and costs a move on an already-open
// transaction. Document orchestrators pass postJournal=false and fold
// the cost into their own postings instead.
func CreateMoveWithRepos(ctx context.Context, repos appshared.Repositories, cmd CreateMoveCommand, postJournal bool) (*inventory.InventoryMove, error) {
	if err := verifyItems(ctx, repos, cmd.TenantID, cmd.Lines); err != nil {
		return nil, err
	}

	move, err := inventory.NewInventoryMove(cmd.TenantID, cmd.Type, cmd.MovedOn, cmd.Memo, cmd.Lines)
	if err != nil {
		return nil, err
	}
	if err := repos.Moves().Create(ctx, move); err != nil {
		return nil, err
	}

	settings, err := repos.Settings().GetOrCreate(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	engine := inventory.NewCostingEngine(repos.Items(), repos.Lots(), repos.Moves())
	result, err := engine.Apply(ctx, cmd.TenantID, inventory.CostingMethod(settings.InventoryCosting), cmd.MovedOn, move)
	if err != nil {
		return nil, err
	}

	if !postJournal || result.TotalCost.IsZero() {
		return move, nil
	}

	lines, ok, err := costJournalLines(ctx, repos, cmd.TenantID, move)
	if err != nil {
		return nil, err
	}
	if !ok {
		return move, nil
	}

	entry, err := appaccounting.PostWithRepos(ctx, repos, appaccounting.PostJournalCommand{
		TenantID: cmd.TenantID,
		RefType:  accounting.RefTypeInventoryMove,
		RefID:    &move.ID,
		PostedOn: cmd.MovedOn,
		Memo:     cmd.Memo,
		Lines:    lines,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.Moves().SetPostedJournal(ctx, move.ID, entry.ID); err != nil {
		return nil, err
	}
	move.PostedJournalID = &entry.ID
	return move, nil
}

// costJournalLines maps a costed move onto its debit and credit role
// accounts. Moves with no journal mapping return ok=false.
func costJournalLines(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, move *inventory.InventoryMove) ([]accounting.LineInput, bool, error) {
	var debitRole, creditRole accounting.SystemAccountRole
	switch move.Type {
	case inventory.MoveTypeSale, inventory.MoveTypeConsumption:
		debitRole, creditRole = accounting.RoleCOGS, accounting.RoleInventory
	case inventory.MoveTypeWastage:
		debitRole, creditRole = accounting.RoleWastage, accounting.RoleInventory
	case inventory.MoveTypeProduction, inventory.MoveTypePurchase, inventory.MoveTypeOpening:
		debitRole, creditRole = accounting.RoleInventory, accounting.RoleInventoryAdj
	case inventory.MoveTypeTransfer:
		return nil, false, nil
	default:
		return nil, false, shared.NewDomainError(shared.CodeInvalidInput, "move type has no journal mapping")
	}

	accounts, err := appaccounting.EnsureSystemAccountsWithRepos(ctx, repos, tenantID)
	if err != nil {
		return nil, false, err
	}

	total := move.TotalCost()
	lines := []accounting.LineInput{
		accounting.Debit(accounts.Get(debitRole).ID, total, move.Memo),
		accounting.Credit(accounts.Get(creditRole).ID, total, move.Memo),
	}
	return lines, true, nil
}

// verifyItems checks that every referenced item exists for the tenant
func verifyItems(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, lines []inventory.MoveLineInput) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ItemID]; ok {
			continue
		}
		seen[line.ItemID] = struct{}{}
		ids = append(ids, line.ItemID)
	}

	items, err := repos.Items().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewUnknownItemError("one or more move items do not exist")
		}
		return err
	}
	if len(items) != len(ids) {
		return shared.NewUnknownItemError("one or more move items do not exist")
	}
	return nil
}
