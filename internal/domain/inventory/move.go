package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MoveType classifies an inventory movement
type MoveType string

const (
	MoveTypeOpening     MoveType = "OPENING"
	MoveTypePurchase    MoveType = "PURCHASE"
	MoveTypeSale        MoveType = "SALE"
	MoveTypeConsumption MoveType = "CONSUMPTION"
	MoveTypeProduction  MoveType = "PRODUCTION"
	MoveTypeTransfer    MoveType = "TRANSFER"
	MoveTypeWastage     MoveType = "WASTAGE"
)

// IsValid checks if the move type is valid
func (t MoveType) IsValid() bool {
	switch t {
	case MoveTypeOpening, MoveTypePurchase, MoveTypeSale, MoveTypeConsumption,
		MoveTypeProduction, MoveTypeTransfer, MoveTypeWastage:
		return true
	}
	return false
}

// MoveDirection is the stock effect of a move type
type MoveDirection int

const (
	// DirectionNone is a pass-through with no quantity or cost effect
	DirectionNone MoveDirection = iota
	// DirectionIn increases stock and creates cost layers
	DirectionIn
	// DirectionOut decreases stock by consuming cost layers
	DirectionOut
)

// Direction maps a move type to its stock effect. The switch is exhaustive
// over the closed MoveType set; an unknown type panics rather than being
// silently treated as a no-op.
func (t MoveType) Direction() MoveDirection {
	switch t {
	case MoveTypeOpening, MoveTypePurchase, MoveTypeProduction:
		return DirectionIn
	case MoveTypeSale, MoveTypeConsumption, MoveTypeWastage:
		return DirectionOut
	case MoveTypeTransfer:
		// TRANSFER has no quantity, cost, or journal effect in this model.
		return DirectionNone
	default:
		panic(fmt.Sprintf("unknown move type %q", t))
	}
}

// InventoryMoveLine is one item movement within a move. Qty is
// caller-supplied; UnitCost and TotalCost are filled in by the costing
// engine for every direction except TRANSFER.
type InventoryMoveLine struct {
	shared.BaseEntity
	InventoryMoveID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_move_id"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Qty             decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"qty"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"unit_cost"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_cost"`
}

// TableName overrides the gorm table name
func (InventoryMoveLine) TableName() string {
	return "inventory_move_lines"
}

// InventoryMove is a quantity movement of one or more items. Created once;
// line costs are written back as the costing engine runs.
type InventoryMove struct {
	shared.TenantAggregateRoot
	Type            MoveType            `gorm:"size:20;not null;index" json:"type"`
	MovedOn         time.Time           `gorm:"not null;index" json:"moved_on"`
	Memo            string              `gorm:"size:500" json:"memo"`
	PostedJournalID *uuid.UUID          `gorm:"type:uuid" json:"posted_journal_id"`
	Lines           []InventoryMoveLine `gorm:"foreignKey:InventoryMoveID" json:"lines"`
}

// TableName overrides the gorm table name
func (InventoryMove) TableName() string {
	return "inventory_moves"
}

// MoveLineInput is a caller-supplied movement line
type MoveLineInput struct {
	ItemID   uuid.UUID
	Qty      decimal.Decimal
	UnitCost decimal.Decimal // required for inbound lines, ignored otherwise
}

// NewInventoryMove assembles a move with its lines. Inbound lines keep the
// caller-supplied unit cost; outbound and transfer lines start at zero cost
// until the costing engine computes them.
func NewInventoryMove(
	tenantID uuid.UUID,
	moveType MoveType,
	movedOn time.Time,
	memo string,
	lines []MoveLineInput,
) (*InventoryMove, error) {
	if !moveType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVE_TYPE", "Inventory move type is not valid")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_MOVE", "Inventory move requires at least one line")
	}

	move := &InventoryMove{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                moveType,
		MovedOn:             movedOn,
		Memo:                memo,
		Lines:               make([]InventoryMoveLine, 0, len(lines)),
	}

	inbound := moveType.Direction() == DirectionIn
	for _, in := range lines {
		if in.ItemID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ITEM", "Move line requires an item")
		}
		if !in.Qty.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Move line quantity must be positive")
		}
		if inbound && in.UnitCost.IsNegative() {
			return nil, shared.NewDomainError("INVALID_COST", "Move line unit cost cannot be negative")
		}

		line := InventoryMoveLine{
			BaseEntity:      shared.NewBaseEntity(),
			InventoryMoveID: move.ID,
			ItemID:          in.ItemID,
			Qty:             in.Qty,
			UnitCost:        decimal.Zero,
			TotalCost:       decimal.Zero,
		}
		if inbound {
			line.UnitCost = in.UnitCost
		}
		move.Lines = append(move.Lines, line)
	}

	return move, nil
}

// TotalCost sums the line costs
func (m *InventoryMove) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range m.Lines {
		total = total.Add(l.TotalCost)
	}
	return total
}
