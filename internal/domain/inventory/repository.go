package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRepository persists catalog items and their stock aggregates
type ItemRepository interface {
	// FindByIDForTenant finds an item by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	// FindByIDs finds items by their IDs within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Item, error)
	// FindForTenant lists a tenant's items
	FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Item, error)
	// Create inserts a new item
	Create(ctx context.Context, item *Item) error
	// UpdateStock writes the engine-computed onHand and avgCost for an item
	UpdateStock(ctx context.Context, itemID uuid.UUID, onHand, avgCost decimal.Decimal) error
}

// LotRepository persists cost layers and their consumption records
type LotRepository interface {
	// Create inserts a new lot
	Create(ctx context.Context, lot *InventoryLot) error
	// FindOpenByItem returns lots with remaining quantity for an item,
	// ordered received_on ascending then creation order ascending - the FIFO
	// consumption order
	FindOpenByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]InventoryLot, error)
	// FindByItem returns all lots for an item regardless of remaining
	// quantity, in FIFO order
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]InventoryLot, error)
	// UpdateRemaining persists a lot's decremented remaining quantity
	UpdateRemaining(ctx context.Context, lot *InventoryLot) error
	// CreateAllocation records a FIFO consumption
	CreateAllocation(ctx context.Context, alloc *LotAllocation) error
}

// MoveRepository persists inventory moves
type MoveRepository interface {
	// Create inserts the move with its lines
	Create(ctx context.Context, move *InventoryMove) error
	// FindByIDForTenant loads a move with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InventoryMove, error)
	// FindForTenant lists recent moves for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]InventoryMove, error)
	// UpdateLineCost writes the engine-computed costs onto a move line
	UpdateLineCost(ctx context.Context, lineID uuid.UUID, unitCost, totalCost decimal.Decimal) error
	// SetPostedJournal links the move to its posted journal entry
	SetPostedJournal(ctx context.Context, moveID, journalID uuid.UUID) error
}
