package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/inventory"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormItemRepository implements inventory.ItemRepository
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new item repository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByIDForTenant finds an item by ID within a tenant
func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs finds items by their IDs within a tenant
func (r *GormItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []inventory.Item
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindForTenant lists a tenant's items
func (r *GormItemRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]inventory.Item, error) {
	var items []inventory.Item
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new item
func (r *GormItemRepository) Create(ctx context.Context, item *inventory.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateStock writes the engine-computed onHand and avgCost for an item
func (r *GormItemRepository) UpdateStock(ctx context.Context, itemID uuid.UUID, onHand, avgCost decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&inventory.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"on_hand":  onHand,
			"avg_cost": avgCost,
		}).Error
}

// GormLotRepository implements inventory.LotRepository
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new lot repository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// Create inserts a new lot
func (r *GormLotRepository) Create(ctx context.Context, lot *inventory.InventoryLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

// FindOpenByItem returns lots with remaining quantity for an item in FIFO
// order: received date first, then insertion order for same-day receipts
func (r *GormLotRepository) FindOpenByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]inventory.InventoryLot, error) {
	var lots []inventory.InventoryLot
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ? AND qty_remaining > 0", tenantID, itemID).
		Order("received_on ASC, created_at ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByItem returns all lots for an item in FIFO order
func (r *GormLotRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]inventory.InventoryLot, error) {
	var lots []inventory.InventoryLot
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Order("received_on ASC, created_at ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// UpdateRemaining persists a lot's decremented remaining quantity
func (r *GormLotRepository) UpdateRemaining(ctx context.Context, lot *inventory.InventoryLot) error {
	return r.db.WithContext(ctx).
		Model(&inventory.InventoryLot{}).
		Where("id = ?", lot.ID).
		Updates(map[string]any{
			"qty_remaining": lot.QtyRemaining,
			"updated_at":    lot.UpdatedAt,
		}).Error
}

// CreateAllocation records a FIFO consumption
func (r *GormLotRepository) CreateAllocation(ctx context.Context, alloc *inventory.LotAllocation) error {
	return r.db.WithContext(ctx).Create(alloc).Error
}

// GormMoveRepository implements inventory.MoveRepository
type GormMoveRepository struct {
	db *gorm.DB
}

// NewGormMoveRepository creates a new inventory move repository
func NewGormMoveRepository(db *gorm.DB) *GormMoveRepository {
	return &GormMoveRepository{db: db}
}

// Create inserts the move with its lines
func (r *GormMoveRepository) Create(ctx context.Context, move *inventory.InventoryMove) error {
	return r.db.WithContext(ctx).Create(move).Error
}

// FindByIDForTenant loads a move with its lines
func (r *GormMoveRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryMove, error) {
	var move inventory.InventoryMove
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&move).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &move, nil
}

// FindForTenant lists recent moves for a tenant
func (r *GormMoveRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]inventory.InventoryMove, error) {
	var moves []inventory.InventoryMove
	q := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ?", tenantID).
		Order("moved_on DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

// UpdateLineCost writes the engine-computed costs onto a move line
func (r *GormMoveRepository) UpdateLineCost(ctx context.Context, lineID uuid.UUID, unitCost, totalCost decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&inventory.InventoryMoveLine{}).
		Where("id = ?", lineID).
		Updates(map[string]any{
			"unit_cost":  unitCost,
			"total_cost": totalCost,
		}).Error
}

// SetPostedJournal links the move to its posted journal entry
func (r *GormMoveRepository) SetPostedJournal(ctx context.Context, moveID, journalID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&inventory.InventoryMove{}).
		Where("id = ?", moveID).
		Update("posted_journal_id", journalID).Error
}
