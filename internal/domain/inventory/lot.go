package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Lot source types
const (
	LotSourceInventoryMove = "INVENTORY_MOVE"
	LotSourceBill          = "BILL"
	LotSourceOpening       = "OPENING"
)

// InventoryLot is a receipt-dated cost layer. One lot is created on every
// inbound movement regardless of the active costing method, so the FIFO
// audit trail survives a switch away from AVG. QtyRemaining only decreases
// and never goes negative.
type InventoryLot struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	ReceivedOn   time.Time       `gorm:"not null;index" json:"received_on"`
	SourceType   string          `gorm:"size:40;not null" json:"source_type"`
	SourceID     uuid.UUID       `gorm:"type:uuid;not null" json:"source_id"`
	QtyIn        decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"qty_in"`
	QtyRemaining decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"qty_remaining"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"unit_cost"`
}

// TableName overrides the gorm table name
func (InventoryLot) TableName() string {
	return "inventory_lots"
}

// NewInventoryLot creates a full lot for an inbound movement
func NewInventoryLot(
	tenantID, itemID uuid.UUID,
	receivedOn time.Time,
	sourceType string,
	sourceID uuid.UUID,
	qty, unitCost decimal.Decimal,
) *InventoryLot {
	return &InventoryLot{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		ItemID:       itemID,
		ReceivedOn:   receivedOn,
		SourceType:   sourceType,
		SourceID:     sourceID,
		QtyIn:        qty,
		QtyRemaining: qty,
		UnitCost:     unitCost,
	}
}

// HasStock returns true if the lot has unconsumed quantity
func (l *InventoryLot) HasStock() bool {
	return l.QtyRemaining.IsPositive()
}

// Take consumes up to qty from the lot and returns the quantity actually
// taken (never more than QtyRemaining).
func (l *InventoryLot) Take(qty decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(qty, l.QtyRemaining)
	l.QtyRemaining = l.QtyRemaining.Sub(taken)
	l.Touch()
	return taken
}

// LotAllocation is the immutable record of one FIFO consumption: a single
// (lot, outbound move line) pairing created during draw-down.
type LotAllocation struct {
	shared.BaseEntity
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LotID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"lot_id"`
	MoveLineID uuid.UUID       `gorm:"type:uuid;not null;index" json:"move_line_id"`
	Qty        decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"qty"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"unit_cost"`
	Cost       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"cost"`
}

// TableName overrides the gorm table name
func (LotAllocation) TableName() string {
	return "inventory_lot_allocations"
}

// NewLotAllocation records a FIFO consumption
func NewLotAllocation(tenantID, lotID, moveLineID uuid.UUID, qty, unitCost, cost decimal.Decimal) *LotAllocation {
	return &LotAllocation{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		LotID:      lotID,
		MoveLineID: moveLineID,
		Qty:        qty,
		UnitCost:   unitCost,
		Cost:       cost,
	}
}
