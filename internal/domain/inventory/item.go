package inventory

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemType distinguishes stocked products from services
type ItemType string

const (
	ItemTypeProduct ItemType = "PRODUCT"
	ItemTypeService ItemType = "SERVICE"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	return t == ItemTypeProduct || t == ItemTypeService
}

// Item is a sellable/purchasable catalog entry. Only PRODUCT items carry
// stock state; OnHand and AvgCost are mutated exclusively by the costing
// engine, never by document code.
type Item struct {
	shared.TenantAggregateRoot
	Name    string          `gorm:"size:200;not null" json:"name"`
	SKU     string          `gorm:"size:64" json:"sku"`
	Type    ItemType        `gorm:"size:20;not null" json:"type"`
	OnHand  decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"on_hand"`
	AvgCost decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"avg_cost"`
}

// TableName overrides the gorm table name
func (Item) TableName() string {
	return "items"
}

// NewItem creates a catalog item with zero stock
func NewItem(tenantID uuid.UUID, name, sku string, itemType ItemType) (*Item, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Item type is not valid")
	}
	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SKU:                 sku,
		Type:                itemType,
		OnHand:              decimal.Zero,
		AvgCost:             decimal.Zero,
	}, nil
}

// IsProduct returns true if the item participates in inventory costing
func (i *Item) IsProduct() bool {
	return i.Type == ItemTypeProduct
}
