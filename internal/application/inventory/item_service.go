package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/inventory"
)

// ItemService manages the item catalog
type ItemService struct {
	scope  appshared.TransactionScope
	logger *zap.Logger
}

// NewItemService creates an item service
func NewItemService(scope appshared.TransactionScope, logger *zap.Logger) *ItemService {
	return &ItemService{scope: scope, logger: logger}
}

// CreateItemCommand describes a new catalog item
type CreateItemCommand struct {
	TenantID uuid.UUID
	Name     string
	SKU      string
	Type     inventory.ItemType
}

// CreateItem adds an item to the catalog with zero stock
func (s *ItemService) CreateItem(ctx context.Context, cmd CreateItemCommand) (*inventory.Item, error) {
	item, err := inventory.NewItem(cmd.TenantID, cmd.Name, cmd.SKU, cmd.Type)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		return repos.Items().Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("item created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("sku", cmd.SKU),
	)
	return item, nil
}

// GetItem loads a single item
func (s *ItemService) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.Item, error) {
	var item *inventory.Item
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		item, err = repos.Items().FindByIDForTenant(ctx, tenantID, itemID)
		return err
	})
	return item, err
}

// ListItems lists a tenant's items
func (s *ItemService) ListItems(ctx context.Context, tenantID uuid.UUID, limit int) ([]inventory.Item, error) {
	var items []inventory.Item
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		items, err = repos.Items().FindForTenant(ctx, tenantID, limit)
		return err
	})
	return items, err
}

// ListLots returns an item's cost layers in consumption order
func (s *ItemService) ListLots(ctx context.Context, tenantID, itemID uuid.UUID) ([]inventory.InventoryLot, error) {
	var lots []inventory.InventoryLot
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		lots, err = repos.Lots().FindByItem(ctx, tenantID, itemID)
		return err
	})
	return lots, err
}
