package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
)

func setupInventoryTestDB(t *testing.T) (*persistence.GormTransactionScope, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(persistence.Models()...))
	require.NoError(t, persistence.MigrateIndexes(db))
	return persistence.NewGormTransactionScope(db), db
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newMoveService(scope appshared.TransactionScope) *MoveService {
	return NewMoveService(scope, appshared.NoopAuditSink{}, zap.NewNop())
}

func createTestItem(t *testing.T, scope *persistence.GormTransactionScope, tenantID uuid.UUID, name string) *inventory.Item {
	t.Helper()
	svc := NewItemService(scope, zap.NewNop())
	item, err := svc.CreateItem(context.Background(), CreateItemCommand{
		TenantID: tenantID,
		Name:     name,
		SKU:      name,
		Type:     inventory.ItemTypeProduct,
	})
	require.NoError(t, err)
	return item
}

func setCostingMethod(t *testing.T, scope *persistence.GormTransactionScope, tenantID uuid.UUID, method inventory.CostingMethod) {
	t.Helper()
	err := scope.Execute(context.Background(), func(repos appshared.Repositories) error {
		settings, err := repos.Settings().GetOrCreate(context.Background(), tenantID)
		if err != nil {
			return err
		}
		settings.InventoryCosting = string(method)
		return repos.Settings().Save(context.Background(), settings)
	})
	require.NoError(t, err)
}

func receiveStock(t *testing.T, svc *MoveService, tenantID uuid.UUID, itemID uuid.UUID, day int, qty, unitCost string) *inventory.InventoryMove {
	t.Helper()
	move, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypePurchase,
		MovedOn:  time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Lines: []inventory.MoveLineInput{
			{ItemID: itemID, Qty: dec(t, qty), UnitCost: dec(t, unitCost)},
		},
	})
	require.NoError(t, err)
	return move
}

func TestCreateMoveReceiveCreatesLotAndAverage(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")
	receiveStock(t, svc, tenantID, item.ID, 2, "10", "7")

	var stored inventory.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, "20", stored.OnHand.String())
	assert.Equal(t, "6", stored.AvgCost.String())

	var lots []inventory.InventoryLot
	require.NoError(t, db.Where("item_id = ?", item.ID).Order("received_on ASC").Find(&lots).Error)
	require.Len(t, lots, 2)
	assert.Equal(t, "5", lots[0].UnitCost.String())
	assert.Equal(t, "10", lots[0].QtyRemaining.String())
	assert.Equal(t, "7", lots[1].UnitCost.String())
}

func TestCreateMoveFIFOIssue(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")
	receiveStock(t, svc, tenantID, item.ID, 2, "10", "7")

	move, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeConsumption,
		MovedOn:  time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Lines:    []inventory.MoveLineInput{{ItemID: item.ID, Qty: dec(t, "15")}},
	})
	require.NoError(t, err)

	// 10 @ 5 from the first lot, 5 @ 7 from the second
	assert.Equal(t, "85", move.TotalCost().String())

	var lots []inventory.InventoryLot
	require.NoError(t, db.Where("item_id = ?", item.ID).Order("received_on ASC").Find(&lots).Error)
	require.Len(t, lots, 2)
	assert.True(t, lots[0].QtyRemaining.IsZero())
	assert.Equal(t, "5", lots[1].QtyRemaining.String())

	var allocations []inventory.LotAllocation
	require.NoError(t, db.Where("tenant_id = ?", tenantID).Find(&allocations).Error)
	assert.Len(t, allocations, 2)

	var stored inventory.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, "5", stored.OnHand.String())
}

func TestCreateMoveAVGIssue(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	setCostingMethod(t, scope, tenantID, inventory.CostingAVG)
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")
	receiveStock(t, svc, tenantID, item.ID, 2, "10", "7")

	move, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeConsumption,
		MovedOn:  time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Lines:    []inventory.MoveLineInput{{ItemID: item.ID, Qty: dec(t, "15")}},
	})
	require.NoError(t, err)

	// 15 @ weighted average of 6
	assert.Equal(t, "90", move.TotalCost().String())
	assert.Equal(t, "6", move.Lines[0].UnitCost.String())

	// AVG issues leave the lot layers untouched
	var lots []inventory.InventoryLot
	require.NoError(t, db.Where("item_id = ?", item.ID).Find(&lots).Error)
	for _, lot := range lots {
		assert.Equal(t, "10", lot.QtyRemaining.String())
	}

	var stored inventory.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, "5", stored.OnHand.String())
	assert.Equal(t, "6", stored.AvgCost.String())
}

func TestCreateMoveAVGWithoutReceiptsFails(t *testing.T) {
	scope, _ := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	setCostingMethod(t, scope, tenantID, inventory.CostingAVG)
	svc := newMoveService(scope)

	_, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeConsumption,
		MovedOn:  time.Now(),
		Lines:    []inventory.MoveLineInput{{ItemID: item.ID, Qty: dec(t, "1")}},
	})
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
}

func TestCreateMoveInsufficientStockRollsBack(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")

	_, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeSale,
		MovedOn:  time.Now(),
		Lines:    []inventory.MoveLineInput{{ItemID: item.ID, Qty: dec(t, "11")}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	// the failed move and its lines are gone and stock is untouched
	var moveCount int64
	require.NoError(t, db.Model(&inventory.InventoryMove{}).
		Where("tenant_id = ? AND type = ?", tenantID, inventory.MoveTypeSale).Count(&moveCount).Error)
	assert.Zero(t, moveCount)

	var stored inventory.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, "10", stored.OnHand.String())
}

func TestCreateMovePostsCostJournal(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")

	move, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeWastage,
		MovedOn:  time.Now(),
		Memo:     "spoiled batch",
		Lines:    []inventory.MoveLineInput{{ItemID: item.ID, Qty: dec(t, "2")}},
	})
	require.NoError(t, err)
	require.NotNil(t, move.PostedJournalID)

	var entry accounting.JournalEntry
	require.NoError(t, db.Preload("Lines").First(&entry, "id = ?", *move.PostedJournalID).Error)
	assert.Equal(t, accounting.RefTypeInventoryMove, entry.RefType)
	require.Len(t, entry.Lines, 2)
	assert.True(t, entry.TotalDebit().Equal(dec(t, "10")))

	var wastage accounting.Account
	require.NoError(t, db.First(&wastage, "tenant_id = ? AND code = ?", tenantID, "5200").Error)
	var debitLine accounting.JournalLine
	require.NoError(t, db.First(&debitLine, "journal_entry_id = ? AND debit > 0", entry.ID).Error)
	assert.Equal(t, wastage.ID, debitLine.AccountID)
}

func TestCreateMoveInboundJournalMapping(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	move := receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")
	require.NotNil(t, move.PostedJournalID)

	var inventoryAcct, adjAcct accounting.Account
	require.NoError(t, db.First(&inventoryAcct, "tenant_id = ? AND code = ?", tenantID, "1200").Error)
	require.NoError(t, db.First(&adjAcct, "tenant_id = ? AND code = ?", tenantID, "5290").Error)

	var debitLine, creditLine accounting.JournalLine
	require.NoError(t, db.First(&debitLine, "journal_entry_id = ? AND debit > 0", *move.PostedJournalID).Error)
	require.NoError(t, db.First(&creditLine, "journal_entry_id = ? AND credit > 0", *move.PostedJournalID).Error)
	assert.Equal(t, inventoryAcct.ID, debitLine.AccountID)
	assert.Equal(t, adjAcct.ID, creditLine.AccountID)
}

func TestCreateMoveTransferHasNoJournal(t *testing.T) {
	scope, db := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")

	move, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeTransfer,
		MovedOn:  time.Now(),
		Lines:    []inventory.MoveLineInput{{ItemID: item.ID, Qty: dec(t, "3")}},
	})
	require.NoError(t, err)
	assert.Nil(t, move.PostedJournalID)
	assert.True(t, move.TotalCost().IsZero())

	// transfers leave stock aggregates alone
	var stored inventory.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, "10", stored.OnHand.String())
}

func TestCreateMoveRejectsUnknownItem(t *testing.T) {
	scope, _ := setupInventoryTestDB(t)
	svc := newMoveService(scope)

	_, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: uuid.New(),
		Type:     inventory.MoveTypePurchase,
		MovedOn:  time.Now(),
		Lines:    []inventory.MoveLineInput{{ItemID: uuid.New(), Qty: dec(t, "1"), UnitCost: dec(t, "1")}},
	})
	assert.True(t, errors.Is(err, shared.ErrUnknownItem))
}

func TestCreateMoveMultiLineSameItem(t *testing.T) {
	scope, _ := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")

	// later lines of one move must see the stock consumed by earlier ones
	_, err := svc.CreateMove(context.Background(), CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveTypeConsumption,
		MovedOn:  time.Now(),
		Lines: []inventory.MoveLineInput{
			{ItemID: item.ID, Qty: dec(t, "6")},
			{ItemID: item.ID, Qty: dec(t, "6")},
		},
	})
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
}

func TestGetAndListMoves(t *testing.T) {
	scope, _ := setupInventoryTestDB(t)
	tenantID := uuid.New()
	item := createTestItem(t, scope, tenantID, "flour")
	svc := newMoveService(scope)

	created := receiveStock(t, svc, tenantID, item.ID, 1, "10", "5")

	found, err := svc.GetMove(context.Background(), tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "50", found.Lines[0].TotalCost.String())

	moves, err := svc.ListMoves(context.Background(), tenantID, 10)
	require.NoError(t, err)
	assert.Len(t, moves, 1)

	_, err = svc.GetMove(context.Background(), uuid.New(), created.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
