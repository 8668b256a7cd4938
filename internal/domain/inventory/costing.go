package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// CostingMethod selects how outbound consumption is valued
type CostingMethod string

const (
	CostingFIFO CostingMethod = "FIFO"
	CostingAVG  CostingMethod = "AVG"
)

// IsValid checks whether the costing method is supported
func (m CostingMethod) IsValid() bool {
	return m == CostingFIFO || m == CostingAVG
}

// stock comparisons tolerate accumulated rounding on quantities
var epsilon = decimal.New(1, -9)

// itemState tracks an item's running stock and average cost while a move
// is being costed, so later lines of the same move see the effect of
// earlier ones
type itemState struct {
	name    string
	onHand  decimal.Decimal
	avgCost decimal.Decimal
}

// LineCost is the engine's valuation of a single move line
type LineCost struct {
	LineID    uuid.UUID
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
}

// Result aggregates the costing outcome for a whole move
type Result struct {
	Lines     []LineCost
	TotalCost decimal.Decimal
}

// CostingEngine values inventory move lines, maintains per-item cost
// layers and keeps item stock aggregates consistent. It must run inside
// the same transaction that created the move rows.
type CostingEngine struct {
	items ItemRepository
	lots  LotRepository
	moves MoveRepository
}

// NewCostingEngine creates a costing engine over the given repositories
func NewCostingEngine(items ItemRepository, lots LotRepository, moves MoveRepository) *CostingEngine {
	return &CostingEngine{items: items, lots: lots, moves: moves}
}

// Apply costs every line of the move, creates lots for inbound lines,
// draws down lots for outbound FIFO lines, updates item stock aggregates
// and writes the computed costs back onto the move lines.
func (e *CostingEngine) Apply(ctx context.Context, tenantID uuid.UUID, method CostingMethod, movedOn time.Time, move *InventoryMove) (*Result, error) {
	if !method.IsValid() {
		method = CostingFIFO
	}

	states := make(map[uuid.UUID]*itemState)
	result := &Result{TotalCost: decimal.Zero}

	for i := range move.Lines {
		line := &move.Lines[i]

		state, err := e.loadState(ctx, tenantID, line.ItemID, states)
		if err != nil {
			return nil, err
		}

		var unitCost, totalCost decimal.Decimal
		switch move.Type.Direction() {
		case DirectionIn:
			unitCost, totalCost, err = e.receive(ctx, tenantID, movedOn, move, line, state)
		case DirectionOut:
			unitCost, totalCost, err = e.issue(ctx, tenantID, method, line, state)
		default:
			unitCost, totalCost = decimal.Zero, decimal.Zero
		}
		if err != nil {
			return nil, err
		}

		line.UnitCost = unitCost
		line.TotalCost = totalCost
		if err := e.moves.UpdateLineCost(ctx, line.ID, unitCost, totalCost); err != nil {
			return nil, err
		}

		result.Lines = append(result.Lines, LineCost{LineID: line.ID, UnitCost: unitCost, TotalCost: totalCost})
		result.TotalCost = valueobject.Round2(result.TotalCost.Add(totalCost))
	}

	for itemID, state := range states {
		if err := e.items.UpdateStock(ctx, itemID, state.onHand, state.avgCost); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (e *CostingEngine) loadState(ctx context.Context, tenantID, itemID uuid.UUID, states map[uuid.UUID]*itemState) (*itemState, error) {
	if state, ok := states[itemID]; ok {
		return state, nil
	}
	item, err := e.items.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	state := &itemState{name: item.Name, onHand: item.OnHand, avgCost: item.AvgCost}
	states[itemID] = state
	return state, nil
}

// receive values an inbound line at the caller-supplied unit cost,
// creates a lot for it and recomputes the moving average
func (e *CostingEngine) receive(ctx context.Context, tenantID uuid.UUID, movedOn time.Time, move *InventoryMove, line *InventoryMoveLine, state *itemState) (decimal.Decimal, decimal.Decimal, error) {
	unitCost := valueobject.Round6(line.UnitCost)
	totalCost := valueobject.Round2(line.Qty.Mul(unitCost))

	lot := NewInventoryLot(tenantID, line.ItemID, movedOn, LotSourceInventoryMove, move.ID, line.Qty, unitCost)
	if err := e.lots.Create(ctx, lot); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	newOnHand := state.onHand.Add(line.Qty)
	if newOnHand.GreaterThan(decimal.Zero) {
		// moving average is maintained even under FIFO so a later
		// method switch starts from a sane cost
		state.avgCost = valueobject.Round6(state.onHand.Mul(state.avgCost).Add(line.Qty.Mul(unitCost)).Div(newOnHand))
	}
	state.onHand = newOnHand

	return unitCost, totalCost, nil
}

// issue values an outbound line by the tenant's costing method and
// decrements stock
func (e *CostingEngine) issue(ctx context.Context, tenantID uuid.UUID, method CostingMethod, line *InventoryMoveLine, state *itemState) (decimal.Decimal, decimal.Decimal, error) {
	if state.onHand.LessThan(line.Qty.Sub(epsilon)) {
		return decimal.Zero, decimal.Zero, shared.NewInsufficientStockError(state.name, state.onHand, line.Qty)
	}

	var unitCost, totalCost decimal.Decimal
	switch method {
	case CostingAVG:
		if !state.avgCost.GreaterThan(decimal.Zero) {
			return decimal.Zero, decimal.Zero, shared.NewAverageCostUnsetError(state.name)
		}
		unitCost = valueobject.Round6(state.avgCost)
		totalCost = valueobject.Round2(line.Qty.Mul(unitCost))
	default:
		var err error
		totalCost, err = e.consumeLots(ctx, tenantID, line, state.name)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		if line.Qty.GreaterThan(decimal.Zero) {
			unitCost = valueobject.Round6(totalCost.Div(line.Qty))
		}
	}

	state.onHand = state.onHand.Sub(line.Qty)
	return unitCost, totalCost, nil
}

// consumeLots draws the line quantity out of the item's open lots in
// FIFO order, recording an allocation per lot touched
func (e *CostingEngine) consumeLots(ctx context.Context, tenantID uuid.UUID, line *InventoryMoveLine, itemName string) (decimal.Decimal, error) {
	lots, err := e.lots.FindOpenByItem(ctx, tenantID, line.ItemID)
	if err != nil {
		return decimal.Zero, err
	}

	remaining := line.Qty
	cost := decimal.Zero
	for i := range lots {
		if !remaining.GreaterThan(epsilon) {
			break
		}
		lot := &lots[i]
		take := lot.Take(remaining)
		if !take.GreaterThan(decimal.Zero) {
			continue
		}
		if err := e.lots.UpdateRemaining(ctx, lot); err != nil {
			return decimal.Zero, err
		}
		alloc := NewLotAllocation(tenantID, lot.ID, line.ID, take, lot.UnitCost, valueobject.Round2(take.Mul(lot.UnitCost)))
		if err := e.lots.CreateAllocation(ctx, alloc); err != nil {
			return decimal.Zero, err
		}
		cost = cost.Add(alloc.Cost)
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(epsilon) {
		return decimal.Zero, shared.NewInsufficientLotsError(itemName, remaining)
	}

	return valueobject.Round2(cost), nil
}
