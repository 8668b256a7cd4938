package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/ledgerbook/backend/internal/application/inventory"
	"github.com/ledgerbook/backend/internal/domain/inventory"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// InventoryHandler exposes the item catalog and inventory movements
type InventoryHandler struct {
	BaseHandler
	items *appinventory.ItemService
	moves *appinventory.MoveService
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(items *appinventory.ItemService, moves *appinventory.MoveService) *InventoryHandler {
	return &InventoryHandler{items: items, moves: moves}
}

// CreateItem handles POST /items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	item, err := h.items.CreateItem(c.Request.Context(), appinventory.CreateItemCommand{
		TenantID: tenantID,
		Name:     req.Name,
		SKU:      req.SKU,
		Type:     inventory.ItemType(req.Type),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ListItems handles GET /items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	items, err := h.items.ListItems(c.Request.Context(), tenantID, 200)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetItem handles GET /items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid item ID")
		return
	}
	item, err := h.items.GetItem(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListLots handles GET /items/:id/lots
func (h *InventoryHandler) ListLots(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid item ID")
		return
	}
	lots, err := h.items.ListLots(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// CreateMove handles POST /moves
func (h *InventoryHandler) CreateMove(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.CreateMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines := make([]inventory.MoveLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, inventory.MoveLineInput{
			ItemID:   l.ItemID,
			Qty:      l.Qty,
			UnitCost: l.UnitCost,
		})
	}

	move, err := h.moves.CreateMove(c.Request.Context(), appinventory.CreateMoveCommand{
		TenantID: tenantID,
		Type:     inventory.MoveType(req.Type),
		MovedOn:  req.MovedOn,
		Memo:     req.Memo,
		Lines:    lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, move)
}

// ListMoves handles GET /moves
func (h *InventoryHandler) ListMoves(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	moves, err := h.moves.ListMoves(c.Request.Context(), tenantID, 100)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, moves)
}

// GetMove handles GET /moves/:id
func (h *InventoryHandler) GetMove(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	moveID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid move ID")
		return
	}
	move, err := h.moves.GetMove(c.Request.Context(), tenantID, moveID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, move)
}
