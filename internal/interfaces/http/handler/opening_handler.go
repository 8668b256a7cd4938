package handler

import (
	"github.com/gin-gonic/gin"

	appbilling "github.com/ledgerbook/backend/internal/application/billing"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// OpeningHandler exposes the opening balance load
type OpeningHandler struct {
	BaseHandler
	opening *appbilling.OpeningService
}

// NewOpeningHandler creates an opening balance handler
func NewOpeningHandler(opening *appbilling.OpeningService) *OpeningHandler {
	return &OpeningHandler{opening: opening}
}

func toOpeningCommand(req dto.ApplyOpeningRequest) appbilling.ApplyOpeningCommand {
	cmd := appbilling.ApplyOpeningCommand{
		AsOf:  req.AsOf,
		Force: req.Force,
	}
	for _, a := range req.Accounts {
		cmd.Accounts = append(cmd.Accounts, appbilling.OpeningAccountLine{
			AccountID: a.AccountID,
			Debit:     a.Debit,
			Credit:    a.Credit,
		})
	}
	for _, i := range req.Items {
		cmd.Items = append(cmd.Items, appbilling.OpeningItemLine{
			ItemID:   i.ItemID,
			Qty:      i.Qty,
			UnitCost: i.UnitCost,
		})
	}
	return cmd
}

// Preview handles POST /opening/preview
func (h *OpeningHandler) Preview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.ApplyOpeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cmd := toOpeningCommand(req)
	cmd.TenantID = tenantID
	preview, err := h.opening.Preview(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Apply handles POST /opening
func (h *OpeningHandler) Apply(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.ApplyOpeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cmd := toOpeningCommand(req)
	cmd.TenantID = tenantID
	result, err := h.opening.Apply(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
