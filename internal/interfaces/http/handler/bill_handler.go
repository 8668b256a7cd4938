package handler

import (
	"github.com/gin-gonic/gin"

	appbilling "github.com/ledgerbook/backend/internal/application/billing"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// BillHandler exposes the bill lifecycle
type BillHandler struct {
	BaseHandler
	bills *appbilling.BillService
}

// NewBillHandler creates a bill handler
func NewBillHandler(bills *appbilling.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

func toBillItems(items []dto.DocumentItemRequest) []appbilling.BillItemInput {
	inputs := make([]appbilling.BillItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, appbilling.BillItemInput{
			ItemID:      item.ItemID,
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}
	return inputs
}

// Create handles POST /bills
func (h *BillHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bill, err := h.bills.CreateDraft(c.Request.Context(), appbilling.CreateBillCommand{
		TenantID:   tenantID,
		VendorName: req.VendorName,
		Currency:   req.Currency,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Memo:       req.Memo,
		Items:      toBillItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// Update handles PUT /bills/:id
func (h *BillHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	billID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid bill ID")
		return
	}
	var req dto.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bill, err := h.bills.UpdateDraft(c.Request.Context(), appbilling.UpdateBillCommand{
		TenantID:   tenantID,
		BillID:     billID,
		VendorName: req.VendorName,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Memo:       req.Memo,
		Items:      toBillItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Approve handles POST /bills/:id/approve
func (h *BillHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	billID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid bill ID")
		return
	}
	bill, err := h.bills.Approve(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Get handles GET /bills/:id
func (h *BillHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	billID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid bill ID")
		return
	}
	bill, err := h.bills.GetBill(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// List handles GET /bills
func (h *BillHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bills, err := h.bills.ListBills(c.Request.Context(), tenantID, 100)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}
