package handler

import (
	"github.com/gin-gonic/gin"

	appbilling "github.com/ledgerbook/backend/internal/application/billing"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// InvoiceHandler exposes the invoice lifecycle
type InvoiceHandler struct {
	BaseHandler
	invoices *appbilling.InvoiceService
}

// NewInvoiceHandler creates an invoice handler
func NewInvoiceHandler(invoices *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func toInvoiceItems(items []dto.DocumentItemRequest) []appbilling.InvoiceItemInput {
	inputs := make([]appbilling.InvoiceItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, appbilling.InvoiceItemInput{
			ItemID:      item.ItemID,
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}
	return inputs
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoice, err := h.invoices.CreateDraft(c.Request.Context(), appbilling.CreateInvoiceCommand{
		TenantID:     tenantID,
		CustomerName: req.CustomerName,
		Currency:     req.Currency,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		Memo:         req.Memo,
		Items:        toInvoiceItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid invoice ID")
		return
	}
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoice, err := h.invoices.UpdateDraft(c.Request.Context(), appbilling.UpdateDraftCommand{
		TenantID:     tenantID,
		InvoiceID:    invoiceID,
		CustomerName: req.CustomerName,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		Memo:         req.Memo,
		Items:        toInvoiceItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Approve handles POST /invoices/:id/approve
func (h *InvoiceHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid invoice ID")
		return
	}
	invoice, err := h.invoices.Approve(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid invoice ID")
		return
	}
	invoice, err := h.invoices.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoices, err := h.invoices.ListInvoices(c.Request.Context(), tenantID, 100)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}
