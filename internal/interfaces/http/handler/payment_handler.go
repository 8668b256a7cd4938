package handler

import (
	"github.com/gin-gonic/gin"

	appbilling "github.com/ledgerbook/backend/internal/application/billing"
	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// PaymentHandler exposes payment application
type PaymentHandler struct {
	BaseHandler
	payments *appbilling.PaymentService
}

// NewPaymentHandler creates a payment handler
func NewPaymentHandler(payments *appbilling.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create handles POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	payment, err := h.payments.CreatePayment(c.Request.Context(), appbilling.CreatePaymentCommand{
		TenantID:   tenantID,
		Direction:  billing.PaymentDirection(req.Direction),
		DocumentID: req.DocumentID,
		Amount:     req.Amount,
		FxRate:     req.FxRate,
		PaidOn:     req.PaidOn,
		Memo:       req.Memo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid payment ID")
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ListForDocument handles GET /documents/:id/payments
func (h *PaymentHandler) ListForDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	documentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid document ID")
		return
	}
	payments, err := h.payments.ListPaymentsForDocument(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
