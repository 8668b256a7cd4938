package handler

import (
	"github.com/gin-gonic/gin"

	appbilling "github.com/ledgerbook/backend/internal/application/billing"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// ExpenseHandler exposes cash expense recording
type ExpenseHandler struct {
	BaseHandler
	expenses *appbilling.ExpenseService
}

// NewExpenseHandler creates an expense handler
func NewExpenseHandler(expenses *appbilling.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Create handles POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	expense, err := h.expenses.CreateExpense(c.Request.Context(), appbilling.CreateExpenseCommand{
		TenantID: tenantID,
		Category: req.Category,
		Amount:   req.Amount,
		Currency: req.Currency,
		PaidOn:   req.PaidOn,
		Memo:     req.Memo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// List handles GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	expenses, err := h.expenses.ListExpenses(c.Request.Context(), tenantID, 100)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expenses)
}
