package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appaccounting "github.com/ledgerbook/backend/internal/application/accounting"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// LedgerHandler exposes journal posting, the system account bootstrap
// and FX rate management
type LedgerHandler struct {
	BaseHandler
	posting  *appaccounting.PostingService
	system   *appaccounting.SystemAccountsService
	currency *appaccounting.CurrencyService
}

// NewLedgerHandler creates a ledger handler
func NewLedgerHandler(posting *appaccounting.PostingService, system *appaccounting.SystemAccountsService, currency *appaccounting.CurrencyService) *LedgerHandler {
	return &LedgerHandler{posting: posting, system: system, currency: currency}
}

// PostJournal handles POST /journals
func (h *LedgerHandler) PostJournal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines := make([]accounting.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, accounting.LineInput{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		})
	}

	entry, err := h.posting.PostJournal(c.Request.Context(), appaccounting.PostJournalCommand{
		TenantID: tenantID,
		RefType:  req.RefType,
		RefID:    req.RefID,
		PostedOn: req.PostedOn,
		Memo:     req.Memo,
		Lines:    lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// EnsureSystemAccounts handles POST /system-accounts
func (h *LedgerHandler) EnsureSystemAccounts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	accounts, err := h.system.EnsureSystemAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// SetRate handles POST /rates
func (h *LedgerHandler) SetRate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	rate, err := h.currency.SetRate(c.Request.Context(), appaccounting.SetRateCommand{
		TenantID: tenantID,
		Quote:    req.Quote,
		Base:     req.Base,
		Rate:     req.Rate,
		AsOf:     req.AsOf,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}

// ResolveRate handles GET /rates/resolve?quote=EUR&base=USD
func (h *LedgerHandler) ResolveRate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quote := c.Query("quote")
	base := c.Query("base")
	if quote == "" || base == "" {
		h.BadRequest(c, "quote and base query parameters are required")
		return
	}
	rate, err := h.currency.ResolveRate(c.Request.Context(), tenantID, quote, base)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"quote": quote, "base": base, "rate": rate})
}

// parseIDParam parses a UUID path parameter
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
