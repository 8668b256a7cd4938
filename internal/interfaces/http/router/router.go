package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Ledger    *handler.LedgerHandler
	Inventory *handler.InventoryHandler
	Invoices  *handler.InvoiceHandler
	Bills     *handler.BillHandler
	Payments  *handler.PaymentHandler
	Expenses  *handler.ExpenseHandler
	Opening   *handler.OpeningHandler
}

// New builds the gin engine with middleware and all routes mounted
func New(env string, logger *zap.Logger, h Handlers) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RequireTenant())
	{
		api.POST("/journals", h.Ledger.PostJournal)
		api.POST("/system-accounts", h.Ledger.EnsureSystemAccounts)
		api.POST("/rates", h.Ledger.SetRate)
		api.GET("/rates/resolve", h.Ledger.ResolveRate)

		api.POST("/items", h.Inventory.CreateItem)
		api.GET("/items", h.Inventory.ListItems)
		api.GET("/items/:id", h.Inventory.GetItem)
		api.GET("/items/:id/lots", h.Inventory.ListLots)
		api.POST("/moves", h.Inventory.CreateMove)
		api.GET("/moves", h.Inventory.ListMoves)
		api.GET("/moves/:id", h.Inventory.GetMove)

		api.POST("/invoices", h.Invoices.Create)
		api.GET("/invoices", h.Invoices.List)
		api.GET("/invoices/:id", h.Invoices.Get)
		api.PUT("/invoices/:id", h.Invoices.Update)
		api.POST("/invoices/:id/approve", h.Invoices.Approve)

		api.POST("/bills", h.Bills.Create)
		api.GET("/bills", h.Bills.List)
		api.GET("/bills/:id", h.Bills.Get)
		api.PUT("/bills/:id", h.Bills.Update)
		api.POST("/bills/:id/approve", h.Bills.Approve)

		api.POST("/payments", h.Payments.Create)
		api.GET("/payments/:id", h.Payments.Get)
		api.GET("/documents/:id/payments", h.Payments.ListForDocument)

		api.POST("/expenses", h.Expenses.Create)
		api.GET("/expenses", h.Expenses.List)

		api.POST("/opening/preview", h.Opening.Preview)
		api.POST("/opening", h.Opening.Apply)
	}

	return r
}

// registerValidators adds the custom "currency" binding rule: a known
// ISO code or empty, letting the base currency apply
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if code == "" {
			return true
		}
		return valueobject.NormalizeCurrency(code).IsValid()
	})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		)
	}
}
