package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices with their items
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	// Save persists the aggregate and replaces its item set
	Save(ctx context.Context, invoice *Invoice) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Invoice, error)
}

// BillRepository persists bills with their items
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	Save(ctx context.Context, bill *Bill) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)
	FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Bill, error)
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]Payment, error)
}

// ExpenseRepository persists expenses
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Expense, error)
}
