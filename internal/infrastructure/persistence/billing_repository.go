package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/billing"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormInvoiceRepository implements billing.InvoiceRepository
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new invoice repository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts the invoice with its items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// Save persists the aggregate, replacing its item set so removed draft
// lines do not linger
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoice.ID).
		Delete(&billing.InvoiceItem{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(invoice).Error
}

// FindByIDForTenant loads an invoice with its items
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindForTenant lists recent invoices for a tenant
func (r *GormInvoiceRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("issue_date DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// GormBillRepository implements billing.BillRepository
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new bill repository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Create inserts the bill with its items
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

// Save persists the aggregate, replacing its item set
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	err := r.db.WithContext(ctx).
		Where("bill_id = ?", bill.ID).
		Delete(&billing.BillItem{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(bill).Error
}

// FindByIDForTenant loads a bill with its items
func (r *GormBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	var bill billing.Bill
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindForTenant lists recent bills for a tenant
func (r *GormBillRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.Bill, error) {
	var bills []billing.Bill
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("issue_date DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// GormPaymentRepository implements billing.PaymentRepository
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new payment repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByIDForTenant loads one payment
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	var payment billing.Payment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByDocument lists payments applied to a document, oldest first
func (r *GormPaymentRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Order("paid_on ASC, created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// GormExpenseRepository implements billing.ExpenseRepository
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new expense repository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *billing.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

// FindByIDForTenant loads one expense
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Expense, error) {
	var expense billing.Expense
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// FindForTenant lists recent expenses for a tenant
func (r *GormExpenseRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.Expense, error) {
	var expenses []billing.Expense
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("paid_on DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}
