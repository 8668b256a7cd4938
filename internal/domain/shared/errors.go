package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so a constructed error with details
// still satisfies errors.Is against the bare sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes for the ledger and inventory invariants.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnbalancedEntry   = "UNBALANCED_ENTRY"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInsufficientLots  = "INSUFFICIENT_LOTS"
	CodeAverageCostUnset  = "AVERAGE_COST_UNSET"
	CodeAlreadyProcessed  = "ALREADY_PROCESSED"
	CodeAlreadyApplied    = "ALREADY_APPLIED"
	CodeUnknownItem       = "UNKNOWN_ITEM"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists     = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnbalancedEntry   = NewDomainError(CodeUnbalancedEntry, "Journal entry does not balance")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientLots  = NewDomainError(CodeInsufficientLots, "Insufficient FIFO lots available")
	ErrAverageCostUnset  = NewDomainError(CodeAverageCostUnset, "Average cost not set")
	ErrAlreadyProcessed  = NewDomainError(CodeAlreadyProcessed, "Document already processed")
	ErrAlreadyApplied    = NewDomainError(CodeAlreadyApplied, "Opening balances already applied")
	ErrUnknownItem       = NewDomainError(CodeUnknownItem, "Referenced item not found")
)

// NewUnbalancedEntryError reports a journal whose debit and credit totals
// disagree after rounding. This is a programmer or data error and is never
// silently corrected.
func NewUnbalancedEntryError(debit, credit decimal.Decimal) *DomainError {
	return NewDomainError(CodeUnbalancedEntry,
		fmt.Sprintf("Unbalanced journal: debit=%s credit=%s", debit.StringFixed(2), credit.StringFixed(2)))
}

// NewInsufficientStockError reports an outbound movement that would take
// on-hand quantity negative for the named item.
func NewInsufficientStockError(itemName string, onHand, requested decimal.Decimal) *DomainError {
	return NewDomainError(CodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for item %s: on hand %s, requested %s", itemName, onHand.String(), requested.String()))
}

// NewInsufficientLotsError reports a FIFO draw-down that exhausted all lots
// with quantity still owing. It signals a bookkeeping inconsistency between
// on-hand totals and lot records, distinct from a plain stock shortage.
func NewInsufficientLotsError(itemName string, shortBy decimal.Decimal) *DomainError {
	return NewDomainError(CodeInsufficientLots,
		fmt.Sprintf("Insufficient FIFO lots for item %s: short by %s", itemName, shortBy.String()))
}

// NewAverageCostUnsetError reports an average-cost issue against an item that
// has never received stock.
func NewAverageCostUnsetError(itemName string) *DomainError {
	return NewDomainError(CodeAverageCostUnset,
		fmt.Sprintf("Average cost not set for item %s. Receive stock first.", itemName))
}

// NewAlreadyProcessedError guards one-way document transitions.
func NewAlreadyProcessedError(entity, status string) *DomainError {
	return NewDomainError(CodeAlreadyProcessed,
		fmt.Sprintf("%s already processed (status %s)", entity, status))
}

// NewUnknownItemError reports a document line referencing a missing item.
func NewUnknownItemError(detail string) *DomainError {
	return NewDomainError(CodeUnknownItem, detail)
}
