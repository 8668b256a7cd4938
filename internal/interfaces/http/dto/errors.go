package dto

import (
	"net/http"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// Transport-level error codes not produced by the domain
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain and transport error codes to statuses.
// Business rule violations map to 422 so clients can tell them apart
// from malformed requests.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeAlreadyExists: http.StatusConflict,

	shared.CodeInvalidInput: http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,

	shared.CodeUnbalancedEntry:   http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeInsufficientLots:  http.StatusUnprocessableEntity,
	shared.CodeAverageCostUnset:  http.StatusUnprocessableEntity,
	shared.CodeAlreadyProcessed:  http.StatusUnprocessableEntity,
	shared.CodeAlreadyApplied:    http.StatusUnprocessableEntity,
	shared.CodeUnknownItem:       http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for anything unmapped
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
