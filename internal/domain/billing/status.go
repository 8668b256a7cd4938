package billing

// DocumentStatus is the lifecycle state shared by invoices and bills.
// DRAFT documents are fully editable; approval is one-way and freezes
// the financial fields.
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "DRAFT"
	StatusApproved      DocumentStatus = "APPROVED"
	StatusPartiallyPaid DocumentStatus = "PARTIALLY_PAID"
	StatusOverdue       DocumentStatus = "OVERDUE"
	StatusPaid          DocumentStatus = "PAID"
)

// IsOpen reports whether the document can still receive payments
func (s DocumentStatus) IsOpen() bool {
	return s == StatusApproved || s == StatusPartiallyPaid || s == StatusOverdue
}
