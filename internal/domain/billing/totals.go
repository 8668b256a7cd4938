package billing

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// DocumentTotals are the recomputed money columns of an invoice or bill
type DocumentTotals struct {
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
	// LineTotals holds the rounded gross amount per line, in line order
	LineTotals []decimal.Decimal
}

// lineAmounts is implemented by invoice and bill lines so totals can be
// computed the same way for both
type lineAmounts interface {
	amounts() (qty, unitPrice, taxRate decimal.Decimal)
}

// calcTotals recomputes document totals from the raw line amounts.
// Totals are always derived from the lines at approval time; stored
// totals are display caches only.
func calcTotals(lines []lineAmounts) DocumentTotals {
	totals := DocumentTotals{
		Subtotal: decimal.Zero,
		TaxTotal: decimal.Zero,
	}
	for _, l := range lines {
		qty, unitPrice, taxRate := l.amounts()
		base := qty.Mul(unitPrice)
		tax := base.Mul(taxRate)
		totals.Subtotal = totals.Subtotal.Add(base)
		totals.TaxTotal = totals.TaxTotal.Add(tax)
		totals.LineTotals = append(totals.LineTotals, valueobject.Round2(base.Add(tax)))
	}
	totals.Subtotal = valueobject.Round2(totals.Subtotal)
	totals.TaxTotal = valueobject.Round2(totals.TaxTotal)
	totals.Total = valueobject.Round2(totals.Subtotal.Add(totals.TaxTotal))
	return totals
}
