package service

// dayend_report.go — pure projections of a DayEnd: aggregation math over
// linked sales, the formatted summary view, and the flat API responses.
// Nothing here touches persistence.

import (
	"time"

	"anypos/internal/dto"
	"anypos/internal/model"

	"github.com/shopspring/decimal"
)

type saleTotals struct {
	count    int
	revenue  decimal.Decimal
	discount decimal.Decimal
	tax      decimal.Decimal
	byMethod map[string]decimal.Decimal
}

// sumSales folds a set of sales into day-end totals. Every payment method
// bucket is present in the result, zero when no sale used it.
func sumSales(sales []model.Sale) saleTotals {
	t := saleTotals{byMethod: make(map[string]decimal.Decimal, len(model.PaymentMethods))}
	for _, m := range model.PaymentMethods {
		t.byMethod[m] = decimal.Zero
	}
	for _, s := range sales {
		t.count++
		t.revenue = t.revenue.Add(s.Total)
		t.discount = t.discount.Add(s.Discount)
		t.tax = t.tax.Add(s.Tax)
		t.byMethod[s.PaymentMethod] = t.byMethod[s.PaymentMethod].Add(s.Total)
	}
	return t
}

// buildSummary projects a day-end into the nested closing-report view.
// Safe to call on open or closed sessions.
func buildSummary(d *model.DayEnd) *dto.DayEndSummary {
	summary := &dto.DayEndSummary{
		ID:        d.ID.String(),
		CashierID: d.CashierID.String(),
		OpenedAt:  d.OpenedAt.Format(time.RFC3339),
		ClosedAt:  formatClosedAt(d.ClosedAt),
		IsClosed:  d.IsClosed,
		PaymentBreakdown: dto.PaymentBreakdown{
			Cash:   d.CashSales,
			Card:   d.CardSales,
			Cheque: d.ChequeSales,
			Online: d.OnlineSales,
			Credit: d.CreditSales,
		},
		Notes: d.Notes,
	}

	summary.SalesSummary.TotalSales = d.TotalSalesCount
	summary.SalesSummary.TotalRevenue = d.TotalRevenue
	summary.SalesSummary.TotalDiscount = d.TotalDiscount
	summary.SalesSummary.TotalTax = d.TotalTax

	summary.CashReconciliation.OpeningBalance = d.OpeningBalance
	summary.CashReconciliation.ExpectedCash = d.ExpectedCash
	summary.CashReconciliation.ActualCash = d.ActualCash
	summary.CashReconciliation.Variance = d.CashVariance
	summary.CashReconciliation.ClosingBalance = d.ClosingBalance

	return summary
}

func dayEndToResponse(d *model.DayEnd) *dto.DayEndResponse {
	return &dto.DayEndResponse{
		ID:              d.ID.String(),
		CashierID:       d.CashierID.String(),
		TotalSalesCount: d.TotalSalesCount,
		TotalRevenue:    d.TotalRevenue,
		TotalDiscount:   d.TotalDiscount,
		TotalTax:        d.TotalTax,
		Payments: dto.PaymentBreakdown{
			Cash:   d.CashSales,
			Card:   d.CardSales,
			Cheque: d.ChequeSales,
			Online: d.OnlineSales,
			Credit: d.CreditSales,
		},
		ExpectedCash:   d.ExpectedCash,
		ActualCash:     d.ActualCash,
		CashVariance:   d.CashVariance,
		OpeningBalance: d.OpeningBalance,
		ClosingBalance: d.ClosingBalance,
		IsClosed:       d.IsClosed,
		OpenedAt:       d.OpenedAt.Format(time.RFC3339),
		ClosedAt:       formatClosedAt(d.ClosedAt),
		Notes:          d.Notes,
	}
}

func dayEndsToList(dayEnds []model.DayEnd, total int64, page, limit int) *dto.DayEndListResponse {
	items := make([]dto.DayEndListItem, len(dayEnds))
	for i, d := range dayEnds {
		items[i] = dto.DayEndListItem{
			ID:              d.ID.String(),
			CashierID:       d.CashierID.String(),
			OpenedAt:        d.OpenedAt.Format(time.RFC3339),
			ClosedAt:        formatClosedAt(d.ClosedAt),
			IsClosed:        d.IsClosed,
			TotalRevenue:    d.TotalRevenue,
			TotalSalesCount: d.TotalSalesCount,
			CashVariance:    d.CashVariance,
		}
	}
	return &dto.DayEndListResponse{Data: items, Total: total, Page: page, Limit: limit}
}

func formatClosedAt(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
