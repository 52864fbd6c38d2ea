package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OpenDayEndRequest opens (or returns) the cashier's active day-end.
// Both fields are overrides applied on top of the possibly pre-existing
// session; nil leaves the stored value untouched.
type OpenDayEndRequest struct {
	OpeningBalance *decimal.Decimal `json:"opening_balance" validate:"omitempty"`
	Notes          *string          `json:"notes"`
}

type CloseDayEndRequest struct {
	ActualCash decimal.Decimal `json:"actual_cash" validate:"min=0"`
	Notes      *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentBreakdown struct {
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Cheque decimal.Decimal `json:"cheque"`
	Online decimal.Decimal `json:"online"`
	Credit decimal.Decimal `json:"credit"`
}

type DayEndResponse struct {
	ID              string           `json:"id"`
	CashierID       string           `json:"cashier_id"`
	TotalSalesCount int              `json:"total_sales_count"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	TotalDiscount   decimal.Decimal  `json:"total_discount"`
	TotalTax        decimal.Decimal  `json:"total_tax"`
	Payments        PaymentBreakdown `json:"payments"`
	ExpectedCash    decimal.Decimal  `json:"expected_cash"`
	ActualCash      decimal.Decimal  `json:"actual_cash"`
	CashVariance    decimal.Decimal  `json:"cash_variance"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	ClosingBalance  decimal.Decimal  `json:"closing_balance"`
	IsClosed        bool             `json:"is_closed"`
	OpenedAt        string           `json:"opened_at"`
	ClosedAt        *string          `json:"closed_at"`
	Notes           *string          `json:"notes,omitempty"`
}

// DayEndSummary is the formatted read-only closing report view.
type DayEndSummary struct {
	ID        string  `json:"id"`
	CashierID string  `json:"cashier_id"`
	OpenedAt  string  `json:"opened_at"`
	ClosedAt  *string `json:"closed_at"`
	IsClosed  bool    `json:"is_closed"`

	SalesSummary struct {
		TotalSales    int             `json:"total_sales"`
		TotalRevenue  decimal.Decimal `json:"total_revenue"`
		TotalDiscount decimal.Decimal `json:"total_discount"`
		TotalTax      decimal.Decimal `json:"total_tax"`
	} `json:"sales_summary"`

	PaymentBreakdown PaymentBreakdown `json:"payment_breakdown"`

	CashReconciliation struct {
		OpeningBalance decimal.Decimal `json:"opening_balance"`
		ExpectedCash   decimal.Decimal `json:"expected_cash"`
		ActualCash     decimal.Decimal `json:"actual_cash"`
		Variance       decimal.Decimal `json:"variance"`
		ClosingBalance decimal.Decimal `json:"closing_balance"`
	} `json:"cash_reconciliation"`

	Notes *string `json:"notes,omitempty"`
}

type DayEndListItem struct {
	ID              string          `json:"id"`
	CashierID       string          `json:"cashier_id"`
	OpenedAt        string          `json:"opened_at"`
	ClosedAt        *string         `json:"closed_at"`
	IsClosed        bool            `json:"is_closed"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalSalesCount int             `json:"total_sales_count"`
	CashVariance    decimal.Decimal `json:"cash_variance"`
}

type DayEndListResponse struct {
	Data  []DayEndListItem `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
