package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductName string          `json:"product_name" validate:"required"`
	ProductCode string          `json:"product_code" validate:"required"`
	Quantity    int             `json:"quantity"     validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"min=0"`
	Discount    decimal.Decimal `json:"discount"     validate:"min=0"`
	Tax         decimal.Decimal `json:"tax"          validate:"min=0"`
}

type RegisterSaleRequest struct {
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card cheque online credit"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"    validate:"min=0"`
	Notes         *string           `json:"notes"`
}

type SaleFilter struct {
	Status string // completed | voided | all
	Date   string // YYYY-MM-DD, empty = today
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID              string             `json:"id"`
	ReferenceNumber string             `json:"reference_number"`
	CashierID       string             `json:"cashier_id"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Discount        decimal.Decimal    `json:"discount"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
	AmountPaid      decimal.Decimal    `json:"amount_paid"`
	Change          decimal.Decimal    `json:"change"`
	PaymentMethod   string             `json:"payment_method"`
	Status          string             `json:"status"`
	Notes           *string            `json:"notes,omitempty"`
	Items           []SaleItemResponse `json:"items"`
	CreatedAt       string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
