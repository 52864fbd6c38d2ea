package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DayEnd is one cashier's bounded accounting period: sales are linked to it
// while open, totals are recomputed from the linked set, and closing freezes
// the record forever. Rows are never deleted — closed day-ends are the audit
// trail of the register.
//
// At most one open DayEnd exists per (cashier, calendar day of OpenedAt);
// the store enforces this with a partial unique index (see infra.NewDatabase).
type DayEnd struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashierID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Sales summary — always derived from scratch over the linked sales.
	TotalSalesCount int             `gorm:"not null;default:0"`
	TotalRevenue    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDiscount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTax        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Revenue bucketed by payment method.
	CashSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ChequeSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	OnlineSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Cash reconciliation. ExpectedCash mirrors CashSales; ActualCash is the
	// physically counted drawer; CashVariance = ActualCash - ExpectedCash
	// (positive = over, negative = short).
	ExpectedCash decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ActualCash   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CashVariance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ClosingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes          *string

	// IsClosed is terminal: ClosedAt is set iff IsClosed is true, and a closed
	// day-end never mutates again.
	IsClosed bool `gorm:"not null;default:false"`

	// Stored without time zone so the day bucket (date(opened_at)) is an
	// immutable expression and can back the partial unique index.
	OpenedAt  time.Time  `gorm:"type:timestamp;not null;index"`
	ClosedAt  *time.Time `gorm:"type:timestamp"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayEndSale links one sale into one day-end. The (DayEndID, SaleID) pair is
// unique; re-linking is a no-op returning the stored row. Links are never
// updated or deleted.
type DayEndSale struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DayEndID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_dayend_sale"`
	SaleID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_dayend_sale"`

	CreatedAt time.Time
}
