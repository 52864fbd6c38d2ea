package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the register. Every sale carries exactly one.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentCheque = "cheque"
	PaymentOnline = "online"
	PaymentCredit = "credit"
)

// PaymentMethods lists the accepted methods in reporting order.
var PaymentMethods = []string{PaymentCash, PaymentCard, PaymentCheque, PaymentOnline, PaymentCredit}

// Sale statuses.
const (
	SaleCompleted = "completed"
	SaleVoided    = "voided"
)

// Sale is a completed point-of-sale transaction. Once registered it is never
// hard-deleted; voiding sets Deleted and flips Status so that day-end
// aggregation skips it.
type Sale struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReferenceNumber string    `gorm:"uniqueIndex;not null"`
	CashierID       uuid.UUID `gorm:"type:uuid;not null;index"`

	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Change     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	PaymentMethod string  `gorm:"type:varchar(20);not null;index"`
	Status        string  `gorm:"type:varchar(20);not null;default:'completed'"`
	Notes         *string
	Deleted       bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale. Product identity is denormalized
// (name + code) so a sale stays readable after catalog changes — the
// catalog itself lives in a separate system.
type SaleItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID `gorm:"type:uuid;not null;index"`

	ProductName string `gorm:"not null"`
	ProductCode string `gorm:"not null"`

	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time
}
