package service

import "errors"

// Sentinel errors returned by the services. Handlers map these onto HTTP
// status codes with errors.Is; anything else is treated as internal.
var (
	ErrDayEndNotFound = errors.New("day-end not found")
	ErrNoActiveDayEnd = errors.New("no active day-end found, open one first")
	ErrDayEndClosed   = errors.New("day-end is already closed")
	ErrSaleNotFound   = errors.New("sale not found")
	ErrSaleVoided     = errors.New("sale is already voided")
	ErrNegativeAmount = errors.New("amount must not be negative")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)
