package model

import "fmt"

// Upper bounds on client-supplied numbers. Each keeps a value inside its column type:
// quantities and stock are INTEGER, prices and totals are NUMERIC(10,2).
const (
	MaxLineQuantity = 10000
	MaxStock        = 1_000_000_000
	MaxPrice        = 1_000_000.0
	MaxOrderTotal   = 99_999_999.99
)

var (
	ErrQuantityLimit = NewDomainError(KindValidation, ErrCodeInvalidQuantity,
		fmt.Sprintf("quantity must be at most %d", MaxLineQuantity))
	ErrValueOutOfRange = NewDomainError(KindValidation, ErrCodeValidation, "value is out of range")
)

// CheckPrice rejects a price outside [0, MaxPrice].
func CheckPrice(price float64) error {
	if price < 0 {
		return ValidationError("price must not be negative")
	}
	if price > MaxPrice {
		return ValidationError("price must be at most %.2f", MaxPrice)
	}
	return nil
}

// CheckStock rejects a stock level outside [0, MaxStock].
func CheckStock(stock int) error {
	if stock < 0 {
		return ValidationError("stock must not be negative")
	}
	if stock > MaxStock {
		return ValidationError("stock must be at most %d", MaxStock)
	}
	return nil
}
