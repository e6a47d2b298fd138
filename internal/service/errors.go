package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateRequest  = errors.New("idempotent key already exists")
	ErrInvalidProduct    = errors.New("invalid product")
)

// ValidationError rejects a request before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StockError names the product that could not be fulfilled. It wraps
// ErrProductNotFound or ErrInsufficientStock.
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
	Err         error
}

func (e *StockError) Error() string {
	if errors.Is(e.Err, ErrProductNotFound) {
		return fmt.Sprintf("Product %s not found", e.ProductID)
	}
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// TransitionError reports a disallowed status move.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
