package domain

import "errors"

var (
	ErrNotFound            = errors.New("item not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrOrderAlreadyPending = errors.New("order already pending")
	ErrOrderExpired        = errors.New("order expired")
	ErrNoPendingOrder      = errors.New("no pending order")
	ErrOrderNotTerminal    = errors.New("order is not resolved")
)

// Code returns a stable upper-case identifier for err, suitable for API
// responses and log fields. Unknown errors map to "INTERNAL".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, ErrEmptyCart):
		return "EMPTY_CART"
	case errors.Is(err, ErrOrderAlreadyPending):
		return "ORDER_ALREADY_PENDING"
	case errors.Is(err, ErrOrderExpired):
		return "ORDER_EXPIRED"
	case errors.Is(err, ErrNoPendingOrder):
		return "NO_PENDING_ORDER"
	case errors.Is(err, ErrOrderNotTerminal):
		return "ORDER_NOT_TERMINAL"
	default:
		return "INTERNAL"
	}
}
