package services

import "errors"

// Sentinel errors shared by the services so handlers can map them to status
// codes with errors.Is. Wrap them with fmt.Errorf("%w: detail", …) for context.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid input")
	ErrQuotaExceeded     = errors.New("daily limit reached")
	ErrInsufficientCoins = errors.New("not enough coins")
)
