package domain

import "errors"

var (
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrInvalidStateTransition = errors.New("invalid booking state transition")
	ErrDiscountAlreadyApplied = errors.New("discount already applied")
	ErrInvalidVariantFields   = errors.New("invalid ticket variant fields")
	ErrInvalidRefundState     = errors.New("booking not refundable in current state")
	ErrLedgerCorrupted        = errors.New("capacity ledger corrupted: issued count exceeds capacity")
	ErrEventNotFound          = errors.New("event not found")
	ErrBookingNotFound        = errors.New("booking not found")
)
