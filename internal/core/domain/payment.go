package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentCreditCard PaymentType = "CREDIT_CARD"
	PaymentDigital    PaymentType = "DIGITAL"
)

type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "PENDING"
	TransactionSuccessful TransactionStatus = "SUCCESSFUL"
	TransactionFailed     TransactionStatus = "FAILED"
)

// Payment is an already-settled record from the gateway. It references its
// booking by id only; the reconciler uses it to drive the booking status.
type Payment struct {
	ID              string
	BookingID       string
	Type            PaymentType
	Amount          decimal.Decimal
	TransactionDate time.Time
	Status          TransactionStatus

	RefundID     string
	RefundReason string

	// Variant extras, set by the gateway depending on Type.
	CardNetwork    string
	CardLast4      string
	WalletProvider string
}
