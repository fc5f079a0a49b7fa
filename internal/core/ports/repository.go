package ports

import (
	"context"

	"github.com/raceday/booking/internal/core/domain"
	"github.com/shopspring/decimal"
)

type EventRepository interface {
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	CreateEvent(ctx context.Context, event *domain.Event) error
}

// BookingRepository persists bookings together with the ledger counters that
// account for them. Implementations must write booking rows and counters in
// one transaction so a crash cannot leave the issued count and the booking
// out of step.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking, ledger domain.LedgerState) error
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error
	CancelBooking(ctx context.Context, bookingID string, ledger domain.LedgerState) error
	ApplyDiscount(ctx context.Context, bookingID, discountID string, total decimal.Decimal) error
}

type PaymentRepository interface {
	SavePayment(ctx context.Context, payment *domain.Payment) error
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)
}
