package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking groups the tickets a user holds for one event under a single
// lifecycle status. Status, total and discount are guarded by a per-booking
// mutex: a booking is never concurrently confirmed and cancelled, whichever
// transition the state machine accepts first wins.
type Booking struct {
	mu sync.Mutex

	ID              string
	UserID          string
	EventID         string
	BookingDate     time.Time
	NumberOfTickets int
	TotalPrice      decimal.Decimal
	Status          BookingStatus
	Tickets         []Ticket
	AppliedDiscount *Discount
}

func NewBooking(id, userID, eventID string, tickets []Ticket, bookingDate time.Time) *Booking {
	total := decimal.Zero
	for _, t := range tickets {
		total = total.Add(t.Price)
	}

	return &Booking{
		ID:              id,
		UserID:          userID,
		EventID:         eventID,
		BookingDate:     bookingDate,
		NumberOfTickets: len(tickets),
		TotalPrice:      total,
		Status:          BookingPending,
		Tickets:         tickets,
	}
}

// Confirm moves the booking from Pending to Confirmed. Any other starting
// state is rejected.
func (b *Booking) Confirm() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Status != BookingPending {
		return ErrInvalidStateTransition
	}

	b.Status = BookingConfirmed
	return nil
}

// Cancel moves the booking to Cancelled from Pending or Confirmed and returns
// the ticket ids whose capacity must be released. Cancelling an already
// cancelled booking is a no-op and returns no ids.
func (b *Booking) Cancel() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Status == BookingCancelled {
		return nil, nil
	}

	b.Status = BookingCancelled

	ids := make([]string, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		ids = append(ids, t.ID)
	}

	return ids, nil
}

// ApplyDiscount recomputes the total once. The tickets keep their original
// prices; only the booking total is reduced.
func (b *Booking) ApplyDiscount(d Discount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.AppliedDiscount != nil {
		return ErrDiscountAlreadyApplied
	}

	sum := decimal.Zero
	for _, t := range b.Tickets {
		sum = sum.Add(t.Price)
	}

	b.TotalPrice = sum.Sub(d.AmountOff(sum))
	b.AppliedDiscount = &d

	return nil
}

func (b *Booking) DiscountApplied() *Discount {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.AppliedDiscount
}

func (b *Booking) CurrentStatus() BookingStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Status
}

func (b *Booking) Total() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.TotalPrice
}

func (b *Booking) TicketIDs() []string {
	ids := make([]string, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		ids = append(ids, t.ID)
	}

	return ids
}
