package domain_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceday/booking/internal/core/domain"
)

func passTicket(t *testing.T, id string, price float64) domain.Ticket {
	t.Helper()

	ticket, err := domain.NewTicket(domain.TicketSpec{
		Kind:       domain.VariantSingleRacePass,
		SeatNumber: "A1",
		BasePrice:  decimal.NewFromFloat(price),
		Fields:     domain.VariantFields{PassExpiry: time.Now().Add(24 * time.Hour)},
	}, "evt-1", "bkg-1", id)
	require.NoError(t, err)

	return ticket
}

func TestBooking_TotalIsSumOfTicketPrices(t *testing.T) {
	tickets := []domain.Ticket{
		passTicket(t, "TKT-evt-1-1", 720.0),
		passTicket(t, "TKT-evt-1-2", 720.0),
	}

	booking := domain.NewBooking("bkg-1", "usr-1", "evt-1", tickets, time.Now())

	assert.Equal(t, 2, booking.NumberOfTickets)
	assert.True(t, booking.Total().Equal(decimal.NewFromFloat(1440.0)))
	assert.Equal(t, domain.BookingPending, booking.CurrentStatus())
}

func TestBooking_ApplyDiscountCappedAtMaxAmount(t *testing.T) {
	tickets := []domain.Ticket{
		passTicket(t, "TKT-evt-1-1", 720.0),
		passTicket(t, "TKT-evt-1-2", 720.0),
	}

	booking := domain.NewBooking("bkg-1", "usr-1", "evt-1", tickets, time.Now())

	// 10% of 1440 is 144, but the cap of 100 wins: total becomes 1340.
	discount := domain.Discount{
		ID:                "dsc-1",
		Code:              "RACE10",
		Percentage:        decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewFromInt(100),
	}

	err := booking.ApplyDiscount(discount)
	require.NoError(t, err)
	assert.True(t, booking.Total().Equal(decimal.NewFromFloat(1340.0)), "got %s", booking.Total())

	// Ticket prices are untouched.
	for _, ticket := range booking.Tickets {
		assert.True(t, ticket.Price.Equal(decimal.NewFromFloat(720.0)))
	}
}

func TestBooking_ApplyDiscountBelowCap(t *testing.T) {
	booking := domain.NewBooking("bkg-1", "usr-1", "evt-1",
		[]domain.Ticket{passTicket(t, "TKT-evt-1-1", 200.0)}, time.Now())

	discount := domain.Discount{
		ID:                "dsc-1",
		Percentage:        decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewFromInt(100),
	}

	require.NoError(t, booking.ApplyDiscount(discount))
	assert.True(t, booking.Total().Equal(decimal.NewFromFloat(180.0)))
}

func TestBooking_ApplyDiscountTwiceFails(t *testing.T) {
	booking := domain.NewBooking("bkg-1", "usr-1", "evt-1",
		[]domain.Ticket{passTicket(t, "TKT-evt-1-1", 100.0)}, time.Now())

	discount := domain.Discount{ID: "dsc-1", Percentage: decimal.NewFromInt(5)}

	require.NoError(t, booking.ApplyDiscount(discount))
	assert.ErrorIs(t, booking.ApplyDiscount(discount), domain.ErrDiscountAlreadyApplied)
}

func TestBooking_StateMachine(t *testing.T) {
	booking := domain.NewBooking("bkg-1", "usr-1", "evt-1",
		[]domain.Ticket{passTicket(t, "TKT-evt-1-1", 100.0)}, time.Now())

	require.NoError(t, booking.Confirm())
	assert.Equal(t, domain.BookingConfirmed, booking.CurrentStatus())

	// Confirmed admits no second confirm.
	assert.ErrorIs(t, booking.Confirm(), domain.ErrInvalidStateTransition)

	// Confirmed -> Cancelled is allowed.
	ids, err := booking.Cancel()
	require.NoError(t, err)
	assert.Equal(t, []string{"TKT-evt-1-1"}, ids)
	assert.Equal(t, domain.BookingCancelled, booking.CurrentStatus())

	// Cancelled is terminal.
	assert.ErrorIs(t, booking.Confirm(), domain.ErrInvalidStateTransition)

	// Cancelling again is a no-op and returns no ids to release.
	ids, err = booking.Cancel()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBooking_CancelFromPending(t *testing.T) {
	booking := domain.NewBooking("bkg-1", "usr-1", "evt-1",
		[]domain.Ticket{passTicket(t, "TKT-evt-1-1", 100.0), passTicket(t, "TKT-evt-1-2", 100.0)}, time.Now())

	ids, err := booking.Cancel()
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, domain.BookingCancelled, booking.CurrentStatus())
}

func TestBooking_ConcurrentConfirmAndCancel(t *testing.T) {
	for i := 0; i < 100; i++ {
		booking := domain.NewBooking("bkg-1", "usr-1", "evt-1",
			[]domain.Ticket{passTicket(t, "TKT-evt-1-1", 100.0)}, time.Now())

		var wg sync.WaitGroup
		var confirmErr error
		var cancelIDs []string

		wg.Add(2)
		go func() {
			defer wg.Done()
			confirmErr = booking.Confirm()
		}()
		go func() {
			defer wg.Done()
			cancelIDs, _ = booking.Cancel()
		}()
		wg.Wait()

		// Whichever transition won, the booking ends Cancelled (cancel is
		// legal from both Pending and Confirmed) and never crashes.
		assert.Equal(t, domain.BookingCancelled, booking.CurrentStatus())
		if confirmErr != nil {
			assert.ErrorIs(t, confirmErr, domain.ErrInvalidStateTransition)
		}
		assert.Len(t, cancelIDs, 1)
	}
}
