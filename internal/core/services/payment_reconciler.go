package services

import (
	"context"
	"fmt"
	"log"

	"github.com/raceday/booking/internal/core/domain"
	"github.com/raceday/booking/internal/core/ports"
	"github.com/raceday/booking/internal/monitoring"
)

// PaymentReconciler consumes already-resolved payment records and drives the
// matching booking through its status machine. It never talks to a payment
// processor itself.
type PaymentReconciler struct {
	bookings    *BookingService
	paymentRepo ports.PaymentRepository
}

func NewPaymentReconciler(bookings *BookingService, paymentRepo ports.PaymentRepository) *PaymentReconciler {
	return &PaymentReconciler{
		bookings:    bookings,
		paymentRepo: paymentRepo,
	}
}

// OnPaymentResult records the payment and applies its outcome: a successful
// transaction confirms the booking, a failed one cancels it and releases the
// reserved capacity, a pending one changes nothing and must be re-delivered
// once terminal.
func (r *PaymentReconciler) OnPaymentResult(ctx context.Context, payment domain.Payment) error {
	if payment.BookingID == "" {
		return fmt.Errorf("payment %s has no booking id", payment.ID)
	}

	if err := r.paymentRepo.SavePayment(ctx, &payment); err != nil {
		return fmt.Errorf("failed to persist payment %s: %w", payment.ID, err)
	}

	switch payment.Status {
	case domain.TransactionSuccessful:
		if err := r.bookings.ConfirmBooking(ctx, payment.BookingID); err != nil {
			monitoring.Reconciliation("confirm_rejected")
			return err
		}
		monitoring.Reconciliation("confirmed")
		return nil

	case domain.TransactionFailed:
		if err := r.bookings.CancelBooking(ctx, payment.BookingID); err != nil {
			monitoring.Reconciliation("cancel_rejected")
			return err
		}
		monitoring.Reconciliation("cancelled")
		return nil

	case domain.TransactionPending:
		log.Printf("Payment %s for booking %s still pending, no state change", payment.ID, payment.BookingID)
		monitoring.Reconciliation("pending")
		return nil

	default:
		return fmt.Errorf("unknown transaction status %q on payment %s", payment.Status, payment.ID)
	}
}

// OnRefund records refund details on the booking's payment and cancels the
// booking. Only confirmed bookings are refundable.
func (r *PaymentReconciler) OnRefund(ctx context.Context, bookingID, refundID, refundReason string) error {
	booking, err := r.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.CurrentStatus() != domain.BookingConfirmed {
		return domain.ErrInvalidRefundState
	}

	payment, err := r.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}

	payment.RefundID = refundID
	payment.RefundReason = refundReason

	if err := r.paymentRepo.SavePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to persist refund on payment %s: %w", payment.ID, err)
	}

	if err := r.bookings.CancelBooking(ctx, bookingID); err != nil {
		return err
	}

	monitoring.Reconciliation("refunded")
	return nil
}
