package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raceday/booking/internal/core/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// SavePayment upserts the gateway record; redeliveries of the same payment id
// simply overwrite the previous row.
func (r *PaymentRepository) SavePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
	INSERT INTO payments (id, booking_id, payment_type, amount, transaction_date, status,
		refund_id, refund_reason, card_network, card_last4, wallet_provider)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE
	SET status = EXCLUDED.status,
		refund_id = EXCLUDED.refund_id,
		refund_reason = EXCLUDED.refund_reason
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.BookingID, payment.Type, payment.Amount, payment.TransactionDate,
		payment.Status, payment.RefundID, payment.RefundReason,
		payment.CardNetwork, payment.CardLast4, payment.WalletProvider)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	query := `
	SELECT id, booking_id, payment_type, amount, transaction_date, status,
		refund_id, refund_reason, card_network, card_last4, wallet_provider
	FROM payments
	WHERE booking_id = $1
	ORDER BY transaction_date DESC
	LIMIT 1
	`

	var p domain.Payment
	var refundID, refundReason, cardNetwork, cardLast4, walletProvider sql.NullString

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&p.ID, &p.BookingID, &p.Type, &p.Amount, &p.TransactionDate, &p.Status,
		&refundID, &refundReason, &cardNetwork, &cardLast4, &walletProvider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no payment found for booking %s", bookingID)
		}
		return nil, err
	}

	p.RefundID = refundID.String
	p.RefundReason = refundReason.String
	p.CardNetwork = cardNetwork.String
	p.CardLast4 = cardLast4.String
	p.WalletProvider = walletProvider.String

	return &p, nil
}
