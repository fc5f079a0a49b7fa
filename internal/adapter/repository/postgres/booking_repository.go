package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/raceday/booking/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking writes the booking header, its tickets and the event's ledger
// counters in one transaction, so a crash cannot leave the issued count
// incremented without the booking rows or vice versa.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking, ledger domain.LedgerState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO bookings (id, user_id, event_id, booking_date, number_of_tickets, total_price, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(ctx, queryHeader,
		booking.ID, booking.UserID, booking.EventID, booking.BookingDate,
		booking.NumberOfTickets, booking.TotalPrice, booking.Status)
	if err != nil {
		return fmt.Errorf("failed to insert booking header: %w", err)
	}

	queryTicket := `
	INSERT INTO tickets (id, booking_id, event_id, position, seat_number, price, variant_kind,
		group_count, gift_items, membership_id, pass_expiry, benefits)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	stmt, err := tx.PrepareContext(ctx, queryTicket)
	if err != nil {
		return fmt.Errorf("failed to prepare ticket statement: %w", err)
	}

	defer stmt.Close()

	for pos, t := range booking.Tickets {
		var groupCount sql.NullInt64
		var giftItems, benefits []string
		var membershipID sql.NullString
		var passExpiry sql.NullTime

		switch t.Kind {
		case domain.VariantGroupDiscount:
			groupCount = sql.NullInt64{Int64: int64(t.Group.GroupCount), Valid: true}
			giftItems = t.Group.GiftItems
		case domain.VariantSeasonMembership:
			membershipID = sql.NullString{String: t.Membership.MembershipID, Valid: true}
		case domain.VariantSingleRacePass:
			passExpiry = sql.NullTime{Time: t.Pass.ExpiresAt, Valid: true}
		case domain.VariantWeekendPackage:
			benefits = t.Package.Benefits
		}

		_, err := stmt.ExecContext(ctx, t.ID, t.BookingID, t.EventID, pos, t.SeatNumber, t.Price, t.Kind,
			groupCount, pq.Array(giftItems), membershipID, passExpiry, pq.Array(benefits))
		if err != nil {
			return fmt.Errorf("failed to insert ticket %s: %w", t.ID, err)
		}
	}

	if err := updateLedgerCounters(ctx, tx, ledger); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	query := `
	UPDATE bookings
	SET status = $1, confirmed_at = $2
	WHERE id = $3
	`

	var confirmedAt *time.Time
	if status == domain.BookingConfirmed {
		now := time.Now()
		confirmedAt = &now
	}

	_, err := r.db.ExecContext(ctx, query, status, confirmedAt, bookingID)
	if err != nil {
		return err
	}

	return nil
}

// CancelBooking flips the booking status and writes the released ledger
// counters in the same transaction.
func (r *BookingRepository) CancelBooking(ctx context.Context, bookingID string, ledger domain.LedgerState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE bookings SET status = 'CANCELLED' WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}

	if err := updateLedgerCounters(ctx, tx, ledger); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *BookingRepository) ApplyDiscount(ctx context.Context, bookingID, discountID string, total decimal.Decimal) error {
	query := `
	UPDATE bookings
	SET total_price = $1, discount_id = $2
	WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, total, discountID, bookingID)

	return err
}

func (r *BookingRepository) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `
	SELECT id, user_id, event_id, booking_date, number_of_tickets, total_price, status, discount_id
	FROM bookings
	WHERE id = $1
	`

	var (
		id, userID, eventID string
		bookingDate         time.Time
		numberOfTickets     int
		totalPrice          decimal.Decimal
		status              string
		discountID          sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&id, &userID, &eventID, &bookingDate, &numberOfTickets, &totalPrice, &status, &discountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	tickets, err := r.getTickets(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking := domain.NewBooking(id, userID, eventID, tickets, bookingDate)
	booking.Status = domain.BookingStatus(status)
	booking.TotalPrice = totalPrice

	// A persisted discount id keeps the once-only guard intact after a reload.
	if discountID.Valid {
		booking.AppliedDiscount = &domain.Discount{ID: discountID.String}
	}

	return booking, nil
}

func (r *BookingRepository) getTickets(ctx context.Context, bookingID string) ([]domain.Ticket, error) {
	query := `
	SELECT id, booking_id, event_id, seat_number, price, variant_kind,
		group_count, gift_items, membership_id, pass_expiry, benefits, check_in_time
	FROM tickets
	WHERE booking_id = $1
	ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		var groupCount sql.NullInt64
		var giftItems, benefits pq.StringArray
		var membershipID sql.NullString
		var passExpiry, checkInTime sql.NullTime

		if err := rows.Scan(&t.ID, &t.BookingID, &t.EventID, &t.SeatNumber, &t.Price, &t.Kind,
			&groupCount, &giftItems, &membershipID, &passExpiry, &benefits, &checkInTime); err != nil {
			return nil, err
		}

		switch t.Kind {
		case domain.VariantGroupDiscount:
			t.Group = &domain.GroupDetails{GroupCount: int(groupCount.Int64), GiftItems: giftItems}
		case domain.VariantSeasonMembership:
			t.Membership = &domain.MembershipDetails{MembershipID: membershipID.String}
		case domain.VariantSingleRacePass:
			t.Pass = &domain.PassDetails{ExpiresAt: passExpiry.Time}
		case domain.VariantWeekendPackage:
			t.Package = &domain.PackageDetails{Benefits: benefits}
		}

		if checkInTime.Valid {
			t.CheckInTime = &checkInTime.Time
		}

		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}

func updateLedgerCounters(ctx context.Context, tx *sql.Tx, ledger domain.LedgerState) error {
	query := `
	UPDATE events
	SET issued_count = $1, capacity_seq = $2
	WHERE id = $3
	`

	_, err := tx.ExecContext(ctx, query, ledger.IssuedCount, ledger.Sequence, ledger.EventID)
	if err != nil {
		return fmt.Errorf("failed to update ledger counters for event %s: %w", ledger.EventID, err)
	}

	return nil
}
