package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raceday/booking/internal/core/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	query := `
	INSERT INTO events (id, name, date, location, capacity, issued_count, capacity_seq)
	VALUES ($1, $2, $3, $4, $5, 0, 0)
	`

	_, err := r.db.ExecContext(ctx, query, event.ID, event.Name, event.Date, event.Location, event.Capacity)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetEvent rebuilds the event with its ledger from the persisted counters and
// the ticket ids of its live bookings.
func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
	SELECT id, name, date, location, capacity, capacity_seq
	FROM events
	WHERE id = $1
	`

	var event domain.Event
	var seq int

	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Location,
		&event.Capacity,
		&seq,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	issuedQuery := `
	SELECT t.id
	FROM tickets t
	JOIN bookings b ON b.id = t.booking_id
	WHERE t.event_id = $1 AND b.status != 'CANCELLED'
	`

	rows, err := r.db.QueryContext(ctx, issuedQuery, eventID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var issued []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		issued = append(issued, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	event.Ledger = domain.RestoreCapacityLedger(event.ID, event.Capacity, seq, issued)

	return &event, nil
}
