package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/raceday/booking/internal/core/domain"
	"github.com/raceday/booking/internal/core/ports"
	"github.com/raceday/booking/internal/monitoring"
)

const capacityCacheTTL = 30 * time.Second

type TicketRequest struct {
	VariantKind          string          `json:"variant_kind"`
	SeatNumber           string          `json:"seat_number"`
	BasePrice            decimal.Decimal `json:"base_price"`
	GroupCount           int             `json:"group_count,omitempty"`
	GiftItems            []string        `json:"gift_items,omitempty"`
	GroupDiscountPercent decimal.Decimal `json:"group_discount_percent,omitempty"`
	GroupDiscountCap     decimal.Decimal `json:"group_discount_cap,omitempty"`
	MembershipID         string          `json:"membership_id,omitempty"`
	PassExpiry           time.Time       `json:"pass_expiry,omitempty"`
	Benefits             []string        `json:"benefits,omitempty"`
}

type CreateBookingRequest struct {
	UserID  string          `json:"user_id"`
	EventID string          `json:"event_id"`
	Tickets []TicketRequest `json:"tickets"`
}

type CreateBookingResponse struct {
	BookingID  string          `json:"booking_id"`
	TicketIDs  []string        `json:"ticket_ids"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
}

// pendingWrite marks a booking whose in-memory transition has been applied
// but whose repository write failed; a repeated call retries the write
// instead of treating the transition as already done.
type pendingWrite int

const (
	writeNone pendingWrite = iota
	writeConfirm
	writeCancel
	writeDiscount
)

// BookingService owns the live Event and Booking aggregates. One ledger (and
// therefore one lock) exists per event, shared by every request touching that
// event, so reserve and release are serialized without cross-event contention.
type BookingService struct {
	eventRepo   ports.EventRepository
	bookingRepo ports.BookingRepository
	redis       *redis.Client

	mu       sync.RWMutex
	events   map[string]*domain.Event
	bookings map[string]*domain.Booking
	unsynced map[string]pendingWrite
}

func NewBookingService(eventRepo ports.EventRepository, bookingRepo ports.BookingRepository, redisClient *redis.Client) *BookingService {
	return &BookingService{
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		redis:       redisClient,
		events:      make(map[string]*domain.Event),
		bookings:    make(map[string]*domain.Booking),
		unsynced:    make(map[string]pendingWrite),
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	if req.UserID == "" {
		return nil, errors.New("invalid user id")
	}
	if req.EventID == "" {
		return nil, errors.New("invalid event id")
	}
	if len(req.Tickets) == 0 {
		return nil, errors.New("no tickets requested")
	}

	specs := make([]domain.TicketSpec, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		var groupRate *domain.Discount
		if t.GroupDiscountPercent.IsPositive() {
			groupRate = &domain.Discount{
				Percentage:        t.GroupDiscountPercent,
				MaxDiscountAmount: t.GroupDiscountCap,
			}
		}

		specs = append(specs, domain.TicketSpec{
			Kind:       domain.VariantKind(t.VariantKind),
			SeatNumber: t.SeatNumber,
			BasePrice:  t.BasePrice,
			GroupRate:  groupRate,
			Fields: domain.VariantFields{
				GroupCount:   t.GroupCount,
				GiftItems:    t.GiftItems,
				MembershipID: t.MembershipID,
				PassExpiry:   t.PassExpiry,
				Benefits:     t.Benefits,
			},
		})
	}

	event, err := s.loadEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	ticketIDs, err := event.Ledger.Reserve(len(specs))
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			monitoring.ReservationRejected(event.ID)
		}
		return nil, err
	}

	bookingID := uuid.New().String()

	tickets := make([]domain.Ticket, 0, len(specs))
	for i, spec := range specs {
		ticket, err := domain.NewTicket(spec, event.ID, bookingID, ticketIDs[i])
		if err != nil {
			event.Ledger.Release(ticketIDs)
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	booking := domain.NewBooking(bookingID, req.UserID, req.EventID, tickets, time.Now())

	if err := s.bookingRepo.CreateBooking(ctx, booking, event.Ledger.Snapshot()); err != nil {
		event.Ledger.Release(ticketIDs)
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.mu.Lock()
	s.bookings[booking.ID] = booking
	s.mu.Unlock()

	s.invalidateCapacityCache(ctx, event.ID)
	monitoring.ReservationGranted(event.ID)
	monitoring.SetRemainingCapacity(event.ID, event.Ledger.Remaining())

	return &CreateBookingResponse{
		BookingID:  booking.ID,
		TicketIDs:  ticketIDs,
		TotalPrice: booking.Total(),
		Status:     string(domain.BookingPending),
	}, nil
}

// ApplyDiscount reduces the booking total once; the reduction is capped at
// the discount's maximum amount. A repeated call with the discount that is
// already applied retries the repository write if it never landed.
func (s *BookingService) ApplyDiscount(ctx context.Context, bookingID string, discount domain.Discount) (decimal.Decimal, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := booking.ApplyDiscount(discount); err != nil {
		applied := booking.DiscountApplied()
		if errors.Is(err, domain.ErrDiscountAlreadyApplied) &&
			s.pending(bookingID) == writeDiscount &&
			applied != nil && applied.ID == discount.ID {
			return s.persistDiscount(ctx, booking)
		}
		return decimal.Zero, err
	}

	return s.persistDiscount(ctx, booking)
}

func (s *BookingService) persistDiscount(ctx context.Context, booking *domain.Booking) (decimal.Decimal, error) {
	applied := booking.DiscountApplied()
	total := booking.Total()

	if err := s.bookingRepo.ApplyDiscount(ctx, booking.ID, applied.ID, total); err != nil {
		s.setPending(booking.ID, writeDiscount)
		return decimal.Zero, fmt.Errorf("failed to persist discount: %w", err)
	}

	s.clearPending(booking.ID)
	return total, nil
}

// ConfirmBooking moves a pending booking to confirmed. A repeated call on a
// booking that confirmed in memory but whose write failed retries the write.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := booking.Confirm(); err != nil {
		if booking.CurrentStatus() == domain.BookingConfirmed && s.pending(bookingID) == writeConfirm {
			return s.persistConfirm(ctx, bookingID)
		}
		return err
	}

	monitoring.StatusTransition(string(domain.BookingConfirmed))

	return s.persistConfirm(ctx, bookingID)
}

func (s *BookingService) persistConfirm(ctx context.Context, bookingID string) error {
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingConfirmed); err != nil {
		s.setPending(bookingID, writeConfirm)
		return fmt.Errorf("failed to persist confirmation: %w", err)
	}

	s.clearPending(bookingID)
	return nil
}

// CancelBooking cancels a pending or confirmed booking and releases its
// reserved capacity. Cancelling an already cancelled booking is a no-op,
// unless the earlier cancellation never reached the store, in which case the
// write is retried with the current ledger state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	ticketIDs, err := booking.Cancel()
	if err != nil {
		return err
	}

	if len(ticketIDs) == 0 && s.pending(bookingID) != writeCancel {
		return nil
	}

	event, err := s.loadEvent(ctx, booking.EventID)
	if err != nil {
		return err
	}

	if len(ticketIDs) > 0 {
		released := event.Ledger.Release(ticketIDs)
		monitoring.StatusTransition(string(domain.BookingCancelled))
		log.Printf("Booking %s cancelled, released %d seats for event %s", bookingID, released, event.ID)
	}

	if err := s.bookingRepo.CancelBooking(ctx, bookingID, event.Ledger.Snapshot()); err != nil {
		s.setPending(bookingID, writeCancel)
		return fmt.Errorf("failed to persist cancellation: %w", err)
	}

	s.clearPending(bookingID)
	s.invalidateCapacityCache(ctx, event.ID)
	monitoring.SetRemainingCapacity(event.ID, event.Ledger.Remaining())

	return nil
}

// RemainingCapacity reads the cached remaining count when present and falls
// back to the ledger on a miss.
func (s *BookingService) RemainingCapacity(ctx context.Context, eventID string) (int, error) {
	cacheKey := fmt.Sprintf("capacity:%s", eventID)

	if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
		if n, convErr := strconv.Atoi(cached); convErr == nil {
			return n, nil
		}
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	remaining := event.Ledger.Remaining()

	if err := s.redis.Set(ctx, cacheKey, remaining, capacityCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache remaining capacity for event %s: %v", eventID, err)
	}

	return remaining, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.loadBooking(ctx, bookingID)
}

// RegisterEvent makes a newly created event bookable.
func (s *BookingService) RegisterEvent(ctx context.Context, event *domain.Event) error {
	if err := s.eventRepo.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to persist event: %w", err)
	}

	s.mu.Lock()
	s.events[event.ID] = event
	s.mu.Unlock()

	monitoring.SetRemainingCapacity(event.ID, event.Ledger.Remaining())
	return nil
}

func (s *BookingService) loadEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	s.mu.RLock()
	event, ok := s.events[eventID]
	s.mu.RUnlock()
	if ok {
		return event, nil
	}

	loaded, err := s.eventRepo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have loaded it in the meantime; keep the first
	// copy so everyone shares one ledger.
	if existing, ok := s.events[eventID]; ok {
		return existing, nil
	}

	s.events[eventID] = loaded
	return loaded, nil
}

func (s *BookingService) loadBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	s.mu.RLock()
	booking, ok := s.bookings[bookingID]
	s.mu.RUnlock()
	if ok {
		return booking, nil
	}

	loaded, err := s.bookingRepo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.bookings[bookingID]; ok {
		return existing, nil
	}

	s.bookings[bookingID] = loaded
	return loaded, nil
}

func (s *BookingService) pending(bookingID string) pendingWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.unsynced[bookingID]
}

func (s *BookingService) setPending(bookingID string, w pendingWrite) {
	s.mu.Lock()
	s.unsynced[bookingID] = w
	s.mu.Unlock()
}

func (s *BookingService) clearPending(bookingID string) {
	s.mu.Lock()
	delete(s.unsynced, bookingID)
	s.mu.Unlock()
}

func (s *BookingService) invalidateCapacityCache(ctx context.Context, eventID string) {
	cacheKey := fmt.Sprintf("capacity:%s", eventID)
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate capacity cache for event %s: %v", eventID, err)
	}
}
