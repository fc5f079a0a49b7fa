package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raceday/booking/internal/core/domain"
	"github.com/raceday/booking/internal/core/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req services.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	resp, err := h.svc.CreateBooking(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

type cancelBookingRequest struct {
	BookingID string `json:"booking_id"`
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}

	if err := h.svc.CancelBooking(r.Context(), req.BookingID); err != nil {
		writeDomainError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"booking_id": req.BookingID, "status": string(domain.BookingCancelled)})
}

type applyDiscountRequest struct {
	BookingID         string          `json:"booking_id"`
	DiscountID        string          `json:"discount_id"`
	Code              string          `json:"code"`
	Percentage        decimal.Decimal `json:"percentage"`
	FlatAmount        decimal.Decimal `json:"flat_amount"`
	MaxDiscountAmount decimal.Decimal `json:"max_discount_amount"`
}

func (h *BookingHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req applyDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}

	discount := domain.Discount{
		ID:                req.DiscountID,
		Code:              req.Code,
		Percentage:        req.Percentage,
		FlatAmount:        req.FlatAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
	}

	total, err := h.svc.ApplyDiscount(r.Context(), req.BookingID, discount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"booking_id": req.BookingID, "total_price": total})
}

type createEventRequest struct {
	EventID  string    `json:"event_id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
}

func (h *BookingHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	event, err := domain.NewEvent(req.EventID, req.Name, req.Date, req.Location, req.Capacity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.RegisterEvent(r.Context(), event); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"event_id": event.ID, "capacity": event.Capacity})
}

func (h *BookingHandler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	remaining, err := h.svc.RemainingCapacity(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"event_id": eventID, "remaining": remaining})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrDiscountAlreadyApplied),
		errors.Is(err, domain.ErrInvalidRefundState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidVariantFields):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrLedgerCorrupted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
