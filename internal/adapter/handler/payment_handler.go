package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raceday/booking/internal/core/domain"
	"github.com/raceday/booking/internal/core/services"
)

type PaymentHandler struct {
	reconciler *services.PaymentReconciler
}

func NewPaymentHandler(reconciler *services.PaymentReconciler) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler}
}

type paymentResultRequest struct {
	PaymentID      string          `json:"payment_id"`
	BookingID      string          `json:"booking_id"`
	PaymentType    string          `json:"payment_type"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	CardNetwork    string          `json:"card_network,omitempty"`
	CardLast4      string          `json:"card_last4,omitempty"`
	WalletProvider string          `json:"wallet_provider,omitempty"`
}

// PaymentResult receives an already-settled payment record from the gateway
// and hands it to the reconciler.
func (h *PaymentHandler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req paymentResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.PaymentID == "" || req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "payment_id and booking_id are required")
		return
	}

	payment := domain.Payment{
		ID:              req.PaymentID,
		BookingID:       req.BookingID,
		Type:            domain.PaymentType(req.PaymentType),
		Amount:          req.Amount,
		TransactionDate: time.Now(),
		Status:          domain.TransactionStatus(req.Status),
		CardNetwork:     req.CardNetwork,
		CardLast4:       req.CardLast4,
		WalletProvider:  req.WalletProvider,
	}

	if err := h.reconciler.OnPaymentResult(r.Context(), payment); err != nil {
		writeDomainError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"payment_id": req.PaymentID, "status": req.Status})
}

type refundRequest struct {
	BookingID    string `json:"booking_id"`
	RefundID     string `json:"refund_id"`
	RefundReason string `json:"refund_reason"`
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.BookingID == "" || req.RefundID == "" {
		writeError(w, http.StatusBadRequest, "booking_id and refund_id are required")
		return
	}

	if err := h.reconciler.OnRefund(r.Context(), req.BookingID, req.RefundID, req.RefundReason); err != nil {
		writeDomainError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"booking_id": req.BookingID, "refund_id": req.RefundID})
}
