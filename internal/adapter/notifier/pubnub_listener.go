package notifier

import (
	"context"
	"encoding/json"
	"log"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/shopspring/decimal"

	"github.com/raceday/booking/internal/core/domain"
	"github.com/raceday/booking/internal/core/services"
)

// PaymentNotification is the payload the gateway publishes once a payment is
// resolved.
type PaymentNotification struct {
	PaymentID     string          `json:"payment_id"`
	BookingID     string          `json:"booking_id"`
	PaymentType   string          `json:"payment_type"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// PaymentListener subscribes to the gateway's notification channel and feeds
// resolved payments into the reconciler.
type PaymentListener struct {
	pn         *pubnub.PubNub
	reconciler *services.PaymentReconciler
	channel    string
}

func NewPaymentListener(pn *pubnub.PubNub, reconciler *services.PaymentReconciler, channel string) *PaymentListener {
	return &PaymentListener{
		pn:         pn,
		reconciler: reconciler,
		channel:    channel,
	}
}

func (l *PaymentListener) Run(ctx context.Context) {
	listener := pubnub.NewListener()

	l.pn.AddListener(listener)
	l.pn.Subscribe().
		Channels([]string{l.channel}).
		Execute()

	log.Printf("Payment listener subscribed to channel %s", l.channel)

	for {
		select {
		case <-ctx.Done():
			l.pn.Unsubscribe().Channels([]string{l.channel}).Execute()
			return
		case message := <-listener.Message:
			go l.handle(ctx, message)
		}
	}
}

func (l *PaymentListener) handle(ctx context.Context, message *pubnub.PNMessage) {
	data, ok := message.Message.(map[string]interface{})
	if !ok {
		return
	}

	jsonData, _ := json.Marshal(data)

	var notification PaymentNotification
	if err := json.Unmarshal(jsonData, &notification); err != nil {
		log.Printf("Error parsing payment notification: %v", err)
		return
	}

	payment := domain.Payment{
		ID:              notification.PaymentID,
		BookingID:       notification.BookingID,
		Type:            domain.PaymentType(notification.PaymentType),
		Amount:          notification.Amount,
		TransactionDate: notification.Timestamp,
		Status:          mapStatus(notification.Status),
	}

	if err := l.reconciler.OnPaymentResult(ctx, payment); err != nil {
		log.Printf("Failed to reconcile payment %s: %v", notification.PaymentID, err)
	}
}

func mapStatus(status string) domain.TransactionStatus {
	switch status {
	case "success", "completed":
		return domain.TransactionSuccessful
	case "failed":
		return domain.TransactionFailed
	default:
		return domain.TransactionPending
	}
}
