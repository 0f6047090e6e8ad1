// Package notifier turns order.placed events into confirmation mails.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/messaging"
)

// errRejected marks a mail the email service refused outright. Sending it
// again cannot succeed.
var errRejected = errors.New("email rejected")

type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type OrderMailer struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewOrderMailer(emailServiceURL string, client *http.Client, logger *slog.Logger) *OrderMailer {
	return &OrderMailer{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

// Handle sends the confirmation mail for one delivery. Undecodable payloads,
// other event types and mails the email service rejects are logged and
// acknowledged. Any other failed send is returned so the message is
// redelivered.
func (m *OrderMailer) Handle(ctx context.Context, d messaging.Delivery) error {
	if d.EventType != "" && d.EventType != domain.EventTypeOrderPlaced {
		m.logger.Debug("skipping event", "event_type", d.EventType, "offset", d.Offset)
		return nil
	}

	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(d.Payload, &event); err != nil {
		m.logger.Error("dropping undecodable order placed event", "error", err, "partition", d.Partition, "offset", d.Offset)
		return nil
	}

	m.logger.Info("processing order placed event", "event_id", event.EventID, "order_id", event.OrderID, "user_id", event.UserID)

	err := m.send(ctx, confirmationMail(event))
	if errors.Is(err, errRejected) {
		m.logger.Error("dropping rejected confirmation email", "error", err, "order_id", event.OrderID, "user_id", event.UserID)
		return nil
	}
	if err != nil {
		m.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	m.logger.Info("confirmation email sent", "order_id", event.OrderID)
	return nil
}

func confirmationMail(event domain.OrderPlacedEvent) Mail {
	subject := "Order confirmed"
	if event.Status == domain.OrderStatusPaid {
		subject = "Payment received"
	}

	units := 0
	for _, item := range event.Items {
		units += item.Quantity
	}

	return Mail{
		To:      event.UserID + "@example.com",
		Subject: subject,
		Body: fmt.Sprintf("Your order %d (%d items, total %s, paid by %s) is %s.",
			event.OrderID, units, event.TotalAmount.StringFixed(2), event.PaymentMethod, event.Status),
	}
}

func (m *OrderMailer) send(ctx context.Context, mail Mail) error {
	data, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case permanent(resp.StatusCode):
		return fmt.Errorf("%w: email service returned status %d", errRejected, resp.StatusCode)
	default:
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}
}

// permanent reports whether a response status rejects the mail itself.
// 408 and 429 stay retryable.
func permanent(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}
