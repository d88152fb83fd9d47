package service

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/events"
	"github.com/ereignis/ereignis-api/internal/mail"
)

// MailQueue accepts outbound messages without blocking.
type MailQueue interface {
	Enqueue(msg mail.Message) bool
}

// NotificationService turns account events into outbound mail.
type NotificationService struct {
	dispatcher      events.Dispatcher
	queue           MailQueue
	logger          *zap.Logger
	confirmationURL string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue MailQueue, logger *zap.Logger, confirmationURL string) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:      dispatcher,
		queue:           queue,
		logger:          logger,
		confirmationURL: confirmationURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventConfirmationRequested, n.handleConfirmationRequested)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("UserRegistered", zap.Int64("user_id", event.UserID))
	n.queue.Enqueue(mail.Message{
		To:      payload.Email,
		Subject: "Welcome to Ereignis",
		Body:    fmt.Sprintf("Hi %s,\n\nyour account is ready. Confirm your email from your profile to unlock every feature.\n", payload.Username),
	})
	return nil
}

func (n *NotificationService) handleConfirmationRequested(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ConfirmationRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("ConfirmationRequested", zap.Int64("user_id", event.UserID))
	n.queue.Enqueue(mail.Message{
		To:      payload.Email,
		Subject: "Confirm your Ereignis account",
		Body: fmt.Sprintf("Hi %s,\n\nconfirm your account here: %s\n\nThe link expires at %s.\n",
			payload.Username, n.confirmationLink(payload.Token), payload.ExpiresAt.Format("2006-01-02 15:04 MST")),
	})
	return nil
}

func (n *NotificationService) confirmationLink(token string) string {
	u, err := url.Parse(n.confirmationURL)
	if err != nil || n.confirmationURL == "" {
		return token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
