package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ride-pool/internal/carpool/domain"
	"ride-pool/internal/carpool/feed"
	"ride-pool/pkg/logger"
	"ride-pool/pkg/uuid"
)

// MessageEventPublisher announces committed messages to other service
// instances so their feeds recompute too.
type MessageEventPublisher interface {
	MessageCreated(ctx context.Context, msg domain.Message) error
}

// Chat handles message authoring and message-level moderation reports.
// Reading happens through the feed projector, never here.
type Chat struct {
	rides    domain.RideRepository
	messages domain.MessageRepository
	reports  domain.ReportSink
	broker   *feed.Broker
	events   MessageEventPublisher
	log      logger.Logger
}

func NewChat(
	rides domain.RideRepository,
	messages domain.MessageRepository,
	reports domain.ReportSink,
	broker *feed.Broker,
	events MessageEventPublisher,
	log logger.Logger,
) *Chat {
	return &Chat{
		rides:    rides,
		messages: messages,
		reports:  reports,
		broker:   broker,
		events:   events,
		log:      log,
	}
}

// SendMessage appends a message to the ride's channel. The creation
// timestamp is assigned by the store. Local feeds are notified directly;
// remote instances hear about it over the message event queue.
func (c *Chat) SendMessage(ctx context.Context, callerID, callerName, rideID, text string) (*domain.Message, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message text is empty")
	}

	if _, err := c.rides.FindByID(ctx, rideID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		RideID:     rideID,
		SenderID:   callerID,
		SenderName: callerName,
		Text:       text,
	}
	if err := c.messages.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	c.broker.Notify(rideID)

	if c.events != nil {
		if err := c.events.MessageCreated(ctx, *msg); err != nil {
			c.log.Error("message_event_failed", err)
		}
	}

	return msg, nil
}

// ReportMessage files a moderation report for a message. The write is
// fire-and-forget: a sink failure is logged and never surfaced, so
// reporting can never break the chat experience.
func (c *Chat) ReportMessage(ctx context.Context, callerID, rideID, messageID, reason string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}

	report := domain.Report{
		Kind:       domain.ReportKindMessage,
		ReporterID: callerID,
		RideID:     rideID,
		SubjectID:  messageID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.reports.Append(ctx, report); err != nil {
		c.log.Error("report_write_failed", err)
	}
	return nil
}
