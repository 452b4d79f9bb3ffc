package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ride-pool/internal/carpool/domain"
	"ride-pool/internal/carpool/feed"
	"ride-pool/pkg/logger"
	"ride-pool/pkg/rabbitmq"
)

// messageCreatedEvent is the wire form of a committed chat message. The
// payload is advisory: consumers only use the ride id to know which feeds
// to recompute, never the message body itself.
type messageCreatedEvent struct {
	MessageID string    `json:"message_id"`
	RideID    string    `json:"ride_id"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AMQPMessageEvents implements service.MessageEventPublisher.
type AMQPMessageEvents struct {
	conn *rabbitmq.Connection
}

func NewAMQPMessageEvents(conn *rabbitmq.Connection) *AMQPMessageEvents {
	return &AMQPMessageEvents{conn: conn}
}

// MessageCreated announces a committed message to all service instances.
func (p *AMQPMessageEvents) MessageCreated(ctx context.Context, msg domain.Message) error {
	event := messageCreatedEvent{
		MessageID: msg.ID,
		RideID:    msg.RideID,
		SenderID:  msg.SenderID,
		CreatedAt: msg.CreatedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal message event: %w", err)
	}
	if err := p.conn.Publish(ctx, "message.created", body); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}
	return nil
}

// MessageEventConsumer forwards message-created events into the local feed
// broker so feeds on this instance recompute for messages committed
// elsewhere.
type MessageEventConsumer struct {
	conn   *rabbitmq.Connection
	broker *feed.Broker
	log    logger.Logger
}

func NewMessageEventConsumer(conn *rabbitmq.Connection, broker *feed.Broker, log logger.Logger) *MessageEventConsumer {
	return &MessageEventConsumer{conn: conn, broker: broker, log: log}
}

// Run consumes until ctx is cancelled, re-opening the delivery channel when
// the connection drops.
func (c *MessageEventConsumer) Run(ctx context.Context) {
	for {
		deliveries, err := c.conn.Consume(rabbitmq.QueueMessageEvents)
		if err != nil {
			c.log.Error("message_consumer_open_failed", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
				continue
			}
		}

	consume:
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					// Channel closed, reconnect.
					c.log.Info("message_consumer_reopen", "Delivery channel closed, reconnecting")
					break consume
				}

				var event messageCreatedEvent
				if err := json.Unmarshal(delivery.Body, &event); err != nil {
					c.log.Error("message_event_decode_failed", err)
					delivery.Nack(false, false)
					continue
				}

				c.broker.Notify(event.RideID)
				delivery.Ack(false)
			}
		}
	}
}
