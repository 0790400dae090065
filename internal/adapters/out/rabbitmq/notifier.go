// Package rabbitmq publishes dispatch notifications to a RabbitMQ topic
// exchange. The courier mobile app and the dispatch board subscribe to these
// messages; the engine only publishes and never blocks a business operation
// on delivery.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
)

const (
	// Exchange is the topic exchange all dispatch notifications go through.
	Exchange = "dispatch.notifications"

	blastCreatedKey  = "blast.created"
	blastResolvedKey = "blast.resolved"
	loadAssignedKey  = "load.assigned"
)

// publisher is the slice of amqp.Channel the notifier uses.
type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
}

// BlastNotifier implements ports.BlastNotifier on top of a RabbitMQ channel.
type BlastNotifier struct {
	conn    *amqp.Connection
	channel publisher
}

// NewBlastNotifier dials the broker, opens a channel, and declares the
// notification exchange. Close releases both when the app shuts down.
func NewBlastNotifier(url string) (*BlastNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &BlastNotifier{conn: conn, channel: channel}, nil
}

// newBlastNotifierWithPublisher wires a notifier onto an existing publisher.
// Used by tests.
func newBlastNotifierWithPublisher(p publisher) *BlastNotifier {
	return &BlastNotifier{channel: p}
}

// Close releases the channel and the connection.
func (n *BlastNotifier) Close() error {
	if closer, ok := n.channel.(*amqp.Channel); ok {
		_ = closer.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// blastCreatedMessage fans the offer out to its recipients.
type blastCreatedMessage struct {
	BlastID    string    `json:"blast_id"`
	LoadID     string    `json:"load_id"`
	Recipients []string  `json:"recipients"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// blastResolvedMessage tells subscribers the offer is over and how it ended.
type blastResolvedMessage struct {
	BlastID    string  `json:"blast_id"`
	LoadID     string  `json:"load_id"`
	Outcome    string  `json:"outcome"`
	AcceptedBy *string `json:"accepted_by,omitempty"`
}

// loadAssignedMessage tells one courier a load is now theirs.
type loadAssignedMessage struct {
	CourierID string `json:"courier_id"`
	LoadID    string `json:"load_id"`
}

// NotifyBlastCreated publishes the new offer to the notification exchange.
func (n *BlastNotifier) NotifyBlastCreated(ctx context.Context, b *blast.Blast) error {
	if err := b.Validate(); err != nil {
		return err
	}

	responses := b.Responses()
	msg := blastCreatedMessage{
		BlastID:    b.ID().String(),
		LoadID:     b.LoadID().String(),
		Recipients: make([]string, 0, len(responses)),
		ExpiresAt:  b.ExpiresAt(),
	}
	for _, resp := range responses {
		msg.Recipients = append(msg.Recipients, resp.CourierID().String())
	}

	return n.publish(ctx, blastCreatedKey, msg)
}

// NotifyBlastResolved publishes the terminal outcome of an offer.
func (n *BlastNotifier) NotifyBlastResolved(ctx context.Context, b *blast.Blast) error {
	if err := b.Validate(); err != nil {
		return err
	}

	msg := blastResolvedMessage{
		BlastID: b.ID().String(),
		LoadID:  b.LoadID().String(),
		Outcome: b.Status().String(),
	}
	if winner := b.AcceptedBy(); winner != nil {
		s := winner.String()
		msg.AcceptedBy = &s
	}

	return n.publish(ctx, blastResolvedKey, msg)
}

// NotifyLoadAssigned publishes an assignment push for one courier.
func (n *BlastNotifier) NotifyLoadAssigned(ctx context.Context, courierID kernel.UUID, loadID kernel.UUID) error {
	msg := loadAssignedMessage{
		CourierID: courierID.String(),
		LoadID:    loadID.String(),
	}
	return n.publish(ctx, loadAssignedKey, msg)
}

func (n *BlastNotifier) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return n.channel.PublishWithContext(
		ctx,
		Exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}
