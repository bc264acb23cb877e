package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nyumbani/visits-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(topic string, handler func(msg *Message)) error
	QueueSubscribe(topic, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Topic     string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "publishing event", "topic", topic, "data", string(payload))

	return n.conn.Publish(topic, payload)
}

func (n *NATSEventBus) Subscribe(topic string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(topic, func(msg *nats.Msg) {
		handler(&Message{
			Topic:     msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(topic, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(topic, queue, func(msg *nats.Msg) {
		handler(&Message{
			Topic:     msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Visit lifecycle topics. Subscribers register against these explicitly;
// there is no wildcard broadcast.
const (
	VisitCreated   = "visit.created"
	VisitConfirmed = "visit.confirmed"
	VisitCompleted = "visit.completed"
	VisitCancelled = "visit.cancelled"
	VisitDeleted   = "visit.deleted"
)

// TopicForStatus maps a target visit status to its lifecycle topic.
func TopicForStatus(status string) string {
	switch status {
	case "confirmed":
		return VisitConfirmed
	case "completed":
		return VisitCompleted
	case "cancelled":
		return VisitCancelled
	default:
		return ""
	}
}

type VisitCreatedEvent struct {
	VisitID       string    `json:"visit_id"`
	PropertyID    string    `json:"property_id"`
	OwnerID       string    `json:"owner_id"`
	RequesterID   *string   `json:"requester_id,omitempty"`
	VisitorEmail  string    `json:"visitor_email,omitempty"`
	ScheduledDate string    `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"`
	ShortStay     bool      `json:"short_stay"`
	CreatedAt     time.Time `json:"created_at"`
}

type VisitStatusChangedEvent struct {
	VisitID    string    `json:"visit_id"`
	PropertyID string    `json:"property_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

type VisitDeletedEvent struct {
	VisitID    string    `json:"visit_id"`
	PropertyID string    `json:"property_id"`
	DeletedBy  string    `json:"deleted_by"`
	DeletedAt  time.Time `json:"deleted_at"`
}
