// Package events publishes domain events after their mutation has been committed.
package events

import (
	"context"
	"time"

	"freshmart/internal/model"
)

// Kafka topics.
const (
	TopicOrderCreated       = "order-created"
	TopicOrderStatusUpdated = "order-status-updated"
	TopicDeliveryUpdated    = "delivery-updated"
)

// Topics lists every topic the service writes to.
var Topics = []string{TopicOrderCreated, TopicOrderStatusUpdated, TopicDeliveryUpdated}

// Event is a single domain event. Key selects the partition so events of one entity stay ordered.
type Event struct {
	Topic      string    `json:"-"`
	Key        string    `json:"-"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher sends events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// OrderCreated is emitted once per committed order.
func OrderCreated(order model.Order) Event {
	return Event{
		Topic:      TopicOrderCreated,
		Key:        order.ID.String(),
		Type:       "order.created",
		OccurredAt: order.CreatedAt,
		Data:       order,
	}
}

// OrderStatusUpdated is emitted after an order status change.
func OrderStatusUpdated(order model.Order) Event {
	return Event{
		Topic:      TopicOrderStatusUpdated,
		Key:        order.ID.String(),
		Type:       "order.status_updated",
		OccurredAt: order.UpdatedAt,
		Data: map[string]any{
			"orderId":  order.ID,
			"vendorId": order.VendorID,
			"userId":   order.UserID,
			"status":   order.Status,
		},
	}
}

// DeliveryUpdated is emitted after a delivery is created or changed.
func DeliveryUpdated(delivery model.Delivery, change string) Event {
	return Event{
		Topic:      TopicDeliveryUpdated,
		Key:        delivery.OrderID.String(),
		Type:       "delivery." + change,
		OccurredAt: delivery.UpdatedAt,
		Data:       delivery,
	}
}

// Nop discards every event. It is used when Kafka is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error                            { return nil }
