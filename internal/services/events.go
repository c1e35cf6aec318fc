package services

import (
	"context"
	"encoding/json"
	"time"

	"orderdesk/internal/models"
)

// Routing keys of published order events.
const (
	EventOrderCreated = "order.created"
	EventOrderDeleted = "order.deleted"
)

// EventPublisher delivers order events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderEvent is the message body of an order event.
type OrderEvent struct {
	Event            string    `json:"event"`
	OrderID          uint64    `json:"orderId"`
	Username         string    `json:"username"`
	PurchaseDate     string    `json:"purchaseDate"`
	DeliveryTime     string    `json:"deliveryTime"`
	DeliveryLocation string    `json:"deliveryLocation"`
	ProductName      string    `json:"productName"`
	Quantity         int       `json:"quantity"`
	OccurredAt       time.Time `json:"occurredAt"`
}

func newOrderEvent(event string, order *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Event:            event,
		OrderID:          order.ID,
		Username:         order.Username,
		PurchaseDate:     order.PurchaseDate.Format(models.DateLayout),
		DeliveryTime:     models.ShortTime(order.DeliveryTime),
		DeliveryLocation: order.DeliveryLocation,
		ProductName:      order.ProductName,
		Quantity:         order.Quantity,
		OccurredAt:       at.UTC(),
	}
}

func (e OrderEvent) marshal() ([]byte, error) {
	return json.Marshal(e)
}
