// Package notify implements the realtime notification channel: a websocket
// hub with per-seller rooms and a Publisher capability that services receive
// by injection. Delivery is best-effort, at-most-once, after commit.
package notify

import (
	"fmt"
	"time"
)

// EventType names the published event kinds. The wire names match what the
// frontend already listens for.
type EventType string

const (
	EventNewOrder       EventType = "nueva-orden"
	EventPaymentStatus  EventType = "estadoPagoActualizado"
	EventShippingStatus EventType = "estadoEnvioActualizado"
	EventStockChanged   EventType = "stockActualizado"
)

// Event is a single notification as sent to listeners.
type Event struct {
	Type      EventType      `json:"type"`
	Room      string         `json:"room,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher is the capability handed to services that emit notifications.
// The Hub implements it; tests substitute a recording fake.
type Publisher interface {
	Broadcast(event Event)
	ToRoom(room string, event Event)
}

// SellerRoom is the private channel of one seller identity.
func SellerRoom(sellerID uint) string {
	return fmt.Sprintf("vendedor-%d", sellerID)
}
