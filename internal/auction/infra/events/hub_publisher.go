package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/websocket"
)

// envelope is the wire shape shared by all publishers in this package.
type envelope struct {
	Event   string       `json:"event"`
	Payload domain.Event `json:"payload"`
}

// HubPublisher delivers domain events to the websocket clients watching
// the affected listing's auction room.
type HubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(envelope{Event: event.EventName(), Payload: event})
	if err != nil {
		return fmt.Errorf("hub publisher: marshal %s: %w", event.EventName(), err)
	}
	p.hub.BroadcastToListing(event.Listing().String(), data)
	return nil
}
