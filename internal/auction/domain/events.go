package domain

import (
	"context"
	"time"

	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

// Event is a domain event emitted by the bidding engine for the
// notification/broadcast collaborators.
type Event interface {
	EventName() string
	Listing() uuid.UUID
}

// BidAccepted describes a new leading bid on a listing.
type BidAccepted struct {
	ListingID        uuid.UUID     `json:"listing_id"`
	BidID            uuid.UUID     `json:"bid_id"`
	BidderID         uuid.UUID     `json:"bidder_id"`
	Amount           money.Amount  `json:"amount"`
	BidType          BidType       `json:"bid_type"`
	PreviousLeaderID *uuid.UUID    `json:"previous_leader_id,omitempty"`
	PlacedAt         time.Time     `json:"placed_at"`
	NewStatus        ListingStatus `json:"new_status"`
}

func (BidAccepted) EventName() string    { return "bid.accepted" }
func (e BidAccepted) Listing() uuid.UUID { return e.ListingID }

// ListingClosed is emitted on the transition into sold or cancelled, for
// downstream order-creation and payout workflows.
type ListingClosed struct {
	ListingID  uuid.UUID     `json:"listing_id"`
	Reason     ListingStatus `json:"reason"`
	FinalPrice *money.Amount `json:"final_price,omitempty"`
	ClosedAt   time.Time     `json:"closed_at"`
}

func (ListingClosed) EventName() string    { return "listing.closed" }
func (e ListingClosed) Listing() uuid.UUID { return e.ListingID }

// EventPublisher is the single outbound capability the engine needs from
// the notification/broadcast subsystem. Delivery mechanics are not the
// engine's concern.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
