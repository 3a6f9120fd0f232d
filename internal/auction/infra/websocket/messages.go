package websocket

import (
	"github.com/bidcraft/engine/internal/auction/application"
	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	MessageTypeClientBid          MessageType = "client_bid"
	MessageTypeServerUpdate       MessageType = "server_listing_update"
	MessageTypeServerError        MessageType = "server_error"
	MessageTypeServerInitialState MessageType = "server_initial_state"
)

// BaseMessage carries the discriminator shared by all messages.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is a bid submitted over the websocket connection.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		ListingID uuid.UUID    `json:"listing_id"`
		BidderID  uuid.UUID    `json:"bidder_id"`
		Amount    money.Amount `json:"amount"`
	} `json:"payload"`
}

// ServerUpdateMessage broadcasts the fresh listing snapshot after an
// accepted bid or a close.
type ServerUpdateMessage struct {
	BaseMessage
	Payload *application.ListingStateDTO `json:"payload"`
}

// ServerErrorMessage reports a rejection back to one client. MinimumBid
// is set for bid-too-low rejections so the UI can prompt with it.
type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Code       string        `json:"code"`
		Error      string        `json:"error"`
		MinimumBid *money.Amount `json:"minimum_bid,omitempty"`
	} `json:"payload"`
}

// ServerInitialStateMessage is sent once on connect.
type ServerInitialStateMessage struct {
	BaseMessage
	Payload *application.ListingStateDTO `json:"payload"`
}
