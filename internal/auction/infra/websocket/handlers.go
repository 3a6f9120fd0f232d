package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bidcraft/engine/internal/auction/application"
	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/logger"
	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/bidcraft/engine/internal/shared/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler interprets inbound hub messages for the auction
// module and answers with listing updates or rejections.
type AuctionWSHandler struct {
	service application.AuctionService
	hub     *websocket.Hub
}

func NewAuctionWSHandler(service application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{service: service, hub: hub}
}

// ListenForMessages consumes the hub inbound channel until the context
// is cancelled.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("auction websocket handler listening")
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		h.sendError(client, "invalid_message", "invalid message format", nil)
		return
	}
	switch base.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendError(client, "unknown_type", "unknown message type", nil)
	}
}

func (h *AuctionWSHandler) handleClientBid(ctx context.Context, client *websocket.Client, data []byte) {
	var msg ClientBidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(client, "invalid_message", "invalid bid message format", nil)
		return
	}

	if msg.Payload.ListingID.String() != client.ListingID {
		h.sendError(client, "listing_mismatch", "listing id does not match this room", nil)
		return
	}

	_, err := h.service.PlaceBid(ctx, application.PlaceBidInput{
		ListingID: msg.Payload.ListingID,
		BidderID:  msg.Payload.BidderID,
		Amount:    msg.Payload.Amount,
	})
	if err != nil {
		code, minimum := rejectionCode(err)
		h.sendError(client, code, err.Error(), minimum)
		return
	}

	// The accepted-bid event already reaches the room through the hub
	// publisher; additionally push the fresh full snapshot.
	state, err := h.service.GetListingState(ctx, msg.Payload.ListingID)
	if err != nil {
		h.sendError(client, "internal", "failed to load updated listing state", nil)
		return
	}
	h.BroadcastListingState(state)
}

// BroadcastListingState pushes the snapshot to every client in the room.
func (h *AuctionWSHandler) BroadcastListingState(state *application.ListingStateDTO) {
	update := ServerUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerUpdate},
		Payload:     state,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Error("failed to marshal listing update", zap.Error(err))
		return
	}
	h.hub.BroadcastToListing(state.ListingID.String(), data)
}

// SendInitialState delivers the current snapshot to a newly connected
// client.
func (h *AuctionWSHandler) SendInitialState(ctx context.Context, client *websocket.Client) {
	listingID, err := uuid.Parse(client.ListingID)
	if err != nil {
		h.sendError(client, "invalid_listing", "room is not a listing id", nil)
		return
	}
	state, err := h.service.GetListingState(ctx, listingID)
	if err != nil {
		h.sendError(client, "listing_not_found", "listing not found", nil)
		return
	}
	msg := ServerInitialStateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
		Payload:     state,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal initial state", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full, initial state dropped",
			zap.String("clientID", client.ID))
	}
}

func (h *AuctionWSHandler) sendError(client *websocket.Client, code, message string, minimum *money.Amount) {
	errMsg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeServerError}}
	errMsg.Payload.Code = code
	errMsg.Payload.Error = message
	errMsg.Payload.MinimumBid = minimum
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal error message", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full, error dropped",
			zap.String("clientID", client.ID))
	}
}

// rejectionCode maps a domain rejection to its machine-readable code and,
// for bid-too-low, the minimum the caller should surface.
func rejectionCode(err error) (string, *money.Amount) {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return "bid_too_low", &tooLow.Minimum
	}
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		return "listing_not_found", nil
	case errors.Is(err, domain.ErrNotBiddable):
		return "not_biddable", nil
	case errors.Is(err, domain.ErrSelfBid):
		return "self_bid", nil
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount", nil
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "concurrency_conflict", nil
	default:
		return "internal", nil
	}
}
