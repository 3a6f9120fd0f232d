package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

// ListingStateDTO is the read-side snapshot exposed to HTTP and WebSocket
// clients. Status is always the effective status derived from the clock,
// never the raw stored field.
type ListingStateDTO struct {
	ListingID    uuid.UUID     `json:"listing_id"`
	SellerID     uuid.UUID     `json:"seller_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	StartingBid  money.Amount  `json:"starting_bid"`
	CurrentBid   money.Amount  `json:"current_bid"`
	BidIncrement money.Amount  `json:"bid_increment"`
	MinimumBid   money.Amount  `json:"minimum_bid"`
	BuyNowPrice  *money.Amount `json:"buy_now_price,omitempty"`
	ReserveMet   bool          `json:"reserve_met"`
	AuctionStart time.Time     `json:"auction_start"`
	AuctionEnd   time.Time     `json:"auction_end"`
	Status       string        `json:"status"`
	IsBiddable   bool          `json:"is_biddable"`

	TotalBids     int           `json:"total_bids"`
	HighestBidder *uuid.UUID    `json:"highest_bidder,omitempty"`
	FinalPrice    *money.Amount `json:"final_price,omitempty"`
	SoldTo        *uuid.UUID    `json:"sold_to,omitempty"`
	SoldAt        *time.Time    `json:"sold_at,omitempty"`
}

// GetListingStateUseCase retrieves the current state of a listing.
type GetListingStateUseCase struct {
	listings domain.ListingRepository
	now      func() time.Time
}

func NewGetListingStateUseCase(listings domain.ListingRepository) *GetListingStateUseCase {
	return &GetListingStateUseCase{listings: listings, now: time.Now}
}

func (uc *GetListingStateUseCase) Execute(ctx context.Context, listingID uuid.UUID) (*ListingStateDTO, error) {
	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing state %s: %w", listingID, err)
	}
	now := uc.now()
	return snapshotOf(listing, now), nil
}

func snapshotOf(l *domain.Listing, now time.Time) *ListingStateDTO {
	return &ListingStateDTO{
		ListingID:     l.ID,
		SellerID:      l.SellerID,
		Title:         l.Title,
		Description:   l.Description,
		StartingBid:   l.StartingBid,
		CurrentBid:    l.CurrentBid,
		BidIncrement:  l.BidIncrement,
		MinimumBid:    l.MinimumBid(),
		BuyNowPrice:   l.BuyNowPrice,
		ReserveMet:    l.ReserveMet(),
		AuctionStart:  l.AuctionStart,
		AuctionEnd:    l.AuctionEnd,
		Status:        string(domain.EffectiveStatus(l, now)),
		IsBiddable:    domain.IsBiddable(l, now),
		TotalBids:     l.TotalBids,
		HighestBidder: l.HighestBidder,
		FinalPrice:    l.FinalPrice,
		SoldTo:        l.SoldTo,
		SoldAt:        l.SoldAt,
	}
}
