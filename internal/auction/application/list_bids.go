package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

// BidDTO is one entry of a listing's bid history. Withdrawn bids are
// included and flagged; they stay visible for audit.
type BidDTO struct {
	BidID       uuid.UUID    `json:"bid_id"`
	BidderID    uuid.UUID    `json:"bidder_id"`
	Amount      money.Amount `json:"amount"`
	PreviousBid money.Amount `json:"previous_bid"`
	BidType     string       `json:"bid_type"`
	IsWinning   bool         `json:"is_winning"`
	IsActive    bool         `json:"is_active"`
	WithdrawnAt *time.Time   `json:"withdrawn_at,omitempty"`
	PlacedAt    time.Time    `json:"placed_at"`
}

// ListBidsUseCase returns a listing's bid history, newest first.
type ListBidsUseCase struct {
	listings domain.ListingRepository
	bids     domain.BidRepository
}

func NewListBidsUseCase(listings domain.ListingRepository, bids domain.BidRepository) *ListBidsUseCase {
	return &ListBidsUseCase{listings: listings, bids: bids}
}

func (uc *ListBidsUseCase) Execute(ctx context.Context, listingID uuid.UUID) ([]BidDTO, error) {
	if _, err := uc.listings.GetByID(ctx, listingID); err != nil {
		return nil, fmt.Errorf("list bids %s: %w", listingID, err)
	}

	bids, err := uc.bids.ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("list bids %s: %w", listingID, err)
	}

	out := make([]BidDTO, 0, len(bids))
	for _, b := range bids {
		out = append(out, BidDTO{
			BidID:       b.ID,
			BidderID:    b.BidderID,
			Amount:      b.Amount,
			PreviousBid: b.PreviousBid,
			BidType:     string(b.BidType),
			IsWinning:   b.IsWinning,
			IsActive:    b.IsActive,
			WithdrawnAt: b.WithdrawnAt,
			PlacedAt:    b.CreatedAt,
		})
	}
	return out, nil
}
