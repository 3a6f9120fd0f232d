package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"go.uber.org/zap"

	"github.com/google/uuid"
)

type WithdrawBidInput struct {
	BidID   uuid.UUID
	ActorID uuid.UUID
	Reason  string
}

// WithdrawBidUseCase deactivates a non-winning bid. The bid record is
// kept for audit, totalBids is not decremented, and no other bid's
// winning flag changes.
type WithdrawBidUseCase struct {
	listings domain.ListingRepository
	bids     domain.BidRepository
	tx       domain.TxManager
	now      func() time.Time
}

func NewWithdrawBidUseCase(listings domain.ListingRepository, bids domain.BidRepository,
	tx domain.TxManager) *WithdrawBidUseCase {

	return &WithdrawBidUseCase{
		listings: listings,
		bids:     bids,
		tx:       tx,
		now:      time.Now,
	}
}

func (uc *WithdrawBidUseCase) Execute(ctx context.Context, in WithdrawBidInput) (*domain.Bid, error) {
	// Resolve the listing id first so locks are always taken in
	// listing-then-bid order, same as the bid-placement path.
	peek, err := uc.bids.GetByID(ctx, in.BidID)
	if err != nil {
		return nil, fmt.Errorf("withdraw bid %s: %w", in.BidID, err)
	}

	now := uc.now()

	tx, err := uc.tx.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("withdraw bid: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := uc.listings.GetByIDForUpdate(ctx, tx, peek.ListingID)
	if err != nil {
		return nil, fmt.Errorf("withdraw bid: listing %s: %w", peek.ListingID, err)
	}
	bid, err := uc.bids.GetByIDForUpdate(ctx, tx, in.BidID)
	if err != nil {
		return nil, fmt.Errorf("withdraw bid %s: %w", in.BidID, err)
	}

	if bid.BidderID != in.ActorID {
		return nil, domain.ErrNotOwner
	}
	if !bid.IsActive {
		return nil, domain.ErrBidAlreadyWithdrawn
	}
	if bid.IsWinning {
		return nil, domain.ErrCannotWithdrawWinning
	}
	switch domain.EffectiveStatus(listing, now) {
	case domain.StatusEnded, domain.StatusSold:
		return nil, domain.ErrAuctionClosed
	}

	bid.MarkWithdrawn(now, in.Reason)
	if err := uc.bids.SaveWithdrawal(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("withdraw bid %s: save: %w", in.BidID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("withdraw bid: failed to commit transaction: %w", err)
	}

	log.Info("bid withdrawn",
		zap.String("bidID", bid.ID.String()),
		zap.String("listingID", bid.ListingID.String()),
		zap.String("reason", in.Reason),
	)

	return bid, nil
}
